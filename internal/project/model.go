// internal/project/model.go
package project

import (
	"time"

	"funedit/internal/funscript"
	"funedit/internal/region"
)

// VideoFile describes the selected video. Path is the local-file handle
// used to reacquire the bytes; when it is empty the user must re-select
// the file.
type VideoFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// Settings are per-project editor preferences.
type Settings struct {
	PlaybackRate float64 `json:"playback_rate,omitempty"`
	Volume       float64 `json:"volume,omitempty"`
	GraphZoom    float64 `json:"graph_zoom,omitempty"`
	Theme        string  `json:"theme,omitempty"`
}

// Project is the single unit of identity a user operates on. It is also
// the whole-project persistence record; the facet stores (chapters,
// ROIs, actions, settings) can be synthesized from and into it.
type Project struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	VideoFile *VideoFile                `json:"video_file,omitempty"`
	Funscript *funscript.Funscript      `json:"funscript_data,omitempty"`
	Settings  *Settings                 `json:"settings,omitempty"`
	Chapters  map[string]region.Chapter `json:"fs_chapters,omitempty"`
	ROIs      map[string]region.ROI     `json:"rois,omitempty"`
}

// HasVideo reports whether a video has been selected.
func (p *Project) HasVideo() bool {
	return p != nil && p.VideoFile != nil
}

// HasFunscript reports whether a funscript has been loaded.
func (p *Project) HasFunscript() bool {
	return p != nil && p.Funscript != nil
}
