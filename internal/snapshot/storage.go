// internal/snapshot/storage.go
// Package snapshot stores point-in-time copies of a project on disk,
// so an edit session can be rolled back after a bad batch of changes.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"funedit/internal/project"
)

// Snapshot describes one stored project state.
type Snapshot struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Label     string    `json:"label,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Actions   int       `json:"actions"`
	Chapters  int       `json:"chapters"`
	ROIs      int       `json:"rois"`
}

// Storage manages snapshot persistence
type Storage struct {
	baseDir          string
	compressionLevel int
	mu               sync.RWMutex
	encoder          *zstd.Encoder
	decoder          *zstd.Decoder
}

// NewStorage creates a new snapshot storage
func NewStorage(baseDir string, compressionLevel int) *Storage {
	encoder, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	decoder, _ := zstd.NewReader(nil)

	return &Storage{
		baseDir:          baseDir,
		compressionLevel: compressionLevel,
		encoder:          encoder,
		decoder:          decoder,
	}
}

// snapshotsDir returns the path for a project's snapshots
func (s *Storage) snapshotsDir(projectID string) string {
	return filepath.Join(s.baseDir, "snapshots", projectID)
}

// Save stores the project state and returns the snapshot metadata.
func (s *Storage) Save(p *project.Project, label string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		ID:        uuid.New().String(),
		ProjectID: p.ID,
		Label:     label,
		Timestamp: time.Now(),
		Chapters:  len(p.Chapters),
		ROIs:      len(p.ROIs),
	}
	if p.Funscript != nil {
		snap.Actions = len(p.Funscript.Actions)
	}

	snapDir := filepath.Join(s.snapshotsDir(p.ID), snap.ID)
	if err := os.MkdirAll(snapDir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	metadataJSON, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(snapDir, "metadata.json"), metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	compressed := s.encoder.EncodeAll(payload, nil)
	if err := os.WriteFile(filepath.Join(snapDir, "payload.zst"), compressed, 0644); err != nil {
		return nil, fmt.Errorf("write payload: %w", err)
	}

	return snap, nil
}

// Load returns the project state stored in a snapshot.
func (s *Storage) Load(projectID, snapshotID string) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapDir := filepath.Join(s.snapshotsDir(projectID), snapshotID)

	compressed, err := os.ReadFile(filepath.Join(snapDir, "payload.zst"))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	payload, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	var p project.Project
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &p, nil
}

// List lists a project's snapshots, newest first.
func (s *Storage) List(projectID string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapsDir := s.snapshotsDir(projectID)
	entries, err := os.ReadDir(snapsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snaps []Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metadataJSON, err := os.ReadFile(filepath.Join(snapsDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var snap Snapshot
		if json.Unmarshal(metadataJSON, &snap) == nil {
			snaps = append(snaps, snap)
		}
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// Delete removes a snapshot
func (s *Storage) Delete(projectID, snapshotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.RemoveAll(filepath.Join(s.snapshotsDir(projectID), snapshotID))
}
