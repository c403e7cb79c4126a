// internal/persist/memory.go
package persist

import (
	"sort"
	"sync"
	"time"

	"funedit/internal/database"
	"funedit/internal/funscript"
	"funedit/internal/project"
	"funedit/internal/region"
)

// MemoryGateway keeps everything in process memory. Used by tests and
// by sessions that opt out of disk persistence.
type MemoryGateway struct {
	mu       sync.RWMutex
	projects map[string]*project.Project
	chapters map[string][]region.Chapter
	rois     map[string][]region.ROI
	actions  map[string][]funscript.Action
	settings map[string]*project.Settings
	events   map[string][]*database.EventRecord
	nextID   int64
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		projects: make(map[string]*project.Project),
		chapters: make(map[string][]region.Chapter),
		rois:     make(map[string][]region.ROI),
		actions:  make(map[string][]funscript.Action),
		settings: make(map[string]*project.Settings),
		events:   make(map[string][]*database.EventRecord),
	}
}

func (g *MemoryGateway) SaveProject(p *project.Project) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	g.projects[p.ID] = &cp
	return nil
}

func (g *MemoryGateway) LoadProject(id string) (*project.Project, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.projects[id]
	if !ok {
		return nil, &NotFoundError{Kind: "project", ID: id}
	}
	cp := *p
	return &cp, nil
}

func (g *MemoryGateway) LoadAllProjects() ([]*project.Project, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	projects := make([]*project.Project, 0, len(g.projects))
	for _, p := range g.projects {
		cp := *p
		projects = append(projects, &cp)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

func (g *MemoryGateway) DeleteProject(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.projects[id]; !ok {
		return &NotFoundError{Kind: "project", ID: id}
	}
	delete(g.projects, id)
	delete(g.chapters, id)
	delete(g.rois, id)
	delete(g.actions, id)
	delete(g.settings, id)
	delete(g.events, id)
	return nil
}

func (g *MemoryGateway) SaveChapters(projectID string, chapters []region.Chapter) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chapters[projectID] = append([]region.Chapter(nil), chapters...)
	g.touch(projectID)
	return nil
}

func (g *MemoryGateway) LoadChapters(projectID string) ([]region.Chapter, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	chapters, ok := g.chapters[projectID]
	if !ok {
		return nil, &NotFoundError{Kind: "chapters", ID: projectID}
	}
	return append([]region.Chapter(nil), chapters...), nil
}

func (g *MemoryGateway) SaveROIs(projectID string, rois []region.ROI) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rois[projectID] = append([]region.ROI(nil), rois...)
	g.touch(projectID)
	return nil
}

func (g *MemoryGateway) LoadROIs(projectID string) ([]region.ROI, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rois, ok := g.rois[projectID]
	if !ok {
		return nil, &NotFoundError{Kind: "rois", ID: projectID}
	}
	return append([]region.ROI(nil), rois...), nil
}

func (g *MemoryGateway) SaveActions(projectID string, actions []funscript.Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions[projectID] = append([]funscript.Action(nil), actions...)
	g.touch(projectID)
	return nil
}

func (g *MemoryGateway) LoadActions(projectID string) ([]funscript.Action, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	actions, ok := g.actions[projectID]
	if !ok {
		return nil, &NotFoundError{Kind: "actions", ID: projectID}
	}
	return append([]funscript.Action(nil), actions...), nil
}

func (g *MemoryGateway) SaveSettings(projectID string, settings *project.Settings) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := *settings
	g.settings[projectID] = &cp
	g.touch(projectID)
	return nil
}

func (g *MemoryGateway) LoadSettings(projectID string) (*project.Settings, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	settings, ok := g.settings[projectID]
	if !ok {
		return nil, &NotFoundError{Kind: "settings", ID: projectID}
	}
	cp := *settings
	return &cp, nil
}

func (g *MemoryGateway) ApplyBatch(projectID string, batch *BatchUpdate) error {
	if batch == nil || batch.empty() {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if batch.Chapters != nil {
		g.chapters[projectID] = append([]region.Chapter(nil), batch.Chapters...)
	}
	if batch.ROIs != nil {
		g.rois[projectID] = append([]region.ROI(nil), batch.ROIs...)
	}
	if batch.Actions != nil {
		g.actions[projectID] = append([]funscript.Action(nil), batch.Actions...)
	}
	if batch.Settings != nil {
		cp := *batch.Settings
		g.settings[projectID] = &cp
	}
	g.touch(projectID)
	return nil
}

func (g *MemoryGateway) AppendEvent(projectID, eventType, payload string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	g.events[projectID] = append(g.events[projectID], &database.EventRecord{
		ID:        g.nextID,
		ProjectID: projectID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	return nil
}

func (g *MemoryGateway) Events(projectID string, limit int) ([]*database.EventRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stored := g.events[projectID]
	events := make([]*database.EventRecord, 0, len(stored))
	for i := len(stored) - 1; i >= 0 && len(events) < limit; i-- {
		cp := *stored[i]
		events = append(events, &cp)
	}
	return events, nil
}

func (g *MemoryGateway) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.projects = make(map[string]*project.Project)
	g.chapters = make(map[string][]region.Chapter)
	g.rois = make(map[string][]region.ROI)
	g.actions = make(map[string][]funscript.Action)
	g.settings = make(map[string]*project.Settings)
	g.events = make(map[string][]*database.EventRecord)
	return nil
}

func (g *MemoryGateway) Close() error { return nil }

// touch bumps the project's updated_at if the project exists. Facet
// writes for unknown projects are allowed, matching the SQLite layer.
func (g *MemoryGateway) touch(projectID string) {
	if p, ok := g.projects[projectID]; ok {
		p.UpdatedAt = time.Now()
	}
}
