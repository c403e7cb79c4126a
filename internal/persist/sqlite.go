// internal/persist/sqlite.go
package persist

import (
	"funedit/internal/database"
	"funedit/internal/funscript"
	"funedit/internal/project"
	"funedit/internal/region"
)

// SQLiteGateway persists through the SQLite database layer.
type SQLiteGateway struct {
	db *database.Database
}

// NewSQLiteGateway opens (or creates) the database at path.
func NewSQLiteGateway(path string) (*SQLiteGateway, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return &SQLiteGateway{db: db}, nil
}

// WrapDatabase builds a gateway over an already-open database.
func WrapDatabase(db *database.Database) *SQLiteGateway {
	return &SQLiteGateway{db: db}
}

func (g *SQLiteGateway) SaveProject(p *project.Project) error {
	if err := g.db.SaveProject(p); err != nil {
		return &StorageError{Op: "save project", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) LoadProject(id string) (*project.Project, error) {
	p, err := g.db.GetProject(id)
	if err != nil {
		return nil, &StorageError{Op: "load project", Err: err}
	}
	if p == nil {
		return nil, &NotFoundError{Kind: "project", ID: id}
	}
	return p, nil
}

func (g *SQLiteGateway) LoadAllProjects() ([]*project.Project, error) {
	projects, err := g.db.GetAllProjects()
	if err != nil {
		return nil, &StorageError{Op: "load projects", Err: err}
	}
	return projects, nil
}

func (g *SQLiteGateway) DeleteProject(id string) error {
	deleted, err := g.db.DeleteProject(id)
	if err != nil {
		return &StorageError{Op: "delete project", Err: err}
	}
	if !deleted {
		return &NotFoundError{Kind: "project", ID: id}
	}
	return nil
}

func (g *SQLiteGateway) SaveChapters(projectID string, chapters []region.Chapter) error {
	if err := g.db.SaveChapters(projectID, chapters); err != nil {
		return &StorageError{Op: "save chapters", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) LoadChapters(projectID string) ([]region.Chapter, error) {
	chapters, ok, err := g.db.GetChapters(projectID)
	if err != nil {
		return nil, &StorageError{Op: "load chapters", Err: err}
	}
	if !ok {
		return nil, &NotFoundError{Kind: "chapters", ID: projectID}
	}
	return chapters, nil
}

func (g *SQLiteGateway) SaveROIs(projectID string, rois []region.ROI) error {
	if err := g.db.SaveROIs(projectID, rois); err != nil {
		return &StorageError{Op: "save rois", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) LoadROIs(projectID string) ([]region.ROI, error) {
	rois, ok, err := g.db.GetROIs(projectID)
	if err != nil {
		return nil, &StorageError{Op: "load rois", Err: err}
	}
	if !ok {
		return nil, &NotFoundError{Kind: "rois", ID: projectID}
	}
	return rois, nil
}

func (g *SQLiteGateway) SaveActions(projectID string, actions []funscript.Action) error {
	if err := g.db.SaveActions(projectID, actions); err != nil {
		return &StorageError{Op: "save actions", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) LoadActions(projectID string) ([]funscript.Action, error) {
	actions, ok, err := g.db.GetActions(projectID)
	if err != nil {
		return nil, &StorageError{Op: "load actions", Err: err}
	}
	if !ok {
		return nil, &NotFoundError{Kind: "actions", ID: projectID}
	}
	return actions, nil
}

func (g *SQLiteGateway) SaveSettings(projectID string, settings *project.Settings) error {
	if err := g.db.SaveSettings(projectID, settings); err != nil {
		return &StorageError{Op: "save settings", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) LoadSettings(projectID string) (*project.Settings, error) {
	settings, ok, err := g.db.GetSettings(projectID)
	if err != nil {
		return nil, &StorageError{Op: "load settings", Err: err}
	}
	if !ok {
		return nil, &NotFoundError{Kind: "settings", ID: projectID}
	}
	return settings, nil
}

func (g *SQLiteGateway) ApplyBatch(projectID string, batch *BatchUpdate) error {
	if batch == nil || batch.empty() {
		return nil
	}
	err := g.db.BatchUpdate(projectID, batch.Chapters, batch.ROIs, batch.Actions, batch.Settings)
	if err != nil {
		return &StorageError{Op: "batch update", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) AppendEvent(projectID, eventType, payload string) error {
	ev := &database.EventRecord{ProjectID: projectID, Type: eventType, Payload: payload}
	if err := g.db.SaveEvent(ev); err != nil {
		return &StorageError{Op: "append event", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) Events(projectID string, limit int) ([]*database.EventRecord, error) {
	events, err := g.db.GetEvents(projectID, limit)
	if err != nil {
		return nil, &StorageError{Op: "load events", Err: err}
	}
	return events, nil
}

func (g *SQLiteGateway) Clear() error {
	if _, err := g.db.Clear(); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}

func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}
