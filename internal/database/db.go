// internal/database/db.go
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"funedit/internal/funscript"
	"funedit/internal/project"
	"funedit/internal/region"
)

// Database wraps the SQLite database connection. Each persistence facet
// (chapters, ROIs, actions, settings) lives in its own table keyed by
// project id with its own updated_at, so saving one never disturbs the
// others.
type Database struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.init(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// init creates the database schema
func (d *Database) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chapters (
		project_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rois (
		project_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS actions (
		project_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		project_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_project ON events(project_id, created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// ===== Whole-project records =====

// SaveProject saves or replaces a project, refreshing its UpdatedAt.
func (d *Database) SaveProject(p *project.Project) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`
		INSERT OR REPLACE INTO projects (id, data, updated_at)
		VALUES (?, ?, ?)`, p.ID, string(data), now)
	return err
}

// GetProject retrieves a project by id, nil if it does not exist.
func (d *Database) GetProject(id string) (*project.Project, error) {
	var data string
	err := d.db.QueryRow("SELECT data FROM projects WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p := &project.Project{}
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetAllProjects retrieves all projects, most recently updated first.
func (d *Database) GetAllProjects() ([]*project.Project, error) {
	rows, err := d.db.Query("SELECT data FROM projects ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		p := &project.Project{}
		if err := json.Unmarshal([]byte(data), p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject deletes a project and all of its facets and events.
// Returns false if no project with the id existed.
func (d *Database) DeleteProject(id string) (bool, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	for _, table := range []string{"chapters", "rois", "actions", "settings", "events"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE project_id = ?", id); err != nil {
			return false, err
		}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// Clear drops all stored data across every project.
func (d *Database) Clear() (bool, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, table := range []string{"projects", "chapters", "rois", "actions", "settings", "events"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// ===== Facet records =====

type execFunc func(query string, args ...interface{}) (sql.Result, error)

func saveFacet(exec execFunc, table, projectID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = exec(`
		INSERT OR REPLACE INTO `+table+` (project_id, data, updated_at)
		VALUES (?, ?, ?)`, projectID, string(data), time.Now())
	return err
}

func (d *Database) getFacet(table, projectID string, out interface{}) (bool, error) {
	var data string
	err := d.db.QueryRow("SELECT data FROM "+table+" WHERE project_id = ?", projectID).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(data), out)
}

// SaveChapters replaces a project's chapter facet.
func (d *Database) SaveChapters(projectID string, chapters []region.Chapter) error {
	return saveFacet(d.db.Exec, "chapters", projectID, chapters)
}

// GetChapters loads a project's chapter facet. The bool reports whether
// the facet exists.
func (d *Database) GetChapters(projectID string) ([]region.Chapter, bool, error) {
	var chapters []region.Chapter
	ok, err := d.getFacet("chapters", projectID, &chapters)
	return chapters, ok, err
}

// SaveROIs replaces a project's ROI facet.
func (d *Database) SaveROIs(projectID string, rois []region.ROI) error {
	return saveFacet(d.db.Exec, "rois", projectID, rois)
}

// GetROIs loads a project's ROI facet.
func (d *Database) GetROIs(projectID string) ([]region.ROI, bool, error) {
	var rois []region.ROI
	ok, err := d.getFacet("rois", projectID, &rois)
	return rois, ok, err
}

// SaveActions replaces a project's action facet.
func (d *Database) SaveActions(projectID string, actions []funscript.Action) error {
	return saveFacet(d.db.Exec, "actions", projectID, actions)
}

// GetActions loads a project's action facet.
func (d *Database) GetActions(projectID string) ([]funscript.Action, bool, error) {
	var actions []funscript.Action
	ok, err := d.getFacet("actions", projectID, &actions)
	return actions, ok, err
}

// SaveSettings replaces a project's settings facet.
func (d *Database) SaveSettings(projectID string, settings *project.Settings) error {
	return saveFacet(d.db.Exec, "settings", projectID, settings)
}

// GetSettings loads a project's settings facet.
func (d *Database) GetSettings(projectID string) (*project.Settings, bool, error) {
	settings := &project.Settings{}
	ok, err := d.getFacet("settings", projectID, settings)
	if !ok || err != nil {
		return nil, ok, err
	}
	return settings, true, nil
}

// BatchUpdate applies every provided facet (nil means "leave alone") in
// a single transaction, so readers never observe a partial batch.
func (d *Database) BatchUpdate(projectID string, chapters []region.Chapter, rois []region.ROI, actions []funscript.Action, settings *project.Settings) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if chapters != nil {
		if err := saveFacet(tx.Exec, "chapters", projectID, chapters); err != nil {
			return err
		}
	}
	if rois != nil {
		if err := saveFacet(tx.Exec, "rois", projectID, rois); err != nil {
			return err
		}
	}
	if actions != nil {
		if err := saveFacet(tx.Exec, "actions", projectID, actions); err != nil {
			return err
		}
	}
	if settings != nil {
		if err := saveFacet(tx.Exec, "settings", projectID, settings); err != nil {
			return err
		}
	}

	// The whole-project timestamp tracks any facet write.
	if _, err := tx.Exec("UPDATE projects SET updated_at = ? WHERE id = ?", time.Now(), projectID); err != nil {
		return err
	}

	return tx.Commit()
}

// ===== Event log =====

// SaveEvent appends a record to the project's event log.
func (d *Database) SaveEvent(ev *EventRecord) error {
	if ev.ProjectID == "" || ev.Type == "" {
		return fmt.Errorf("event requires project_id and type")
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	res, err := d.db.Exec(`
		INSERT INTO events (project_id, type, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		ev.ProjectID, ev.Type, ev.Payload, ev.CreatedAt.UnixMilli())
	if err != nil {
		return err
	}
	ev.ID, err = res.LastInsertId()
	return err
}

// GetEvents returns up to limit events for a project, newest first.
func (d *Database) GetEvents(projectID string, limit int) ([]*EventRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, type, payload, created_at
		FROM events WHERE project_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		ev := &EventRecord{}
		var createdAt int64
		if err := rows.Scan(&ev.ID, &ev.ProjectID, &ev.Type, &ev.Payload, &createdAt); err != nil {
			return nil, err
		}
		ev.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}
