// internal/database/models.go
package database

import "time"

// EventRecord is one append-only audit log entry. The log backs the
// project history view and leaves room for undo.
type EventRecord struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	Type      string    `json:"type"` // e.g. "project:saved", "chapter:added"
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
