package domain

import "time"

// Entry is one audit event: who did what to which entity, with free-form
// metadata. Entries are append-only; nothing updates or deletes them.
type Entry struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	UserID     string
	Metadata   map[string]string
	CreatedAt  time.Time
}
