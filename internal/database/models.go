package database

import (
	"time"
)

// TableSet is one import of the three rule tables.
type TableSet struct {
	ID          int64     `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Source      string    `json:"source"`
	ImportedAt  time.Time `json:"imported_at"`
}

// TableSetStats counts the rows stored for a table set.
type TableSetStats struct {
	MoveableFeasts int `json:"moveable_feasts"`
	EmberDays      int `json:"ember_days"`
	Festivals      int `json:"festivals"`
}
