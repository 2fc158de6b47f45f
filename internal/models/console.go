// Package models defines GORM data models for EffectLab.
package models

import (
	"time"
)

// ConsoleEntry is one line a demo component wrote to its console.
// Entries are scoped to a visitor session and purged when it expires.
type ConsoleEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SessionID string `gorm:"index:idx_console_session_route;not null" json:"-"`
	Route     string `gorm:"index:idx_console_session_route;not null" json:"route"`
	Variant   string `json:"variant"`

	Level   string `gorm:"not null" json:"level"` // log | warn | error
	Message string `json:"message"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
