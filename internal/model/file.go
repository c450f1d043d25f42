package model

import (
	"time"

	"gorm.io/gorm"
)

// SharedFile describes one team-shared file tracked by the registry. The
// sync metadata is refreshed after every successful push; the row itself is
// created and removed only through registry management commands.
type SharedFile struct {
	gorm.Model
	Path       string    `gorm:"uniqueIndex;not null" json:"path"`
	Version    string    `json:"version"`
	ModifiedBy string    `json:"modified_by"`
	ModifiedAt time.Time `json:"modified_at"`
	SizeBytes  int64     `json:"size_bytes"`
}
