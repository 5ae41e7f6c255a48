package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job owns a forest of tasks. Its Version is a per-job lock stamp: it
// increments whenever any task under it is structurally mutated, so a batch
// can detect concurrent edits to siblings it never touched directly.
type Job struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(200);not null"`

	Version int `gorm:"default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- FACTORY ---
func NewJob(name string) *Job {
	return &Job{
		ID:        uuid.New(),
		Name:      name,
		Version:   1,
		CreatedAt: time.Now(),
	}
}
