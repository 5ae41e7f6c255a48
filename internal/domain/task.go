package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in_progress"
	StatusPaused     TaskStatus = "paused"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Task is a node in a per-job ordered forest. Position is unique among
// active siblings sharing the same (JobID, ParentID) and defines sibling
// order ascending. Version is the optimistic-concurrency stamp: every
// mutation of the row increments it, and a write citing a stale version
// must be rejected.
type Task struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key"`
	JobID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`

	Title       string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Status      TaskStatus `gorm:"type:varchar(20);index;default:'new'"`

	Position int `gorm:"not null"`
	Version  int `gorm:"default:1"`

	// DiscardedAt marks a soft-deleted task. Descendants are not cascade
	// deleted: they keep their ParentID so a restore re-attaches them.
	DiscardedAt *time.Time `gorm:"index"`
	ReorderedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewTask(jobID uuid.UUID, parentID *uuid.UUID, title string) *Task {
	now := time.Now()
	return &Task{
		ID:          uuid.New(),
		JobID:       jobID,
		ParentID:    parentID,
		Title:       title,
		Status:      StatusNew,
		Version:     1,
		ReorderedAt: now,
		CreatedAt:   now,
	}
}

func (t *Task) Discarded() bool {
	return t.DiscardedAt != nil
}

// SameParent reports whether both tasks sit in the same sibling group.
func (t *Task) SameParent(other *Task) bool {
	if t.ParentID == nil || other.ParentID == nil {
		return t.ParentID == nil && other.ParentID == nil
	}
	return *t.ParentID == *other.ParentID
}
