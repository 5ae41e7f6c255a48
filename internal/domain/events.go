package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskAction string

const (
	ActionRepositioned  TaskAction = "repositioned"
	ActionReparented    TaskAction = "reparented"
	ActionStatusChanged TaskAction = "status_changed"
	ActionDiscarded     TaskAction = "discarded"
	ActionRestored      TaskAction = "restored"
)

// TaskMutatedEvent is published to Redis Pub/Sub after a mutation commits.
// The activity feed and real-time fan-out both consume it; Old and New carry
// JSON snapshots of the fields that changed.
type TaskMutatedEvent struct {
	JobID      uuid.UUID      `json:"job_id"`
	TaskID     uuid.UUID      `json:"task_id"`
	Action     TaskAction     `json:"action"`
	JobVersion int            `json:"job_version"`
	Old        datatypes.JSON `json:"old"`
	New        datatypes.JSON `json:"new"`
}

// TaskSnapshot is the shape marshalled into Old/New.
type TaskSnapshot struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Position int        `json:"position"`
	Status   TaskStatus `json:"status"`
	Version  int        `json:"version"`
}
