package dto

import "github.com/google/uuid"

type CreateJobRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTaskRequest struct {
	ParentID    *uuid.UUID `json:"parent_id"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
}

// Version fields are pointers throughout: a missing version means "skip the
// optimistic check", the compatibility carve-out for older callers.

type ReorderRequest struct {
	TargetPosition *int `json:"target_position" binding:"required"`
	TaskVersion    *int `json:"task_version"`
}

type ReparentRequest struct {
	ParentID       *uuid.UUID `json:"parent_id"`
	TargetPosition *int       `json:"target_position" binding:"required"`
	TaskVersion    *int       `json:"task_version"`
}

// BatchReorderItem moves one task; target_parent_id null means the root
// group, so pure reorders must cite the current parent.
type BatchReorderItem struct {
	TaskID         uuid.UUID  `json:"task_id" binding:"required"`
	TargetPosition *int       `json:"target_position" binding:"required"`
	TargetParentID *uuid.UUID `json:"target_parent_id"`
	TaskVersion    *int       `json:"task_version"`
}

type BatchReorderRequest struct {
	JobVersion *int               `json:"job_version"`
	Items      []BatchReorderItem `json:"items" binding:"required,min=1,dive"`
}

// DropRequest is the drag-and-drop gesture: the dragged selection plus the
// two visible neighbors it was dropped between. The engine re-resolves
// adjacency against the full tree; the ids here only name the gap.
type DropRequest struct {
	DroppedIDs   []uuid.UUID       `json:"dropped_ids" binding:"required,min=1"`
	PreviousID   *uuid.UUID        `json:"previous_id"`
	NextID       *uuid.UUID        `json:"next_id"`
	ForceNestID  *uuid.UUID        `json:"force_nest_id"`
	JobVersion   *int              `json:"job_version"`
	TaskVersions map[uuid.UUID]int `json:"task_versions"`
}

type ChangeStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	TaskVersion  *int   `json:"task_version"`
	AutoSequence bool   `json:"auto_sequence"`
}

type DiscardRequest struct {
	TaskVersion *int `json:"task_version"`
}
