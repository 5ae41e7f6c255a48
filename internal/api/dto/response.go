package dto

import (
	"time"

	"fieldflow/internal/apperrors"
	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

type CreateJobResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Version int       `json:"version"`
}

type TaskResponse struct {
	ID          uuid.UUID         `json:"id"`
	JobID       uuid.UUID         `json:"job_id"`
	ParentID    *uuid.UUID        `json:"parent_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	Position    int               `json:"position"`
	Version     int               `json:"version"`
}

// MoveResult is the success payload of a single mutation.
type MoveResult struct {
	Status    string     `json:"status"`
	TaskID    uuid.UUID  `json:"task_id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Position  int        `json:"position"`
	Version   int        `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
}

type BatchResult struct {
	Status     string       `json:"status"`
	JobVersion int          `json:"job_version"`
	Results    []MoveResult `json:"results"`
}

// ConflictResponse mirrors the conflict contract: enough authoritative state
// for the client to re-render and retry without a full refetch.
type ConflictResponse struct {
	Conflict     bool                   `json:"conflict"`
	Error        string                 `json:"error"`
	CurrentState apperrors.CurrentState `json:"current_state"`
}

type TaskRow struct {
	ID        uuid.UUID         `json:"id"`
	ParentID  *uuid.UUID        `json:"parent_id"`
	Title     string            `json:"title"`
	Status    domain.TaskStatus `json:"status"`
	Position  int               `json:"position"`
	Version   int               `json:"version"`
	Depth     int               `json:"depth"`
	Discarded bool              `json:"discarded"`
}

type ListTasksResponse struct {
	JobVersion int       `json:"job_version"`
	Tasks      []TaskRow `json:"tasks"`
}
