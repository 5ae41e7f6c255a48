package apperrors

import (
	"errors"
	"net/http"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

var (
	// ErrVersionConflict: a supplied version stamp no longer matches stored
	// state. Recoverable; the client reconciles with the returned snapshot.
	ErrVersionConflict = &Exception{
		Message:    "version conflict",
		StatusCode: http.StatusConflict,
	}

	// ErrInvalidHierarchy: the proposed parent would create a cycle or cross
	// a job boundary. Never retried automatically.
	ErrInvalidHierarchy = &Exception{
		Message:    "invalid hierarchy",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrNotFound = &Exception{
		Message:    "not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidStatus = &Exception{
		Message:    "invalid status",
		StatusCode: http.StatusBadRequest,
	}

	// ErrApplyFailed: the underlying store failed during the atomic apply
	// step. State is unchanged; distinct from a version conflict.
	ErrApplyFailed = &Exception{
		Message:    "apply failed, state unchanged",
		StatusCode: http.StatusInternalServerError,
	}
)

// TaskState is one entry of the authoritative snapshot returned on conflict.
type TaskState struct {
	ID       uuid.UUID         `json:"id"`
	Position int               `json:"position"`
	ParentID *uuid.UUID        `json:"parent_id"`
	Version  int               `json:"version"`
	Title    string            `json:"title"`
	Status   domain.TaskStatus `json:"status"`
}

type CurrentState struct {
	JobVersion int         `json:"job_version"`
	Tasks      []TaskState `json:"tasks"`
}

// ConflictError carries the authoritative current state of everything the
// rejected request referenced, so the client can re-render and retry the
// same gesture without a full refetch.
type ConflictError struct {
	Message string
	State   CurrentState
}

func (e *ConflictError) Error() string { return e.Message }

// Unwrap lets errors.Is/As treat a ConflictError as a version conflict.
func (e *ConflictError) Unwrap() error { return ErrVersionConflict }

func NewConflict(message string, state CurrentState) *ConflictError {
	return &ConflictError{Message: message, State: state}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
