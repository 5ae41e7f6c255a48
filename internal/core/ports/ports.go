package ports

import (
	"context"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

// TaskWrite is one row of an atomic mutation plan. ExpectedVersion nil skips
// the optimistic check - the documented legacy carve-out, never the default
// for new callers.
type TaskWrite struct {
	TaskID   uuid.UUID
	ParentID *uuid.UUID
	Position int

	// Status, when set, transitions the task's status in the same write.
	Status *domain.TaskStatus
	// Discard true soft-deletes the row, false restores it; nil leaves it.
	Discard *bool
	// Repositioned marks a position mutation so reordered_at is stamped.
	Repositioned bool

	ExpectedVersion *int
}

// MutationPlan is the unit the Reorder Conflict Controller commits: every
// write applies or none does. Structural plans also bump the owning job's
// version stamp (and check it, when supplied) in the same transaction.
type MutationPlan struct {
	JobID              uuid.UUID
	ExpectedJobVersion *int
	Writes             []TaskWrite
}

// Structural reports whether the plan repositions anything. Status-only and
// discard plans are not structural and must not advance the job stamp.
func (p MutationPlan) Structural() bool {
	for _, w := range p.Writes {
		if w.Repositioned {
			return true
		}
	}
	return false
}

// TaskRepository is the persistence boundary for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByJob returns the job's tasks ordered by position; the engine
	// rebuilds its hierarchy index from this on every request.
	ListByJob(ctx context.Context, jobID uuid.UUID, includeDiscarded bool) ([]domain.Task, error)

	// ApplyPlan commits the plan as one transaction. Any stale version stamp
	// (job or task) aborts the whole plan with a version conflict; the new
	// job version is returned on success.
	ApplyPlan(ctx context.Context, plan MutationPlan) (int, error)
}

// JobRepository is the persistence boundary for jobs.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

// EventBus carries post-commit mutation events to other viewers and the
// activity feed.
type EventBus interface {
	PublishTaskMutated(ctx context.Context, event domain.TaskMutatedEvent) error

	SubscribeToTaskEvents(ctx context.Context) (<-chan domain.TaskMutatedEvent, error)
}
