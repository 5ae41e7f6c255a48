package sequence

import (
	"testing"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

func statusGroup(statuses ...domain.TaskStatus) []*domain.Task {
	jobID := uuid.New()
	out := make([]*domain.Task, len(statuses))
	for i, s := range statuses {
		t := domain.NewTask(jobID, nil, "t")
		t.Status = s
		t.Position = i + 1
		out[i] = t
	}
	return out
}

func TestStatusPriorityOrder(t *testing.T) {
	order := []domain.TaskStatus{
		domain.StatusInProgress,
		domain.StatusPaused,
		domain.StatusNew,
		domain.StatusCompleted,
		domain.StatusCancelled,
	}
	for i := 0; i < len(order)-1; i++ {
		if StatusPriority(order[i], order[i+1]) >= 0 {
			t.Errorf("%s should sort before %s", order[i], order[i+1])
		}
	}
	if StatusPriority(domain.StatusPaused, domain.StatusPaused) != 0 {
		t.Error("equal statuses should compare equal")
	}
}

// A task entering in_progress lands immediately before the first
// paused-or-later sibling.
func TestInsertionPointBeforeFirstLaterTier(t *testing.T) {
	siblings := statusGroup(domain.StatusInProgress, domain.StatusPaused, domain.StatusCompleted)

	prev, next := InsertionPoint(siblings, domain.StatusInProgress, StatusPriority)
	if prev != siblings[0] {
		t.Error("prev should be the existing in_progress sibling")
	}
	if next != siblings[1] {
		t.Error("next should be the first paused sibling")
	}
}

// Insertion at the end of the tier preserves relative order within it.
func TestInsertionPointAppendsWithinTier(t *testing.T) {
	siblings := statusGroup(domain.StatusInProgress, domain.StatusInProgress)

	prev, next := InsertionPoint(siblings, domain.StatusInProgress, StatusPriority)
	if prev != siblings[1] {
		t.Error("prev should be the last same-tier sibling")
	}
	if next != nil {
		t.Error("no later tier exists, next should be nil")
	}
}

func TestInsertionPointAtFront(t *testing.T) {
	siblings := statusGroup(domain.StatusNew, domain.StatusCompleted)

	prev, next := InsertionPoint(siblings, domain.StatusInProgress, StatusPriority)
	if prev != nil {
		t.Error("nothing sorts before in_progress here, prev should be nil")
	}
	if next != siblings[0] {
		t.Error("next should be the first later-tier sibling")
	}
}

func TestInsertionPointEmptyGroup(t *testing.T) {
	prev, next := InsertionPoint(nil, domain.StatusNew, StatusPriority)
	if prev != nil || next != nil {
		t.Error("empty group has no flanks")
	}
}
