// Package sequence holds the status auto-sequencing policy: when enabled for
// a user, a status transition re-slots the task among its siblings by status
// priority. The comparator is a pluggable strategy so the position
// allocator's renumbering stays independent of status semantics.
package sequence

import "fieldflow/internal/domain"

// Comparator orders two statuses; negative means a sorts before b.
type Comparator func(a, b domain.TaskStatus) int

// StatusPriority is the default policy: active work floats up, finished work
// sinks. Unknown statuses rank with new.
func StatusPriority(a, b domain.TaskStatus) int {
	return rank(a) - rank(b)
}

func rank(s domain.TaskStatus) int {
	switch s {
	case domain.StatusInProgress:
		return 0
	case domain.StatusPaused:
		return 1
	case domain.StatusNew:
		return 2
	case domain.StatusCompleted:
		return 3
	case domain.StatusCancelled:
		return 4
	default:
		return 2
	}
}

// InsertionPoint finds the flanks for a task entering newStatus among its
// ordered siblings (the moving task excluded): after the last sibling of the
// same-or-earlier tier, before the first later one. Relative order within a
// tier is preserved because insertion lands at the tier's end.
func InsertionPoint(siblings []*domain.Task, newStatus domain.TaskStatus, cmp Comparator) (prev, next *domain.Task) {
	for _, s := range siblings {
		if cmp(s.Status, newStatus) <= 0 {
			prev = s
			continue
		}
		next = s
		break
	}
	return prev, next
}
