package hierarchy

import "fieldflow/internal/domain"

// Renumbered is a sibling whose position must be rewritten by a renumbering
// pass. Every touched sibling gets its version and reordered_at bumped, not
// only the moved task.
type Renumbered struct {
	Task     *domain.Task
	Position int
}

// Allocation is the outcome of a position grab: one slot per inserted task,
// plus any sibling rewrites a renumbering pass required.
type Allocation struct {
	Positions  []int
	Renumbered []Renumbered
}

// Allocate computes a position for a single task inserted between prev and
// next in the given sibling group. Either flank may be nil: nil prev inserts
// at the minimum, nil next appends past the maximum. The group must be
// ordered by position and must not contain the task being placed.
func Allocate(siblings []*domain.Task, prev, next *domain.Task) Allocation {
	return AllocateRun(siblings, prev, next, 1)
}

// AllocateRun allocates n consecutive slots at the same spot. Positions stay
// small integers: when consecutive values leave no gap the whole sibling
// group is renumbered 1..N by current order, trading occasional O(siblings)
// cost for queryability. Never produces a duplicate within the group.
func AllocateRun(siblings []*domain.Task, prev, next *domain.Task, n int) Allocation {
	if n <= 0 {
		return Allocation{}
	}

	idx := insertionIndex(siblings, prev, next)

	if len(siblings) == 0 {
		return Allocation{Positions: run(1, n)}
	}

	switch {
	case idx == len(siblings):
		// Appending always fits.
		return Allocation{Positions: run(siblings[len(siblings)-1].Position+1, n)}
	case idx == 0:
		if first := siblings[0].Position; first > n {
			return Allocation{Positions: run(first-n, n)}
		}
	default:
		lo, hi := siblings[idx-1].Position, siblings[idx].Position
		if hi-lo-1 >= n {
			return Allocation{Positions: run(lo+1, n)}
		}
	}

	return renumber(siblings, idx, n)
}

// insertionIndex locates the slot in the ordered group: directly after prev
// when given, else directly before next, else at the end.
func insertionIndex(siblings []*domain.Task, prev, next *domain.Task) int {
	if prev != nil {
		for i, s := range siblings {
			if s.ID == prev.ID {
				return i + 1
			}
		}
	}
	if next != nil {
		for i, s := range siblings {
			if s.ID == next.ID {
				return i
			}
		}
	}
	return len(siblings)
}

// renumber reassigns the group 1..N in current order with n fresh slots
// opened at idx. Siblings already holding their final position are left
// untouched so their versions do not churn.
func renumber(siblings []*domain.Task, idx, n int) Allocation {
	var alloc Allocation
	pos := 1
	for i := 0; i <= len(siblings); i++ {
		if i == idx {
			for k := 0; k < n; k++ {
				alloc.Positions = append(alloc.Positions, pos)
				pos++
			}
		}
		if i < len(siblings) {
			if siblings[i].Position != pos {
				alloc.Renumbered = append(alloc.Renumbered, Renumbered{Task: siblings[i], Position: pos})
			}
			pos++
		}
	}
	return alloc
}

func run(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
