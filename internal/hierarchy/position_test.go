package hierarchy

import (
	"testing"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

func group(positions ...int) []*domain.Task {
	jobID := uuid.New()
	out := make([]*domain.Task, len(positions))
	for i, p := range positions {
		t := domain.NewTask(jobID, nil, "t")
		t.Position = p
		out[i] = t
	}
	return out
}

func assertNoDuplicates(t *testing.T, siblings []*domain.Task, alloc Allocation) {
	t.Helper()
	final := make(map[int]bool)
	renumbered := make(map[uuid.UUID]int)
	for _, rn := range alloc.Renumbered {
		renumbered[rn.Task.ID] = rn.Position
	}
	for _, s := range siblings {
		pos := s.Position
		if p, ok := renumbered[s.ID]; ok {
			pos = p
		}
		if final[pos] {
			t.Fatalf("duplicate position %d in sibling group", pos)
		}
		final[pos] = true
	}
	for _, p := range alloc.Positions {
		if final[p] {
			t.Fatalf("allocated position %d collides with a sibling", p)
		}
		final[p] = true
	}
}

func TestAllocateIntoEmptyGroup(t *testing.T) {
	alloc := Allocate(nil, nil, nil)
	if len(alloc.Positions) != 1 || alloc.Positions[0] != 1 {
		t.Errorf("positions = %v, want [1]", alloc.Positions)
	}
	if len(alloc.Renumbered) != 0 {
		t.Errorf("empty group must not renumber")
	}
}

func TestAllocateAppendsPastMax(t *testing.T) {
	siblings := group(1, 2, 5)
	alloc := Allocate(siblings, siblings[2], nil)
	if alloc.Positions[0] != 6 {
		t.Errorf("append position = %d, want 6", alloc.Positions[0])
	}
	if len(alloc.Renumbered) != 0 {
		t.Error("append must never renumber")
	}
}

func TestAllocateBeforeMinUsesGap(t *testing.T) {
	siblings := group(3, 4)
	alloc := Allocate(siblings, nil, siblings[0])
	if alloc.Positions[0] != 2 {
		t.Errorf("prepend position = %d, want 2", alloc.Positions[0])
	}
	if len(alloc.Renumbered) != 0 {
		t.Error("prepend with room must not renumber")
	}
}

func TestAllocateBetweenUsesGap(t *testing.T) {
	siblings := group(1, 5)
	alloc := Allocate(siblings, siblings[0], siblings[1])
	if alloc.Positions[0] != 2 {
		t.Errorf("position = %d, want 2", alloc.Positions[0])
	}
	if len(alloc.Renumbered) != 0 {
		t.Error("insert into a gap must not renumber")
	}
	assertNoDuplicates(t, siblings, alloc)
}

func TestAllocateRenumbersWhenNoGap(t *testing.T) {
	siblings := group(1, 2, 3)
	alloc := Allocate(siblings, siblings[0], siblings[1])

	if alloc.Positions[0] != 2 {
		t.Errorf("position = %d, want 2", alloc.Positions[0])
	}
	// First sibling already holds position 1; only the latter two move.
	if len(alloc.Renumbered) != 2 {
		t.Fatalf("renumbered %d siblings, want 2", len(alloc.Renumbered))
	}
	if alloc.Renumbered[0].Position != 3 || alloc.Renumbered[1].Position != 4 {
		t.Errorf("renumbered positions = %d,%d, want 3,4", alloc.Renumbered[0].Position, alloc.Renumbered[1].Position)
	}
	assertNoDuplicates(t, siblings, alloc)
}

func TestAllocateRenumbersAtMinWithoutRoom(t *testing.T) {
	siblings := group(1, 2)
	alloc := Allocate(siblings, nil, siblings[0])

	if alloc.Positions[0] != 1 {
		t.Errorf("position = %d, want 1", alloc.Positions[0])
	}
	if len(alloc.Renumbered) != 2 {
		t.Fatalf("renumbered %d siblings, want 2", len(alloc.Renumbered))
	}
	assertNoDuplicates(t, siblings, alloc)
}

func TestAllocateRunTakesConsecutiveSlots(t *testing.T) {
	siblings := group(1, 10)
	alloc := AllocateRun(siblings, siblings[0], siblings[1], 3)

	want := []int{2, 3, 4}
	for i, p := range alloc.Positions {
		if p != want[i] {
			t.Errorf("positions = %v, want %v", alloc.Positions, want)
			break
		}
	}
	assertNoDuplicates(t, siblings, alloc)
}

func TestAllocateRunRenumbersWhenGapTooSmall(t *testing.T) {
	siblings := group(1, 2)
	alloc := AllocateRun(siblings, siblings[0], siblings[1], 2)

	want := []int{2, 3}
	for i, p := range alloc.Positions {
		if p != want[i] {
			t.Errorf("positions = %v, want %v", alloc.Positions, want)
			break
		}
	}
	assertNoDuplicates(t, siblings, alloc)
}
