package hierarchy

import (
	"testing"
	"time"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

func makeTask(jobID uuid.UUID, parent *uuid.UUID, title string, pos int) domain.Task {
	t := domain.NewTask(jobID, parent, title)
	t.Position = pos
	return *t
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func rowTitles(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Task.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// buildForest is root a (children a1, a2) and root b, positions 1..N per group.
func buildForest() ([]domain.Task, uuid.UUID) {
	jobID := uuid.New()
	a := makeTask(jobID, nil, "a", 1)
	b := makeTask(jobID, nil, "b", 2)
	a1 := makeTask(jobID, &a.ID, "a1", 1)
	a2 := makeTask(jobID, &a.ID, "a2", 2)
	return []domain.Task{b, a2, a, a1}, jobID // deliberately unsorted
}

func TestBuildIndexOrdersChildrenByPosition(t *testing.T) {
	tasks, _ := buildForest()
	ix := BuildIndex(tasks)

	if got := titles(ix.Roots()); !equalStrings(got, []string{"a", "b"}) {
		t.Errorf("roots = %v, want [a b]", got)
	}

	a, _ := ix.Get(tasks[2].ID)
	if got := titles(ix.Children(&a.ID)); !equalStrings(got, []string{"a1", "a2"}) {
		t.Errorf("children of a = %v, want [a1 a2]", got)
	}
}

func TestAncestorsWalksToRoot(t *testing.T) {
	jobID := uuid.New()
	root := makeTask(jobID, nil, "root", 1)
	mid := makeTask(jobID, &root.ID, "mid", 1)
	leaf := makeTask(jobID, &mid.ID, "leaf", 1)

	ix := BuildIndex([]domain.Task{root, mid, leaf})

	chain := ix.Ancestors(leaf.ID)
	if got := titles(chain); !equalStrings(got, []string{"mid", "root"}) {
		t.Errorf("ancestors = %v, want [mid root]", got)
	}

	if !ix.IsDescendant(leaf.ID, root.ID) {
		t.Error("leaf should be a descendant of root")
	}
	if ix.IsDescendant(root.ID, leaf.ID) {
		t.Error("root must not be a descendant of leaf")
	}
}

func TestOrphanOfDiscardedParentIsDisplayRoot(t *testing.T) {
	jobID := uuid.New()
	parent := makeTask(jobID, nil, "parent", 1)
	now := time.Now()
	parent.DiscardedAt = &now
	child := makeTask(jobID, &parent.ID, "child", 1)

	ix := BuildIndex([]domain.Task{parent, child})

	if got := titles(ix.Roots()); !equalStrings(got, []string{"child"}) {
		t.Errorf("roots = %v, want [child]", got)
	}

	// Stored parent link survives for a later restore.
	got, _ := ix.Get(child.ID)
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Error("orphan's stored parent_id must not be rewritten")
	}
	if ix.DisplayParent(got) != nil {
		t.Error("orphan's display parent should be nil")
	}
}

func TestFlattenPreOrderWithDepth(t *testing.T) {
	tasks, _ := buildForest()
	ix := BuildIndex(tasks)

	rows := ix.Flatten(FlattenOptions{})
	if got := rowTitles(rows); !equalStrings(got, []string{"a", "a1", "a2", "b"}) {
		t.Fatalf("flatten = %v, want [a a1 a2 b]", got)
	}

	wantDepths := []int{0, 1, 1, 0}
	for i, row := range rows {
		if row.Depth != wantDepths[i] {
			t.Errorf("depth of %s = %d, want %d", row.Task.Title, row.Depth, wantDepths[i])
		}
	}
}

func TestFlattenCollapsedSkipsSubtree(t *testing.T) {
	tasks, _ := buildForest()
	ix := BuildIndex(tasks)
	aID := tasks[2].ID

	rows := ix.Flatten(FlattenOptions{Collapsed: map[uuid.UUID]bool{aID: true}})
	if got := rowTitles(rows); !equalStrings(got, []string{"a", "b"}) {
		t.Errorf("collapsed flatten = %v, want [a b]", got)
	}
}

func TestFlattenIncludeDiscardedMergesByPosition(t *testing.T) {
	jobID := uuid.New()
	first := makeTask(jobID, nil, "first", 1)
	gone := makeTask(jobID, nil, "gone", 2)
	now := time.Now()
	gone.DiscardedAt = &now
	last := makeTask(jobID, nil, "last", 3)

	ix := BuildIndex([]domain.Task{first, gone, last})

	if got := rowTitles(ix.Flatten(FlattenOptions{})); !equalStrings(got, []string{"first", "last"}) {
		t.Errorf("default flatten = %v, want [first last]", got)
	}
	if got := rowTitles(ix.Flatten(FlattenOptions{IncludeDiscarded: true})); !equalStrings(got, []string{"first", "gone", "last"}) {
		t.Errorf("discarded flatten = %v, want [first gone last]", got)
	}
}
