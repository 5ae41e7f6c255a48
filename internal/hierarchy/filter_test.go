package hierarchy

import (
	"testing"
	"time"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

func TestVisibleStatusFilterKeepsAncestorsOfMatches(t *testing.T) {
	jobID := uuid.New()
	root := makeTask(jobID, nil, "inspect site", 1)
	child := makeTask(jobID, &root.ID, "replace filter", 1)
	child.Status = domain.StatusInProgress
	other := makeTask(jobID, nil, "order parts", 2)

	ix := BuildIndex([]domain.Task{root, child, other})

	rows := Visible(ix, Filter{Statuses: map[domain.TaskStatus]bool{domain.StatusInProgress: true}}, nil)
	if got := rowTitles(rows); !equalStrings(got, []string{"inspect site", "replace filter"}) {
		t.Errorf("visible = %v, want the match and its ancestor", got)
	}
}

func TestVisibleSearchMatchesTitleAndDescription(t *testing.T) {
	jobID := uuid.New()
	a := makeTask(jobID, nil, "Replace compressor", 1)
	b := makeTask(jobID, nil, "Final walkthrough", 2)
	b.Description = "check compressor mounts"
	c := makeTask(jobID, nil, "Invoice customer", 3)

	ix := BuildIndex([]domain.Task{a, b, c})

	rows := Visible(ix, Filter{Search: "COMPRESSOR"}, nil)
	if got := rowTitles(rows); !equalStrings(got, []string{"Replace compressor", "Final walkthrough"}) {
		t.Errorf("visible = %v, want title and description matches", got)
	}
}

func TestVisibleShowDiscardedToggle(t *testing.T) {
	jobID := uuid.New()
	keep := makeTask(jobID, nil, "keep", 1)
	gone := makeTask(jobID, nil, "gone", 2)
	now := time.Now()
	gone.DiscardedAt = &now

	ix := BuildIndex([]domain.Task{keep, gone})

	if got := rowTitles(Visible(ix, Filter{}, nil)); !equalStrings(got, []string{"keep"}) {
		t.Errorf("default visible = %v, want [keep]", got)
	}
	if got := rowTitles(Visible(ix, Filter{ShowDiscarded: true}, nil)); !equalStrings(got, []string{"keep", "gone"}) {
		t.Errorf("with discarded = %v, want [keep gone]", got)
	}
}

func TestSelectionToggleAndAnchor(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sel := NewSelection()

	sel.Toggle(a)
	sel.Toggle(b)
	if !sel.Has(a) || !sel.Has(b) || sel.Len() != 2 {
		t.Fatal("toggle should accumulate")
	}

	sel.Toggle(b)
	if sel.Has(b) || sel.Len() != 1 {
		t.Error("second toggle should remove")
	}
}

func TestSelectionSetReplaces(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sel := NewSelection()

	sel.Toggle(a)
	sel.Set(b)
	if sel.Has(a) || !sel.Has(b) || sel.Len() != 1 {
		t.Error("set should replace the selection")
	}
}

func TestSelectionRangeSelectsBetweenAnchorAndTarget(t *testing.T) {
	jobID := uuid.New()
	tasks := []domain.Task{
		makeTask(jobID, nil, "one", 1),
		makeTask(jobID, nil, "two", 2),
		makeTask(jobID, nil, "three", 3),
		makeTask(jobID, nil, "four", 4),
	}
	ix := BuildIndex(tasks)
	visible := Visible(ix, Filter{}, nil)

	sel := NewSelection()
	sel.Set(visible[0].Task.ID)
	sel.RangeTo(visible[2].Task.ID, visible)

	if sel.Len() != 3 {
		t.Fatalf("selected %d, want 3", sel.Len())
	}
	if sel.Has(visible[3].Task.ID) {
		t.Error("range must not reach past the target")
	}

	// Reversed direction selects the same span.
	sel2 := NewSelection()
	sel2.Set(visible[2].Task.ID)
	sel2.RangeTo(visible[0].Task.ID, visible)
	if sel2.Len() != 3 || !sel2.Has(visible[1].Task.ID) {
		t.Error("reverse range should select the same span")
	}
}

func TestSelectionRangeWithoutAnchorFallsBackToSet(t *testing.T) {
	jobID := uuid.New()
	tasks := []domain.Task{makeTask(jobID, nil, "one", 1), makeTask(jobID, nil, "two", 2)}
	ix := BuildIndex(tasks)
	visible := Visible(ix, Filter{}, nil)

	sel := NewSelection()
	sel.RangeTo(visible[1].Task.ID, visible)
	if sel.Len() != 1 || !sel.Has(visible[1].Task.ID) {
		t.Error("range without anchor should degrade to a single select")
	}
}
