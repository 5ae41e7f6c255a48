package hierarchy

import (
	"sort"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

// Index is a derived, per-request view of one job's tasks as an ordered
// forest. It is rebuilt from a fresh read on every mutation request and is
// never the source of truth; parent/child links are expressed by id
// reference into a flat map, so re-parenting is O(1) in storage.
type Index struct {
	byID map[uuid.UUID]*domain.Task

	// children holds active tasks keyed by display parent; uuid.Nil keys the
	// root group. An active task whose stored parent is missing or discarded
	// is listed under uuid.Nil for display, with its ParentID untouched.
	children  map[uuid.UUID][]*domain.Task
	discarded map[uuid.UUID][]*domain.Task
}

// Row is one entry of a flattened, depth-annotated pre-order sequence.
type Row struct {
	Task  *domain.Task
	Depth int
}

type FlattenOptions struct {
	// Collapsed nodes are emitted but their subtrees are skipped.
	Collapsed map[uuid.UUID]bool
	// IncludeDiscarded merges soft-deleted tasks back into the walk.
	IncludeDiscarded bool
}

// BuildIndex builds the view in O(n) from a flat task list (active and
// discarded). Child order is position ascending, racing updates broken by
// reordered_at, then id.
func BuildIndex(tasks []domain.Task) *Index {
	ix := &Index{
		byID:      make(map[uuid.UUID]*domain.Task, len(tasks)),
		children:  make(map[uuid.UUID][]*domain.Task),
		discarded: make(map[uuid.UUID][]*domain.Task),
	}

	for i := range tasks {
		t := &tasks[i]
		ix.byID[t.ID] = t
	}

	for i := range tasks {
		t := &tasks[i]
		if t.Discarded() {
			key := childKey(t.ParentID)
			ix.discarded[key] = append(ix.discarded[key], t)
			continue
		}
		key := ix.displayKey(t)
		ix.children[key] = append(ix.children[key], t)
	}

	for key := range ix.children {
		sortByPosition(ix.children[key])
	}
	for key := range ix.discarded {
		sortByPosition(ix.discarded[key])
	}

	return ix
}

func childKey(parentID *uuid.UUID) uuid.UUID {
	if parentID == nil {
		return uuid.Nil
	}
	return *parentID
}

// displayKey resolves the parent group an active task is shown under. A task
// whose parent is absent or discarded renders as a root; its stored ParentID
// is not rewritten.
func (ix *Index) displayKey(t *domain.Task) uuid.UUID {
	if t.ParentID == nil {
		return uuid.Nil
	}
	parent, ok := ix.byID[*t.ParentID]
	if !ok || parent.Discarded() {
		return uuid.Nil
	}
	return *t.ParentID
}

// DisplayParent returns the parent id the task is shown under, nil for
// display roots (true roots and orphans of discarded parents alike).
func (ix *Index) DisplayParent(t *domain.Task) *uuid.UUID {
	key := ix.displayKey(t)
	if key == uuid.Nil {
		return nil
	}
	id := key
	return &id
}

func (ix *Index) Get(id uuid.UUID) (*domain.Task, bool) {
	t, ok := ix.byID[id]
	return t, ok
}

// Children returns the active children of parentID ordered by position;
// nil parentID returns the root group.
func (ix *Index) Children(parentID *uuid.UUID) []*domain.Task {
	return ix.children[childKey(parentID)]
}

func (ix *Index) Roots() []*domain.Task {
	return ix.children[uuid.Nil]
}

// Siblings returns the ordered display group the task belongs to, the task
// itself included.
func (ix *Index) Siblings(t *domain.Task) []*domain.Task {
	return ix.children[ix.displayKey(t)]
}

// Ancestors returns the chain of stored parents from the immediate parent up
// to a root. The walk stops on a missing reference and refuses to revisit a
// node, so a corrupt link can never loop it.
func (ix *Index) Ancestors(id uuid.UUID) []*domain.Task {
	var chain []*domain.Task
	seen := map[uuid.UUID]bool{id: true}

	t, ok := ix.byID[id]
	if !ok {
		return nil
	}
	for t.ParentID != nil {
		parent, ok := ix.byID[*t.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		t = parent
	}
	return chain
}

// IsDescendant reports whether id sits somewhere below ancestorID.
func (ix *Index) IsDescendant(id, ancestorID uuid.UUID) bool {
	for _, a := range ix.Ancestors(id) {
		if a.ID == ancestorID {
			return true
		}
	}
	return false
}

// Flatten produces the depth-annotated pre-order sequence of the forest.
func (ix *Index) Flatten(opts FlattenOptions) []Row {
	var rows []Row
	ix.walk(uuid.Nil, 0, opts, &rows)
	return rows
}

func (ix *Index) walk(key uuid.UUID, depth int, opts FlattenOptions, rows *[]Row) {
	group := ix.children[key]
	if opts.IncludeDiscarded && len(ix.discarded[key]) > 0 {
		group = mergeByPosition(group, ix.discarded[key])
	}
	for _, t := range group {
		*rows = append(*rows, Row{Task: t, Depth: depth})
		if opts.Collapsed[t.ID] {
			continue
		}
		ix.walk(t.ID, depth+1, opts, rows)
	}
}

func sortByPosition(group []*domain.Task) {
	sort.Slice(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.ReorderedAt.Equal(b.ReorderedAt) {
			return a.ReorderedAt.Before(b.ReorderedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func mergeByPosition(a, b []*domain.Task) []*domain.Task {
	merged := make([]*domain.Task, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sortByPosition(merged)
	return merged
}
