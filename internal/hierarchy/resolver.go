package hierarchy

import (
	"fieldflow/internal/apperrors"
	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

// DropLocation describes a drag-and-drop gap: the two logically adjacent
// tasks the selection was dropped between, in the current visible ordering.
// Nil PrevID means the very top of the list, nil NextID the very bottom.
// ForceNestID bypasses the boundary rules entirely and nests the selection
// as the last children of the hovered target.
type DropLocation struct {
	PrevID      *uuid.UUID
	NextID      *uuid.UUID
	ForceNestID *uuid.UUID
}

// Placement is the resolved target: the parent group the dropped tasks join
// and the flanking siblings they are allocated between. Flanks are members
// of the full active group, never of the rendered subset, so a filter that
// hides intermediate siblings cannot corrupt the order.
type Placement struct {
	ParentID *uuid.UUID
	Prev     *domain.Task
	Next     *domain.Task
}

// ResolveDrop translates a drop location into a target placement using three
// boundary rules, applied in order of specificity:
//
//	Rule B: next's parent is prev itself - nest as first child of prev.
//	Rule A: prev and next share a parent - insert between them.
//	Rule C: parents differ - adopt prev's parent, immediately after prev.
//
// moving is the full dragged selection (roots and carried descendants); its
// members are skipped when flanks are derived from the index.
func ResolveDrop(ix *Index, drop DropLocation, moving map[uuid.UUID]bool) (Placement, error) {
	if drop.ForceNestID != nil {
		target, ok := ix.Get(*drop.ForceNestID)
		if !ok || target.Discarded() {
			return Placement{}, apperrors.ErrNotFound
		}
		id := target.ID
		return Placement{
			ParentID: &id,
			Prev:     lastIn(ix.Children(&id), moving),
		}, nil
	}

	prev, err := ix.lookupFlank(drop.PrevID)
	if err != nil {
		return Placement{}, err
	}
	next, err := ix.lookupFlank(drop.NextID)
	if err != nil {
		return Placement{}, err
	}

	switch {
	case prev == nil && next == nil:
		// Empty view: append to the root group.
		return Placement{Prev: lastIn(ix.Roots(), moving)}, nil

	case prev == nil:
		// Top of the list: first child of next's parent, minimum position.
		parent := ix.DisplayParent(next)
		return Placement{
			ParentID: parent,
			Next:     firstIn(ix.Children(parent), moving),
		}, nil

	case next == nil:
		// Bottom of the list: append as last child of prev's parent.
		parent := ix.DisplayParent(prev)
		return Placement{
			ParentID: parent,
			Prev:     lastIn(ix.Children(parent), moving),
		}, nil
	}

	nextParent := ix.DisplayParent(next)
	if nextParent != nil && *nextParent == prev.ID {
		// Rule B: dropped between a node and its first child.
		id := prev.ID
		return Placement{
			ParentID: &id,
			Next:     firstIn(ix.Children(&id), moving),
		}, nil
	}

	parent := ix.DisplayParent(prev)
	// Rules A and C both land directly after prev within prev's group. The
	// true following sibling comes from the index, not from the rendered
	// next, so hidden siblings between the two keep their slots.
	return Placement{
		ParentID: parent,
		Prev:     prev,
		Next:     siblingAfter(ix, prev, moving),
	}, nil
}

func (ix *Index) lookupFlank(id *uuid.UUID) (*domain.Task, error) {
	if id == nil {
		return nil, nil
	}
	t, ok := ix.Get(*id)
	if !ok || t.Discarded() {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

// PartitionSelection splits a multi-select into hierarchy roots (selected
// tasks whose parent is not selected) and carried descendants (selected
// tasks riding along under a selected ancestor). Only roots are subject to
// the boundary rules; carried descendants keep their parent-relative
// position. Roots come back in pre-order so a multi-root drop preserves the
// selection's current relative order.
func PartitionSelection(ix *Index, selected []uuid.UUID) (roots, carried []uuid.UUID) {
	chosen := make(map[uuid.UUID]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	isCarried := func(id uuid.UUID) bool {
		for _, a := range ix.Ancestors(id) {
			if chosen[a.ID] {
				return true
			}
		}
		return false
	}

	for _, row := range ix.Flatten(FlattenOptions{}) {
		id := row.Task.ID
		if !chosen[id] {
			continue
		}
		if isCarried(id) {
			carried = append(carried, id)
		} else {
			roots = append(roots, id)
		}
	}
	return roots, carried
}

// ValidateParent rejects a parent assignment that would detach the task from
// reality: an unknown or discarded parent is NotFound, and nesting a task
// under itself or one of its own descendants is an invalid hierarchy.
func ValidateParent(ix *Index, taskID uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	parent, ok := ix.Get(*parentID)
	if !ok || parent.Discarded() {
		return apperrors.ErrNotFound
	}
	if *parentID == taskID || ix.IsDescendant(*parentID, taskID) {
		return apperrors.ErrInvalidHierarchy
	}
	return nil
}

func firstIn(group []*domain.Task, moving map[uuid.UUID]bool) *domain.Task {
	for _, t := range group {
		if !moving[t.ID] {
			return t
		}
	}
	return nil
}

func lastIn(group []*domain.Task, moving map[uuid.UUID]bool) *domain.Task {
	for i := len(group) - 1; i >= 0; i-- {
		if !moving[group[i].ID] {
			return group[i]
		}
	}
	return nil
}

func siblingAfter(ix *Index, t *domain.Task, moving map[uuid.UUID]bool) *domain.Task {
	group := ix.Siblings(t)
	for i, s := range group {
		if s.ID == t.ID {
			return firstIn(group[i+1:], moving)
		}
	}
	return nil
}
