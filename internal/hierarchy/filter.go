package hierarchy

import (
	"strings"

	"fieldflow/internal/domain"

	"github.com/google/uuid"
)

// Filter narrows the flattened tree for presentation. It never feeds
// adjacency decisions; the resolver goes back to the full Index for those.
type Filter struct {
	// Statuses is the included set; empty means all.
	Statuses map[domain.TaskStatus]bool
	// Search is matched case-insensitively against title and description.
	Search string
	// ShowDiscarded merges soft-deleted tasks into the view.
	ShowDiscarded bool
}

func (f Filter) matches(t *domain.Task) bool {
	if len(f.Statuses) > 0 && !f.Statuses[t.Status] {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Visible produces the ordered, depth-annotated sequence the UI renders.
// A node stays visible when it matches or any descendant matches, so the
// path to every hit remains navigable.
func Visible(ix *Index, f Filter, collapsed map[uuid.UUID]bool) []Row {
	rows := ix.Flatten(FlattenOptions{
		Collapsed:        collapsed,
		IncludeDiscarded: f.ShowDiscarded,
	})

	keep := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		if !f.matches(row.Task) {
			continue
		}
		keep[row.Task.ID] = true
		for _, a := range ix.Ancestors(row.Task.ID) {
			keep[a.ID] = true
		}
	}

	visible := rows[:0:0]
	for _, row := range rows {
		if keep[row.Task.ID] {
			visible = append(visible, row)
		}
	}
	return visible
}

// Selection tracks the multi-select set. The anchor is the last explicitly
// selected task and seeds shift-range selection.
type Selection struct {
	members   map[uuid.UUID]bool
	anchor    uuid.UUID
	hasAnchor bool
}

func NewSelection() *Selection {
	return &Selection{members: make(map[uuid.UUID]bool)}
}

// Set replaces the selection with a single task (plain click).
func (s *Selection) Set(id uuid.UUID) {
	s.members = map[uuid.UUID]bool{id: true}
	s.anchor = id
	s.hasAnchor = true
}

// Toggle flips one task in or out (ctrl/cmd click). Adding moves the anchor;
// removing the anchor clears it.
func (s *Selection) Toggle(id uuid.UUID) {
	if s.members[id] {
		delete(s.members, id)
		if s.hasAnchor && s.anchor == id {
			s.hasAnchor = false
		}
		return
	}
	s.members[id] = true
	s.anchor = id
	s.hasAnchor = true
}

// RangeTo selects the contiguous run between the anchor and id in the given
// visible ordering (shift click). Without an anchor it degrades to Set.
func (s *Selection) RangeTo(id uuid.UUID, visible []Row) {
	if !s.hasAnchor {
		s.Set(id)
		return
	}

	from, to := -1, -1
	for i, row := range visible {
		if row.Task.ID == s.anchor {
			from = i
		}
		if row.Task.ID == id {
			to = i
		}
	}
	if from == -1 || to == -1 {
		s.Set(id)
		return
	}
	if from > to {
		from, to = to, from
	}

	for i := from; i <= to; i++ {
		s.members[visible[i].Task.ID] = true
	}
}

func (s *Selection) Has(id uuid.UUID) bool {
	return s.members[id]
}

func (s *Selection) Len() int {
	return len(s.members)
}

func (s *Selection) Clear() {
	s.members = make(map[uuid.UUID]bool)
	s.hasAnchor = false
}

// IDs returns the selected set; order is unspecified, callers needing the
// document order re-sort via PartitionSelection.
func (s *Selection) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	return ids
}
