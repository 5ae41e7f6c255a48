package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"fieldflow/internal/api/dto"
	"fieldflow/internal/apperrors"
	"fieldflow/internal/core/ports"
	"fieldflow/internal/domain"
	"fieldflow/internal/hierarchy"
	"fieldflow/internal/metrics"
	"fieldflow/internal/sequence"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskService is the Reorder Conflict Controller: every mutation request
// runs Received -> Validated -> Applied | Rejected against a fresh read of
// the job's tree, commits atomically, and answers a rejection with the
// authoritative current state.
type TaskService interface {
	CreateJob(ctx context.Context, req dto.CreateJobRequest) (*domain.Job, error)
	CreateTask(ctx context.Context, jobID uuid.UUID, req dto.CreateTaskRequest) (*domain.Task, error)
	ListTasks(ctx context.Context, jobID uuid.UUID, f hierarchy.Filter, collapsed map[uuid.UUID]bool) (*dto.ListTasksResponse, error)

	Reorder(ctx context.Context, taskID uuid.UUID, req dto.ReorderRequest) (*dto.MoveResult, error)
	Reparent(ctx context.Context, taskID uuid.UUID, req dto.ReparentRequest) (*dto.MoveResult, error)
	BatchReorder(ctx context.Context, jobID uuid.UUID, req dto.BatchReorderRequest) (*dto.BatchResult, error)
	Drop(ctx context.Context, jobID uuid.UUID, req dto.DropRequest) (*dto.BatchResult, error)

	ChangeStatus(ctx context.Context, taskID uuid.UUID, req dto.ChangeStatusRequest) (*dto.MoveResult, error)
	Discard(ctx context.Context, taskID uuid.UUID, req dto.DiscardRequest) (*dto.MoveResult, error)
	Restore(ctx context.Context, taskID uuid.UUID) (*dto.MoveResult, error)
}

// The Implementation
type taskService struct {
	tasks    ports.TaskRepository
	jobs     ports.JobRepository
	eventBus ports.EventBus
	compare  sequence.Comparator
}

// Constructor
func NewTaskService(tasks ports.TaskRepository, jobs ports.JobRepository, bus ports.EventBus) TaskService {
	return &taskService{
		tasks:    tasks,
		jobs:     jobs,
		eventBus: bus,
		compare:  sequence.StatusPriority,
	}
}

// jobState is one request's snapshot: the job, its full task list (discarded
// included) and the index derived from it. Never shared across requests.
type jobState struct {
	job   *domain.Job
	tasks []domain.Task
	index *hierarchy.Index
}

func (s *taskService) loadJob(ctx context.Context, jobID uuid.UUID) (*jobState, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByJob(ctx, jobID, true)
	if err != nil {
		return nil, err
	}
	return &jobState{job: job, tasks: tasks, index: hierarchy.BuildIndex(tasks)}, nil
}

func (st *jobState) activeTask(id uuid.UUID) (*domain.Task, error) {
	t, ok := st.index.Get(id)
	if !ok || t.Discarded() {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (s *taskService) CreateJob(ctx context.Context, req dto.CreateJobRequest) (*domain.Job, error) {
	job := domain.NewJob(req.Name)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *taskService) CreateTask(ctx context.Context, jobID uuid.UUID, req dto.CreateTaskRequest) (*domain.Task, error) {
	st, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		parent, ok := st.index.Get(*req.ParentID)
		if !ok || parent.Discarded() {
			return nil, apperrors.ErrNotFound
		}
	}

	// New tasks append at the end of their sibling group, which never
	// triggers a renumbering pass.
	siblings := st.index.Children(req.ParentID)
	alloc := hierarchy.AllocateRun(siblings, lastOf(siblings), nil, 1)

	task := domain.NewTask(jobID, req.ParentID, req.Title)
	task.Description = req.Description
	task.Position = alloc.Positions[0]

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, jobID uuid.UUID, f hierarchy.Filter, collapsed map[uuid.UUID]bool) (*dto.ListTasksResponse, error) {
	st, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	rows := hierarchy.Visible(st.index, f, collapsed)
	resp := &dto.ListTasksResponse{JobVersion: st.job.Version, Tasks: make([]dto.TaskRow, 0, len(rows))}
	for _, row := range rows {
		t := row.Task
		resp.Tasks = append(resp.Tasks, dto.TaskRow{
			ID:        t.ID,
			ParentID:  t.ParentID,
			Title:     t.Title,
			Status:    t.Status,
			Position:  t.Position,
			Version:   t.Version,
			Depth:     row.Depth,
			Discarded: t.Discarded(),
		})
	}
	return resp, nil
}

func (s *taskService) Reorder(ctx context.Context, taskID uuid.UUID, req dto.ReorderRequest) (*dto.MoveResult, error) {
	st, task, err := s.loadTaskJob(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if req.TaskVersion != nil && *req.TaskVersion != task.Version {
		return nil, s.rejected(ctx, task.JobID, []uuid.UUID{taskID}, apperrors.ErrVersionConflict)
	}

	moving := map[uuid.UUID]bool{taskID: true}
	siblings := excluding(st.index.Siblings(task), moving)
	prev, next := flanksForPosition(siblings, *req.TargetPosition)
	alloc := hierarchy.Allocate(siblings, prev, next)

	return s.applyMove(ctx, task, task.ParentID, alloc, req.TaskVersion, domain.ActionRepositioned)
}

func (s *taskService) Reparent(ctx context.Context, taskID uuid.UUID, req dto.ReparentRequest) (*dto.MoveResult, error) {
	st, task, err := s.loadTaskJob(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if req.TaskVersion != nil && *req.TaskVersion != task.Version {
		return nil, s.rejected(ctx, task.JobID, []uuid.UUID{taskID}, apperrors.ErrVersionConflict)
	}
	if err := hierarchy.ValidateParent(st.index, taskID, req.ParentID); err != nil {
		metrics.MutationsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	moving := map[uuid.UUID]bool{taskID: true}
	siblings := excluding(st.index.Children(req.ParentID), moving)
	prev, next := flanksForPosition(siblings, *req.TargetPosition)
	alloc := hierarchy.Allocate(siblings, prev, next)

	return s.applyMove(ctx, task, req.ParentID, alloc, req.TaskVersion, domain.ActionReparented)
}

// applyMove commits a single-task move plus whatever renumbering the
// allocation required, then publishes the post-commit event.
func (s *taskService) applyMove(ctx context.Context, task *domain.Task, newParent *uuid.UUID, alloc hierarchy.Allocation, cited *int, action domain.TaskAction) (*dto.MoveResult, error) {
	writes := renumberWrites(alloc)
	writes = append(writes, ports.TaskWrite{
		TaskID:          task.ID,
		ParentID:        newParent,
		Position:        alloc.Positions[0],
		Repositioned:    true,
		ExpectedVersion: cited,
	})

	newJobVersion, err := s.tasks.ApplyPlan(ctx, ports.MutationPlan{JobID: task.JobID, Writes: writes})
	if err != nil {
		return nil, s.rejected(ctx, task.JobID, writeIDs(writes), err)
	}

	old := snapshotOf(task)
	now := domain.TaskSnapshot{ParentID: newParent, Position: alloc.Positions[0], Status: task.Status, Version: task.Version + 1}
	s.publish(ctx, task.JobID, newJobVersion, task.ID, action, old, now)

	return &dto.MoveResult{
		Status:    "success",
		TaskID:    task.ID,
		ParentID:  newParent,
		Position:  alloc.Positions[0],
		Version:   task.Version + 1,
		Timestamp: time.Now(),
	}, nil
}

func (s *taskService) BatchReorder(ctx context.Context, jobID uuid.UUID, req dto.BatchReorderRequest) (*dto.BatchResult, error) {
	st, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	referenced := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		referenced = append(referenced, item.TaskID)
	}
	if req.JobVersion != nil && *req.JobVersion != st.job.Version {
		return nil, s.rejected(ctx, jobID, referenced, apperrors.ErrVersionConflict)
	}

	originalVersion := make(map[uuid.UUID]int, len(st.tasks))
	originalParent := make(map[uuid.UUID]*uuid.UUID, len(st.tasks))
	originalPosition := make(map[uuid.UUID]int, len(st.tasks))
	for i := range st.tasks {
		originalVersion[st.tasks[i].ID] = st.tasks[i].Version
		originalParent[st.tasks[i].ID] = st.tasks[i].ParentID
		originalPosition[st.tasks[i].ID] = st.tasks[i].Position
	}

	plan := newPlanBuilder()

	// Items apply in order against an evolving in-memory picture, so a later
	// item sees the positions earlier ones produced. Each row is still
	// written exactly once, version-checked against what this request read.
	for _, item := range req.Items {
		task, err := st.activeTask(item.TaskID)
		if err != nil {
			metrics.MutationsRejected.WithLabelValues(rejectReason(err)).Inc()
			return nil, err
		}
		if item.TaskVersion != nil && *item.TaskVersion != originalVersion[item.TaskID] {
			return nil, s.rejected(ctx, jobID, referenced, apperrors.ErrVersionConflict)
		}
		if err := hierarchy.ValidateParent(st.index, item.TaskID, item.TargetParentID); err != nil {
			metrics.MutationsRejected.WithLabelValues(rejectReason(err)).Inc()
			return nil, err
		}

		moving := map[uuid.UUID]bool{item.TaskID: true}
		siblings := excluding(st.index.Children(item.TargetParentID), moving)
		prev, next := flanksForPosition(siblings, *item.TargetPosition)
		alloc := hierarchy.Allocate(siblings, prev, next)

		for _, rn := range alloc.Renumbered {
			plan.add(rn.Task.ID, rn.Task.ParentID, rn.Position, originalVersion[rn.Task.ID])
			rn.Task.Position = rn.Position
		}
		plan.addCited(item.TaskID, item.TargetParentID, alloc.Positions[0], item.TaskVersion)
		task.ParentID = item.TargetParentID
		task.Position = alloc.Positions[0]

		st.index = hierarchy.BuildIndex(st.tasks)
	}

	newJobVersion, err := s.tasks.ApplyPlan(ctx, ports.MutationPlan{
		JobID:              jobID,
		ExpectedJobVersion: req.JobVersion,
		Writes:             plan.writes(),
	})
	if err != nil {
		return nil, s.rejected(ctx, jobID, append(referenced, plan.ids()...), err)
	}

	result := &dto.BatchResult{Status: "success", JobVersion: newJobVersion}
	for _, item := range req.Items {
		task, _ := st.index.Get(item.TaskID)
		action := domain.ActionRepositioned
		if !sameParentID(originalParent[item.TaskID], task.ParentID) {
			action = domain.ActionReparented
		}
		old := domain.TaskSnapshot{ParentID: originalParent[item.TaskID], Position: originalPosition[item.TaskID], Status: task.Status, Version: originalVersion[item.TaskID]}
		now := domain.TaskSnapshot{ParentID: task.ParentID, Position: task.Position, Status: task.Status, Version: originalVersion[item.TaskID] + 1}
		s.publish(ctx, jobID, newJobVersion, task.ID, action, old, now)

		result.Results = append(result.Results, dto.MoveResult{
			Status:    "success",
			TaskID:    task.ID,
			ParentID:  task.ParentID,
			Position:  task.Position,
			Version:   originalVersion[item.TaskID] + 1,
			Timestamp: time.Now(),
		})
	}
	return result, nil
}

func (s *taskService) Drop(ctx context.Context, jobID uuid.UUID, req dto.DropRequest) (*dto.BatchResult, error) {
	st, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if req.JobVersion != nil && *req.JobVersion != st.job.Version {
		return nil, s.rejected(ctx, jobID, req.DroppedIDs, apperrors.ErrVersionConflict)
	}

	moving := make(map[uuid.UUID]bool, len(req.DroppedIDs))
	for _, id := range req.DroppedIDs {
		task, err := st.activeTask(id)
		if err != nil {
			metrics.MutationsRejected.WithLabelValues(rejectReason(err)).Inc()
			return nil, err
		}
		if cited, ok := req.TaskVersions[id]; ok && cited != task.Version {
			return nil, s.rejected(ctx, jobID, req.DroppedIDs, apperrors.ErrVersionConflict)
		}
		moving[id] = true
	}

	// Carried descendants ride along under their selected ancestor and keep
	// their parent-relative positions; only hierarchy roots face the
	// boundary rules.
	roots, _ := hierarchy.PartitionSelection(st.index, req.DroppedIDs)

	placement, err := hierarchy.ResolveDrop(st.index, hierarchy.DropLocation{
		PrevID:      req.PreviousID,
		NextID:      req.NextID,
		ForceNestID: req.ForceNestID,
	}, moving)
	if err != nil {
		metrics.MutationsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	for _, rootID := range roots {
		if err := hierarchy.ValidateParent(st.index, rootID, placement.ParentID); err != nil {
			metrics.MutationsRejected.WithLabelValues(rejectReason(err)).Inc()
			return nil, err
		}
	}

	siblings := excluding(st.index.Children(placement.ParentID), moving)
	alloc := hierarchy.AllocateRun(siblings, placement.Prev, placement.Next, len(roots))

	writes := renumberWrites(alloc)
	for i, rootID := range roots {
		w := ports.TaskWrite{
			TaskID:       rootID,
			ParentID:     placement.ParentID,
			Position:     alloc.Positions[i],
			Repositioned: true,
		}
		if cited, ok := req.TaskVersions[rootID]; ok {
			v := cited
			w.ExpectedVersion = &v
		}
		writes = append(writes, w)
	}

	newJobVersion, err := s.tasks.ApplyPlan(ctx, ports.MutationPlan{
		JobID:              jobID,
		ExpectedJobVersion: req.JobVersion,
		Writes:             writes,
	})
	if err != nil {
		return nil, s.rejected(ctx, jobID, append(req.DroppedIDs, writeIDs(writes)...), err)
	}

	result := &dto.BatchResult{Status: "success", JobVersion: newJobVersion}
	for i, rootID := range roots {
		task, _ := st.index.Get(rootID)
		action := domain.ActionRepositioned
		if !sameParentID(task.ParentID, placement.ParentID) {
			action = domain.ActionReparented
		}
		old := snapshotOf(task)
		now := domain.TaskSnapshot{ParentID: placement.ParentID, Position: alloc.Positions[i], Status: task.Status, Version: task.Version + 1}
		s.publish(ctx, jobID, newJobVersion, rootID, action, old, now)

		result.Results = append(result.Results, dto.MoveResult{
			Status:    "success",
			TaskID:    rootID,
			ParentID:  placement.ParentID,
			Position:  alloc.Positions[i],
			Version:   task.Version + 1,
			Timestamp: time.Now(),
		})
	}
	return result, nil
}

func (s *taskService) ChangeStatus(ctx context.Context, taskID uuid.UUID, req dto.ChangeStatusRequest) (*dto.MoveResult, error) {
	newStatus := domain.TaskStatus(req.Status)
	if !newStatus.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	st, task, err := s.loadTaskJob(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if req.TaskVersion != nil && *req.TaskVersion != task.Version {
		return nil, s.rejected(ctx, task.JobID, []uuid.UUID{taskID}, apperrors.ErrVersionConflict)
	}

	position := task.Position
	var writes []ports.TaskWrite

	if req.AutoSequence {
		// Re-slot among current siblings by status priority, parent
		// unchanged; relative order within the same tier is preserved.
		moving := map[uuid.UUID]bool{taskID: true}
		siblings := excluding(st.index.Siblings(task), moving)
		prev, next := sequence.InsertionPoint(siblings, newStatus, s.compare)
		alloc := hierarchy.Allocate(siblings, prev, next)

		position = alloc.Positions[0]
		writes = renumberWrites(alloc)
		writes = append(writes, ports.TaskWrite{
			TaskID:          taskID,
			ParentID:        task.ParentID,
			Position:        position,
			Status:          &newStatus,
			Repositioned:    true,
			ExpectedVersion: req.TaskVersion,
		})
	} else {
		writes = []ports.TaskWrite{{
			TaskID:          taskID,
			ParentID:        task.ParentID,
			Position:        task.Position,
			Status:          &newStatus,
			ExpectedVersion: req.TaskVersion,
		}}
	}

	newJobVersion, err := s.tasks.ApplyPlan(ctx, ports.MutationPlan{JobID: task.JobID, Writes: writes})
	if err != nil {
		return nil, s.rejected(ctx, task.JobID, writeIDs(writes), err)
	}

	old := snapshotOf(task)
	now := domain.TaskSnapshot{ParentID: task.ParentID, Position: position, Status: newStatus, Version: task.Version + 1}
	s.publish(ctx, task.JobID, newJobVersion, taskID, domain.ActionStatusChanged, old, now)

	return &dto.MoveResult{
		Status:    "success",
		TaskID:    taskID,
		ParentID:  task.ParentID,
		Position:  position,
		Version:   task.Version + 1,
		Timestamp: time.Now(),
	}, nil
}

func (s *taskService) Discard(ctx context.Context, taskID uuid.UUID, req dto.DiscardRequest) (*dto.MoveResult, error) {
	_, task, err := s.loadTaskJob(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if req.TaskVersion != nil && *req.TaskVersion != task.Version {
		return nil, s.rejected(ctx, task.JobID, []uuid.UUID{taskID}, apperrors.ErrVersionConflict)
	}

	discard := true
	newJobVersion, err := s.tasks.ApplyPlan(ctx, ports.MutationPlan{
		JobID: task.JobID,
		Writes: []ports.TaskWrite{{
			TaskID:          taskID,
			ParentID:        task.ParentID,
			Position:        task.Position,
			Discard:         &discard,
			ExpectedVersion: req.TaskVersion,
		}},
	})
	if err != nil {
		return nil, s.rejected(ctx, task.JobID, []uuid.UUID{taskID}, err)
	}

	old := snapshotOf(task)
	now := old
	now.Version = task.Version + 1
	s.publish(ctx, task.JobID, newJobVersion, taskID, domain.ActionDiscarded, old, now)

	return &dto.MoveResult{
		Status:    "success",
		TaskID:    taskID,
		ParentID:  task.ParentID,
		Position:  task.Position,
		Version:   task.Version + 1,
		Timestamp: time.Now(),
	}, nil
}

// Restore clears discarded_at and appends the task at the end of its stored
// sibling group, since its old slot may have been reused while it was gone.
// Children that kept pointing at it re-attach implicitly.
func (s *taskService) Restore(ctx context.Context, taskID uuid.UUID) (*dto.MoveResult, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Discarded() {
		return nil, apperrors.ErrNotFound
	}
	st, err := s.loadJob(ctx, task.JobID)
	if err != nil {
		return nil, err
	}

	siblings := storedSiblings(st, task.ParentID, taskID)
	alloc := hierarchy.AllocateRun(siblings, lastOf(siblings), nil, 1)

	restore := false
	v := task.Version
	newJobVersion, err := s.tasks.ApplyPlan(ctx, ports.MutationPlan{
		JobID: task.JobID,
		Writes: []ports.TaskWrite{{
			TaskID:          taskID,
			ParentID:        task.ParentID,
			Position:        alloc.Positions[0],
			Discard:         &restore,
			Repositioned:    true,
			ExpectedVersion: &v,
		}},
	})
	if err != nil {
		return nil, s.rejected(ctx, task.JobID, []uuid.UUID{taskID}, err)
	}

	old := snapshotOf(task)
	now := domain.TaskSnapshot{ParentID: task.ParentID, Position: alloc.Positions[0], Status: task.Status, Version: task.Version + 1}
	s.publish(ctx, task.JobID, newJobVersion, taskID, domain.ActionRestored, old, now)

	return &dto.MoveResult{
		Status:    "success",
		TaskID:    taskID,
		ParentID:  task.ParentID,
		Position:  alloc.Positions[0],
		Version:   task.Version + 1,
		Timestamp: time.Now(),
	}, nil
}

// --- helpers ---

func (s *taskService) loadTaskJob(ctx context.Context, taskID uuid.UUID) (*jobState, *domain.Task, error) {
	found, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.loadJob(ctx, found.JobID)
	if err != nil {
		return nil, nil, err
	}
	task, err := st.activeTask(taskID)
	if err != nil {
		return nil, nil, err
	}
	return st, task, nil
}

// rejected maps an apply failure to its user-visible form: version conflicts
// come back with the authoritative snapshot of everything the request
// referenced, anything else from the store is a generic "state unchanged".
func (s *taskService) rejected(ctx context.Context, jobID uuid.UUID, referenced []uuid.UUID, cause error) error {
	if !errors.Is(cause, apperrors.ErrVersionConflict) {
		metrics.MutationsRejected.WithLabelValues("apply_failed").Inc()
		log.Printf("Apply failed for job %s: %v", jobID, cause)
		return apperrors.ErrApplyFailed
	}

	metrics.MutationsRejected.WithLabelValues("version_conflict").Inc()

	state, err := s.currentState(ctx, jobID, referenced)
	if err != nil {
		log.Printf("Failed to build conflict snapshot for job %s: %v", jobID, err)
		return apperrors.ErrVersionConflict
	}
	return apperrors.NewConflict("version conflict", *state)
}

func (s *taskService) currentState(ctx context.Context, jobID uuid.UUID, referenced []uuid.UUID) (*apperrors.CurrentState, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByJob(ctx, jobID, true)
	if err != nil {
		return nil, err
	}

	want := make(map[uuid.UUID]bool, len(referenced))
	for _, id := range referenced {
		want[id] = true
	}

	state := &apperrors.CurrentState{JobVersion: job.Version}
	for i := range tasks {
		t := &tasks[i]
		if !want[t.ID] {
			continue
		}
		state.Tasks = append(state.Tasks, apperrors.TaskState{
			ID:       t.ID,
			Position: t.Position,
			ParentID: t.ParentID,
			Version:  t.Version,
			Title:    t.Title,
			Status:   t.Status,
		})
	}
	return state, nil
}

func (s *taskService) publish(ctx context.Context, jobID uuid.UUID, jobVersion int, taskID uuid.UUID, action domain.TaskAction, old, now domain.TaskSnapshot) {
	event := domain.TaskMutatedEvent{
		JobID:      jobID,
		TaskID:     taskID,
		Action:     action,
		JobVersion: jobVersion,
		Old:        snapshotJSON(old),
		New:        snapshotJSON(now),
	}
	if err := s.eventBus.PublishTaskMutated(ctx, event); err != nil {
		log.Printf("Failed to publish %s event for task %s: %v", action, taskID, err)
	}
	metrics.MutationsApplied.WithLabelValues(string(action)).Inc()
}

// rejectReason maps a validation failure to its metric label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInvalidHierarchy):
		return "invalid_hierarchy"
	case errors.Is(err, apperrors.ErrInvalidStatus):
		return "invalid_status"
	default:
		return "apply_failed"
	}
}

func snapshotOf(t *domain.Task) domain.TaskSnapshot {
	return domain.TaskSnapshot{ParentID: t.ParentID, Position: t.Position, Status: t.Status, Version: t.Version}
}

func snapshotJSON(snap domain.TaskSnapshot) datatypes.JSON {
	payload, _ := json.Marshal(snap)
	return datatypes.JSON(payload)
}

func renumberWrites(alloc hierarchy.Allocation) []ports.TaskWrite {
	writes := make([]ports.TaskWrite, 0, len(alloc.Renumbered))
	for _, rn := range alloc.Renumbered {
		v := rn.Task.Version
		writes = append(writes, ports.TaskWrite{
			TaskID:          rn.Task.ID,
			ParentID:        rn.Task.ParentID,
			Position:        rn.Position,
			Repositioned:    true,
			ExpectedVersion: &v,
		})
	}
	return writes
}

func writeIDs(writes []ports.TaskWrite) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(writes))
	for _, w := range writes {
		ids = append(ids, w.TaskID)
	}
	return ids
}

// flanksForPosition finds the neighbors a task lands between when the caller
// cites a numeric target: before the first sibling at or past the target,
// after everything below it.
func flanksForPosition(siblings []*domain.Task, target int) (prev, next *domain.Task) {
	for _, s := range siblings {
		if s.Position >= target {
			next = s
			break
		}
		prev = s
	}
	return prev, next
}

func excluding(group []*domain.Task, skip map[uuid.UUID]bool) []*domain.Task {
	out := make([]*domain.Task, 0, len(group))
	for _, t := range group {
		if !skip[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func lastOf(group []*domain.Task) *domain.Task {
	if len(group) == 0 {
		return nil
	}
	return group[len(group)-1]
}

// storedSiblings returns the active tasks sharing a stored parent, ordered
// by position. Unlike the index's display groups this keys on parent_id as
// written, which is what position uniqueness is defined over.
func storedSiblings(st *jobState, parentID *uuid.UUID, skip uuid.UUID) []*domain.Task {
	var out []*domain.Task
	for i := range st.tasks {
		t := &st.tasks[i]
		if t.ID == skip || t.Discarded() {
			continue
		}
		if sameParentID(t.ParentID, parentID) {
			out = append(out, t)
		}
	}
	return out
}

func sameParentID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// planBuilder collects one write per task: the last position wins and the
// first expected version sticks (it is what this request read).
type planBuilder struct {
	order []uuid.UUID
	byID  map[uuid.UUID]*ports.TaskWrite
}

func newPlanBuilder() *planBuilder {
	return &planBuilder{byID: make(map[uuid.UUID]*ports.TaskWrite)}
}

func (p *planBuilder) add(id uuid.UUID, parentID *uuid.UUID, position, expectedVersion int) {
	v := expectedVersion
	p.upsert(ports.TaskWrite{
		TaskID:          id,
		ParentID:        parentID,
		Position:        position,
		Repositioned:    true,
		ExpectedVersion: &v,
	})
}

func (p *planBuilder) addCited(id uuid.UUID, parentID *uuid.UUID, position int, cited *int) {
	p.upsert(ports.TaskWrite{
		TaskID:          id,
		ParentID:        parentID,
		Position:        position,
		Repositioned:    true,
		ExpectedVersion: cited,
	})
}

func (p *planBuilder) upsert(w ports.TaskWrite) {
	if existing, ok := p.byID[w.TaskID]; ok {
		existing.ParentID = w.ParentID
		existing.Position = w.Position
		return
	}
	p.order = append(p.order, w.TaskID)
	p.byID[w.TaskID] = &w
}

func (p *planBuilder) writes() []ports.TaskWrite {
	out := make([]ports.TaskWrite, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.byID[id])
	}
	return out
}

func (p *planBuilder) ids() []uuid.UUID {
	return append([]uuid.UUID(nil), p.order...)
}
