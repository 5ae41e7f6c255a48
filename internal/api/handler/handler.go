package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"fieldflow/internal/api/dto"
	"fieldflow/internal/apperrors"
	"fieldflow/internal/domain"
	"fieldflow/internal/hierarchy"
	"fieldflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	service service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

func (h *TaskHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateJobResponse{ID: job.ID, Name: job.Name, Version: job.Version})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), jobID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskResponse{
		ID:          task.ID,
		JobID:       task.JobID,
		ParentID:    task.ParentID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Position:    task.Position,
		Version:     task.Version,
	})
}

// ListTasks renders the flattened tree. Filters here shape presentation
// only; move endpoints resolve adjacency against the full tree regardless.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	filter := hierarchy.Filter{
		Search:        c.Query("q"),
		ShowDiscarded: c.Query("show_discarded") == "true",
	}
	if raw := c.Query("status"); raw != "" {
		filter.Statuses = make(map[domain.TaskStatus]bool)
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses[domain.TaskStatus(strings.TrimSpace(s))] = true
		}
	}

	var collapsed map[uuid.UUID]bool
	if raw := c.Query("collapsed"); raw != "" {
		collapsed = make(map[uuid.UUID]bool)
		for _, s := range strings.Split(raw, ",") {
			if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
				collapsed[id] = true
			}
		}
	}

	resp, err := h.service.ListTasks(c.Request.Context(), jobID, filter, collapsed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Reorder(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Reorder(c.Request.Context(), taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) Reparent(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Reparent(c.Request.Context(), taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) BatchReorder(c *gin.Context) {
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	var req dto.BatchReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.BatchReorder(c.Request.Context(), jobID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) Drop(c *gin.Context) {
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	var req dto.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Drop(c.Request.Context(), jobID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ChangeStatus(c.Request.Context(), taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) Discard(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// DELETE body is optional; an empty body means the legacy no-version form.
	var req dto.DiscardRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Discard(c.Request.Context(), taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) Restore(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Restore(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	var conflict *apperrors.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, dto.ConflictResponse{
			Conflict:     true,
			Error:        conflict.Message,
			CurrentState: conflict.State,
		})
		return
	}
	c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
}
