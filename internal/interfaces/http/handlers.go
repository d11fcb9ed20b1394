package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/lark"
	"github.com/tasklinehq/taskline/internal/service"
	intsync "github.com/tasklinehq/taskline/internal/sync"
)

// TaskCreator registers new tasks
type TaskCreator interface {
	Create(ctx context.Context, in service.CreateInput) (*task.Task, error)
}

// ActionSubmitter processes lifecycle actions
type ActionSubmitter interface {
	Apply(ctx context.Context, taskID int64, action task.Action, actorID string) (service.ActionResult, error)
}

// CycleRunner triggers a reconciliation cycle on demand
type CycleRunner interface {
	RunCycle(ctx context.Context) (intsync.Stats, error)
}

// ReportWriter streams the task ledger as a workbook
type ReportWriter interface {
	WriteXLSX(ctx context.Context, w io.Writer) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	tasks      TaskCreator
	actions    ActionSubmitter
	reconciler CycleRunner
	reports    ReportWriter
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(tasks TaskCreator, actions ActionSubmitter, reconciler CycleRunner, reports ReportWriter, logger *zap.Logger) *Handlers {
	return &Handlers{
		tasks:      tasks,
		actions:    actions,
		reconciler: reconciler,
		reports:    reports,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateTaskRequest is the body of POST /api/v1/tasks
type CreateTaskRequest struct {
	Text        string `json:"text" binding:"required"`
	Department  string `json:"department" binding:"required"`
	AuthorID    string `json:"author_id" binding:"required"`
	AssigneeID  string `json:"assignee_id"`
	Attachments []struct {
		Kind    string `json:"kind"`
		FileRef string `json:"file_ref"`
	} `json:"attachments"`
}

// TaskResponse is a task in API responses
type TaskResponse struct {
	ID           int64  `json:"id"`
	Text         string `json:"text"`
	Status       string `json:"status"`
	Department   string `json:"department,omitempty"`
	AuthorName   string `json:"author_name"`
	AssigneeName string `json:"assignee_name,omitempty"`
	CreatedAt    string `json:"created_at"`
	Surfaces     int    `json:"surfaces"`
	ExternalRef  string `json:"external_ref,omitempty"`
}

// CreateTask handles POST /api/v1/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	in := service.CreateInput{
		Text:       req.Text,
		Department: req.Department,
		AuthorID:   req.AuthorID,
		AssigneeID: req.AssigneeID,
	}
	for _, a := range req.Attachments {
		in.Attachments = append(in.Attachments, task.Attachment{
			Kind:    task.AttachmentKind(a.Kind),
			FileRef: a.FileRef,
		})
	}

	created, err := h.tasks.Create(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAction) {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
		h.logger.Error("Failed to create task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toTaskResponse(created)})
}

// CallbackRequest is the body of POST /api/v1/callbacks: the raw button
// payload plus the user who clicked
type CallbackRequest struct {
	Value   string `json:"value" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
}

// ActionResponse reports the task status after an action
type ActionResponse struct {
	TaskID          int64  `json:"task_id"`
	Status          string `json:"status"`
	AlreadyTerminal bool   `json:"already_terminal,omitempty"`
}

// SubmitCallback handles POST /api/v1/callbacks
func (h *Handlers) SubmitCallback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	decoded, err := lark.ParseCallback(req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := h.actions.Apply(c.Request.Context(), decoded.TaskID, decoded.Action, req.ActorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, Response{Success: false, Error: "permission denied"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "task not found"})
		case errors.Is(err, service.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		default:
			h.logger.Error("Failed to process action",
				zap.Int64("task_id", decoded.TaskID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to process action"})
		}
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: ActionResponse{
		TaskID:          decoded.TaskID,
		Status:          result.Status.String(),
		AlreadyTerminal: result.AlreadyTerminal,
	}})
}

// Reconcile handles POST /api/v1/reconcile
func (h *Handlers) Reconcile(c *gin.Context) {
	stats, err := h.reconciler.RunCycle(c.Request.Context())
	if err != nil {
		h.logger.Error("Reconciliation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"pulled":       stats.Pulled,
		"status_fixed": stats.StatusFixed,
		"comments":     stats.Comments,
		"created":      stats.Created,
	}})
}

// ExportReport handles GET /api/v1/reports/tasks.xlsx
func (h *Handlers) ExportReport(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="tasks.xlsx"`)

	if err := h.reports.WriteXLSX(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to export report", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

func toTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Text:         t.Text,
		Status:       t.Status.String(),
		Department:   t.Department,
		AuthorName:   t.AuthorName,
		AssigneeName: t.AssigneeName,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		Surfaces:     len(t.Surfaces),
		ExternalRef:  t.ExternalRef,
	}
}
