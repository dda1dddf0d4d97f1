package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	taskDTO "github.com/johnquangdev/meeting-taskflow/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	assignmentUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/assignment"
)

// Task handles task-related HTTP requests
type Task struct {
	assignmentService *assignmentUsecase.Service
	logger            *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(assignmentService *assignmentUsecase.Service, logger *zap.Logger) *Task {
	return &Task{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// Reassign handles PUT /tasks/:id/assignee
func (h *Task) Reassign(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.ReassignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	assigneeID, err := parseID(req.AssigneeID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.assignmentService.Reassign(c.Request().Context(), assignmentUsecase.ReassignInput{
		ActorID:      actor,
		TaskID:       taskID,
		AssigneeID:   assigneeID,
		AssigneeName: req.AssigneeName,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, taskDTO.FromEntity(task))
}

// UpdateStatus handles PUT /tasks/:id/status
func (h *Task) UpdateStatus(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	taskID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req taskDTO.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.assignmentService.UpdateStatus(c.Request().Context(), assignmentUsecase.UpdateStatusInput{
		ActorID: actor,
		TaskID:  taskID,
		Status:  entities.TaskStatus(req.Status),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, taskDTO.FromEntity(task))
}

// ListMine handles GET /tasks: tasks assigned to the authenticated user
func (h *Task) ListMine(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := h.assignmentService.ListAssignedToUser(c.Request().Context(), actor)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, taskDTO.FromEntities(tasks))
}
