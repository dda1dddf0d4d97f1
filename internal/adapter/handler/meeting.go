package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	meetingDTO "github.com/johnquangdev/meeting-taskflow/internal/adapter/dto/meeting"
	taskDTO "github.com/johnquangdev/meeting-taskflow/internal/adapter/dto/task"
	meetingUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/meeting"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	meetingService *meetingUsecase.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *meetingUsecase.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetingService: meetingService,
		logger:         logger,
	}
}

// Create handles POST /meetings
func (h *Meeting) Create(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.CreateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	var teamID *uuid.UUID
	if req.TeamID != nil {
		id, err := parseID(*req.TeamID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		teamID = &id
	}

	meeting, err := h.meetingService.Create(c.Request().Context(), meetingUsecase.CreateInput{
		Title:      req.Title,
		Date:       req.Date,
		Transcript: req.Transcript,
		OwnerID:    actor,
		TeamID:     teamID,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusCreated, meetingDTO.FromEntity(meeting))
}

// Process handles POST /meetings/:id/process: transcript in, tasks out
func (h *Meeting) Process(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, tasks, err := h.meetingService.Process(c.Request().Context(), actor, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, meetingDTO.ProcessResponse{
		Meeting: meetingDTO.FromEntity(meeting),
		Tasks:   taskDTO.FromEntities(tasks),
	})
}

// Get handles GET /meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.Get(c.Request().Context(), actor, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, meetingDTO.FromEntity(meeting))
}

// List handles GET /meetings: the actor's own meetings
func (h *Meeting) List(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.meetingService.ListForOwner(c.Request().Context(), actor)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, meetingDTO.FromEntities(meetings))
}

// ListForTeam handles GET /teams/:id/meetings
func (h *Meeting) ListForTeam(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.meetingService.ListForTeam(c.Request().Context(), actor, teamID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, meetingDTO.FromEntities(meetings))
}

// Update handles PUT /meetings/:id
func (h *Meeting) Update(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.UpdateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.Update(c.Request().Context(), meetingUsecase.UpdateInput{
		ActorID:   actor,
		MeetingID: meetingID,
		Title:     req.Title,
		Date:      req.Date,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, meetingDTO.FromEntity(meeting))
}

// LinkTeam handles PUT /meetings/:id/team
func (h *Meeting) LinkTeam(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.LinkTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	var teamID *uuid.UUID
	if req.TeamID != nil {
		id, err := parseID(*req.TeamID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		teamID = &id
	}

	meeting, err := h.meetingService.LinkTeam(c.Request().Context(), actor, meetingID, teamID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, meetingDTO.FromEntity(meeting))
}

// Delete handles DELETE /meetings/:id
func (h *Meeting) Delete(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.meetingService.Delete(c.Request().Context(), actor, meetingID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, nil)
}

// ListTasks handles GET /meetings/:id/tasks
func (h *Meeting) ListTasks(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := h.meetingService.ListTasks(c.Request().Context(), actor, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, taskDTO.FromEntities(tasks))
}
