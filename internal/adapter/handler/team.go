package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	teamDTO "github.com/johnquangdev/meeting-taskflow/internal/adapter/dto/team"
	teamUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/team"
)

// Team handles membership HTTP requests
type Team struct {
	teamService *teamUsecase.Service
	logger      *zap.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *teamUsecase.Service, logger *zap.Logger) *Team {
	return &Team{
		teamService: teamService,
		logger:      logger,
	}
}

// Invite handles POST /teams/:id/invitations
func (h *Team) Invite(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req teamDTO.InviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	recipientID, err := parseID(req.UserID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.teamService.Invite(c.Request().Context(), actor, teamID, recipientID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusAccepted, nil)
}

// Respond handles PUT /teams/:id/invitation: accept or decline the actor's
// own pending invitation
func (h *Team) Respond(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req teamDTO.RespondRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	member, err := h.teamService.Respond(c.Request().Context(), actor, teamID, req.Action == "accept")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, teamDTO.FromMember(member))
}

// Roster handles GET /teams/:id/members
func (h *Team) Roster(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	members, err := h.teamService.Roster(c.Request().Context(), actor, teamID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, teamDTO.FromMembers(members))
}
