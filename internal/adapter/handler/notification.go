package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	notificationDTO "github.com/johnquangdev/meeting-taskflow/internal/adapter/dto/notification"
	notificationUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/notification"
)

// Notification handles inbox HTTP requests
type Notification struct {
	notificationService *notificationUsecase.Service
	logger              *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *notificationUsecase.Service, logger *zap.Logger) *Notification {
	return &Notification{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List handles GET /notifications?unread=true
func (h *Notification) List(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := h.notificationService.Inbox(c.Request().Context(), actor, unreadOnly)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, notificationDTO.FromEntities(notifications))
}

// MarkRead handles PUT /notifications/:id/read
func (h *Notification) MarkRead(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	notificationID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.notificationService.MarkRead(c.Request().Context(), actor, notificationID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, nil)
}
