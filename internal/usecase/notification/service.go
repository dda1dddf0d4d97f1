package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/johnquangdev/meeting-taskflow/errors"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/repositories"
)

// Service is the read side of the notification inbox
type Service struct {
	notificationRepo repositories.NotificationRepository
}

// NewService creates a notification inbox service
func NewService(notificationRepo repositories.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

// Inbox lists the user's notifications, newest first
func (s *Service) Inbox(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, entities.ErrNotificationNotFound) {
			return apperrors.ErrNotFound("notification")
		}
		return apperrors.ErrInternal(err)
	}
	return nil
}
