package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// NotificationRepository defines persistence operations for notifications.
// UpsertUnread is the mechanism behind the at-most-one-unread-per-(ref,
// recipient) invariant: later events update in place, never duplicate.
type NotificationRepository interface {
	// UpsertUnread updates the payload and created_at of an existing unread
	// notification for (recipient, type, ref), or inserts a new one.
	// Returns the stored notification.
	UpsertUnread(ctx context.Context, n *entities.Notification) (*entities.Notification, error)

	// DeleteUnread removes the unread notification for (recipient, type, ref),
	// if any. Used by the reassignment revoke policy; the meeting-delete
	// cascade removes notifications inside the meeting repository transaction.
	DeleteUnread(ctx context.Context, recipientID uuid.UUID, typ entities.NotificationType, refID uuid.UUID) error

	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
}
