package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-taskflow/internal/domain/repositories"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository backed by GORM
func NewNotificationRepository(db *gorm.DB) repo.NotificationRepository {
	return &notificationRepository{db: db}
}

// UpsertUnread inserts the notification or, when an unread one already exists
// for (recipient, type, ref), refreshes its payload and created_at in place.
// Backed by the partial unique index on unread rows, so concurrent dispatch
// attempts collapse into one row instead of duplicating.
func (r *notificationRepository) UpsertUnread(ctx context.Context, n *entities.Notification) (*entities.Notification, error) {
	if n == nil {
		return nil, errors.New("notification cannot be nil")
	}

	q := `INSERT INTO notifications (id, recipient_id, type, ref_id, payload, read, created_at)
	      VALUES (?, ?, ?, ?, ?::jsonb, false, ?)
	      ON CONFLICT (recipient_id, type, ref_id) WHERE read = false
	      DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at
	      RETURNING id, recipient_id, type, ref_id, payload, read, created_at`

	row := r.db.WithContext(ctx).
		Raw(q, n.ID, n.RecipientID, n.Type, n.RefID, string(n.Payload), n.CreatedAt).
		Row()

	var stored entities.Notification
	var payload string
	if err := row.Scan(&stored.ID, &stored.RecipientID, &stored.Type, &stored.RefID,
		&payload, &stored.Read, &stored.CreatedAt); err != nil {
		return nil, err
	}
	stored.Payload = []byte(payload)
	return &stored, nil
}

func (r *notificationRepository) DeleteUnread(ctx context.Context, recipientID uuid.UUID, typ entities.NotificationType, refID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("recipient_id = ? AND type = ? AND ref_id = ? AND read = false", recipientID, typ, refID).
		Delete(&entities.Notification{}).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	query := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read = false")
	}

	var notifications []*entities.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips the read flag; only the recipient may do so
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotificationNotFound
	}
	return nil
}
