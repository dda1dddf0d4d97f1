package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-taskflow/internal/domain/repositories"
)

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository backed by GORM
func NewMeetingRepository(db *gorm.DB) repo.MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *meetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC").
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *meetingRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("date DESC").
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *meetingRepository) UpdateDetails(ctx context.Context, id uuid.UUID, title string, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      title,
			"date":       date,
			"updated_at": time.Now(),
		}).Error
}

func (r *meetingRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": now,
			"updated_at":   now,
		}).Error
}

func (r *meetingRepository) SetTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Meeting{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"team_id":    teamID,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		// Tasks inherit the meeting's team reference
		return tx.Model(&entities.Task{}).
			Where("meeting_id = ?", id).
			Update("team_id", teamID).Error
	})
}

// Delete removes the meeting with its tasks and any unread notifications
// referencing either, in one transaction so a notification never outlives
// its task or meeting.
func (r *meetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uuid.UUID
		if err := tx.Model(&entities.Task{}).
			Where("meeting_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		refs := append(taskIDs, id)
		if err := tx.
			Where("ref_id IN ? AND read = false", refs).
			Delete(&entities.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Where("meeting_id = ?", id).Delete(&entities.Task{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&entities.Meeting{}).Error
	})
}
