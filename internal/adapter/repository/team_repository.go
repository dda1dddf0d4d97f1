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

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository backed by GORM
func NewTeamRepository(db *gorm.DB) repo.TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Team, error) {
	var team entities.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListActiveMembers(ctx context.Context, teamID uuid.UUID) ([]*entities.TeamMember, error) {
	var members []*entities.TeamMember
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND status = ?", teamID, entities.MemberStatusActive).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *teamRepository) GetMember(ctx context.Context, teamID, userID uuid.UUID) (*entities.TeamMember, error) {
	var member entities.TeamMember
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) SetMemberStatus(ctx context.Context, teamID, userID uuid.UUID, status entities.MemberStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == entities.MemberStatusActive {
		updates["joined_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&entities.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Updates(updates).Error
}
