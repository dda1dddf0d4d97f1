package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// MeetingRepository defines persistence operations for meetings
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Meeting, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*entities.Meeting, error)

	// UpdateDetails rewrites title and date
	UpdateDetails(ctx context.Context, id uuid.UUID, title string, date time.Time) error

	// MarkProcessed flips the processed flag after task extraction
	MarkProcessed(ctx context.Context, id uuid.UUID) error

	// SetTeam links or unlinks the meeting (and its tasks) to a team
	SetTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) error

	// Delete removes the meeting, its tasks, and unread notifications
	// referencing either. All-or-nothing.
	Delete(ctx context.Context, id uuid.UUID) error
}
