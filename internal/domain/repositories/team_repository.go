package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// TeamRepository defines read and membership-event operations for teams.
// Team CRUD itself is administered outside this core.
type TeamRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Team, error)

	// ListActiveMembers returns the roster used for speaker resolution
	ListActiveMembers(ctx context.Context, teamID uuid.UUID) ([]*entities.TeamMember, error)

	// GetMember returns the membership row for (team, user) regardless of status
	GetMember(ctx context.Context, teamID, userID uuid.UUID) (*entities.TeamMember, error)

	// SetMemberStatus transitions a membership (invited -> active/inactive)
	SetMemberStatus(ctx context.Context, teamID, userID uuid.UUID, status entities.MemberStatus) error
}
