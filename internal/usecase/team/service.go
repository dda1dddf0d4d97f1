package team

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-taskflow/errors"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/repositories"
	syncfeed "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/sync"
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/notify"
	"github.com/johnquangdev/meeting-taskflow/pkg/retry"
)

// Service covers the membership side of teams: sending invitation
// notifications and resolving the recipient's response. Team CRUD itself is
// provisioned elsewhere; this engine reads teams and flips membership status.
type Service struct {
	teamRepo   repositories.TeamRepository
	dispatcher *notify.Dispatcher
	feed       syncfeed.Feed
	policy     retry.Policy
	logger     *zap.Logger
}

// NewService creates a team membership service
func NewService(
	teamRepo repositories.TeamRepository,
	dispatcher *notify.Dispatcher,
	feed syncfeed.Feed,
	policy retry.Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		teamRepo:   teamRepo,
		dispatcher: dispatcher,
		feed:       feed,
		policy:     policy,
		logger:     logger,
	}
}

// Invite sends (or re-sends) the invitation notification for a pending
// membership. The actor must be an active admin; the recipient's membership
// row must be in the invited state. Re-sending refreshes the existing unread
// notification instead of stacking a new one.
func (s *Service) Invite(ctx context.Context, actorID, teamID, recipientID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	if team == nil {
		return apperrors.ErrTeamNotFound(teamID.String())
	}

	actor, err := s.teamRepo.GetMember(ctx, teamID, actorID)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	if actor == nil || !actor.IsActive() || !actor.IsAdmin() {
		return apperrors.ErrPermissionDenied("only a team admin can invite members")
	}

	recipient, err := s.teamRepo.GetMember(ctx, teamID, recipientID)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	if recipient == nil {
		return apperrors.ErrNotFound("membership")
	}
	if recipient.Status != entities.MemberStatusInvited {
		return apperrors.ErrValidation("user is not pending an invitation").
			WithDetail("status", string(recipient.Status))
	}

	s.dispatcher.TeamInvited(ctx, *team, recipientID, actorID.String())
	s.publish(ctx, syncfeed.TeamRosterKey(teamID), "invite_sent")
	return nil
}

// Respond resolves the actor's own pending invitation. Accepting activates
// the membership; declining deactivates it. Either way the outstanding
// invitation notification is cleared.
func (s *Service) Respond(ctx context.Context, actorID, teamID uuid.UUID, accept bool) (*entities.TeamMember, error) {
	member, err := s.teamRepo.GetMember(ctx, teamID, actorID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if member == nil {
		return nil, apperrors.ErrNotFound("membership")
	}
	if member.Status != entities.MemberStatusInvited {
		return nil, apperrors.ErrValidation("no pending invitation for this team").
			WithDetail("status", string(member.Status))
	}

	status := entities.MemberStatusInactive
	kind := "invite_declined"
	if accept {
		status = entities.MemberStatusActive
		kind = "member_joined"
	}

	if err := retry.Do(ctx, s.policy, func() error {
		return s.teamRepo.SetMemberStatus(ctx, teamID, actorID, status)
	}); err != nil {
		return nil, apperrors.ErrTransientStorage("set member status", err)
	}
	member.Status = status
	if accept {
		member.JoinedAt = time.Now()
	}

	s.dispatcher.InviteResolved(ctx, teamID, actorID)
	s.publish(ctx, syncfeed.TeamRosterKey(teamID), kind)
	// Membership changes what the per-user task view may contain
	s.publish(ctx, syncfeed.UserTasksKey(actorID), kind)
	return member, nil
}

// Roster returns the team's active members; the actor must be one of them
func (s *Service) Roster(ctx context.Context, actorID, teamID uuid.UUID) ([]*entities.TeamMember, error) {
	actor, err := s.teamRepo.GetMember(ctx, teamID, actorID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if actor == nil || !actor.IsActive() {
		return nil, apperrors.ErrPermissionDenied("not an active member of this team")
	}
	members, err := s.teamRepo.ListActiveMembers(ctx, teamID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return members, nil
}

func (s *Service) publish(ctx context.Context, key, kind string) {
	err := s.feed.Publish(ctx, syncfeed.Event{Key: key, Kind: kind, At: time.Now()})
	if err != nil {
		s.logger.Warn("failed to publish feed event",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
