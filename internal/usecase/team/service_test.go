package team

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-taskflow/errors"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	syncfeed "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/sync"
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/notify"
	"github.com/johnquangdev/meeting-taskflow/pkg/retry"
)

type memTeamRepo struct {
	mu      stdsync.Mutex
	teams   map[uuid.UUID]*entities.Team
	members map[uuid.UUID][]*entities.TeamMember
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{
		teams:   make(map[uuid.UUID]*entities.Team),
		members: make(map[uuid.UUID][]*entities.TeamMember),
	}
}

func (r *memTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (r *memTeamRepo) ListActiveMembers(ctx context.Context, teamID uuid.UUID) ([]*entities.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TeamMember
	for _, m := range r.members[teamID] {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memTeamRepo) GetMember(ctx context.Context, teamID, userID uuid.UUID) (*entities.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[teamID] {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memTeamRepo) SetMemberStatus(ctx context.Context, teamID, userID uuid.UUID, status entities.MemberStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[teamID] {
		if m.UserID == userID {
			m.Status = status
			if status == entities.MemberStatusActive {
				m.JoinedAt = time.Now()
			}
		}
	}
	return nil
}

type memNotificationRepo struct {
	mu   stdsync.Mutex
	rows map[string]*entities.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{rows: make(map[string]*entities.Notification)}
}

func (r *memNotificationRepo) UpsertUnread(ctx context.Context, n *entities.Notification) (*entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := fmt.Sprintf("%s|%s|%s", n.RecipientID, n.Type, n.RefID)
	if existing, ok := r.rows[k]; ok {
		existing.Payload = n.Payload
		return existing, nil
	}
	cp := *n
	r.rows[k] = &cp
	return &cp, nil
}

func (r *memNotificationRepo) DeleteUnread(ctx context.Context, recipientID uuid.UUID, typ entities.NotificationType, refID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, fmt.Sprintf("%s|%s|%s", recipientID, typ, refID))
	return nil
}

func (r *memNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Notification
	for _, n := range r.rows {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	return nil
}

type env struct {
	svc        *Service
	teams      *memTeamRepo
	inbox      *memNotificationRepo
	dispatcher *notify.Dispatcher
}

func newEnv() *env {
	teams := newMemTeamRepo()
	inbox := newMemNotificationRepo()
	feed := syncfeed.NewMemoryFeed()
	policy := retry.Policy{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxElapsed: 50 * time.Millisecond}
	dispatcher := notify.NewDispatcher(inbox, feed, policy, zap.NewNop())
	svc := NewService(teams, dispatcher, feed, policy, zap.NewNop())
	return &env{svc: svc, teams: teams, inbox: inbox, dispatcher: dispatcher}
}

func (e *env) addTeam(name string) uuid.UUID {
	id := uuid.New()
	e.teams.teams[id] = &entities.Team{ID: id, Name: name, CreatedBy: uuid.New()}
	return id
}

func (e *env) addMember(teamID uuid.UUID, role entities.MemberRole, status entities.MemberStatus) *entities.TeamMember {
	m := &entities.TeamMember{
		ID:       uuid.New(),
		TeamID:   teamID,
		UserID:   uuid.New(),
		Role:     role,
		Status:   status,
		JoinedAt: time.Now(),
	}
	e.teams.members[teamID] = append(e.teams.members[teamID], m)
	return m
}

func TestInvite_AdminSendsNotification(t *testing.T) {
	e := newEnv()
	teamID := e.addTeam("Platform")
	admin := e.addMember(teamID, entities.MemberRoleAdmin, entities.MemberStatusActive)
	invited := e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusInvited)

	if err := e.svc.Invite(context.Background(), admin.UserID, teamID, invited.UserID); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	e.dispatcher.Wait()

	ns, _ := e.inbox.ListByRecipient(context.Background(), invited.UserID, true)
	if len(ns) != 1 {
		t.Fatalf("recipient has %d notifications, want 1", len(ns))
	}
	var payload entities.TeamInvitationPayload
	if err := ns[0].DecodePayload(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TeamName != "Platform" {
		t.Errorf("team name = %q", payload.TeamName)
	}

	// Re-sending does not stack a second notification
	if err := e.svc.Invite(context.Background(), admin.UserID, teamID, invited.UserID); err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	e.dispatcher.Wait()
	ns, _ = e.inbox.ListByRecipient(context.Background(), invited.UserID, true)
	if len(ns) != 1 {
		t.Errorf("recipient has %d notifications after re-invite, want 1", len(ns))
	}
}

func TestInvite_NonAdminDenied(t *testing.T) {
	e := newEnv()
	teamID := e.addTeam("Platform")
	plain := e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusActive)
	invited := e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusInvited)

	err := e.svc.Invite(context.Background(), plain.UserID, teamID, invited.UserID)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrorCode_PERMISSION_DENIED {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestRespond_AcceptActivatesAndClearsInvite(t *testing.T) {
	e := newEnv()
	teamID := e.addTeam("Platform")
	admin := e.addMember(teamID, entities.MemberRoleAdmin, entities.MemberStatusActive)
	invited := e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusInvited)

	if err := e.svc.Invite(context.Background(), admin.UserID, teamID, invited.UserID); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	e.dispatcher.Wait()

	member, err := e.svc.Respond(context.Background(), invited.UserID, teamID, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	e.dispatcher.Wait()

	if member.Status != entities.MemberStatusActive {
		t.Errorf("status = %s, want active", member.Status)
	}
	ns, _ := e.inbox.ListByRecipient(context.Background(), invited.UserID, true)
	if len(ns) != 0 {
		t.Errorf("invitation notification not cleared: %d left", len(ns))
	}
}

func TestRespond_DeclineDeactivates(t *testing.T) {
	e := newEnv()
	teamID := e.addTeam("Platform")
	invited := e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusInvited)

	member, err := e.svc.Respond(context.Background(), invited.UserID, teamID, false)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if member.Status != entities.MemberStatusInactive {
		t.Errorf("status = %s, want inactive", member.Status)
	}

	// A second response finds no pending invitation
	_, err = e.svc.Respond(context.Background(), invited.UserID, teamID, true)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrorCode_VALIDATION_FAILED {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRoster_ActiveMembersOnly(t *testing.T) {
	e := newEnv()
	teamID := e.addTeam("Platform")
	admin := e.addMember(teamID, entities.MemberRoleAdmin, entities.MemberStatusActive)
	e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusActive)
	e.addMember(teamID, entities.MemberRoleMember, entities.MemberStatusInvited)

	members, err := e.svc.Roster(context.Background(), admin.UserID, teamID)
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("roster size = %d, want 2 active members", len(members))
	}

	_, err = e.svc.Roster(context.Background(), uuid.New(), teamID)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrorCode_PERMISSION_DENIED {
		t.Fatalf("expected permission denied for stranger, got %v", err)
	}
}
