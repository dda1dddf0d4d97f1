package meeting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-taskflow/errors"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/repositories"
	syncfeed "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/sync"
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/assignment"
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/notify"
	"github.com/johnquangdev/meeting-taskflow/pkg/retry"
	"github.com/johnquangdev/meeting-taskflow/pkg/summarizer"
)

// Service drives the meeting lifecycle: create from transcript, process into
// tasks via the external summarizer, edit, link to a team, and delete with
// full cleanup.
type Service struct {
	meetingRepo repositories.MeetingRepository
	taskRepo    repositories.TaskRepository
	teamRepo    repositories.TeamRepository
	summarizer  summarizer.Client
	assignments *assignment.Service
	dispatcher  *notify.Dispatcher
	feed        syncfeed.Feed
	policy      retry.Policy
	logger      *zap.Logger
}

// NewService creates a meeting service
func NewService(
	meetingRepo repositories.MeetingRepository,
	taskRepo repositories.TaskRepository,
	teamRepo repositories.TeamRepository,
	client summarizer.Client,
	assignments *assignment.Service,
	dispatcher *notify.Dispatcher,
	feed syncfeed.Feed,
	policy retry.Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetingRepo: meetingRepo,
		taskRepo:    taskRepo,
		teamRepo:    teamRepo,
		summarizer:  client,
		assignments: assignments,
		dispatcher:  dispatcher,
		feed:        feed,
		policy:      policy,
		logger:      logger,
	}
}

// CreateInput carries a new meeting. TeamID nil means a personal meeting.
type CreateInput struct {
	Title      string
	Date       time.Time
	Transcript string
	OwnerID    uuid.UUID
	TeamID     *uuid.UUID
}

// Create stores a new meeting. For team meetings the owner must be an active
// member of the team.
func (s *Service) Create(ctx context.Context, input CreateInput) (*entities.Meeting, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.ErrValidation("meeting title is required")
	}
	if strings.TrimSpace(input.Transcript) == "" {
		return nil, apperrors.ErrValidation("meeting transcript is required")
	}

	if input.TeamID != nil {
		team, err := s.teamRepo.GetByID(ctx, *input.TeamID)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		if team == nil {
			return nil, apperrors.ErrTeamNotFound(input.TeamID.String())
		}
		member, err := s.teamRepo.GetMember(ctx, *input.TeamID, input.OwnerID)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		if member == nil || !member.IsActive() {
			return nil, apperrors.ErrMemberNotActive(input.OwnerID.String())
		}
	}

	meeting := entities.NewMeeting(input.Title, input.Date, input.Transcript, input.OwnerID, input.TeamID)
	if err := retry.Do(ctx, s.policy, func() error {
		return s.meetingRepo.Create(ctx, meeting)
	}); err != nil {
		return nil, apperrors.ErrTransientStorage("create meeting", err)
	}

	if meeting.TeamID != nil {
		s.publish(ctx, syncfeed.TeamRosterKey(*meeting.TeamID), "meeting_created")
	}
	return meeting, nil
}

// Process runs the transcript through the summarizer, persists the extracted
// tasks and auto-assigns resolvable owners. Processing an already-processed
// meeting returns its existing tasks without calling the summarizer again.
func (s *Service) Process(ctx context.Context, actorID, meetingID uuid.UUID) (*entities.Meeting, []*entities.Task, error) {
	meeting, err := s.requireMeetingManager(ctx, actorID, meetingID)
	if err != nil {
		return nil, nil, err
	}

	if meeting.Processed {
		tasks, err := s.taskRepo.ListByMeeting(ctx, meeting.ID)
		if err != nil {
			return nil, nil, apperrors.ErrInternal(err)
		}
		return meeting, tasks, nil
	}

	var items []summarizer.SuggestedItem
	if err := retry.Do(ctx, s.policy, func() error {
		var err error
		items, err = s.summarizer.Summarize(ctx, meeting.Transcript)
		return err
	}); err != nil {
		return nil, nil, apperrors.ErrSummarizerFailed(err)
	}

	tasks := make([]*entities.Task, 0, len(items))
	for i, item := range items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			continue
		}
		tasks = append(tasks, entities.NewTask(
			meeting, desc, entities.TaskPriority(item.Priority),
			strings.TrimSpace(item.SuggestedOwner), item.SuggestedDeadline, i,
		))
	}

	if err := retry.Do(ctx, s.policy, func() error {
		return s.taskRepo.CreateBatch(ctx, tasks)
	}); err != nil {
		return nil, nil, apperrors.ErrTransientStorage("create tasks", err)
	}

	// The processed flag goes up before auto-assignment: assignment is
	// idempotent and can be repaired by re-running, another summarizer pass
	// would duplicate the tasks.
	if err := retry.Do(ctx, s.policy, func() error {
		return s.meetingRepo.MarkProcessed(ctx, meeting.ID)
	}); err != nil {
		return nil, nil, apperrors.ErrTransientStorage("mark processed", err)
	}
	now := time.Now()
	meeting.Processed = true
	meeting.ProcessedAt = &now

	if err := s.assignments.AutoAssign(ctx, meeting, tasks); err != nil {
		s.logger.Error("auto-assignment failed after task extraction",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return meeting, tasks, err
	}

	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "tasks_created")
	if meeting.TeamID != nil {
		s.publish(ctx, syncfeed.TeamRosterKey(*meeting.TeamID), "meeting_processed")
	}
	return meeting, tasks, nil
}

// UpdateInput carries meeting detail edits
type UpdateInput struct {
	ActorID   uuid.UUID
	MeetingID uuid.UUID
	Title     string
	Date      time.Time
}

// Update rewrites title and date. Owner only. Active team members other than
// the actor are notified of the change; an edit that changes nothing is
// accepted without fan-out.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*entities.Meeting, error) {
	meeting, err := s.getMeeting(ctx, input.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting.OwnerID != input.ActorID {
		return nil, apperrors.ErrPermissionDenied("only the meeting owner can edit the meeting")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.ErrValidation("meeting title is required")
	}

	titleChanged := input.Title != meeting.Title
	dateChanged := !input.Date.Equal(meeting.Date)
	changedField := ""
	switch {
	case titleChanged && dateChanged:
		changedField = "title,date"
	case titleChanged:
		changedField = "title"
	case dateChanged:
		changedField = "date"
	}
	if changedField == "" {
		return meeting, nil
	}

	if err := retry.Do(ctx, s.policy, func() error {
		return s.meetingRepo.UpdateDetails(ctx, meeting.ID, input.Title, input.Date)
	}); err != nil {
		return nil, apperrors.ErrTransientStorage("update meeting", err)
	}
	meeting.Title = input.Title
	meeting.Date = input.Date

	s.notifyTeam(ctx, meeting, changedField, input.ActorID)
	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "meeting_update")
	return meeting, nil
}

// LinkTeam links or unlinks the meeting to a team; its tasks inherit the
// reference. Owner only.
func (s *Service) LinkTeam(ctx context.Context, actorID, meetingID uuid.UUID, teamID *uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.getMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.OwnerID != actorID {
		return nil, apperrors.ErrPermissionDenied("only the meeting owner can move the meeting between teams")
	}

	if teamID != nil {
		team, err := s.teamRepo.GetByID(ctx, *teamID)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		if team == nil {
			return nil, apperrors.ErrTeamNotFound(teamID.String())
		}
	}

	previousTeam := meeting.TeamID
	if err := retry.Do(ctx, s.policy, func() error {
		return s.meetingRepo.SetTeam(ctx, meeting.ID, teamID)
	}); err != nil {
		return nil, apperrors.ErrTransientStorage("set meeting team", err)
	}
	meeting.TeamID = teamID

	s.notifyTeam(ctx, meeting, "team", actorID)
	if previousTeam != nil {
		s.publish(ctx, syncfeed.TeamRosterKey(*previousTeam), "meeting_moved")
	}
	if teamID != nil {
		s.publish(ctx, syncfeed.TeamRosterKey(*teamID), "meeting_moved")
	}
	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "meeting_update")
	return meeting, nil
}

// Delete removes the meeting with its tasks and any unread notifications
// referencing them. Owner or team admin.
func (s *Service) Delete(ctx context.Context, actorID, meetingID uuid.UUID) error {
	meeting, err := s.requireMeetingManager(ctx, actorID, meetingID)
	if err != nil {
		return err
	}

	// Affected assignees are collected first; after the cascade there is
	// nothing left to read
	tasks, err := s.taskRepo.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	assignees := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		if t.AssigneeID != nil {
			assignees[*t.AssigneeID] = true
		}
	}

	if err := retry.Do(ctx, s.policy, func() error {
		return s.meetingRepo.Delete(ctx, meeting.ID)
	}); err != nil {
		return apperrors.ErrTransientStorage("delete meeting", err)
	}

	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "meeting_deleted")
	for assignee := range assignees {
		s.publish(ctx, syncfeed.UserTasksKey(assignee), "meeting_deleted")
		s.publish(ctx, syncfeed.UserNotificationsKey(assignee), "meeting_deleted")
	}
	if meeting.TeamID != nil {
		s.publish(ctx, syncfeed.TeamRosterKey(*meeting.TeamID), "meeting_deleted")
	}
	return nil
}

// Get returns a meeting visible to the actor: its owner or an active member
// of its team
func (s *Service) Get(ctx context.Context, actorID, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.getMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireViewer(ctx, meeting, actorID); err != nil {
		return nil, err
	}
	return meeting, nil
}

// ListTasks returns the meeting's tasks in transcript order
func (s *Service) ListTasks(ctx context.Context, actorID, meetingID uuid.UUID) ([]*entities.Task, error) {
	meeting, err := s.getMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireViewer(ctx, meeting, actorID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return tasks, nil
}

// ListForOwner returns the actor's own meetings, newest first
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Meeting, error) {
	meetings, err := s.meetingRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return meetings, nil
}

// ListForTeam returns a team's meetings; the actor must be an active member
func (s *Service) ListForTeam(ctx context.Context, actorID, teamID uuid.UUID) ([]*entities.Meeting, error) {
	member, err := s.teamRepo.GetMember(ctx, teamID, actorID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if member == nil || !member.IsActive() {
		return nil, apperrors.ErrPermissionDenied("not an active member of this team")
	}
	meetings, err := s.meetingRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return meetings, nil
}

func (s *Service) getMeeting(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(id.String())
	}
	return meeting, nil
}

// requireMeetingManager loads the meeting and checks the actor may manage it:
// the owner, or an active admin of its team
func (s *Service) requireMeetingManager(ctx context.Context, actorID, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.getMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.OwnerID == actorID {
		return meeting, nil
	}
	if meeting.TeamID != nil {
		member, err := s.teamRepo.GetMember(ctx, *meeting.TeamID, actorID)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		if member != nil && member.IsActive() && member.IsAdmin() {
			return meeting, nil
		}
	}
	return nil, apperrors.ErrPermissionDenied("not allowed to manage this meeting")
}

func (s *Service) requireViewer(ctx context.Context, meeting *entities.Meeting, actorID uuid.UUID) error {
	if meeting.OwnerID == actorID {
		return nil
	}
	if meeting.TeamID != nil {
		member, err := s.teamRepo.GetMember(ctx, *meeting.TeamID, actorID)
		if err != nil {
			return apperrors.ErrInternal(err)
		}
		if member != nil && member.IsActive() {
			return nil
		}
	}
	return apperrors.ErrPermissionDenied("not allowed to view this meeting")
}

// notifyTeam fans a meeting_update notification out to the meeting team's
// active members, excluding the actor
func (s *Service) notifyTeam(ctx context.Context, meeting *entities.Meeting, changedField string, actorID uuid.UUID) {
	if meeting.TeamID == nil {
		return
	}
	members, err := s.teamRepo.ListActiveMembers(ctx, *meeting.TeamID)
	if err != nil {
		s.logger.Warn("failed to load roster for meeting update fan-out",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return
	}
	recipients := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m.UserID != actorID {
			recipients = append(recipients, m.UserID)
		}
	}
	if len(recipients) > 0 {
		s.dispatcher.MeetingUpdated(ctx, *meeting, changedField, recipients)
	}
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
