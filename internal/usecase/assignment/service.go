package assignment

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
	"github.com/johnquangdev/meeting-taskflow/internal/usecase/resolver"
	"github.com/johnquangdev/meeting-taskflow/pkg/retry"
)

// Service owns task assignment: automatic owner resolution after transcript
// processing, manual reassignment, and status changes. Assignment writes are
// full-state and last-write-wins; notification and feed fan-out happen after
// the write and never fail it.
type Service struct {
	taskRepo    repositories.TaskRepository
	meetingRepo repositories.MeetingRepository
	teamRepo    repositories.TeamRepository
	resolver    *resolver.Resolver
	dispatcher  *notify.Dispatcher
	feed        syncfeed.Feed
	policy      retry.Policy
	logger      *zap.Logger
}

// NewService creates an assignment service
func NewService(
	taskRepo repositories.TaskRepository,
	meetingRepo repositories.MeetingRepository,
	teamRepo repositories.TeamRepository,
	res *resolver.Resolver,
	dispatcher *notify.Dispatcher,
	feed syncfeed.Feed,
	policy retry.Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		taskRepo:    taskRepo,
		meetingRepo: meetingRepo,
		teamRepo:    teamRepo,
		resolver:    res,
		dispatcher:  dispatcher,
		feed:        feed,
		policy:      policy,
		logger:      logger,
	}
}

// AutoAssign resolves each task's suggested owner against the meeting team's
// active roster and assigns the matches on behalf of the system actor.
// Already-assigned tasks are left untouched, so running it again over the
// same meeting is a no-op. Unresolved labels stay on the task as
// SuggestedOwner for manual follow-up.
func (s *Service) AutoAssign(ctx context.Context, meeting *entities.Meeting, tasks []*entities.Task) error {
	var roster []*entities.TeamMember
	if meeting.TeamID != nil {
		var err error
		roster, err = s.teamRepo.ListActiveMembers(ctx, *meeting.TeamID)
		if err != nil {
			return apperrors.ErrInternal(err)
		}
	}

	labels := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsAssigned() && t.SuggestedOwner != "" {
			labels = append(labels, t.SuggestedOwner)
		}
	}
	resolutions := s.resolver.Resolve(labels, roster)

	for _, t := range tasks {
		if t.IsAssigned() || t.SuggestedOwner == "" {
			continue
		}
		res := resolutions[t.SuggestedOwner]
		if !res.Matched() {
			s.logger.Info("speaker label unresolved, task left unassigned",
				zap.String("task_id", t.ID.String()),
				zap.String("label", t.SuggestedOwner),
			)
			continue
		}

		a := entities.Assignment{
			AssigneeID:   res.Member.UserID,
			AssigneeName: res.Member.DisplayName,
			AssignedBy:   entities.SystemActor,
			AssignedAt:   time.Now(),
		}
		if err := retry.Do(ctx, s.policy, func() error {
			return s.taskRepo.SetAssignment(ctx, t.ID, a)
		}); err != nil {
			return apperrors.ErrTransientStorage("set assignment", err)
		}
		t.AssigneeID = &a.AssigneeID
		t.AssigneeName = &a.AssigneeName
		t.AssignedBy = &a.AssignedBy
		t.AssignedAt = &a.AssignedAt

		s.dispatcher.TaskAssigned(ctx, *t, nil, entities.SystemActor)
		s.publish(ctx, syncfeed.UserTasksKey(a.AssigneeID), "task_assigned")
	}

	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "tasks_assigned")
	return nil
}

// ReassignInput carries a manual reassignment request. AssigneeName is only
// consulted for personal meetings, where there is no roster to read the
// display name from.
type ReassignInput struct {
	ActorID      uuid.UUID
	TaskID       uuid.UUID
	AssigneeID   uuid.UUID
	AssigneeName string
}

// Reassign moves a task to a new assignee. For team meetings the actor must
// be an active admin of the team and the target an active member; for
// personal meetings only the meeting owner may reassign. Concurrent
// reassignments of the same task resolve last-write-wins.
func (s *Service) Reassign(ctx context.Context, input ReassignInput) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, input.TaskID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if task == nil {
		return nil, apperrors.ErrTaskNotFound(input.TaskID.String())
	}

	meeting, err := s.meetingRepo.GetByID(ctx, task.MeetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(task.MeetingID.String())
	}

	assigneeName := input.AssigneeName
	if meeting.TeamID == nil {
		if meeting.OwnerID != input.ActorID {
			return nil, apperrors.ErrPermissionDenied("only the meeting owner can reassign tasks of a personal meeting")
		}
		if assigneeName == "" {
			return nil, apperrors.ErrInvalidArgument("assignee_name is required for personal meetings")
		}
	} else {
		if err := s.requireTeamAdmin(ctx, *meeting.TeamID, input.ActorID); err != nil {
			return nil, err
		}
		target, err := s.teamRepo.GetMember(ctx, *meeting.TeamID, input.AssigneeID)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		if target == nil || !target.IsActive() {
			return nil, apperrors.ErrMemberNotActive(input.AssigneeID.String())
		}
		assigneeName = target.DisplayName
	}

	previous := task.AssigneeID
	a := entities.Assignment{
		AssigneeID:   input.AssigneeID,
		AssigneeName: assigneeName,
		AssignedBy:   input.ActorID.String(),
		AssignedAt:   time.Now(),
	}
	if err := retry.Do(ctx, s.policy, func() error {
		return s.taskRepo.SetAssignment(ctx, task.ID, a)
	}); err != nil {
		return nil, apperrors.ErrTransientStorage("set assignment", err)
	}
	task.AssigneeID = &a.AssigneeID
	task.AssigneeName = &a.AssigneeName
	task.AssignedBy = &a.AssignedBy
	task.AssignedAt = &a.AssignedAt

	s.dispatcher.TaskAssigned(ctx, *task, previous, input.ActorID.String())

	s.publish(ctx, syncfeed.UserTasksKey(a.AssigneeID), "task_assigned")
	if previous != nil && *previous != a.AssigneeID {
		s.publish(ctx, syncfeed.UserTasksKey(*previous), "task_unassigned")
	}
	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "task_assigned")

	return task, nil
}

// UpdateStatusInput carries a status change request
type UpdateStatusInput struct {
	ActorID uuid.UUID
	TaskID  uuid.UUID
	Status  entities.TaskStatus
}

// UpdateStatus moves a task through its lifecycle. Allowed for the current
// assignee, the meeting owner, or a team admin. Completing a task notifies
// the meeting owner unless they completed it themselves.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*entities.Task, error) {
	if !input.Status.IsValid() {
		return nil, apperrors.ErrValidation("invalid task status").
			WithDetail("status", string(input.Status))
	}

	task, err := s.taskRepo.GetByID(ctx, input.TaskID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if task == nil {
		return nil, apperrors.ErrTaskNotFound(input.TaskID.String())
	}

	meeting, err := s.meetingRepo.GetByID(ctx, task.MeetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(task.MeetingID.String())
	}

	if err := s.requireStatusActor(ctx, task, meeting, input.ActorID); err != nil {
		return nil, err
	}

	if err := retry.Do(ctx, s.policy, func() error {
		return s.taskRepo.UpdateStatus(ctx, task.ID, input.Status)
	}); err != nil {
		return nil, apperrors.ErrTransientStorage("update status", err)
	}
	task.Status = input.Status

	if input.Status == entities.StatusCompleted {
		s.dispatcher.TaskCompleted(ctx, *task, meeting.OwnerID, input.ActorID.String())
	}

	s.publish(ctx, syncfeed.MeetingTasksKey(meeting.ID), "task_status")
	if task.AssigneeID != nil {
		s.publish(ctx, syncfeed.UserTasksKey(*task.AssigneeID), "task_status")
	}

	return task, nil
}

// ListAssignedToUser returns all tasks assigned to the user across meetings
// they own and team meetings where they are an active member
func (s *Service) ListAssignedToUser(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.ListAssignedToUser(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return tasks, nil
}

func (s *Service) requireTeamAdmin(ctx context.Context, teamID, actorID uuid.UUID) error {
	member, err := s.teamRepo.GetMember(ctx, teamID, actorID)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	if member == nil || !member.IsActive() || !member.IsAdmin() {
		return apperrors.ErrPermissionDenied("only a team admin can reassign tasks of a team meeting")
	}
	return nil
}

func (s *Service) requireStatusActor(ctx context.Context, task *entities.Task, meeting *entities.Meeting, actorID uuid.UUID) error {
	if task.AssigneeID != nil && *task.AssigneeID == actorID {
		return nil
	}
	if meeting.OwnerID == actorID {
		return nil
	}
	if meeting.TeamID != nil {
		member, err := s.teamRepo.GetMember(ctx, *meeting.TeamID, actorID)
		if err != nil {
			return apperrors.ErrInternal(err)
		}
		if member != nil && member.IsActive() && member.IsAdmin() {
			return nil
		}
	}
	return apperrors.ErrPermissionDenied("not allowed to change this task's status")
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
