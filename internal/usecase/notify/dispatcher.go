package notify

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-taskflow/errors"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/repositories"
	syncfeed "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/sync"
	"github.com/johnquangdev/meeting-taskflow/pkg/retry"
)

// Dispatcher fans assignment and membership events out as notification
// upserts. Delivery is a side effect: failures are retried, then logged and
// swallowed — they never roll back or fail the triggering mutation. The
// unread upsert keyed by (recipient, type, ref) absorbs duplicate attempts,
// which is what makes at-least-once delivery safe.
type Dispatcher struct {
	notificationRepo repositories.NotificationRepository
	feed             syncfeed.Feed
	policy           retry.Policy
	logger           *zap.Logger

	wg stdsync.WaitGroup
}

// NewDispatcher creates a notification dispatcher
func NewDispatcher(
	notificationRepo repositories.NotificationRepository,
	feed syncfeed.Feed,
	policy retry.Policy,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		feed:             feed,
		policy:           policy,
		logger:           logger,
	}
}

// Wait blocks until all scheduled dispatches have finished. Used on
// shutdown and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// dispatch runs fn on a tracked goroutine, detached from the caller's
// cancellation: the mutation has already committed, delivery should not die
// with the request.
func (d *Dispatcher) dispatch(ctx context.Context, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn(detached)
	}()
}

// TaskAssigned notifies the new assignee of a task. No-op when the task is
// unassigned or the actor assigned the task to themselves. Revoke policy:
// the previous assignee's unread assignment notification for this task is
// deleted; a stale "you were assigned" entry is worse than a vanished one.
func (d *Dispatcher) TaskAssigned(ctx context.Context, task entities.Task, previousAssignee *uuid.UUID, actor string) {
	if task.AssigneeID == nil {
		return
	}
	assignee := *task.AssigneeID
	if actor != entities.SystemActor && actor == assignee.String() {
		return
	}

	d.dispatch(ctx, func(ctx context.Context) {
		n, err := entities.NewNotification(assignee, entities.NotificationTaskAssignment, task.ID,
			entities.TaskAssignmentPayload{
				TaskID:          task.ID,
				MeetingID:       task.MeetingID,
				TaskDescription: task.Description,
				AssignedBy:      actor,
			})
		if err != nil {
			d.logDeliveryFailure(assignee, err)
			return
		}

		if err := retry.Do(ctx, d.policy, func() error {
			_, err := d.notificationRepo.UpsertUnread(ctx, n)
			return err
		}); err != nil {
			d.logDeliveryFailure(assignee, err)
			return
		}
		d.publish(ctx, syncfeed.UserNotificationsKey(assignee), "task_assignment")

		if previousAssignee != nil && *previousAssignee != assignee {
			if err := retry.Do(ctx, d.policy, func() error {
				return d.notificationRepo.DeleteUnread(ctx, *previousAssignee, entities.NotificationTaskAssignment, task.ID)
			}); err != nil {
				d.logDeliveryFailure(*previousAssignee, err)
				return
			}
			d.publish(ctx, syncfeed.UserNotificationsKey(*previousAssignee), "task_assignment_revoked")
		}
	})
}

// TaskCompleted notifies the recipient (normally the meeting owner) that a
// task was completed. No-op when the recipient completed it themselves.
func (d *Dispatcher) TaskCompleted(ctx context.Context, task entities.Task, recipient uuid.UUID, completedBy string) {
	if completedBy == recipient.String() {
		return
	}

	d.dispatch(ctx, func(ctx context.Context) {
		n, err := entities.NewNotification(recipient, entities.NotificationTaskCompleted, task.ID,
			entities.TaskCompletedPayload{
				TaskID:          task.ID,
				MeetingID:       task.MeetingID,
				TaskDescription: task.Description,
				CompletedBy:     completedBy,
			})
		if err != nil {
			d.logDeliveryFailure(recipient, err)
			return
		}
		if err := d.upsert(ctx, n); err != nil {
			d.logDeliveryFailure(recipient, err)
			return
		}
		d.publish(ctx, syncfeed.UserNotificationsKey(recipient), "task_completed")
	})
}

// MeetingUpdated notifies recipients that a meeting field changed
func (d *Dispatcher) MeetingUpdated(ctx context.Context, meeting entities.Meeting, changedField string, recipients []uuid.UUID) {
	d.dispatch(ctx, func(ctx context.Context) {
		for _, recipient := range recipients {
			n, err := entities.NewNotification(recipient, entities.NotificationMeetingUpdate, meeting.ID,
				entities.MeetingUpdatePayload{
					MeetingID:    meeting.ID,
					MeetingTitle: meeting.Title,
					ChangedField: changedField,
				})
			if err != nil {
				d.logDeliveryFailure(recipient, err)
				continue
			}
			if err := d.upsert(ctx, n); err != nil {
				d.logDeliveryFailure(recipient, err)
				continue
			}
			d.publish(ctx, syncfeed.UserNotificationsKey(recipient), "meeting_update")
		}
	})
}

// TeamInvited upserts a team_invitation notification keyed by (recipient,
// type, team), so a re-sent invite refreshes the existing entry
func (d *Dispatcher) TeamInvited(ctx context.Context, team entities.Team, recipient uuid.UUID, invitedBy string) {
	d.dispatch(ctx, func(ctx context.Context) {
		n, err := entities.NewNotification(recipient, entities.NotificationTeamInvitation, team.ID,
			entities.TeamInvitationPayload{
				TeamID:    team.ID,
				TeamName:  team.Name,
				InvitedBy: invitedBy,
			})
		if err != nil {
			d.logDeliveryFailure(recipient, err)
			return
		}
		if err := d.upsert(ctx, n); err != nil {
			d.logDeliveryFailure(recipient, err)
			return
		}
		d.publish(ctx, syncfeed.UserNotificationsKey(recipient), "team_invitation")
	})
}

// InviteResolved clears the outstanding invitation notification once the
// recipient accepted or declined
func (d *Dispatcher) InviteResolved(ctx context.Context, teamID, recipient uuid.UUID) {
	d.dispatch(ctx, func(ctx context.Context) {
		if err := retry.Do(ctx, d.policy, func() error {
			return d.notificationRepo.DeleteUnread(ctx, recipient, entities.NotificationTeamInvitation, teamID)
		}); err != nil {
			d.logDeliveryFailure(recipient, err)
			return
		}
		d.publish(ctx, syncfeed.UserNotificationsKey(recipient), "team_invitation_resolved")
	})
}

func (d *Dispatcher) upsert(ctx context.Context, n *entities.Notification) error {
	return retry.Do(ctx, d.policy, func() error {
		_, err := d.notificationRepo.UpsertUnread(ctx, n)
		return err
	})
}

func (d *Dispatcher) publish(ctx context.Context, key, kind string) {
	err := d.feed.Publish(ctx, syncfeed.Event{Key: key, Kind: kind, At: time.Now()})
	if err != nil && d.logger != nil {
		d.logger.Warn("failed to publish feed event",
			zap.String("key", key),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) logDeliveryFailure(recipient uuid.UUID, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Error("notification delivery failed after retries",
		zap.String("recipient_id", recipient.String()),
		zap.Error(apperrors.ErrNotificationDelivery(recipient.String(), err)),
	)
}
