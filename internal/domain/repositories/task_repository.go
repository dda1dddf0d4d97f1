package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// TaskRepository defines persistence operations for tasks and the
// per-user assignment index
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []*entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error)

	// SetAssignment writes the whole assignee field group in one UPDATE
	SetAssignment(ctx context.Context, id uuid.UUID, a entities.Assignment) error

	// UpdateStatus moves the task through its lifecycle
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TaskStatus) error

	// SetTeamByMeeting rewrites the inherited team reference on all tasks
	// of a meeting when the meeting is linked to or unlinked from a team
	SetTeamByMeeting(ctx context.Context, meetingID uuid.UUID, teamID *uuid.UUID) error

	// ListAssignedToUser answers "all tasks assigned to user U": the union of
	// tasks in meetings U owns and tasks in meetings of teams where U is an
	// active member, filtered to assignee_id = U
	ListAssignedToUser(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error)
}
