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

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository backed by GORM
func NewTaskRepository(db *gorm.DB) repo.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(tasks).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	var tasks []*entities.Task
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetAssignment writes the whole assignee field group in one UPDATE.
// Full-state writes keep last-write-wins well-defined under concurrent
// reassignment of the same task.
func (r *taskRepository) SetAssignment(ctx context.Context, id uuid.UUID, a entities.Assignment) error {
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assignee_id":   a.AssigneeID,
			"assignee_name": a.AssigneeName,
			"assigned_by":   a.AssignedBy,
			"assigned_at":   a.AssignedAt,
			"updated_at":    time.Now(),
		}).Error
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TaskStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *taskRepository) SetTeamByMeeting(ctx context.Context, meetingID uuid.UUID, teamID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("meeting_id = ?", meetingID).
		Update("team_id", teamID).Error
}

// ListAssignedToUser answers the per-user index query lazily: the union of
// tasks in meetings the user owns and tasks in meetings of teams where the
// user is an active member, filtered to the user as assignee. Reads go
// against the canonical tables, so the writer always sees its own write.
func (r *taskRepository) ListAssignedToUser(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	q := `SELECT t.id, t.meeting_id, t.team_id, t.description, t.priority, t.status,
	             t.suggested_owner, t.assignee_id, t.assignee_name, t.assigned_by, t.assigned_at,
	             t.deadline, t.position, t.created_at, t.updated_at
	      FROM tasks t
	      JOIN meetings m ON m.id = t.meeting_id
	      WHERE t.assignee_id = ?
	        AND (m.owner_id = ?
	             OR m.team_id IN (
	                  SELECT tm.team_id FROM team_members tm
	                  WHERE tm.user_id = ? AND tm.status = 'active'))
	      ORDER BY t.created_at DESC`

	rows, err := r.db.WithContext(ctx).Raw(q, userID, userID, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*entities.Task
	for rows.Next() {
		var t entities.Task
		if err := rows.Scan(&t.ID, &t.MeetingID, &t.TeamID, &t.Description, &t.Priority, &t.Status,
			&t.SuggestedOwner, &t.AssigneeID, &t.AssigneeName, &t.AssignedBy, &t.AssignedAt,
			&t.Deadline, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}
