package entities

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority defines task priorities
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// IsValid checks if the priority is valid
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus defines task lifecycle states
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// IsValid checks if the status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// SystemActor is recorded as AssignedBy when auto-assignment resolves an owner
const SystemActor = "system"

// Task is an action item extracted from a meeting, optionally assigned
type Task struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID uuid.UUID  `json:"meeting_id" gorm:"type:uuid;not null;index"`
	TeamID    *uuid.UUID `json:"team_id,omitempty" gorm:"type:uuid;index"` // inherited from meeting

	Description string       `json:"description" gorm:"type:text;not null"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);default:'medium';not null"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);default:'pending';not null"`

	// Raw label from the transcript, kept for manual follow-up on unresolved owners
	SuggestedOwner string `json:"suggested_owner" gorm:"type:varchar(255)"`

	// Assignee field group; always written together
	AssigneeID   *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	AssigneeName *string    `json:"assignee_name,omitempty" gorm:"type:varchar(255)"`
	AssignedBy   *string    `json:"assigned_by,omitempty" gorm:"type:varchar(255)"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty" gorm:"type:timestamp"`

	Deadline *time.Time `json:"deadline,omitempty" gorm:"type:timestamp"`
	Position int        `json:"position" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTask creates an unassigned task under a meeting
func NewTask(meeting *Meeting, description string, priority TaskPriority, suggestedOwner string, deadline *time.Time, position int) *Task {
	if !priority.IsValid() {
		priority = PriorityMedium
	}
	now := time.Now()
	return &Task{
		ID:             uuid.New(),
		MeetingID:      meeting.ID,
		TeamID:         meeting.TeamID,
		Description:    description,
		Priority:       priority,
		Status:         StatusPending,
		SuggestedOwner: suggestedOwner,
		Deadline:       deadline,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAssigned reports whether the assignee field group is populated
func (t *Task) IsAssigned() bool {
	return t.AssigneeID != nil
}

// Assignment captures a full-state write of the assignee field group.
// Writing the whole group at once is what makes last-write-wins well-defined.
type Assignment struct {
	AssigneeID   uuid.UUID
	AssigneeName string
	AssignedBy   string
	AssignedAt   time.Time
}
