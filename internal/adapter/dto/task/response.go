package task

import (
	"time"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID             string     `json:"id"`
	MeetingID      string     `json:"meeting_id"`
	TeamID         *string    `json:"team_id,omitempty"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	SuggestedOwner string     `json:"suggested_owner,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	AssigneeName   *string    `json:"assignee_name,omitempty"`
	AssignedBy     *string    `json:"assigned_by,omitempty"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Position       int        `json:"position"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FromEntity maps a task entity to its response shape
func FromEntity(t *entities.Task) TaskResponse {
	resp := TaskResponse{
		ID:             t.ID.String(),
		MeetingID:      t.MeetingID.String(),
		Description:    t.Description,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		SuggestedOwner: t.SuggestedOwner,
		AssigneeName:   t.AssigneeName,
		AssignedBy:     t.AssignedBy,
		AssignedAt:     t.AssignedAt,
		Deadline:       t.Deadline,
		Position:       t.Position,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.TeamID != nil {
		id := t.TeamID.String()
		resp.TeamID = &id
	}
	if t.AssigneeID != nil {
		id := t.AssigneeID.String()
		resp.AssigneeID = &id
	}
	return resp
}

// FromEntities maps a slice of tasks
func FromEntities(tasks []*entities.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromEntity(t))
	}
	return out
}
