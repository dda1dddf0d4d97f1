package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-taskflow/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	OwnerID     string     `json:"owner_id"`
	TeamID      *string    `json:"team_id,omitempty"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromEntity maps a meeting entity to its response shape
func FromEntity(m *entities.Meeting) MeetingResponse {
	resp := MeetingResponse{
		ID:          m.ID.String(),
		Title:       m.Title,
		Date:        m.Date,
		OwnerID:     m.OwnerID.String(),
		Processed:   m.Processed,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
	}
	if m.TeamID != nil {
		id := m.TeamID.String()
		resp.TeamID = &id
	}
	return resp
}

// FromEntities maps a slice of meetings
func FromEntities(meetings []*entities.Meeting) []MeetingResponse {
	out := make([]MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, FromEntity(m))
	}
	return out
}

// ProcessResponse is returned by the processing endpoint: the meeting plus
// its extracted tasks
type ProcessResponse struct {
	Meeting MeetingResponse     `json:"meeting"`
	Tasks   []task.TaskResponse `json:"tasks"`
}
