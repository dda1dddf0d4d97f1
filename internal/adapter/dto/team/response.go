package team

import (
	"time"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// MemberResponse represents a team member in API responses
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	TeamID      string    `json:"team_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
}

// FromMember maps a membership entity to its response shape
func FromMember(m *entities.TeamMember) MemberResponse {
	return MemberResponse{
		UserID:      m.UserID.String(),
		TeamID:      m.TeamID.String(),
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        string(m.Role),
		Status:      string(m.Status),
		JoinedAt:    m.JoinedAt,
	}
}

// FromMembers maps a slice of memberships
func FromMembers(members []*entities.TeamMember) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, FromMember(m))
	}
	return out
}
