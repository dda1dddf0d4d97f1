package entities

import (
	"time"

	"github.com/google/uuid"
)

// Team groups members and their meetings. Team CRUD lives outside this core;
// the engine only reads teams and memberships.
type Team struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MemberRole defines team member roles
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// IsValid checks if the role is valid
func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleAdmin, MemberRoleMember:
		return true
	}
	return false
}

// MemberStatus defines membership lifecycle states
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInvited  MemberStatus = "invited"
	MemberStatusInactive MemberStatus = "inactive"
)

// TeamMember is a user's membership in a team
type TeamMember struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID      uuid.UUID    `json:"team_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_user"`
	UserID      uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_user"`
	DisplayName string       `json:"display_name" gorm:"type:varchar(255);not null"`
	Email       string       `json:"email" gorm:"type:varchar(255);not null"`
	Role        MemberRole   `json:"role" gorm:"type:varchar(20);default:'member';not null"`
	Status      MemberStatus `json:"status" gorm:"type:varchar(20);default:'invited';not null"`
	JoinedAt    time.Time    `json:"joined_at" gorm:"type:timestamp;not null"`
}

// IsActive reports whether the member can be assigned work
func (m *TeamMember) IsActive() bool {
	return m.Status == MemberStatusActive
}

// IsAdmin reports whether the member can reassign team tasks
func (m *TeamMember) IsAdmin() bool {
	return m.Role == MemberRoleAdmin
}
