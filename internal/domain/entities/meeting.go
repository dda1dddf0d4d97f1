package entities

import (
	"time"

	"github.com/google/uuid"
)

// Meeting represents a processed meeting and owns its extracted tasks
type Meeting struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title      string     `json:"title" gorm:"type:varchar(255);not null"`
	Date       time.Time  `json:"date" gorm:"type:timestamp;not null"`
	Transcript string     `json:"transcript" gorm:"type:text"`
	OwnerID    uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	TeamID     *uuid.UUID `json:"team_id,omitempty" gorm:"type:uuid;index"`

	// Set once the summarizer output has been turned into tasks.
	// Re-processing a meeting with this flag set is a no-op.
	Processed   bool       `json:"processed" gorm:"default:false;not null"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewMeeting creates a meeting owned by the given user
func NewMeeting(title string, date time.Time, transcript string, ownerID uuid.UUID, teamID *uuid.UUID) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:         uuid.New(),
		Title:      title,
		Date:       date,
		Transcript: transcript,
		OwnerID:    ownerID,
		TeamID:     teamID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsPersonal reports whether the meeting is team-less
func (m *Meeting) IsPersonal() bool {
	return m.TeamID == nil
}
