package meeting

import (
	"time"
)

// CreateMeetingRequest represents the request to create a meeting
type CreateMeetingRequest struct {
	Title      string    `json:"title" validate:"required,min=1,max=255"`
	Date       time.Time `json:"date" validate:"required"`
	Transcript string    `json:"transcript" validate:"required,min=1"`
	TeamID     *string   `json:"team_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateMeetingRequest represents the request to edit meeting details
type UpdateMeetingRequest struct {
	Title string    `json:"title" validate:"required,min=1,max=255"`
	Date  time.Time `json:"date" validate:"required"`
}

// LinkTeamRequest moves the meeting between teams; null unlinks it
type LinkTeamRequest struct {
	TeamID *string `json:"team_id" validate:"omitempty,uuid"`
}
