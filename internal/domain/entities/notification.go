package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType defines notification kinds
type NotificationType string

const (
	NotificationTeamInvitation NotificationType = "team_invitation"
	NotificationTaskAssignment NotificationType = "task_assignment"
	NotificationTaskCompleted  NotificationType = "task_completed"
	NotificationMeetingUpdate  NotificationType = "meeting_update"
)

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTeamInvitation, NotificationTaskAssignment,
		NotificationTaskCompleted, NotificationMeetingUpdate:
		return true
	}
	return false
}

// Notification is a per-user inbox entry. Payload holds exactly one of the
// typed variants below, selected by Type. RefID points at the task, meeting
// or team the notification is about and is the upsert key together with
// (recipient, type).
type Notification struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipientID uuid.UUID        `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Type        NotificationType `json:"type" gorm:"type:varchar(30);not null"`
	RefID       uuid.UUID        `json:"ref_id" gorm:"type:uuid;not null;index"`
	Payload     datatypes.JSON   `json:"payload" gorm:"type:jsonb;default:'{}'"`
	Read        bool             `json:"read" gorm:"default:false;not null"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TaskAssignmentPayload is carried by task_assignment notifications
type TaskAssignmentPayload struct {
	TaskID          uuid.UUID `json:"task_id"`
	MeetingID       uuid.UUID `json:"meeting_id"`
	TaskDescription string    `json:"task_description"`
	AssignedBy      string    `json:"assigned_by"`
}

// TaskCompletedPayload is carried by task_completed notifications
type TaskCompletedPayload struct {
	TaskID          uuid.UUID `json:"task_id"`
	MeetingID       uuid.UUID `json:"meeting_id"`
	TaskDescription string    `json:"task_description"`
	CompletedBy     string    `json:"completed_by"`
}

// MeetingUpdatePayload is carried by meeting_update notifications
type MeetingUpdatePayload struct {
	MeetingID    uuid.UUID `json:"meeting_id"`
	MeetingTitle string    `json:"meeting_title"`
	ChangedField string    `json:"changed_field"`
}

// TeamInvitationPayload is carried by team_invitation notifications
type TeamInvitationPayload struct {
	TeamID    uuid.UUID `json:"team_id"`
	TeamName  string    `json:"team_name"`
	InvitedBy string    `json:"invited_by"`
}

// NewNotification builds a notification with the payload marshalled to jsonb
func NewNotification(recipientID uuid.UUID, typ NotificationType, refID uuid.UUID, payload interface{}) (*Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        typ,
		RefID:       refID,
		Payload:     raw,
		Read:        false,
		CreatedAt:   time.Now(),
	}, nil
}

// DecodePayload unmarshals the payload into the variant for the type
func (n *Notification) DecodePayload(out interface{}) error {
	return json.Unmarshal(n.Payload, out)
}
