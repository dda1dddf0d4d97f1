package notification

import (
	"encoding/json"
	"time"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
)

// NotificationResponse represents an inbox entry in API responses. Payload
// is passed through as-is; its shape depends on Type.
type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	RefID     string          `json:"ref_id"`
	Payload   json.RawMessage `json:"payload"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromEntity maps a notification entity to its response shape
func FromEntity(n *entities.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		RefID:     n.RefID.String(),
		Payload:   json.RawMessage(n.Payload),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// FromEntities maps a slice of notifications
func FromEntities(notifications []*entities.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, FromEntity(n))
	}
	return out
}
