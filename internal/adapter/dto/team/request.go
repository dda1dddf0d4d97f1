package team

// InviteRequest represents the request to send an invitation notification
type InviteRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// RespondRequest represents the recipient's response to an invitation
type RespondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}
