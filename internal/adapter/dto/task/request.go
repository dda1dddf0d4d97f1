package task

// ReassignRequest represents the request to reassign a task.
// AssigneeName is only used for personal meetings; for team meetings the
// roster display name wins.
type ReassignRequest struct {
	AssigneeID   string `json:"assignee_id" validate:"required,uuid"`
	AssigneeName string `json:"assignee_name,omitempty" validate:"omitempty,min=1,max=255"`
}

// UpdateStatusRequest represents the request to move a task through its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}
