package dto

// CloseAssignmentRequest is the payload for POST /instructor/close-assignment.
type CloseAssignmentRequest struct {
	AssignmentID string `json:"assignmentId" validate:"required"`
}
