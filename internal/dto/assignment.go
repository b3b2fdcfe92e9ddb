package dto

import (
	"io"
)

// CreateAssignmentRequest is the payload for POST /assignments/create. When a
// file is attached the submission is an upload; otherwise FileURL must carry a
// link.
type CreateAssignmentRequest struct {
	Title           string `form:"title" json:"title" validate:"required"`
	Description     string `form:"description" json:"description"`
	FileURL         string `form:"fileUrl" json:"fileUrl"`
	RequiredReviews int    `form:"requiredReviews" json:"requiredReviews" validate:"omitempty,min=1"`
}

// UploadedFile describes an attached multipart file handed to the service.
type UploadedFile struct {
	Filename string
	Size     int64
	Reader   io.Reader
}
