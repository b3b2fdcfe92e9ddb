package models

import "time"

// UploadType distinguishes link submissions from uploaded files.
type UploadType string

const (
	UploadTypeLink   UploadType = "link"
	UploadTypeUpload UploadType = "upload"
)

// AssignmentStatus models the explicit assignment state machine:
// pending -> reviewed once enough reviews arrive, and pending/reviewed ->
// closed via the instructor close action. Closed is terminal.
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentReviewed AssignmentStatus = "reviewed"
	AssignmentClosed   AssignmentStatus = "closed"
)

// Assignment represents submitted work awaiting peer review. Exactly one of
// FileURL/FilePath is set depending on UploadType.
type Assignment struct {
	ID                   string           `db:"id" json:"id"`
	Title                string           `db:"title" json:"title"`
	Description          string           `db:"description" json:"description"`
	FileURL              *string          `db:"file_url" json:"fileUrl,omitempty"`
	FilePath             *string          `db:"file_path" json:"filePath,omitempty"`
	UploadType           UploadType       `db:"upload_type" json:"uploadType"`
	SubmittedBy          string           `db:"submitted_by" json:"submittedBy"`
	RequiredReviews      int              `db:"required_reviews" json:"requiredReviews"`
	ReceivedReviewsCount int              `db:"received_reviews_count" json:"receivedReviewsCount"`
	Status               AssignmentStatus `db:"status" json:"status"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// AssignmentWithSubmitter joins the submitting user's public identity for
// instructor listings.
type AssignmentWithSubmitter struct {
	Assignment
	SubmitterName  string `db:"submitter_name" json:"submitterName"`
	SubmitterEmail string `db:"submitter_email" json:"submitterEmail"`
}
