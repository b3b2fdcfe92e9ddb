package models

import "time"

// Review is one reviewer's feedback on one assignment. Content is immutable
// after creation; only the usefulness score and flag fields change.
type Review struct {
	ID              string    `db:"id" json:"id"`
	AssignmentID    string    `db:"assignment_id" json:"assignmentId"`
	ReviewerID      string    `db:"reviewer_id" json:"reviewerId"`
	Strengths       string    `db:"strengths" json:"strengths"`
	Weaknesses      string    `db:"weaknesses" json:"weaknesses"`
	Suggestions     string    `db:"suggestions" json:"suggestions"`
	Clarity         int       `db:"clarity" json:"clarity"`
	Quality         int       `db:"quality" json:"quality"`
	Effort          int       `db:"effort" json:"effort"`
	UsefulnessScore int       `db:"usefulness_score" json:"usefulnessScore"`
	Flagged         bool      `db:"flagged" json:"flagged"`
	FlagReason      *string   `db:"flag_reason" json:"flagReason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ReviewWithDetails joins reviewer and assignment identity for moderation and
// export views.
type ReviewWithDetails struct {
	Review
	ReviewerName    string `db:"reviewer_name" json:"reviewerName"`
	AssignmentTitle string `db:"assignment_title" json:"assignmentTitle"`
}

// EngagementPoint counts reviews submitted on a given day.
type EngagementPoint struct {
	Day   string `db:"day" json:"name"`
	Count int    `db:"count" json:"active"`
}
