package dto

import "time"

// Ratings carries the three per-review scores, each on a 1-5 scale.
type Ratings struct {
	Clarity int `json:"clarity" validate:"required,min=1,max=5"`
	Quality int `json:"quality" validate:"required,min=1,max=5"`
	Effort  int `json:"effort" validate:"required,min=1,max=5"`
}

// SubmitReviewRequest is the payload for POST /reviews/submit.
type SubmitReviewRequest struct {
	AssignmentID string  `json:"assignmentId" validate:"required"`
	Strengths    string  `json:"strengths"`
	Weaknesses   string  `json:"weaknesses"`
	Suggestions  string  `json:"suggestions"`
	Ratings      Ratings `json:"ratings" validate:"required"`
}

// RateReviewRequest is the payload for POST /reviews/rate.
type RateReviewRequest struct {
	ReviewID string `json:"reviewId" validate:"required"`
	Useful   bool   `json:"useful"`
}

// AnonymousReview is a review with the reviewer identity stripped. The name is
// positional in the returned, newest-first ordering.
type AnonymousReview struct {
	ID              string    `json:"id"`
	AssignmentID    string    `json:"assignmentId"`
	ReviewerName    string    `json:"reviewerName"`
	Strengths       string    `json:"strengths"`
	Weaknesses      string    `json:"weaknesses"`
	Suggestions     string    `json:"suggestions"`
	Ratings         Ratings   `json:"ratings"`
	UsefulnessScore int       `json:"usefulnessScore"`
	CreatedAt       time.Time `json:"created_at"`
}
