package dto

import "github.com/peerev/peer-review-api/internal/models"

// UpdateUserRoleRequest changes a user's role.
type UpdateUserRoleRequest struct {
	UserID string          `json:"userId" validate:"required"`
	Role   models.UserRole `json:"role" validate:"required,oneof=student instructor admin"`
}

// UpdateUserStatusRequest changes a user's moderation status.
type UpdateUserStatusRequest struct {
	UserID string            `json:"userId" validate:"required"`
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended banned"`
}

// AdjustUserPointsRequest overwrites a user's points balance. Admin escape
// hatch outside the scoring engine.
type AdjustUserPointsRequest struct {
	UserID string `json:"userId" validate:"required"`
	Points int    `json:"points" validate:"min=0"`
}

// FlagReviewRequest marks a review for moderation.
type FlagReviewRequest struct {
	ReviewID string `json:"reviewId" validate:"required"`
	Reason   string `json:"reason"`
}

// AnalyticsOverview aggregates platform totals.
type AnalyticsOverview struct {
	TotalUsers       int `json:"totalUsers"`
	TotalStudents    int `json:"totalStudents"`
	TotalInstructors int `json:"totalInstructors"`
	TotalReviews     int `json:"totalReviews"`
	FlaggedReviews   int `json:"flaggedReviews"`
}

// AnalyticsResponse is the admin analytics payload.
type AnalyticsResponse struct {
	Overview   AnalyticsOverview        `json:"overview"`
	Engagement []models.EngagementPoint `json:"engagement"`
}
