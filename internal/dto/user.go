package dto

import "github.com/peerev/peer-review-api/internal/models"

// UserStats is the authenticated user's gamification snapshot plus the
// leaderboard rank computed at read time.
type UserStats struct {
	models.User
	Rank int `json:"rank"`
}
