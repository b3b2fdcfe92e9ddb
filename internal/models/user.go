package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// UserStatus represents the moderation state of an account.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
	StatusBanned    UserStatus = "banned"
)

// User represents an application user stored in the users table. The counter
// fields are only ever mutated through atomic increments; badges is a set and
// never shrinks.
type User struct {
	ID                      string         `db:"id" json:"id"`
	Name                    string         `db:"name" json:"name"`
	Email                   string         `db:"email" json:"email"`
	PasswordHash            string         `db:"password_hash" json:"-"`
	Role                    UserRole       `db:"role" json:"role"`
	Status                  UserStatus     `db:"status" json:"status"`
	Points                  int            `db:"points" json:"points"`
	Badges                  pq.StringArray `db:"badges" json:"badges"`
	HelpfulReviewsCount     int            `db:"helpful_reviews_count" json:"helpfulReviewsCount"`
	ReviewedCount           int            `db:"reviewed_count" json:"reviewedCount"`
	CreatedAssignmentsCount int            `db:"created_assignments_count" json:"createdAssignmentsCount"`
	CreatedAt               time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time      `db:"updated_at" json:"updated_at"`
}

// HasBadge reports whether the user already holds the named badge.
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// LeaderboardEntry is the public projection of a user on the leaderboard.
type LeaderboardEntry struct {
	ID                  string         `db:"id" json:"id"`
	Name                string         `db:"name" json:"name"`
	Points              int            `db:"points" json:"points"`
	HelpfulReviewsCount int            `db:"helpful_reviews_count" json:"helpfulReviewsCount"`
	ReviewedCount       int            `db:"reviewed_count" json:"reviewedCount"`
	Badges              pq.StringArray `db:"badges" json:"badges"`
}

// UserFilter captures filtering criteria for the admin user listing.
type UserFilter struct {
	Role     *UserRole
	Status   *UserStatus
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
