package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/peerev/peer-review-api/internal/models"
)

const reviewColumns = `id, assignment_id, reviewer_id, strengths, weaknesses, suggestions, clarity, quality, effort, usefulness_score, flagged, flag_reason, created_at`

// ReviewRepository provides database access for reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO reviews (id, assignment_id, reviewer_id, strengths, weaknesses, suggestions, clarity, quality, effort, usefulness_score, flagged, flag_reason, created_at) VALUES (:id, :assignment_id, :reviewer_id, :strengths, :weaknesses, :suggestions, :clarity, :quality, :effort, :usefulness_score, :flagged, :flag_reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// FindByID returns a review by identifier.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*models.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1 LIMIT 1`, reviewColumns)
	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find review by id: %w", err)
	}
	return &review, nil
}

// ExistsForReviewer reports whether the reviewer already reviewed the
// assignment. At most one review per (assignment, reviewer) pair.
func (r *ReviewRepository) ExistsForReviewer(ctx context.Context, assignmentID, reviewerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE assignment_id = $1 AND reviewer_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, assignmentID, reviewerID); err != nil {
		return false, fmt.Errorf("check existing review: %w", err)
	}
	return exists, nil
}

// ListByAssignment returns an assignment's reviews, newest first.
func (r *ReviewRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE assignment_id = $1 ORDER BY created_at DESC`, reviewColumns)
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list reviews by assignment: %w", err)
	}
	return reviews, nil
}

// ListAllWithDetails returns every review joined with reviewer and assignment
// identity for moderation, newest first.
func (r *ReviewRepository) ListAllWithDetails(ctx context.Context) ([]models.ReviewWithDetails, error) {
	const query = `SELECT r.id, r.assignment_id, r.reviewer_id, r.strengths, r.weaknesses, r.suggestions, r.clarity, r.quality, r.effort, r.usefulness_score, r.flagged, r.flag_reason, r.created_at, u.name AS reviewer_name, a.title AS assignment_title FROM reviews r JOIN users u ON u.id = r.reviewer_id JOIN assignments a ON a.id = r.assignment_id ORDER BY r.created_at DESC`
	var reviews []models.ReviewWithDetails
	if err := r.db.SelectContext(ctx, &reviews, query); err != nil {
		return nil, fmt.Errorf("list reviews with details: %w", err)
	}
	return reviews, nil
}

// ListForExport returns an assignment's reviews with reviewer names and the
// assignment title, oldest first so export rows follow submission order.
func (r *ReviewRepository) ListForExport(ctx context.Context, assignmentID string) ([]models.ReviewWithDetails, error) {
	const query = `SELECT r.id, r.assignment_id, r.reviewer_id, r.strengths, r.weaknesses, r.suggestions, r.clarity, r.quality, r.effort, r.usefulness_score, r.flagged, r.flag_reason, r.created_at, u.name AS reviewer_name, a.title AS assignment_title FROM reviews r JOIN users u ON u.id = r.reviewer_id JOIN assignments a ON a.id = r.assignment_id WHERE r.assignment_id = $1 ORDER BY r.created_at ASC`
	var reviews []models.ReviewWithDetails
	if err := r.db.SelectContext(ctx, &reviews, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list reviews for export: %w", err)
	}
	return reviews, nil
}

// IncrementUsefulness atomically bumps the usefulness score.
func (r *ReviewRepository) IncrementUsefulness(ctx context.Context, id string) error {
	const query = `UPDATE reviews SET usefulness_score = usefulness_score + 1 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment usefulness: %w", err)
	}
	return requireRowsAffected(res)
}

// Flag marks a review for moderation with a reason.
func (r *ReviewRepository) Flag(ctx context.Context, id, reason string) error {
	const query = `UPDATE reviews SET flagged = TRUE, flag_reason = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("flag review: %w", err)
	}
	return requireRowsAffected(res)
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM reviews WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireRowsAffected(res)
}

// CountReviews counts reviews, optionally only flagged ones.
func (r *ReviewRepository) CountReviews(ctx context.Context, flaggedOnly bool) (int, error) {
	var count int
	if flaggedOnly {
		if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reviews WHERE flagged = TRUE`); err != nil {
			return 0, fmt.Errorf("count flagged reviews: %w", err)
		}
		return count, nil
	}
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reviews`); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// EngagementSince returns per-day review counts from the given time onward.
func (r *ReviewRepository) EngagementSince(ctx context.Context, since time.Time) ([]models.EngagementPoint, error) {
	const query = `SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count FROM reviews WHERE created_at >= $1 GROUP BY day ORDER BY day ASC`
	var points []models.EngagementPoint
	if err := r.db.SelectContext(ctx, &points, query, since); err != nil {
		return nil, fmt.Errorf("load engagement: %w", err)
	}
	return points, nil
}
