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

const assignmentColumns = `id, title, description, file_url, file_path, upload_type, submitted_by, required_reviews, received_reviews_count, status, created_at, updated_at`

// AssignmentRepository provides database access for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	const query = `INSERT INTO assignments (id, title, description, file_url, file_path, upload_type, submitted_by, required_reviews, received_reviews_count, status, created_at, updated_at) VALUES (:id, :title, :description, :file_url, :file_path, :upload_type, :submitted_by, :required_reviews, :received_reviews_count, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE id = $1 LIMIT 1`, assignmentColumns)
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &a, nil
}

// ListBySubmitter returns a user's own assignments, newest first.
func (r *AssignmentRepository) ListBySubmitter(ctx context.Context, userID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE submitted_by = $1 ORDER BY created_at DESC`, assignmentColumns)
	var items []models.Assignment
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list assignments by submitter: %w", err)
	}
	return items, nil
}

// ListReviewable returns pending assignments the user did not submit and has
// not yet reviewed, those with the fewest reviews first.
func (r *AssignmentRepository) ListReviewable(ctx context.Context, userID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE submitted_by <> $1 AND status = 'pending' AND id NOT IN (SELECT assignment_id FROM reviews WHERE reviewer_id = $1) ORDER BY received_reviews_count ASC, created_at DESC`, assignmentColumns)
	var items []models.Assignment
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list reviewable assignments: %w", err)
	}
	return items, nil
}

// ListAll returns every assignment joined with the submitter's identity,
// newest first.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.AssignmentWithSubmitter, error) {
	const query = `SELECT a.id, a.title, a.description, a.file_url, a.file_path, a.upload_type, a.submitted_by, a.required_reviews, a.received_reviews_count, a.status, a.created_at, a.updated_at, u.name AS submitter_name, u.email AS submitter_email FROM assignments a JOIN users u ON u.id = a.submitted_by ORDER BY a.created_at DESC`
	var items []models.AssignmentWithSubmitter
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all assignments: %w", err)
	}
	return items, nil
}

// RecordReviewReceived increments the received-review counter and flips the
// status to reviewed once the post-increment count reaches the target. A
// closed assignment keeps its status. Single statement, so concurrent reviews
// of the same assignment never observe a stale count.
func (r *AssignmentRepository) RecordReviewReceived(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`UPDATE assignments SET received_reviews_count = received_reviews_count + 1, status = CASE WHEN status = 'pending' AND received_reviews_count + 1 >= required_reviews THEN 'reviewed' ELSE status END, updated_at = $2 WHERE id = $1 RETURNING %s`, assignmentColumns)
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("record review received: %w", err)
	}
	return &a, nil
}

// Close marks the assignment closed. Terminal: no later transition reopens it.
func (r *AssignmentRepository) Close(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`UPDATE assignments SET status = 'closed', updated_at = $2 WHERE id = $1 RETURNING %s`, assignmentColumns)
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("close assignment: %w", err)
	}
	return &a, nil
}
