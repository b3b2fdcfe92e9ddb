package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/peerev/peer-review-api/internal/models"
)

const userColumns = `id, name, email, password_hash, role, status, points, badges, helpful_reviews_count, reviewed_count, created_assignments_count, created_at, updated_at`

// UserRepository provides database access for users and their gamification
// counters.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Badges == nil {
		user.Badges = []string{}
	}

	const query = `INSERT INTO users (id, name, email, password_hash, role, status, points, badges, helpful_reviews_count, reviewed_count, created_assignments_count, created_at, updated_at) VALUES (:id, :name, :email, :password_hash, :role, :status, :points, :badges, :helpful_reviews_count, :reviewed_count, :created_assignments_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateDetails updates the caller-editable profile fields.
func (r *UserRepository) UpdateDetails(ctx context.Context, id, name, email string) (*models.User, error) {
	query := fmt.Sprintf(`UPDATE users SET name = $2, email = $3, updated_at = $4 WHERE id = $1 RETURNING %s`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, name, email, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update user details: %w", err)
	}
	return &user, nil
}

// IncrementCounters atomically applies the given deltas to the user's point
// and review counters and returns the post-increment record. The increment is
// a single statement so concurrent events on the same user never lose updates.
func (r *UserRepository) IncrementCounters(ctx context.Context, id string, points, reviewed, helpful int) (*models.User, error) {
	query := fmt.Sprintf(`UPDATE users SET points = points + $2, reviewed_count = reviewed_count + $3, helpful_reviews_count = helpful_reviews_count + $4, updated_at = $5 WHERE id = $1 RETURNING %s`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, points, reviewed, helpful, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("increment user counters: %w", err)
	}
	return &user, nil
}

// GrantBadge appends the badge unless it is already held. The guard makes the
// grant idempotent under concurrent writers, so the badge set never gains
// duplicates and never shrinks.
func (r *UserRepository) GrantBadge(ctx context.Context, id, badge string) error {
	const query = `UPDATE users SET badges = array_append(badges, $2), updated_at = $3 WHERE id = $1 AND NOT ($2 = ANY(badges))`
	if _, err := r.db.ExecContext(ctx, query, id, badge, time.Now().UTC()); err != nil {
		return fmt.Errorf("grant badge %q: %w", badge, err)
	}
	return nil
}

// IncrementCreatedAssignments bumps the creation counter for a user.
func (r *UserRepository) IncrementCreatedAssignments(ctx context.Context, id string) error {
	const query = `UPDATE users SET created_assignments_count = created_assignments_count + 1, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment created assignments: %w", err)
	}
	return nil
}

// CountWithMorePoints returns how many users have strictly more points than
// the given total. Rank is derived from this at read time and never stored.
func (r *UserRepository) CountWithMorePoints(ctx context.Context, points int) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE points > $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, points); err != nil {
		return 0, fmt.Errorf("count users with more points: %w", err)
	}
	return count, nil
}

// Leaderboard returns the top users ordered by points descending.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const query = `SELECT id, name, points, helpful_reviews_count, reviewed_count, badges FROM users ORDER BY points DESC LIMIT $1`
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return entries, nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", userColumns, baseQuery, pageSize, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// UpdateRole overwrites a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return requireRowsAffected(res)
}

// UpdateStatus overwrites a user's moderation status.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	const query = `UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return requireRowsAffected(res)
}

// SetPoints overwrites a user's points balance.
func (r *UserRepository) SetPoints(ctx context.Context, id string, points int) error {
	const query = `UPDATE users SET points = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, points, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set user points: %w", err)
	}
	return requireRowsAffected(res)
}

// CountUsers counts users, optionally narrowed to one role.
func (r *UserRepository) CountUsers(ctx context.Context, role *models.UserRole) (int, error) {
	var count int
	if role == nil {
		if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
			return 0, fmt.Errorf("count users: %w", err)
		}
		return count, nil
	}
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = $1`, *role); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return count, nil
}

func requireRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
