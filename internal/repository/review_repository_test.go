package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/peerev/peer-review-api/internal/models"
)

func TestReviewRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	review := &models.Review{
		AssignmentID: "a1",
		ReviewerID:   "u1",
		Strengths:    "solid",
		Clarity:      4,
		Quality:      4,
		Effort:       5,
	}
	require.NoError(t, repo.Create(context.Background(), review))
	require.NotEmpty(t, review.ID)
	require.False(t, review.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryExistsForReviewer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM reviews WHERE assignment_id = $1 AND reviewer_id = $2)")).
		WithArgs("a1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForReviewer(context.Background(), "a1", "u1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryIncrementUsefulness(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET usefulness_score = usefulness_score + 1 WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementUsefulness(context.Background(), "r1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET usefulness_score = usefulness_score + 1 WHERE id = $1")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.IncrementUsefulness(context.Background(), "gone"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryFlagAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET flagged = TRUE, flag_reason = $2 WHERE id = $1")).
		WithArgs("r1", "spam").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Flag(context.Background(), "r1", "spam"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "r1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryEngagementSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	since := time.Now().AddDate(0, 0, -7)
	rows := sqlmock.NewRows([]string{"day", "count"}).
		AddRow("2026-08-30", 4).
		AddRow("2026-08-31", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count FROM reviews")).
		WithArgs(since).
		WillReturnRows(rows)

	points, err := repo.EngagementSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 4, points[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}
