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

func assignmentRows(a models.Assignment) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "file_url", "file_path", "upload_type", "submitted_by", "required_reviews", "received_reviews_count", "status", "created_at", "updated_at"}).
		AddRow(a.ID, a.Title, a.Description, a.FileURL, a.FilePath, a.UploadType, a.SubmittedBy, a.RequiredReviews, a.ReceivedReviewsCount, a.Status, time.Now(), time.Now())
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Assignment{
		Title:           "Essay",
		SubmittedBy:     "u1",
		RequiredReviews: 3,
		UploadType:      models.UploadTypeLink,
		Status:          models.AssignmentPending,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	require.NotEmpty(t, a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryRecordReviewReceived(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assignments SET received_reviews_count = received_reviews_count + 1, status = CASE WHEN status = 'pending' AND received_reviews_count + 1 >= required_reviews THEN 'reviewed' ELSE status END")).
		WithArgs("a1", sqlmock.AnyArg()).
		WillReturnRows(assignmentRows(models.Assignment{
			ID: "a1", RequiredReviews: 3, ReceivedReviewsCount: 3, Status: models.AssignmentReviewed,
		}))

	a, err := repo.RecordReviewReceived(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, 3, a.ReceivedReviewsCount)
	require.Equal(t, models.AssignmentReviewed, a.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryClose(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assignments SET status = 'closed'")).
		WithArgs("a1", sqlmock.AnyArg()).
		WillReturnRows(assignmentRows(models.Assignment{ID: "a1", Status: models.AssignmentClosed}))

	a, err := repo.Close(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, models.AssignmentClosed, a.Status)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assignments SET status = 'closed'")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Close(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListReviewableExcludesOwnAndReviewed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE submitted_by <> $1 AND status = 'pending' AND id NOT IN (SELECT assignment_id FROM reviews WHERE reviewer_id = $1)")).
		WithArgs("u1").
		WillReturnRows(assignmentRows(models.Assignment{ID: "a2", SubmittedBy: "u2", Status: models.AssignmentPending, RequiredReviews: 3}))

	items, err := repo.ListReviewable(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "a2", items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
