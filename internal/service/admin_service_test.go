package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

type fakeAdminUsers struct {
	users      []models.User
	total      int
	known      map[string]bool
	roleOf     map[string]models.UserRole
	statusOf   map[string]models.UserStatus
	pointsOf   map[string]int
	countTotal int
	countRole  map[models.UserRole]int
}

func (f *fakeAdminUsers) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	return f.users, f.total, nil
}

func (f *fakeAdminUsers) UpdateRole(_ context.Context, id string, role models.UserRole) error {
	if !f.known[id] {
		return sql.ErrNoRows
	}
	if f.roleOf == nil {
		f.roleOf = map[string]models.UserRole{}
	}
	f.roleOf[id] = role
	return nil
}

func (f *fakeAdminUsers) UpdateStatus(_ context.Context, id string, status models.UserStatus) error {
	if !f.known[id] {
		return sql.ErrNoRows
	}
	if f.statusOf == nil {
		f.statusOf = map[string]models.UserStatus{}
	}
	f.statusOf[id] = status
	return nil
}

func (f *fakeAdminUsers) SetPoints(_ context.Context, id string, points int) error {
	if !f.known[id] {
		return sql.ErrNoRows
	}
	if f.pointsOf == nil {
		f.pointsOf = map[string]int{}
	}
	f.pointsOf[id] = points
	return nil
}

func (f *fakeAdminUsers) CountUsers(_ context.Context, role *models.UserRole) (int, error) {
	if role == nil {
		return f.countTotal, nil
	}
	return f.countRole[*role], nil
}

type fakeAdminReviews struct {
	reviews    []models.ReviewWithDetails
	flagged    map[string]string
	deleted    []string
	known      map[string]bool
	total      int
	totalFlag  int
	engagement []models.EngagementPoint
}

func (f *fakeAdminReviews) ListAllWithDetails(_ context.Context) ([]models.ReviewWithDetails, error) {
	return f.reviews, nil
}

func (f *fakeAdminReviews) Flag(_ context.Context, id, reason string) error {
	if !f.known[id] {
		return sql.ErrNoRows
	}
	if f.flagged == nil {
		f.flagged = map[string]string{}
	}
	f.flagged[id] = reason
	return nil
}

func (f *fakeAdminReviews) Delete(_ context.Context, id string) error {
	if !f.known[id] {
		return sql.ErrNoRows
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAdminReviews) CountReviews(_ context.Context, flaggedOnly bool) (int, error) {
	if flaggedOnly {
		return f.totalFlag, nil
	}
	return f.total, nil
}

func (f *fakeAdminReviews) EngagementSince(_ context.Context, _ time.Time) ([]models.EngagementPoint, error) {
	return f.engagement, nil
}

func TestAdminListUsersPagination(t *testing.T) {
	users := &fakeAdminUsers{users: []models.User{{ID: "u1"}, {ID: "u2"}}, total: 42}
	svc := NewAdminService(users, &fakeAdminReviews{}, nil, zap.NewNop())

	result, pagination, err := svc.ListUsers(context.Background(), models.UserFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)

	assert.Len(t, result, 2)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 42, pagination.TotalCount)
}

func TestAdminUpdateUserRole(t *testing.T) {
	users := &fakeAdminUsers{known: map[string]bool{"u1": true}}
	svc := NewAdminService(users, &fakeAdminReviews{}, nil, zap.NewNop())

	require.NoError(t, svc.UpdateUserRole(context.Background(), dto.UpdateUserRoleRequest{UserID: "u1", Role: models.RoleInstructor}))
	assert.Equal(t, models.RoleInstructor, users.roleOf["u1"])

	err := svc.UpdateUserRole(context.Background(), dto.UpdateUserRoleRequest{UserID: "missing", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestAdminUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	svc := NewAdminService(&fakeAdminUsers{}, &fakeAdminReviews{}, nil, zap.NewNop())

	err := svc.UpdateUserRole(context.Background(), dto.UpdateUserRoleRequest{UserID: "u1", Role: "superuser"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminAdjustUserPoints(t *testing.T) {
	users := &fakeAdminUsers{known: map[string]bool{"u1": true}}
	svc := NewAdminService(users, &fakeAdminReviews{}, nil, zap.NewNop())

	require.NoError(t, svc.AdjustUserPoints(context.Background(), dto.AdjustUserPointsRequest{UserID: "u1", Points: 75}))
	assert.Equal(t, 75, users.pointsOf["u1"])
}

func TestAdminFlagAndDeleteReview(t *testing.T) {
	reviews := &fakeAdminReviews{known: map[string]bool{"r1": true}}
	svc := NewAdminService(&fakeAdminUsers{}, reviews, nil, zap.NewNop())

	require.NoError(t, svc.FlagReview(context.Background(), dto.FlagReviewRequest{ReviewID: "r1", Reason: "abusive"}))
	assert.Equal(t, "abusive", reviews.flagged["r1"])

	require.NoError(t, svc.DeleteReview(context.Background(), "r1"))
	assert.Equal(t, []string{"r1"}, reviews.deleted)

	err := svc.DeleteReview(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestAdminAnalyticsZeroFillsEngagement(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	users := &fakeAdminUsers{countTotal: 30, countRole: map[models.UserRole]int{
		models.RoleStudent:    25,
		models.RoleInstructor: 4,
	}}
	reviews := &fakeAdminReviews{
		total:     80,
		totalFlag: 3,
		engagement: []models.EngagementPoint{
			{Day: today, Count: 6},
		},
	}
	svc := NewAdminService(users, reviews, nil, zap.NewNop())

	analytics, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 30, analytics.Overview.TotalUsers)
	assert.Equal(t, 25, analytics.Overview.TotalStudents)
	assert.Equal(t, 80, analytics.Overview.TotalReviews)
	assert.Equal(t, 3, analytics.Overview.FlaggedReviews)

	require.Len(t, analytics.Engagement, 7)
	// Days without activity are present with a zero count; today carries the
	// reported count and comes last.
	assert.Equal(t, 6, analytics.Engagement[6].Count)
	for _, point := range analytics.Engagement[:6] {
		assert.Equal(t, 0, point.Count)
	}
}
