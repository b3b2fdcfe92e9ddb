package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

const engagementWindowDays = 7

type adminUserRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
	SetPoints(ctx context.Context, id string, points int) error
	CountUsers(ctx context.Context, role *models.UserRole) (int, error)
}

type adminReviewRepository interface {
	ListAllWithDetails(ctx context.Context) ([]models.ReviewWithDetails, error)
	Flag(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
	CountReviews(ctx context.Context, flaggedOnly bool) (int, error)
	EngagementSince(ctx context.Context, since time.Time) ([]models.EngagementPoint, error)
}

// AdminService covers user moderation, review moderation and platform
// analytics.
type AdminService struct {
	users     adminUserRepository
	reviews   adminReviewRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService creates an instance of AdminService.
func NewAdminService(users adminUserRepository, reviews adminReviewRepository, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{users: users, reviews: reviews, validator: validate, logger: logger}
}

// ListUsers returns users with pagination metadata.
func (s *AdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// UpdateUserRole overwrites a user's role.
func (s *AdminService) UpdateUserRole(ctx context.Context, req dto.UpdateUserRoleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	if err := s.users.UpdateRole(ctx, req.UserID, req.Role); err != nil {
		return s.mapUserWriteError(err, "failed to update role")
	}
	s.logger.Info("user role updated", zap.String("user_id", req.UserID), zap.String("role", string(req.Role)))
	return nil
}

// UpdateUserStatus overwrites a user's moderation status.
func (s *AdminService) UpdateUserStatus(ctx context.Context, req dto.UpdateUserStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if err := s.users.UpdateStatus(ctx, req.UserID, req.Status); err != nil {
		return s.mapUserWriteError(err, "failed to update status")
	}
	s.logger.Info("user status updated", zap.String("user_id", req.UserID), zap.String("status", string(req.Status)))
	return nil
}

// AdjustUserPoints overwrites a user's points balance.
func (s *AdminService) AdjustUserPoints(ctx context.Context, req dto.AdjustUserPointsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid points payload")
	}
	if err := s.users.SetPoints(ctx, req.UserID, req.Points); err != nil {
		return s.mapUserWriteError(err, "failed to adjust points")
	}
	return nil
}

// ListReviews returns all reviews with reviewer/assignment identity for
// moderation.
func (s *AdminService) ListReviews(ctx context.Context) ([]models.ReviewWithDetails, error) {
	reviews, err := s.reviews.ListAllWithDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

// FlagReview marks a review for moderation.
func (s *AdminService) FlagReview(ctx context.Context, req dto.FlagReviewRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid flag payload")
	}
	if err := s.reviews.Flag(ctx, req.ReviewID, req.Reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag review")
	}
	return nil
}

// DeleteReview removes a review.
func (s *AdminService) DeleteReview(ctx context.Context, reviewID string) error {
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete review")
	}
	return nil
}

// Analytics aggregates platform totals and the last week of review activity,
// zero-filled for days without reviews.
func (s *AdminService) Analytics(ctx context.Context) (*dto.AnalyticsResponse, error) {
	totalUsers, err := s.users.CountUsers(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	studentRole := models.RoleStudent
	totalStudents, err := s.users.CountUsers(ctx, &studentRole)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	instructorRole := models.RoleInstructor
	totalInstructors, err := s.users.CountUsers(ctx, &instructorRole)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}
	totalReviews, err := s.reviews.CountReviews(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reviews")
	}
	flaggedReviews, err := s.reviews.CountReviews(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count flagged reviews")
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -engagementWindowDays)
	raw, err := s.reviews.EngagementSince(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load engagement")
	}

	counts := make(map[string]int, len(raw))
	for _, point := range raw {
		counts[point.Day] = point.Count
	}

	engagement := make([]models.EngagementPoint, 0, engagementWindowDays)
	for i := engagementWindowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		engagement = append(engagement, models.EngagementPoint{
			Day:   day.Weekday().String()[:3],
			Count: counts[key],
		})
	}

	return &dto.AnalyticsResponse{
		Overview: dto.AnalyticsOverview{
			TotalUsers:       totalUsers,
			TotalStudents:    totalStudents,
			TotalInstructors: totalInstructors,
			TotalReviews:     totalReviews,
			FlaggedReviews:   flaggedReviews,
		},
		Engagement: engagement,
	}, nil
}

func (s *AdminService) mapUserWriteError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
