package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id string) (*models.Review, error)
	ExistsForReviewer(ctx context.Context, assignmentID, reviewerID string) (bool, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Review, error)
	IncrementUsefulness(ctx context.Context, id string) error
}

type reviewAssignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	RecordReviewReceived(ctx context.Context, id string) (*models.Assignment, error)
}

type reviewScorer interface {
	ReviewSubmitted(ctx context.Context, reviewerID string) (*models.User, error)
	ReviewMarkedHelpful(ctx context.Context, reviewerID string) (*models.User, error)
}

// ReviewService handles review submission, anonymized listing and usefulness
// rating.
type ReviewService struct {
	reviews     reviewRepository
	assignments reviewAssignmentRepository
	scorer      reviewScorer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReviewService creates an instance of ReviewService.
func NewReviewService(reviews reviewRepository, assignments reviewAssignmentRepository, scorer reviewScorer, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{reviews: reviews, assignments: assignments, scorer: scorer, validator: validate, logger: logger}
}

// Submit validates the business rules, persists the review, then applies the
// assignment-progress and scoring side effects. All rule violations are
// detected before any write, so a rejected submission leaves no partial state.
func (s *ReviewService) Submit(ctx context.Context, reviewerID string, req dto.SubmitReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if assignment.SubmittedBy == reviewerID {
		return nil, appErrors.ErrSelfReview
	}
	if assignment.Status == models.AssignmentClosed {
		return nil, appErrors.ErrAssignmentClosed
	}

	exists, err := s.reviews.ExistsForReviewer(ctx, assignment.ID, reviewerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.ErrDuplicateReview
	}

	review := &models.Review{
		AssignmentID: assignment.ID,
		ReviewerID:   reviewerID,
		Strengths:    req.Strengths,
		Weaknesses:   req.Weaknesses,
		Suggestions:  req.Suggestions,
		Clarity:      req.Ratings.Clarity,
		Quality:      req.Ratings.Quality,
		Effort:       req.Ratings.Effort,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review")
	}

	if _, err := s.assignments.RecordReviewReceived(ctx, assignment.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment progress")
	}

	// The review is durable; a scoring failure must not fail the request.
	if _, err := s.scorer.ReviewSubmitted(ctx, reviewerID); err != nil {
		s.logger.Warn("review scoring failed", zap.String("reviewer_id", reviewerID), zap.Error(err))
	}

	return review, nil
}

// ListForAssignment returns an assignment's reviews, newest first, with the
// reviewer identity replaced by a positional anonymous name.
func (s *ReviewService) ListForAssignment(ctx context.Context, assignmentID string) ([]dto.AnonymousReview, error) {
	reviews, err := s.reviews.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}

	masked := make([]dto.AnonymousReview, 0, len(reviews))
	for i, review := range reviews {
		masked = append(masked, dto.AnonymousReview{
			ID:           review.ID,
			AssignmentID: review.AssignmentID,
			ReviewerName: fmt.Sprintf("Anonymous #%d", i+1),
			Strengths:    review.Strengths,
			Weaknesses:   review.Weaknesses,
			Suggestions:  review.Suggestions,
			Ratings: dto.Ratings{
				Clarity: review.Clarity,
				Quality: review.Quality,
				Effort:  review.Effort,
			},
			UsefulnessScore: review.UsefulnessScore,
			CreatedAt:       review.CreatedAt,
		})
	}
	return masked, nil
}

// Rate lets the assignment owner mark a review as useful. useful=false is a
// no-op. Each useful=true call re-increments; there is no dedup of repeat
// marks.
func (s *ReviewService) Rate(ctx context.Context, callerID string, req dto.RateReviewRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rate payload")
	}

	review, err := s.reviews.FindByID(ctx, req.ReviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}

	assignment, err := s.assignments.FindByID(ctx, review.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if assignment.SubmittedBy != callerID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "not authorized to rate this review")
	}

	if !req.Useful {
		return nil
	}

	if err := s.reviews.IncrementUsefulness(ctx, review.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rate review")
	}

	if _, err := s.scorer.ReviewMarkedHelpful(ctx, review.ReviewerID); err != nil {
		s.logger.Warn("helpful scoring failed", zap.String("reviewer_id", review.ReviewerID), zap.Error(err))
	}

	return nil
}
