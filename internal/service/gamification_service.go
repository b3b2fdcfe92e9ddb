package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

// Point awards per scoring event.
const (
	PointsPerReview      = 10
	PointsPerHelpfulMark = 5
)

// Badge names granted by the scoring engine.
const (
	BadgeFirstReview    = "First Review"
	BadgeActiveReviewer = "Active Reviewer"
	BadgeHelpfulCritic  = "Helpful Critic"
	BadgeTopContributor = "Top Contributor"
)

// Badge thresholds.
const (
	firstReviewThreshold    = 1
	activeReviewerThreshold = 10
	helpfulCriticThreshold  = 5
	topContributorThreshold = 200
)

type gamificationRepository interface {
	IncrementCounters(ctx context.Context, id string, points, reviewed, helpful int) (*models.User, error)
	GrantBadge(ctx context.Context, id, badge string) error
}

// GamificationService is the scoring engine: it applies point/counter deltas
// for review events and evaluates badge unlocks against the post-increment
// counters. Both event paths run every badge rule, so a threshold crossed
// through either path is never missed.
type GamificationService struct {
	repo   gamificationRepository
	logger *zap.Logger
}

// NewGamificationService constructs a GamificationService.
func NewGamificationService(repo gamificationRepository, logger *zap.Logger) *GamificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GamificationService{repo: repo, logger: logger}
}

// EvaluateBadges returns every badge the given counters qualify for. Pure:
// callers diff the result against the badges already held.
func EvaluateBadges(points, reviewedCount, helpfulCount int) []string {
	var badges []string
	if reviewedCount >= firstReviewThreshold {
		badges = append(badges, BadgeFirstReview)
	}
	if reviewedCount >= activeReviewerThreshold {
		badges = append(badges, BadgeActiveReviewer)
	}
	if helpfulCount >= helpfulCriticThreshold {
		badges = append(badges, BadgeHelpfulCritic)
	}
	if points >= topContributorThreshold {
		badges = append(badges, BadgeTopContributor)
	}
	return badges
}

// ReviewSubmitted credits a reviewer for a freshly persisted review.
func (s *GamificationService) ReviewSubmitted(ctx context.Context, reviewerID string) (*models.User, error) {
	return s.applyEvent(ctx, reviewerID, PointsPerReview, 1, 0)
}

// ReviewMarkedHelpful credits a reviewer whose review the assignment owner
// approved.
func (s *GamificationService) ReviewMarkedHelpful(ctx context.Context, reviewerID string) (*models.User, error) {
	return s.applyEvent(ctx, reviewerID, PointsPerHelpfulMark, 0, 1)
}

func (s *GamificationService) applyEvent(ctx context.Context, reviewerID string, points, reviewed, helpful int) (*models.User, error) {
	user, err := s.repo.IncrementCounters(ctx, reviewerID, points, reviewed, helpful)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Reviewer deleted concurrently. The review itself is already
			// durable, so the scoring event degrades to a no-op.
			s.logger.Warn("scoring event skipped, reviewer missing", zap.String("user_id", reviewerID))
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply scoring event")
	}

	for _, badge := range EvaluateBadges(user.Points, user.ReviewedCount, user.HelpfulReviewsCount) {
		if user.HasBadge(badge) {
			continue
		}
		if err := s.repo.GrantBadge(ctx, user.ID, badge); err != nil {
			s.logger.Warn("badge grant failed",
				zap.String("user_id", user.ID),
				zap.String("badge", badge),
				zap.Error(err))
			continue
		}
		user.Badges = append(user.Badges, badge)
	}

	return user, nil
}
