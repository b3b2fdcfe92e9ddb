package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

const (
	leaderboardCacheKey = "leaderboard:top"
	leaderboardSize     = 20
)

type statsUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountWithMorePoints(ctx context.Context, points int) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// UserService exposes gamification read paths: per-user stats with a
// read-time rank, and the cached leaderboard.
type UserService struct {
	repo   statsUserRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo statsUserRepository, cache *CacheService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, cache: cache, logger: logger}
}

// Stats returns the user's counters and badges plus the leaderboard rank.
// Rank is 1 + the number of users with strictly more points, computed fresh
// per request so it always matches current point totals.
func (s *UserService) Stats(ctx context.Context, userID string) (*dto.UserStats, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	ahead, err := s.repo.CountWithMorePoints(ctx, user.Points)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute rank")
	}

	return &dto.UserStats{User: *user, Rank: ahead + 1}, nil
}

// Leaderboard returns the top users by points. The result is cached; a cache
// failure falls back to the database.
func (s *UserService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var cached []models.LeaderboardEntry
	if hit, err := s.cache.Get(ctx, leaderboardCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	entries, err := s.repo.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}

	if err := s.cache.Set(ctx, leaderboardCacheKey, entries, 0); err != nil {
		s.logger.Warn("leaderboard cache set failed", zap.Error(err))
	}

	return entries, nil
}
