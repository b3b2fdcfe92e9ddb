package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

type stubCacheRepo struct {
	store   map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.store == nil {
		s.store = map[string][]byte{}
	}
	s.store[key] = raw
	s.setKeys = append(s.setKeys, key)
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, key string) error {
	delete(s.store, key)
	return nil
}

type fakeStatsRepo struct {
	user        *models.User
	ahead       int
	entries     []models.LeaderboardEntry
	leaderCalls int
}

func (f *fakeStatsRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeStatsRepo) CountWithMorePoints(_ context.Context, _ int) (int, error) {
	return f.ahead, nil
}

func (f *fakeStatsRepo) Leaderboard(_ context.Context, _ int) ([]models.LeaderboardEntry, error) {
	f.leaderCalls++
	return f.entries, nil
}

func TestUserStatsRankIsAheadPlusOne(t *testing.T) {
	repo := &fakeStatsRepo{user: &models.User{ID: "u1", Points: 120}, ahead: 4}
	svc := NewUserService(repo, NewCacheService(nil, nil, time.Minute, zap.NewNop(), false), zap.NewNop())

	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Rank)
	assert.Equal(t, 120, stats.Points)
}

func TestUserStatsTiedUsersShareRank(t *testing.T) {
	// Nobody has strictly more points, so every tied user ranks first.
	repo := &fakeStatsRepo{user: &models.User{ID: "u1", Points: 50}, ahead: 0}
	svc := NewUserService(repo, NewCacheService(nil, nil, time.Minute, zap.NewNop(), false), zap.NewNop())

	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rank)
}

func TestUserStatsUnknownUser(t *testing.T) {
	svc := NewUserService(&fakeStatsRepo{}, NewCacheService(nil, nil, time.Minute, zap.NewNop(), false), zap.NewNop())

	_, err := svc.Stats(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestUserLeaderboardPopulatesCache(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	repo := &fakeStatsRepo{entries: []models.LeaderboardEntry{
		{ID: "u1", Name: "Top", Points: 300},
		{ID: "u2", Name: "Second", Points: 120},
	}}
	svc := NewUserService(repo, NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true), zap.NewNop())

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"leaderboard:top"}, cacheRepo.setKeys)

	// Second read is served from cache.
	entries, err = svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Top", entries[0].Name)
	assert.Equal(t, 1, repo.leaderCalls)
}

func TestUserLeaderboardSurvivesCacheFailure(t *testing.T) {
	cacheRepo := &stubCacheRepo{getErr: assert.AnError, setErr: assert.AnError}
	repo := &fakeStatsRepo{entries: []models.LeaderboardEntry{{ID: "u1", Points: 10}}}
	svc := NewUserService(repo, NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true), zap.NewNop())

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
