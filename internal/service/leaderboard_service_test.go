package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
)

// Without a redis client the cache tier always misses, so these tests
// exercise the stats-table and ledger tiers plus the ordering contract.

func TestGetLeaderboardServesStatsTier(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	awardRepo.statsRows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Username: "bob", AchievementCount: 2},
		{UserID: uuid.New(), Username: "alice", AchievementCount: 7},
	}
	awardRepo.ledgerRows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Username: "stale", AchievementCount: 99},
	}
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Served from the stats tier, ranked by count regardless of row order.
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, 2, entries[1].Position)
}

func TestGetLeaderboardFallsBackToLedger(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	awardRepo.statsErr = errors.New("stats table unavailable")
	awardRepo.ledgerRows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Username: "carol", AchievementCount: 3},
	}
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "carol", entries[0].Username)
}

func TestGetLeaderboardColdStatsTierFallsThrough(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	awardRepo.statsRows = nil // reachable but empty
	awardRepo.ledgerRows = []repository.LeaderboardRow{
		{UserID: uuid.New(), Username: "dave", AchievementCount: 1},
	}
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dave", entries[0].Username)
}

func TestGetLeaderboardAllTiersDownReturnsEmpty(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	awardRepo.statsErr = errors.New("down")
	awardRepo.ledgerErr = errors.New("down")
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRankEntriesBreaksTiesByUserID(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	ranked := rankEntries([]dto.LeaderboardEntry{
		{UserID: high, Username: "zoe", AchievementCount: 5},
		{UserID: low, Username: "amy", AchievementCount: 5},
		{UserID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Username: "mid", AchievementCount: 9},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "mid", ranked[0].Username)
	assert.Equal(t, low, ranked[1].UserID)
	assert.Equal(t, high, ranked[2].UserID)
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Position, ranked[1].Position, ranked[2].Position})
}

func TestGetAchievementStatsAggregatesLedger(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	userID := uuid.New()
	for achievementID := uint(1); achievementID <= 3; achievementID++ {
		_, err := awardRepo.Create(context.Background(), &model.UserAchievement{UserID: userID, AchievementID: achievementID})
		require.NoError(t, err)
	}
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	stats, err := svc.GetAchievementStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalAwards)
	assert.Equal(t, int64(3), stats.AwardsLast7Days)
	assert.Len(t, stats.PerAchievement, 3)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestGetAchievementStatsDegradesToZeroValues(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	awardRepo.totalsErr = errors.New("ledger unavailable")
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	stats, err := svc.GetAchievementStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalAwards)
	assert.NotNil(t, stats.PerAchievement)
	assert.Empty(t, stats.PerAchievement)
}

func TestRecordAwardUpsertsStats(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	svc := NewLeaderboardService(awardRepo, newFakeUserRepo(), nil, time.Minute)

	svc.RecordAward(context.Background(), uuid.New(), time.Now())
	assert.Equal(t, 1, awardRepo.upserts)
}
