package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/metrics"
	"github.com/studyduel/studyduel-backend/internal/repository"
)

const (
	leaderboardKey = "achievements:leaderboard"
	statsCacheKey  = "achievements:stats"

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// errTierEmpty signals that a precomputed tier is cold (reachable but
// holding no data), so the next tier should be consulted.
var errTierEmpty = errors.New("leaderboard tier has no data")

// LeaderboardService serves rankings and distribution statistics over
// the award ledger with a tiered fallback: Redis ZSET cache, then the
// maintained stats table, then on-demand aggregation over the ledger.
// All tiers produce identically shaped output. Reporting is not a
// correctness-critical path: when every tier is unavailable the service
// returns an empty result, never an error.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	GetAchievementStats(ctx context.Context) (*dto.AchievementStats, error)
	// RecordAward keeps the precomputed tiers warm after a new award.
	// Best-effort: failures are logged and the tiers degrade.
	RecordAward(ctx context.Context, userID uuid.UUID, earnedAt time.Time)
}

// leaderboardSource is one fallback tier. Sources are tried in order;
// each is independently testable.
type leaderboardSource interface {
	Name() string
	Top(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

type leaderboardService struct {
	awardRepo   repository.AwardRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
	sources     []leaderboardSource
	now         func() time.Time
}

func NewLeaderboardService(awardRepo repository.AwardRepository, userRepo repository.UserRepository, redisClient *redis.Client, cacheTTL time.Duration) LeaderboardService {
	s := &leaderboardService{
		awardRepo:   awardRepo,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
	s.sources = []leaderboardSource{
		&redisLeaderboardSource{client: redisClient, userRepo: userRepo},
		&statsTableLeaderboardSource{awardRepo: awardRepo},
		&ledgerLeaderboardSource{awardRepo: awardRepo},
	}
	return s
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	for _, source := range s.sources {
		entries, err := source.Top(ctx, limit)
		if err != nil {
			if !errors.Is(err, errTierEmpty) {
				log.Printf("leaderboard: tier %s unavailable: %v", source.Name(), err)
			}
			continue
		}
		metrics.LeaderboardTierServedTotal.WithLabelValues(source.Name()).Inc()
		return rankEntries(entries), nil
	}

	metrics.LeaderboardTierServedTotal.WithLabelValues("none").Inc()
	return []dto.LeaderboardEntry{}, nil
}

func (s *leaderboardService) GetAchievementStats(ctx context.Context) (*dto.AchievementStats, error) {
	// Tier 1: maintained summary in Redis.
	if s.redisClient != nil {
		raw, err := s.redisClient.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats dto.AchievementStats
			if err := json.Unmarshal([]byte(raw), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	// Tier 2: direct aggregation over the ledger.
	stats, err := s.aggregateStats(ctx)
	if err != nil {
		log.Printf("leaderboard: stats aggregation unavailable: %v", err)
		return &dto.AchievementStats{
			PerAchievement: []dto.AchievementCount{},
			GeneratedAt:    s.now(),
		}, nil
	}

	if s.redisClient != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.redisClient.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil {
				log.Printf("leaderboard: failed to cache stats: %v", err)
			}
		}
	}
	return stats, nil
}

func (s *leaderboardService) aggregateStats(ctx context.Context) (*dto.AchievementStats, error) {
	total, err := s.awardRepo.TotalAwards(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.awardRepo.AwardsSince(ctx, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	perAchievement, err := s.awardRepo.CountPerAchievement(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]dto.AchievementCount, 0, len(perAchievement))
	for _, row := range perAchievement {
		counts = append(counts, dto.AchievementCount{
			AchievementID: row.AchievementID,
			Name:          row.Name,
			Count:         row.Count,
		})
	}
	return &dto.AchievementStats{
		TotalAwards:     total,
		AwardsLast7Days: recent,
		PerAchievement:  counts,
		GeneratedAt:     s.now(),
	}, nil
}

func (s *leaderboardService) RecordAward(ctx context.Context, userID uuid.UUID, earnedAt time.Time) {
	if err := s.awardRepo.UpsertStats(ctx, userID, earnedAt); err != nil {
		log.Printf("leaderboard: failed to upsert stats for user %s: %v", userID, err)
	}
	if s.redisClient != nil {
		if err := s.redisClient.ZIncrBy(ctx, leaderboardKey, 1, userID.String()).Err(); err != nil {
			log.Printf("leaderboard: failed to bump cached score for user %s: %v", userID, err)
		}
		// Cached stats are stale after a new award.
		if err := s.redisClient.Del(ctx, statsCacheKey).Err(); err != nil {
			log.Printf("leaderboard: failed to invalidate stats cache: %v", err)
		}
	}
}

// rankEntries enforces deterministic ordering regardless of the serving
// tier (count descending, user id ascending) and assigns positions.
func rankEntries(entries []dto.LeaderboardEntry) []dto.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AchievementCount != entries[j].AchievementCount {
			return entries[i].AchievementCount > entries[j].AchievementCount
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

type redisLeaderboardSource struct {
	client   *redis.Client
	userRepo repository.UserRepository
}

func (s *redisLeaderboardSource) Name() string { return "cache" }

func (s *redisLeaderboardSource) Top(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if s.client == nil {
		return nil, errors.New("redis not configured")
	}

	members, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, errTierEmpty
	}

	ids := make([]uuid.UUID, 0, len(members))
	scores := make(map[uuid.UUID]int64, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member.Member.(string))
		if err != nil {
			continue
		}
		ids = append(ids, id)
		scores[id] = int64(member.Score)
	}
	if len(ids) == 0 {
		return nil, errTierEmpty
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	usernames := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		usernames[user.ID] = user.Username
	}

	entries := make([]dto.LeaderboardEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, dto.LeaderboardEntry{
			UserID:           id,
			Username:         usernames[id],
			AchievementCount: scores[id],
		})
	}
	return entries, nil
}

type statsTableLeaderboardSource struct {
	awardRepo repository.AwardRepository
}

func (s *statsTableLeaderboardSource) Name() string { return "stats" }

func (s *statsTableLeaderboardSource) Top(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	rows, err := s.awardRepo.TopUsersFromStats(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errTierEmpty
	}
	return rowsToEntries(rows), nil
}

type ledgerLeaderboardSource struct {
	awardRepo repository.AwardRepository
}

func (s *ledgerLeaderboardSource) Name() string { return "ledger" }

// Top aggregates over the raw ledger. As the last tier, an empty result
// is the truth, not a miss.
func (s *ledgerLeaderboardSource) Top(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	rows, err := s.awardRepo.TopUsersFromLedger(ctx, limit)
	if err != nil {
		return nil, err
	}
	return rowsToEntries(rows), nil
}

func rowsToEntries(rows []repository.LeaderboardRow) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, dto.LeaderboardEntry{
			UserID:           row.UserID,
			Username:         row.Username,
			AchievementCount: row.AchievementCount,
		})
	}
	return entries
}
