package dto

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is one ranked row. Position is 1-based; ties on
// AchievementCount are broken by user id ascending so the ordering is
// deterministic regardless of which tier served the request.
type LeaderboardEntry struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	Position         int       `json:"position"`
	AchievementCount int64     `json:"achievement_count"`
}

type AchievementCount struct {
	AchievementID uint   `json:"achievement_id"`
	Name          string `json:"name"`
	Count         int64  `json:"count"`
}

type AchievementStats struct {
	TotalAwards     int64              `json:"total_awards"`
	AwardsLast7Days int64              `json:"awards_last_7_days"`
	PerAchievement  []AchievementCount `json:"per_achievement"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
