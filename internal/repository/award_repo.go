package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardRow is a raw aggregation row shared by the summary-table
// and ledger leaderboard tiers.
type LeaderboardRow struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	AchievementCount int64     `json:"achievement_count"`
}

type AchievementCountRow struct {
	AchievementID uint   `json:"achievement_id"`
	Name          string `json:"name"`
	Count         int64  `json:"count"`
}

type AwardRepository interface {
	// Create inserts the award, tolerating a uniqueness conflict on
	// (user_id, achievement_id). Returns true only when a new row was
	// actually written.
	Create(ctx context.Context, award *model.UserAchievement) (bool, error)
	FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID uint) (*model.UserAchievement, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)

	UpsertStats(ctx context.Context, userID uuid.UUID, earnedAt time.Time) error
	TopUsersFromStats(ctx context.Context, limit int) ([]LeaderboardRow, error)
	TopUsersFromLedger(ctx context.Context, limit int) ([]LeaderboardRow, error)

	TotalAwards(ctx context.Context) (int64, error)
	AwardsSince(ctx context.Context, since time.Time) (int64, error)
	CountPerAchievement(ctx context.Context) ([]AchievementCountRow, error)
}

type awardRepository struct {
	db *gorm.DB
}

func NewAwardRepository(db *gorm.DB) AwardRepository {
	return &awardRepository{db: db}
}

func (r *awardRepository) Create(ctx context.Context, award *model.UserAchievement) (bool, error) {
	// "Insert, tolerate uniqueness conflict" keeps concurrent checks for
	// the same user free of duplicate awards without any locking.
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *awardRepository) FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID uint) (*model.UserAchievement, error) {
	var award model.UserAchievement
	err := r.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&award).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &award, nil
}

func (r *awardRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var awards []model.UserAchievement
	err := r.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("date_earned DESC").
		Find(&awards).Error
	return awards, err
}

func (r *awardRepository) UpsertStats(ctx context.Context, userID uuid.UUID, earnedAt time.Time) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"achievement_count": gorm.Expr("user_achievement_stats.achievement_count + 1"),
			"last_earned_at":    earnedAt,
		}),
	}).Create(&model.UserAchievementStats{
		UserID:           userID,
		AchievementCount: 1,
		LastEarnedAt:     earnedAt,
	}).Error
}

func (r *awardRepository) TopUsersFromStats(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Model(&model.UserAchievementStats{}).
		Select("user_achievement_stats.user_id, users.username, user_achievement_stats.achievement_count").
		Joins("JOIN users ON users.id = user_achievement_stats.user_id").
		Order("user_achievement_stats.achievement_count DESC, user_achievement_stats.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *awardRepository) TopUsersFromLedger(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Select("user_achievements.user_id, users.username, COUNT(*) AS achievement_count").
		Joins("JOIN users ON users.id = user_achievements.user_id").
		Group("user_achievements.user_id, users.username").
		Order("achievement_count DESC, user_achievements.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *awardRepository) TotalAwards(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserAchievement{}).Count(&count).Error
	return count, err
}

func (r *awardRepository) AwardsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Where("date_earned >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *awardRepository) CountPerAchievement(ctx context.Context) ([]AchievementCountRow, error) {
	var rows []AchievementCountRow
	err := r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Select("user_achievements.achievement_id, achievements.name, COUNT(*) AS count").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Group("user_achievements.achievement_id, achievements.name").
		Order("count DESC, user_achievements.achievement_id ASC").
		Scan(&rows).Error
	return rows, err
}
