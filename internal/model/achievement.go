package model

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is an admin-defined milestone. Requirement holds the JSON
// form of a rule.Expression, validated at write time.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Requirement string    `gorm:"type:jsonb;not null" json:"requirement"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserAchievement records that a user earned an achievement. The unique
// index over (user_id, achievement_id) is what makes awarding idempotent
// under concurrent checks; never rely on application-level locking here.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_user_achievement,priority:1;not null" json:"user_id"`
	AchievementID uint        `gorm:"uniqueIndex:idx_user_achievement,priority:2;not null" json:"achievement_id"`
	User          *User       `gorm:"foreignKey:UserID" json:"-"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID;constraint:OnDelete:NO ACTION" json:"achievement"`
	DateEarned    time.Time   `gorm:"autoCreateTime" json:"date_earned"`
}

// UserAchievementStats is a maintained per-user summary used as the
// second leaderboard tier. Upserted on each new award; may lag behind
// the ledger and is never treated as the source of truth.
type UserAchievementStats struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User             User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	AchievementCount int       `gorm:"default:0" json:"achievement_count"`
	LastEarnedAt     time.Time `json:"last_earned_at"`
}
