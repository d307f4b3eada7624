package dto

import (
	"encoding/json"
	"time"

	"github.com/studyduel/studyduel-backend/internal/rule"
)

// Requirement is carried as raw JSON so the service can run it through
// the strict parser (unknown fields rejected) instead of gin's
// permissive binding.
type CreateAchievementRequest struct {
	Name        string          `json:"name" binding:"required,min=3,max=100"`
	Description string          `json:"description"`
	Requirement json.RawMessage `json:"requirement" binding:"required"`
}

// UpdateAchievementRequest applies a partial-field merge: only provided
// fields change.
type UpdateAchievementRequest struct {
	Name        *string         `json:"name,omitempty" binding:"omitempty,min=3,max=100"`
	Description *string         `json:"description,omitempty"`
	Requirement json.RawMessage `json:"requirement,omitempty"`
}

type AchievementResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Requirement rule.Expression `json:"requirement"`
	CreatedAt   time.Time       `json:"created_at"`
}

type UserAchievementResponse struct {
	Achievement AchievementResponse `json:"achievement"`
	DateEarned  time.Time           `json:"date_earned"`
}

// AchievementProgressResponse is the derived progress view for one
// achievement a user has not yet earned.
type AchievementProgressResponse struct {
	AchievementID   uint     `json:"achievement_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Satisfied       bool     `json:"satisfied"`
	Progress        float64  `json:"progress"`
	MetRequirements []string `json:"met_requirements"`
}

type UserProgressResponse struct {
	Entries []AchievementProgressResponse `json:"entries"`
	// PartialData is set when one or more activity sources were
	// unreachable while building the snapshot.
	PartialData bool `json:"partial_data"`
}
