package dto

import "github.com/google/uuid"

type CheckManyRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,min=1"`
}

type CheckAllRequest struct {
	Limit int `json:"limit" binding:"omitempty,min=1"`
}

// UserCheckOutcome is the result of one user's evaluation inside a
// batch. A failed user never aborts the batch.
type UserCheckOutcome struct {
	UserID          uuid.UUID `json:"user_id"`
	Success         bool      `json:"success"`
	NewAchievements int       `json:"new_achievements"`
	Error           string    `json:"error,omitempty"`
}

type BatchSummary struct {
	TotalUsers           int `json:"total_users"`
	SuccessfulChecks     int `json:"successful_checks"`
	FailedChecks         int `json:"failed_checks"`
	TotalNewAchievements int `json:"total_new_achievements"`
}

type BatchRunResult struct {
	CorrelationID uuid.UUID          `json:"correlation_id"`
	Outcomes      []UserCheckOutcome `json:"outcomes"`
	Summary       BatchSummary       `json:"summary"`
}
