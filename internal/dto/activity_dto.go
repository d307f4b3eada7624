package dto

import (
	"time"

	"github.com/google/uuid"
)

type RecordDuelResultRequest struct {
	Outcome    string     `json:"outcome" binding:"required,oneof=won lost draw"`
	OpponentID *uuid.UUID `json:"opponent_id,omitempty"`
}

type RecordStudySessionRequest struct {
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
}

type CompleteCourseRequest struct {
	CourseID string `json:"course_id" binding:"required,max=100"`
}

type AddFriendRequest struct {
	FriendID uuid.UUID `json:"friend_id" binding:"required"`
}

type FileReportRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=question answer user"`
	TargetID   string `json:"target_id" binding:"required,max=100"`
	Reason     string `json:"reason" binding:"required"`
}

// ActivityRecordedResponse is returned by the activity endpoints: the
// write succeeded, and the synchronous achievement check that follows it
// may have produced new awards.
type ActivityRecordedResponse struct {
	Message         string                `json:"message"`
	NewAchievements []AchievementResponse `json:"new_achievements"`
}
