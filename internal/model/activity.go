package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DuelOutcomeWon  = "won"
	DuelOutcomeLost = "lost"
	DuelOutcomeDraw = "draw"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// DuelResult is one user's outcome of a finished duel.
type DuelResult struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	OpponentID *uuid.UUID `gorm:"type:uuid" json:"opponent_id,omitempty"` // nil for bot duels
	Outcome    string     `gorm:"size:10;not null" json:"outcome"`        // 'won', 'lost', 'draw'
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

type StudySession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	StartedAt       time.Time `gorm:"index;not null" json:"started_at"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type CourseCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_course,priority:1;not null" json:"user_id"`
	CourseID    string    `gorm:"size:100;uniqueIndex:idx_user_course,priority:2;not null" json:"course_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_friend,priority:1;not null" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_friend,priority:2;not null" json:"friend_id"`
	Status    string    `gorm:"size:20;default:pending" json:"status"` // 'pending', 'accepted'
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Report is a moderation report filed by a user.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReporterID uuid.UUID `gorm:"type:uuid;index;not null" json:"reporter_id"`
	TargetType string    `gorm:"size:50;not null" json:"target_type"` // 'question', 'user', 'answer'
	TargetID   string    `gorm:"size:100;not null" json:"target_id"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
