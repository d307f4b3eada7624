package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	EntityID   string    `gorm:"size:100;not null" json:"entity_id"`   // achievement id for achievement events
	EntityType string    `gorm:"size:50;not null" json:"entity_type"`  // 'achievement'
	Type       string    `gorm:"size:50;not null" json:"type"`         // 'achievement_earned'
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
