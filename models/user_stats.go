package models

import "time"

// UserStats holds the gameplay state for a single user: points, streak and
// profile extras. Exactly one row per user; only the scoring engine mutates
// points and streaks.
type UserStats struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalPoints     int        `gorm:"not null;default:0" json:"total_points"`
	CurrentStreak   int        `gorm:"not null;default:0;index" json:"current_streak"`
	LastCheckinDate *time.Time `gorm:"type:date" json:"last_checkin_date"`
	PledgeAccepted  bool       `gorm:"not null;default:false" json:"pledge_accepted"`
	Title           string     `gorm:"size:100" json:"title"`
	AvatarID        *uint      `json:"avatar_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Avatar *Avatar `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"avatar,omitempty"`
}
