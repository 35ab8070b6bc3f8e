package models

import "time"

// Registration records one user's check-in at one day's spot, with the star
// rating they gave it. The composite unique index is the transactional
// backstop for the one-check-in-per-day rule; the scoring engine also checks
// before inserting so duplicates are rejected without side effects.
type Registration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index:idx_reg_user_record,unique;not null" json:"user_id"`
	SpotRecordID uint      `gorm:"index:idx_reg_user_record,unique;not null" json:"spot_record_id"`
	RatingStars  int       `gorm:"not null" json:"rating_stars"`
	RegisteredAt time.Time `gorm:"not null" json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
}
