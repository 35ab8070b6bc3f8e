package models

import "time"

// SpotRecord assigns one Spot to one calendar date. The unique index on
// Date is what makes concurrent first-of-the-day creation safe: the insert
// is performed with ON CONFLICT DO NOTHING and losers re-read the winner.
type SpotRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SpotID          uint      `gorm:"index;not null" json:"spot_id"`
	Date            time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	AttendanceCount int       `gorm:"not null;default:0" json:"attendance_count"`
	CreatedAt       time.Time `json:"created_at"`

	Spot          Spot           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"spot"`
	Registrations []Registration `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
