package models

import "time"

// Spot is a campus location that can be featured as spot of the day.
// Created by administrators; the engines treat it as read-only except for
// AverageAttendance, which the scoring engine maintains as a running mean.
type Spot struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description       string    `gorm:"size:500" json:"description"`
	Latitude          float64   `gorm:"type:decimal(8,6);not null" json:"latitude"`
	Longitude         float64   `gorm:"type:decimal(9,6);not null" json:"longitude"`
	AverageAttendance int       `gorm:"not null;default:0" json:"average_attendance"`
	ImageURL          string    `gorm:"size:512" json:"image_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
