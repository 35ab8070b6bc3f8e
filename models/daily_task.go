package models

import "time"

// DailyTask is a persisted once-per-day marker. A batch job claims a day by
// advancing LastRunDate inside the caller's transaction; whoever wins the
// guarded UPDATE runs the job, everyone else skips it.
type DailyTask struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	LastRunDate time.Time `gorm:"type:date;not null" json:"last_run_date"`
	UpdatedAt   time.Time `json:"updated_at"`
}
