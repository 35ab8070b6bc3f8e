package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exseed/exseed/models"
)

var (
	// ErrInvalidRating is returned for star ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5 stars")
	// ErrOutsideWindow is returned when a check-in arrives outside the
	// permitted daily window. Nothing is mutated.
	ErrOutsideWindow = errors.New("check-in window is closed")
	// ErrNoSpotToday means no spot could be assigned for the day; the
	// condition self-heals once spots exist.
	ErrNoSpotToday = errors.New("no spot assigned for today")
	// ErrAlreadyRegistered rejects a second check-in for the same day.
	ErrAlreadyRegistered = errors.New("already checked in today")
)

// maintenanceTaskName keys the persisted once-per-day marker that gates the
// streak-reset batch and the rolling-average finalization.
const maintenanceTaskName = "daily-maintenance"

// CheckinResult reports the caller's totals after a successful check-in.
type CheckinResult struct {
	TotalPoints   int `json:"total_points"`
	CurrentStreak int `json:"current_streak"`
	PointsAwarded int `json:"points_awarded"`
}

// ScoringService accepts at most one rated check-in per user per day, awards
// points and streaks, and runs the day's maintenance batch exactly once.
type ScoringService struct {
	db       *gorm.DB
	rotation *RotationService
	rules    Rules
}

// NewScoringService creates a scoring engine sharing the rotation engine's
// view of the day's spot.
func NewScoringService(db *gorm.DB, rotation *RotationService, rules Rules) *ScoringService {
	return &ScoringService{db: db, rotation: rotation, rules: rules}
}

// RegisterAttendance validates and records a check-in. All writes happen in
// one transaction: the daily maintenance batch (when this is the first
// check-in of the day anywhere), the registration row, the attendance
// counter, and the user's points and streak. Rejections leave no trace.
func (s *ScoringService) RegisterAttendance(userID uint, today time.Time, ratingStars int, now time.Time) (*CheckinResult, error) {
	if ratingStars < 1 || ratingStars > 5 {
		return nil, ErrInvalidRating
	}
	if !s.withinWindow(now) {
		return nil, ErrOutsideWindow
	}

	day := DateOnly(today)
	rec, err := s.rotation.EnsureTodaysRecord(day)
	if err != nil {
		if errors.Is(err, ErrNoSpotsAvailable) {
			return nil, ErrNoSpotToday
		}
		return nil, err
	}

	var existing int64
	if err := s.db.Model(&models.Registration{}).
		Where("user_id = ? AND spot_record_id = ?", userID, rec.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyRegistered
	}

	var result CheckinResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		firstOfDay, err := claimDailyTask(tx, maintenanceTaskName, day)
		if err != nil {
			return err
		}
		if firstOfDay {
			if err := resetStaleStreaks(tx, day); err != nil {
				return err
			}
			if err := finalizeYesterdayAverage(tx, day); err != nil {
				return err
			}
		}

		// The unique (user, record) index makes this the single point where
		// concurrent duplicates lose; the pre-check above only spares the
		// transaction for the common case.
		reg := models.Registration{
			UserID:       userID,
			SpotRecordID: rec.ID,
			RatingStars:  ratingStars,
			RegisteredAt: now,
		}
		if err := tx.Create(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}

		var before int64
		if err := tx.Model(&models.Registration{}).
			Where("spot_record_id = ? AND id <> ?", rec.ID, reg.ID).
			Count(&before).Error; err != nil {
			return err
		}
		bonus := s.rules.EarlyBonusMax - int(before)
		if bonus < 0 {
			bonus = 0
		}
		awarded := s.rules.BasePoints + bonus

		var stats models.UserStats
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			return err
		}
		yesterday := day.AddDate(0, 0, -1)
		if stats.LastCheckinDate != nil && DateOnly(*stats.LastCheckinDate).Equal(yesterday) {
			stats.CurrentStreak++
		} else {
			stats.CurrentStreak = 1
		}
		stats.TotalPoints += awarded
		checkin := day
		stats.LastCheckinDate = &checkin
		if err := tx.Save(&stats).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.SpotRecord{}).Where("id = ?", rec.ID).
			UpdateColumn("attendance_count", gorm.Expr("attendance_count + 1")).Error; err != nil {
			return err
		}

		result = CheckinResult{
			TotalPoints:   stats.TotalPoints,
			CurrentStreak: stats.CurrentStreak,
			PointsAwarded: awarded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// withinWindow reports whether now falls inside [open, close], both bounds
// inclusive to the second.
func (s *ScoringService) withinWindow(now time.Time) bool {
	open := time.Date(now.Year(), now.Month(), now.Day(), s.rules.CheckinOpenHour, 0, 0, 0, now.Location())
	close := time.Date(now.Year(), now.Month(), now.Day(), s.rules.CheckinCloseHour, 0, 0, 0, now.Location())
	return !now.Before(open) && !now.After(close)
}

// claimDailyTask atomically advances the named marker to day. It reports
// true for exactly one caller per day; everyone else sees the marker already
// advanced. Losing the race is not an error.
func claimDailyTask(tx *gorm.DB, name string, day time.Time) (bool, error) {
	res := tx.Model(&models.DailyTask{}).
		Where("name = ? AND last_run_date < ?", name, day).
		Update("last_run_date", day)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	created := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.DailyTask{Name: name, LastRunDate: day})
	if created.Error != nil {
		return false, created.Error
	}
	return created.RowsAffected > 0, nil
}

// resetStaleStreaks zeroes every streak whose owner last checked in before
// yesterday. Runs once per day, on the first check-in system-wide, so users
// who stopped showing up lose their streak without ever making a request.
func resetStaleStreaks(tx *gorm.DB, day time.Time) error {
	yesterday := day.AddDate(0, 0, -1)
	return tx.Model(&models.UserStats{}).
		Where("current_streak > 0 AND (last_checkin_date IS NULL OR (last_checkin_date <> ? AND last_checkin_date <> ?))", day, yesterday).
		Update("current_streak", 0).Error
}

// finalizeYesterdayAverage folds yesterday's final attendance into its
// spot's running mean. n counts the spot's featured days up to and including
// yesterday; the mean is incremental by design, not recomputed from history.
func finalizeYesterdayAverage(tx *gorm.DB, day time.Time) error {
	yesterday := day.AddDate(0, 0, -1)

	var prev models.SpotRecord
	err := tx.Where("date = ?", yesterday).First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var n int64
	if err := tx.Model(&models.SpotRecord{}).
		Where("spot_id = ? AND date <= ?", prev.SpotID, yesterday).
		Count(&n).Error; err != nil {
		return err
	}

	var spot models.Spot
	if err := tx.First(&spot, prev.SpotID).Error; err != nil {
		return err
	}

	avg := prev.AttendanceCount
	if n > 1 {
		avg = ((spot.AverageAttendance * int(n-1)) + prev.AttendanceCount) / int(n)
	}
	return tx.Model(&models.Spot{}).Where("id = ?", prev.SpotID).
		Update("average_attendance", avg).Error
}
