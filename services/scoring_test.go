package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exseed/exseed/models"
)

func TestRegisterAttendanceAwardSequence(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	createSpot(t, db, "Library Steps")

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := at(day, 10, 0, 0)

	expected := []int{6, 5, 4, 3, 2, 1, 1}
	for i, want := range expected {
		user := createUser(t, db, fmt.Sprintf("user-%d", i))
		res, err := svc.RegisterAttendance(user.ID, day, 4, now)
		require.NoError(t, err)
		assert.Equal(t, want, res.PointsAwarded, "registration %d", i+1)
		assert.Equal(t, want, res.TotalPoints)
		assert.Equal(t, 1, res.CurrentStreak)
	}

	var rec models.SpotRecord
	require.NoError(t, db.Where("date = ?", day).First(&rec).Error)
	assert.Equal(t, len(expected), rec.AttendanceCount)
}

func TestRegisterAttendanceWindowBoundaries(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		allowed bool
	}{
		{"opening second", at(day, 9, 0, 0), true},
		{"closing second", at(day, 16, 0, 0), true},
		{"one second early", at(day, 8, 59, 59), false},
		{"one second late", at(day, 16, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			rules := DefaultRules()
			svc := NewScoringService(db, NewRotationService(db, rules), rules)
			createSpot(t, db, "Library Steps")
			user := createUser(t, db, "alice")

			_, err := svc.RegisterAttendance(user.ID, day, 3, tt.now)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrOutsideWindow)

			// A rejected attempt must leave no trace at all.
			var records, registrations int64
			require.NoError(t, db.Model(&models.SpotRecord{}).Count(&records).Error)
			require.NoError(t, db.Model(&models.Registration{}).Count(&registrations).Error)
			assert.Zero(t, records)
			assert.Zero(t, registrations)
			assert.Zero(t, loadStats(t, db, user.ID).TotalPoints)
		})
	}
}

func TestRegisterAttendanceInvalidRating(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	createSpot(t, db, "Library Steps")
	user := createUser(t, db, "alice")

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := at(day, 10, 0, 0)

	for _, stars := range []int{0, -1, 6} {
		_, err := svc.RegisterAttendance(user.ID, day, stars, now)
		assert.ErrorIs(t, err, ErrInvalidRating, "stars=%d", stars)
	}
}

func TestRegisterAttendanceNoSpots(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	user := createUser(t, db, "alice")

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.RegisterAttendance(user.ID, day, 3, at(day, 10, 0, 0))
	assert.ErrorIs(t, err, ErrNoSpotToday)
}

func TestRegisterAttendanceDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	createSpot(t, db, "Library Steps")
	user := createUser(t, db, "alice")

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := at(day, 10, 0, 0)

	first, err := svc.RegisterAttendance(user.ID, day, 5, now)
	require.NoError(t, err)

	_, err = svc.RegisterAttendance(user.ID, day, 1, at(day, 11, 0, 0))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	stats := loadStats(t, db, user.ID)
	assert.Equal(t, first.TotalPoints, stats.TotalPoints)
	assert.Equal(t, first.CurrentStreak, stats.CurrentStreak)

	var rec models.SpotRecord
	require.NoError(t, db.Where("date = ?", day).First(&rec).Error)
	assert.Equal(t, 1, rec.AttendanceCount)
}

func TestStreakContinuationAndRestart(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	createSpot(t, db, "Library Steps")
	user := createUser(t, db, "alice")

	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day4 := day1.AddDate(0, 0, 3)

	res, err := svc.RegisterAttendance(user.ID, day1, 3, at(day1, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStreak)

	res, err = svc.RegisterAttendance(user.ID, day2, 3, at(day2, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentStreak)

	// Missing a day breaks the streak.
	res, err = svc.RegisterAttendance(user.ID, day4, 3, at(day4, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStreak)
}

func TestFirstCheckinOfDayResetsStaleStreaks(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	createSpot(t, db, "Library Steps")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day3 := day1.AddDate(0, 0, 2)

	_, err := svc.RegisterAttendance(alice.ID, day1, 3, at(day1, 10, 0, 0))
	require.NoError(t, err)
	_, err = svc.RegisterAttendance(bob.ID, day1, 3, at(day1, 10, 30, 0))
	require.NoError(t, err)

	// Bob's check-in two days later is the first of the day: it runs the
	// maintenance batch, which zeroes Alice's streak without any request
	// from her.
	res, err := svc.RegisterAttendance(bob.ID, day3, 3, at(day3, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStreak)

	assert.Zero(t, loadStats(t, db, alice.ID).CurrentStreak)
}

func TestRollingAverageAttendance(t *testing.T) {
	db := newTestDB(t)
	rules := DefaultRules()
	svc := NewScoringService(db, NewRotationService(db, rules), rules)
	spot := createSpot(t, db, "Library Steps")

	users := make([]models.User, 3)
	for i := range users {
		users[i] = createUser(t, db, fmt.Sprintf("user-%d", i))
	}

	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	for _, u := range users {
		_, err := svc.RegisterAttendance(u.ID, day1, 4, at(day1, 10, 0, 0))
		require.NoError(t, err)
	}

	// Day two's first check-in folds day one's total into the mean. With a
	// single featured day the mean equals that day's attendance.
	_, err := svc.RegisterAttendance(users[0].ID, day2, 4, at(day2, 10, 0, 0))
	require.NoError(t, err)

	var got models.Spot
	require.NoError(t, db.First(&got, spot.ID).Error)
	assert.Equal(t, 3, got.AverageAttendance)

	// ((3*1)+1)/2 with integer division.
	_, err = svc.RegisterAttendance(users[1].ID, day3, 4, at(day3, 10, 0, 0))
	require.NoError(t, err)

	require.NoError(t, db.First(&got, spot.ID).Error)
	assert.Equal(t, 2, got.AverageAttendance)
}

func TestClaimDailyTaskOncePerDay(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	first, err := claimDailyTask(db, "test-task", day)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := claimDailyTask(db, "test-task", day)
	require.NoError(t, err)
	assert.False(t, second)

	next, err := claimDailyTask(db, "test-task", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, next)
}
