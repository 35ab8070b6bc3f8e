package services

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exseed/exseed/models"
)

// ErrNoSpotsAvailable means the spot table is empty. This is a configuration
// fault: callers should surface it, not retry.
var ErrNoSpotsAvailable = errors.New("no spots available")

// RotationService assigns exactly one spot to each calendar date, avoiding
// back-to-back repeats whenever more than one spot exists.
type RotationService struct {
	db    *gorm.DB
	rules Rules

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRotationService creates a rotation engine over the given store.
func NewRotationService(db *gorm.DB, rules Rules) *RotationService {
	return &RotationService{
		db:    db,
		rules: rules,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// EnsureTodaysSpot returns the spot assigned to the given date, creating the
// assignment first if the date has none yet. Repeated calls for the same
// date always return the same spot.
func (s *RotationService) EnsureTodaysSpot(today time.Time) (*models.Spot, error) {
	rec, err := s.EnsureTodaysRecord(today)
	if err != nil {
		return nil, err
	}
	return &rec.Spot, nil
}

// EnsureTodaysRecord is EnsureTodaysSpot at the record level; the scoring
// engine needs the record row to count attendance against.
func (s *RotationService) EnsureTodaysRecord(today time.Time) (*models.SpotRecord, error) {
	day := DateOnly(today)

	var rec models.SpotRecord
	err := s.db.Preload("Spot").Where("date = ?", day).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	spot, err := s.pickSpot(day)
	if err != nil {
		return nil, err
	}

	rec = models.SpotRecord{SpotID: spot.ID, Date: day}
	res := s.db.Omit("Spot").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent caller created today's record first; theirs wins.
		if err := s.db.Preload("Spot").Where("date = ?", day).First(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}

	rec.Spot = *spot
	return &rec, nil
}

// pickSpot draws a uniformly random spot that differs from yesterday's
// assignment. With a single candidate the draw is accepted unconditionally;
// with several, rejection sampling is capped and falls back to a
// deterministic non-repeating choice so the loop always terminates.
func (s *RotationService) pickSpot(day time.Time) (*models.Spot, error) {
	var spots []models.Spot
	if err := s.db.Order("id").Find(&spots).Error; err != nil {
		return nil, err
	}
	if len(spots) == 0 {
		return nil, ErrNoSpotsAvailable
	}
	if len(spots) == 1 {
		return &spots[0], nil
	}

	var yesterdayID uint
	var prev models.SpotRecord
	err := s.db.Where("date = ?", day.AddDate(0, 0, -1)).First(&prev).Error
	switch {
	case err == nil:
		yesterdayID = prev.SpotID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if yesterdayID == 0 {
		return &spots[s.intn(len(spots))], nil
	}

	for i := 0; i < s.rules.SpotDrawMaxAttempts; i++ {
		candidate := &spots[s.intn(len(spots))]
		if candidate.ID != yesterdayID {
			return candidate, nil
		}
	}
	for i := range spots {
		if spots[i].ID != yesterdayID {
			return &spots[i], nil
		}
	}
	return &spots[0], nil
}

func (s *RotationService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
