package services

import (
	"time"

	"github.com/exseed/exseed/config"
)

// Rules bundles the gameplay thresholds. The historical versions of the game
// disagreed on several of these values, so they are injected from
// configuration rather than hard-coded in the engines.
type Rules struct {
	// CheckinOpenHour/CheckinCloseHour bound the daily registration window,
	// inclusive on both ends (09:00:00 and 16:00:00 both count).
	CheckinOpenHour  int
	CheckinCloseHour int
	// BasePoints is awarded for every successful check-in; the first
	// EarlyBonusMax users of the day receive a decreasing extra on top.
	BasePoints    int
	EarlyBonusMax int
	// Leaderboard window sizes: the top block and the slice checked right
	// below it before falling back to the scan.
	LeaderboardTopSize  int
	LeaderboardNearSize int
	// SpotDrawMaxAttempts caps the rejection-sampling loop when drawing a
	// spot different from yesterday's.
	SpotDrawMaxAttempts int
}

// DefaultRules returns the rule set of the latest game revision.
func DefaultRules() Rules {
	return Rules{
		CheckinOpenHour:     9,
		CheckinCloseHour:    16,
		BasePoints:          1,
		EarlyBonusMax:       5,
		LeaderboardTopSize:  5,
		LeaderboardNearSize: 2,
		SpotDrawMaxAttempts: 16,
	}
}

// RulesFromConfig maps the configured game thresholds onto a rule set.
func RulesFromConfig(cfg config.AppConfig) Rules {
	return Rules{
		CheckinOpenHour:     cfg.CheckinOpenHour,
		CheckinCloseHour:    cfg.CheckinCloseHour,
		BasePoints:          cfg.CheckinBasePoints,
		EarlyBonusMax:       cfg.CheckinEarlyBonus,
		LeaderboardTopSize:  cfg.LeaderboardTopSize,
		LeaderboardNearSize: cfg.LeaderboardNearSize,
		SpotDrawMaxAttempts: cfg.SpotDrawMaxAttempts,
	}
}

// DateOnly truncates a timestamp to its calendar date at UTC midnight, the
// canonical representation for all DATE columns in the store.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
