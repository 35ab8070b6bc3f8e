package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"github.com/exseed/exseed/models"
)

func createRankedUser(t *testing.T, db *gorm.DB, name string, points, streak int) models.User {
	t.Helper()
	user := createUser(t, db, name)
	require.NoError(t, db.Model(&models.UserStats{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{"total_points": points, "current_streak": streak}).Error)
	return user
}

func rowsFromScores(scores []int) []boardRow {
	rows := make([]boardRow, len(scores))
	for i, s := range scores {
		rows[i] = boardRow{UserID: uint(i + 1), Username: fmt.Sprintf("u%d", i+1), TotalPoints: s}
	}
	return rows
}

func ranksOf(entries []Entry) []int {
	ranks := make([]int, len(entries))
	for i, e := range entries {
		ranks[i] = e.Rank
	}
	return ranks
}

func TestAssignRanksTieLaw(t *testing.T) {
	rows := rowsFromScores([]int{10, 10, 7, 7, 7, 3})
	entries, _ := assignRanks(rows, MetricPoints, rankState{})
	assert.Equal(t, []int{1, 1, 3, 3, 3, 6}, ranksOf(entries))
}

func TestAssignRanksReplaysAcrossSliceBoundaries(t *testing.T) {
	scores := []int{50, 50, 50, 40, 30, 30, 20, 20, 20, 10}
	rows := rowsFromScores(scores)

	whole, _ := assignRanks(rows, MetricPoints, rankState{})

	// Splitting at any point and carrying the state must reproduce the
	// single-pass ranking exactly.
	for split := 1; split < len(rows); split++ {
		head, st := assignRanks(rows[:split], MetricPoints, rankState{})
		tail, _ := assignRanks(rows[split:], MetricPoints, st)
		assert.Equal(t, ranksOf(whole), append(ranksOf(head), ranksOf(tail)...), "split at %d", split)
	}
}

func TestComputeWindowUserInTopBlock(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())

	var users []models.User
	for i := 0; i < 8; i++ {
		users = append(users, createRankedUser(t, db, fmt.Sprintf("user-%d", i), 100-i*10, i))
	}

	w, err := svc.ComputeWindow(users[2].ID, MetricPoints)
	require.NoError(t, err)
	assert.False(t, w.NotRanked)
	assert.Equal(t, 3, w.UserRank)
	assert.Len(t, w.Top, 5)
	assert.Empty(t, w.NearUser)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ranksOf(w.Top))
}

func TestComputeWindowUserJustBelowTop(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())

	var users []models.User
	for i := 0; i < 10; i++ {
		users = append(users, createRankedUser(t, db, fmt.Sprintf("user-%d", i), 100-i*10, i))
	}

	// Position 6 sits in the near slice right below the top block.
	w, err := svc.ComputeWindow(users[5].ID, MetricPoints)
	require.NoError(t, err)
	assert.False(t, w.NotRanked)
	assert.Equal(t, 6, w.UserRank)
	assert.Equal(t, []int{6, 7}, ranksOf(w.NearUser))
}

func TestComputeWindowMidTable(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())

	var users []models.User
	for i := 0; i < 12; i++ {
		users = append(users, createRankedUser(t, db, fmt.Sprintf("user-%d", i), 120-i*10, 0))
	}

	// Rank 9 is past both the top block and the near slice, so the scan
	// path must produce the above/self/below triple.
	target := users[8]
	w, err := svc.ComputeWindow(target.ID, MetricPoints)
	require.NoError(t, err)
	assert.False(t, w.NotRanked)
	assert.Equal(t, 9, w.UserRank)
	require.Len(t, w.NearUser, 3)
	assert.Equal(t, []int{8, 9, 10}, ranksOf(w.NearUser))
	assert.Equal(t, target.ID, w.NearUser[1].UserID)
}

func TestComputeWindowMidTableWithTies(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())

	// Ranks: 100,90,90,80,70 | 70,60 | 60,60,50 ...
	scores := []int{100, 90, 90, 80, 70, 70, 60, 60, 60, 50, 40, 30}
	var users []models.User
	for i, s := range scores {
		users = append(users, createRankedUser(t, db, fmt.Sprintf("user-%d", i), s, 0))
	}

	// users[8] has 60 points, tied with positions 7 and 8; competition
	// ranking gives all three rank 7.
	w, err := svc.ComputeWindow(users[8].ID, MetricPoints)
	require.NoError(t, err)
	assert.Equal(t, 7, w.UserRank)
	require.Len(t, w.NearUser, 3)
	assert.Equal(t, []int{7, 7, 10}, ranksOf(w.NearUser))
}

func TestComputeWindowNotRanked(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())

	for i := 0; i < 9; i++ {
		createRankedUser(t, db, fmt.Sprintf("user-%d", i), 100-i*10, 0)
	}

	w, err := svc.ComputeWindow(9999, MetricPoints)
	require.NoError(t, err)
	assert.True(t, w.NotRanked)
	assert.Len(t, w.Top, 5)
	assert.Empty(t, w.NearUser)
	assert.Zero(t, w.UserRank)
}

func TestComputeWindowStreakMetric(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())

	low := createRankedUser(t, db, "low-points-long-streak", 10, 30)
	createRankedUser(t, db, "high-points-short-streak", 500, 1)

	w, err := svc.ComputeWindow(low.ID, MetricStreak)
	require.NoError(t, err)
	assert.Equal(t, MetricStreak, w.Metric)
	require.NotEmpty(t, w.Top)
	assert.Equal(t, low.ID, w.Top[0].UserID)
	assert.Equal(t, 1, w.UserRank)
}

func TestComputeWindowDefaultsUnknownMetricToPoints(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, DefaultRules())
	user := createRankedUser(t, db, "alice", 10, 0)

	w, err := svc.ComputeWindow(user.ID, Metric("bogus"))
	require.NoError(t, err)
	assert.Equal(t, MetricPoints, w.Metric)
}
