package services

import (
	"gorm.io/gorm"

	"github.com/exseed/exseed/models"
)

// Metric selects the primary leaderboard ordering; the other metric is the
// tie-break.
type Metric string

const (
	MetricPoints Metric = "points"
	MetricStreak Metric = "streak"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank          int    `json:"rank"`
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	Title         string `json:"title,omitempty"`
	TotalPoints   int    `json:"total_points"`
	CurrentStreak int    `json:"current_streak"`
}

// Window is the display view of the leaderboard: the top block plus, when
// the requesting user sits below it, a small ranked slice around them.
// NotRanked is the valid empty state for users without a stats row.
type Window struct {
	Metric    Metric  `json:"metric"`
	Top       []Entry `json:"top"`
	NearUser  []Entry `json:"near_user,omitempty"`
	UserRank  int     `json:"user_rank,omitempty"`
	NotRanked bool    `json:"not_ranked"`
}

// LeaderboardService computes dense competition rankings without ever
// materializing the full ordering in memory.
type LeaderboardService struct {
	db    *gorm.DB
	rules Rules
}

// NewLeaderboardService creates a ranking engine over the given store.
func NewLeaderboardService(db *gorm.DB, rules Rules) *LeaderboardService {
	return &LeaderboardService{db: db, rules: rules}
}

type boardRow struct {
	UserID        uint
	Username      string
	Title         string
	TotalPoints   int
	CurrentStreak int
}

// rankState is the competition-ranking state after some prefix of the
// sorted order: how many records were consumed, the rank given to the most
// recent one, and its primary-metric value. It can be carried across any
// contiguous slice boundary, which is what lets the windowed retrieval
// replay ranks for a mid-table slice without walking the whole board.
type rankState struct {
	consumed int
	rank     int
	prev     int
	hasPrev  bool
}

// step consumes one record. Ties on the primary metric keep the previous
// rank; a new value takes rank consumed+1, skipping the tied slots
// (1,1,3,4,4,4,7).
func (st rankState) step(primary int) rankState {
	st.consumed++
	if !st.hasPrev || primary != st.prev {
		st.rank = st.consumed
	}
	st.prev = primary
	st.hasPrev = true
	return st
}

// assignRanks ranks a contiguous slice of the sorted order, starting from
// the given carried state, and returns the state after the slice. Pure:
// no storage access.
func assignRanks(rows []boardRow, metric Metric, st rankState) ([]Entry, rankState) {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		st = st.step(primaryOf(r, metric))
		entries = append(entries, Entry{
			Rank:          st.rank,
			UserID:        r.UserID,
			Username:      r.Username,
			Title:         r.Title,
			TotalPoints:   r.TotalPoints,
			CurrentStreak: r.CurrentStreak,
		})
	}
	return entries, st
}

func primaryOf(r boardRow, metric Metric) int {
	if metric == MetricStreak {
		return r.CurrentStreak
	}
	return r.TotalPoints
}

// fetch returns one page of the sorted order. The trailing user_id ordering
// keeps pagination deterministic when both metrics tie.
func (s *LeaderboardService) fetch(metric Metric, offset, limit int) ([]boardRow, error) {
	order := "user_stats.total_points DESC, user_stats.current_streak DESC, user_stats.user_id ASC"
	if metric == MetricStreak {
		order = "user_stats.current_streak DESC, user_stats.total_points DESC, user_stats.user_id ASC"
	}

	var rows []boardRow
	err := s.db.Model(&models.UserStats{}).
		Select("user_stats.user_id, users.username, user_stats.title, user_stats.total_points, user_stats.current_streak").
		Joins("JOIN users ON users.id = user_stats.user_id AND users.deleted_at IS NULL").
		Order(order).
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ComputeWindow returns the top block, and the requesting user's ranked
// neighborhood when they sit below it. The scan past the top tracks the
// ranking state one record behind, so once the user is found the
// above/self/below triple can be re-ranked by replaying from just before
// the record above them.
func (s *LeaderboardService) ComputeWindow(userID uint, metric Metric) (*Window, error) {
	if metric != MetricStreak {
		metric = MetricPoints
	}
	w := &Window{Metric: metric}

	top, err := s.fetch(metric, 0, s.rules.LeaderboardTopSize)
	if err != nil {
		return nil, err
	}
	topEntries, afterTop := assignRanks(top, metric, rankState{})
	w.Top = topEntries
	for _, e := range topEntries {
		if e.UserID == userID {
			w.UserRank = e.Rank
			return w, nil
		}
	}

	near, err := s.fetch(metric, s.rules.LeaderboardTopSize, s.rules.LeaderboardNearSize)
	if err != nil {
		return nil, err
	}
	nearEntries, _ := assignRanks(near, metric, afterTop)
	for _, e := range nearEntries {
		if e.UserID == userID {
			w.NearUser = nearEntries
			w.UserRank = e.Rank
			return w, nil
		}
	}

	// Scan the remainder one record at a time. prevState trails the cursor
	// by exactly one record: when the user turns up, it is the state just
	// before the record above them.
	const batchSize = 64
	cursor := afterTop
	prevState := afterTop
	pos := s.rules.LeaderboardTopSize
	for {
		rows, err := s.fetch(metric, pos, batchSize)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			w.NotRanked = true
			return w, nil
		}
		for i := range rows {
			if rows[i].UserID == userID {
				windowRows, err := s.fetch(metric, pos+i-1, 3)
				if err != nil {
					return nil, err
				}
				entries, _ := assignRanks(windowRows, metric, prevState)
				w.NearUser = entries
				for _, e := range entries {
					if e.UserID == userID {
						w.UserRank = e.Rank
					}
				}
				return w, nil
			}
			prevState = cursor
			cursor = cursor.step(primaryOf(rows[i], metric))
		}
		pos += len(rows)
		if len(rows) < batchSize {
			w.NotRanked = true
			return w, nil
		}
	}
}
