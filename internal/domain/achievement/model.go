package achievement

import (
	"errors"
	"time"
)

var ErrUnknownAchievement = errors.New("unknown achievement")

// Metric is the counter a rule compares against its threshold.
type Metric string

const (
	MetricGamesCompleted Metric = "games_completed"
	MetricGamePoints     Metric = "game_points"
	MetricGameRebounds   Metric = "game_rebounds"
	MetricGameAssists    Metric = "game_assists"
	MetricGameSteals     Metric = "game_steals"
	MetricGameGoals      Metric = "game_goals"
	MetricStreakDays     Metric = "streak_days"
)

// Rule unlocks once its metric reaches Threshold.
type Rule struct {
	ID        string
	Title     string
	Points    int
	Metric    Metric
	Threshold int
}

// GameCounters are the values evaluated after a game is completed.
type GameCounters struct {
	GamesCompleted int
	Points         int
	Rebounds       int
	Assists        int
	Steals         int
	Goals          int
}

func (c GameCounters) value(metric Metric) (int, bool) {
	switch metric {
	case MetricGamesCompleted:
		return c.GamesCompleted, true
	case MetricGamePoints:
		return c.Points, true
	case MetricGameRebounds:
		return c.Rebounds, true
	case MetricGameAssists:
		return c.Assists, true
	case MetricGameSteals:
		return c.Steals, true
	case MetricGameGoals:
		return c.Goals, true
	default:
		return 0, false
	}
}

// Ledger is a user's set of unlocked achievements and their point tally.
type Ledger struct {
	UserID      string
	Unlocked    map[string]time.Time
	TotalPoints int
}

func NewLedger(userID string) *Ledger {
	return &Ledger{UserID: userID, Unlocked: make(map[string]time.Time)}
}

func (l *Ledger) IsUnlocked(id string) bool {
	_, ok := l.Unlocked[id]
	return ok
}

// Unlock records rule once. It reports false when already unlocked.
func (l *Ledger) Unlock(rule Rule, now time.Time) bool {
	if l.Unlocked == nil {
		l.Unlocked = make(map[string]time.Time)
	}
	if l.IsUnlocked(rule.ID) {
		return false
	}
	l.Unlocked[rule.ID] = now
	l.TotalPoints += rule.Points
	return true
}

func (l *Ledger) Clone() *Ledger {
	copied := *l
	copied.Unlocked = make(map[string]time.Time, len(l.Unlocked))
	for id, at := range l.Unlocked {
		copied.Unlocked[id] = at
	}
	return &copied
}
