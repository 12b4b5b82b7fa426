package achievement

import (
	"fmt"
	"time"
)

func DefaultRules() []Rule {
	return []Rule{
		{ID: "first_game", Title: "First Whistle", Points: 10, Metric: MetricGamesCompleted, Threshold: 1},
		{ID: "games_10", Title: "Regular", Points: 25, Metric: MetricGamesCompleted, Threshold: 10},
		{ID: "games_50", Title: "Season Veteran", Points: 100, Metric: MetricGamesCompleted, Threshold: 50},
		{ID: "points_10", Title: "Double Digits", Points: 15, Metric: MetricGamePoints, Threshold: 10},
		{ID: "points_20", Title: "Scoring Spree", Points: 30, Metric: MetricGamePoints, Threshold: 20},
		{ID: "rebounds_10", Title: "Glass Cleaner", Points: 20, Metric: MetricGameRebounds, Threshold: 10},
		{ID: "assists_5", Title: "Playmaker", Points: 20, Metric: MetricGameAssists, Threshold: 5},
		{ID: "steals_5", Title: "Pickpocket", Points: 20, Metric: MetricGameSteals, Threshold: 5},
		{ID: "goals_3", Title: "Hat Trick", Points: 30, Metric: MetricGameGoals, Threshold: 3},
		{ID: "streak_3", Title: "On a Roll", Points: 10, Metric: MetricStreakDays, Threshold: 3},
		{ID: "streak_7", Title: "Week Warrior", Points: 25, Metric: MetricStreakDays, Threshold: 7},
		{ID: "streak_30", Title: "Dedicated", Points: 100, Metric: MetricStreakDays, Threshold: 30},
	}
}

// Engine evaluates a fixed rule table. It holds no per-user state.
type Engine struct {
	rules []Rule
	byID  map[string]Rule
}

func NewEngine(rules []Rule) *Engine {
	byID := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	return &Engine{
		rules: append([]Rule(nil), rules...),
		byID:  byID,
	}
}

func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

func (e *Engine) Rule(id string) (Rule, bool) {
	r, ok := e.byID[id]
	return r, ok
}

// Unlock marks one achievement on the ledger.
func (e *Engine) Unlock(ledger *Ledger, id string, now time.Time) (bool, error) {
	rule, ok := e.byID[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
	}
	return ledger.Unlock(rule, now), nil
}

// CheckGameAchievements runs every game rule and returns only the rules
// unlocked by this call.
func (e *Engine) CheckGameAchievements(ledger *Ledger, counters GameCounters, now time.Time) []Rule {
	var unlocked []Rule
	for _, rule := range e.rules {
		value, ok := counters.value(rule.Metric)
		if !ok || value < rule.Threshold {
			continue
		}
		if ledger.Unlock(rule, now) {
			unlocked = append(unlocked, rule)
		}
	}
	return unlocked
}

func (e *Engine) CheckStreakAchievements(ledger *Ledger, streak int, now time.Time) []Rule {
	var unlocked []Rule
	for _, rule := range e.rules {
		if rule.Metric != MetricStreakDays || streak < rule.Threshold {
			continue
		}
		if ledger.Unlock(rule, now) {
			unlocked = append(unlocked, rule)
		}
	}
	return unlocked
}
