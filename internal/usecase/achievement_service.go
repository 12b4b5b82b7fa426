package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/statline/internal/domain/achievement"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

type AchievementService struct {
	engine *achievement.Engine
	repo   achievement.Repository
	games  *GameStore
	logger *logging.Logger
	now    func() time.Time

	// guards the load-unlock-save cycle of each user's ledger
	users keyedMutex
}

func NewAchievementService(engine *achievement.Engine, repo achievement.Repository, games *GameStore, logger *logging.Logger) *AchievementService {
	if logger == nil {
		logger = logging.Default()
	}
	if engine == nil {
		engine = achievement.NewEngine(achievement.DefaultRules())
	}

	return &AchievementService{
		engine: engine,
		repo:   repo,
		games:  games,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AchievementService) Rules() []achievement.Rule {
	return s.engine.Rules()
}

func (s *AchievementService) Ledger(ctx context.Context, userID string) (*achievement.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.Ledger")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	ledger, err := s.repo.GetLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get achievement ledger: %w", err)
	}
	return ledger, nil
}

// CountersForGame derives the game milestone counters from a completed game.
func CountersForGame(g *game.Game, gamesCompleted int) achievement.GameCounters {
	return achievement.GameCounters{
		GamesCompleted: gamesCompleted,
		Points:         g.TotalPoints(),
		Rebounds:       g.StatSuccesses(stat.ReboundNames...),
		Assists:        g.StatSuccesses(stat.NameAssist),
		Steals:         g.StatSuccesses(stat.NameSteal),
		Goals:          g.StatSuccesses(stat.NameGoal),
	}
}

// EvaluateGame runs the game rules for the owner of a just-completed game and
// returns the newly unlocked achievements.
func (s *AchievementService) EvaluateGame(ctx context.Context, g *game.Game) ([]achievement.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.EvaluateGame")
	defer span.End()

	owned, err := s.games.ListByOwner(ctx, g.OwnerID)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, item := range owned {
		if item.IsCompleted {
			completed++
		}
	}

	unlock := s.users.lock(g.OwnerID)
	defer unlock()

	ledger, err := s.Ledger(ctx, g.OwnerID)
	if err != nil {
		return nil, err
	}
	unlocked := s.engine.CheckGameAchievements(ledger, CountersForGame(g, completed), s.now().UTC())
	if len(unlocked) == 0 {
		return nil, nil
	}
	if err := s.repo.SaveLedger(ctx, ledger); err != nil {
		return nil, fmt.Errorf("save achievement ledger: %w", err)
	}

	s.logger.InfoContext(ctx, "achievements unlocked",
		"user_id", g.OwnerID,
		"game_id", g.ID,
		"count", len(unlocked),
		"total_points", ledger.TotalPoints,
	)
	return unlocked, nil
}

// RecordStreak runs the streak rules for a new streak length.
func (s *AchievementService) RecordStreak(ctx context.Context, userID string, streak int) ([]achievement.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.RecordStreak")
	defer span.End()

	if streak < 0 {
		return nil, fmt.Errorf("%w: streak cannot be negative", ErrInvalidInput)
	}

	userID = strings.TrimSpace(userID)
	unlock := s.users.lock(userID)
	defer unlock()

	ledger, err := s.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked := s.engine.CheckStreakAchievements(ledger, streak, s.now().UTC())
	if len(unlocked) == 0 {
		return nil, nil
	}
	if err := s.repo.SaveLedger(ctx, ledger); err != nil {
		return nil, fmt.Errorf("save achievement ledger: %w", err)
	}
	return unlocked, nil
}
