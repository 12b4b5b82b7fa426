package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/statline/internal/domain/editlock"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

// LockService implements the advisory edit lease on games. Rejected
// transitions are reported as false, never as errors.
type LockService struct {
	games  *GameStore
	lease  time.Duration
	logger *logging.Logger
	now    func() time.Time
}

func NewLockService(games *GameStore, lease time.Duration, logger *logging.Logger) *LockService {
	if logger == nil {
		logger = logging.Default()
	}
	if lease <= 0 {
		lease = editlock.DefaultDuration
	}

	return &LockService{
		games:  games,
		lease:  lease,
		logger: logger,
		now:    time.Now,
	}
}

// LockStatus is the lease as seen by one user.
type LockStatus struct {
	GameID          string
	Holder          string
	ExpiresAt       *time.Time
	IsLocked        bool
	IsLockedByOther bool
	CanEdit         bool
}

func (s *LockService) Lease() time.Duration {
	return s.lease
}

// Acquire claims g for userID and persists the claim. Re-acquiring as the
// holder restarts the lease.
func (s *LockService) Acquire(ctx context.Context, g *game.Game, userID string) bool {
	if !s.acquire(g, userID) {
		return false
	}
	s.persist(ctx, g, "acquire")
	return true
}

func (s *LockService) Release(ctx context.Context, g *game.Game, userID string) bool {
	if !s.release(g, userID) {
		return false
	}
	s.persist(ctx, g, "release")
	return true
}

func (s *LockService) Refresh(ctx context.Context, g *game.Game, userID string) bool {
	if !s.refresh(g, userID) {
		return false
	}
	s.persist(ctx, g, "refresh")
	return true
}

func (s *LockService) CanEdit(g *game.Game, userID string) bool {
	if g.IsCompleted {
		return false
	}
	return !g.Lock.IsLockedByOther(userID, s.now())
}

func (s *LockService) IsLockedByOther(g *game.Game, userID string) bool {
	return g.Lock.IsLockedByOther(userID, s.now())
}

func (s *LockService) Status(g *game.Game, userID string) LockStatus {
	now := s.now()
	lease := g.Lock.Clone()
	return LockStatus{
		GameID:          g.ID,
		Holder:          lease.Holder,
		ExpiresAt:       lease.ExpiresAt,
		IsLocked:        lease.IsActive(now),
		IsLockedByOther: lease.IsLockedByOther(userID, now),
		CanEdit:         s.CanEdit(g, userID),
	}
}

// AcquireGame loads, claims and saves the game by id. A rejected claim is
// returned as ErrEditLocked, or ErrConflict for completed games.
func (s *LockService) AcquireGame(ctx context.Context, gameID, userID string) (LockStatus, error) {
	return s.updateGame(ctx, "usecase.LockService.AcquireGame", gameID, userID, func(g *game.Game) error {
		if g.IsCompleted {
			return fmt.Errorf("%w: game is completed", ErrConflict)
		}
		if !s.acquire(g, userID) {
			return ErrEditLocked
		}
		return nil
	})
}

func (s *LockService) ReleaseGame(ctx context.Context, gameID, userID string) (LockStatus, error) {
	return s.updateGame(ctx, "usecase.LockService.ReleaseGame", gameID, userID, func(g *game.Game) error {
		if !s.release(g, userID) {
			return fmt.Errorf("%w: lock is not held by this user", ErrConflict)
		}
		return nil
	})
}

func (s *LockService) RefreshGame(ctx context.Context, gameID, userID string) (LockStatus, error) {
	return s.updateGame(ctx, "usecase.LockService.RefreshGame", gameID, userID, func(g *game.Game) error {
		if !s.refresh(g, userID) {
			return fmt.Errorf("%w: lock is not held by this user", ErrConflict)
		}
		return nil
	})
}

func (s *LockService) GameStatus(ctx context.Context, gameID, userID string) (LockStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockService.GameStatus")
	defer span.End()

	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return LockStatus{}, err
	}
	return s.Status(g, userID), nil
}

func (s *LockService) updateGame(ctx context.Context, spanName, gameID, userID string, fn func(g *game.Game) error) (LockStatus, error) {
	ctx, span := startUsecaseSpan(ctx, spanName)
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return LockStatus{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	g, err := s.games.Update(ctx, gameID, fn)
	if err != nil {
		return LockStatus{}, err
	}
	return s.Status(g, userID), nil
}

func (s *LockService) acquire(g *game.Game, userID string) bool {
	if g.IsCompleted || userID == "" {
		return false
	}
	now := s.now()
	if g.Lock.IsLockedByOther(userID, now) {
		return false
	}
	g.Lock = editlock.NewLease(userID, now.UTC(), s.lease)
	return true
}

func (s *LockService) release(g *game.Game, userID string) bool {
	if !g.Lock.IsHeldBy(userID) {
		return false
	}
	g.Lock = editlock.Lease{}
	return true
}

func (s *LockService) refresh(g *game.Game, userID string) bool {
	if g.IsCompleted || !g.Lock.IsHeldBy(userID) {
		return false
	}
	g.Lock = editlock.NewLease(userID, s.now().UTC(), s.lease)
	return true
}

func (s *LockService) persist(ctx context.Context, g *game.Game, op string) {
	if err := s.games.Save(ctx, g); err != nil {
		s.logger.ErrorContext(ctx, "persist edit lock failed", "game_id", g.ID, "op", op, "error", err)
	}
}
