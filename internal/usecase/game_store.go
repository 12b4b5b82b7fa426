package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/riskibarqy/statline/internal/domain/game"
)

const gameStripeCount = 64

// LiveGames holds in-memory games, such as the one behind an open tracking
// session, that must receive updates before the stored copy does.
type LiveGames interface {
	UpdateLive(ctx context.Context, gameID string, fn func(g *game.Game) error) (*game.Game, bool, error)
	Forget(ctx context.Context, gameID string)
}

// GameStore serializes read-modify-write cycles per game id inside one process
// and notifies listeners after every successful write.
type GameStore struct {
	repo      game.Repository
	stripes   keyedMutex
	mu        sync.RWMutex
	listeners []func(ctx context.Context, g *game.Game)
	live      LiveGames
}

func NewGameStore(repo game.Repository) *GameStore {
	return &GameStore{repo: repo}
}

// OnChange registers fn to run after a game is saved or deleted.
func (s *GameStore) OnChange(fn func(ctx context.Context, g *game.Game)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// SetLive routes updates of live games through l.
func (s *GameStore) SetLive(l LiveGames) {
	s.mu.Lock()
	s.live = l
	s.mu.Unlock()
}

// Forget tells the live holder that gameID must no longer be edited in memory.
func (s *GameStore) Forget(ctx context.Context, gameID string) {
	if live := s.liveGames(); live != nil {
		live.Forget(ctx, gameID)
	}
}

func (s *GameStore) Get(ctx context.Context, gameID string) (*game.Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, exists, err := s.repo.GetByID(ctx, gameID)
	if err != nil {
		return nil, storageError("get game", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	return g, nil
}

// Update applies fn to the live copy of the game when one exists, otherwise it
// loads, applies and saves while holding the game's stripe. fn must validate
// before mutating; nothing is written when it fails.
func (s *GameStore) Update(ctx context.Context, gameID string, fn func(g *game.Game) error) (*game.Game, error) {
	if live := s.liveGames(); live != nil {
		if g, ok, err := live.UpdateLive(ctx, gameID, fn); ok {
			return g, err
		}
	}

	unlock := s.lock(gameID)
	defer unlock()

	g, err := s.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	if err := s.saveLocked(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameStore) Save(ctx context.Context, g *game.Game) error {
	unlock := s.lock(g.ID)
	defer unlock()
	return s.saveLocked(ctx, g)
}

// Delete detaches live copies of the game before taking its stripe, so a
// session write already waiting on the stripe cannot bring the game back.
func (s *GameStore) Delete(ctx context.Context, g *game.Game) error {
	s.Forget(ctx, g.ID)

	unlock := s.lock(g.ID)
	defer unlock()

	if err := s.repo.Delete(ctx, g.ID); err != nil {
		return storageError("delete game", err)
	}
	s.notify(ctx, g)
	return nil
}

func (s *GameStore) ListByOwner(ctx context.Context, ownerID string) ([]*game.Game, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError("list games by owner", err)
	}
	return items, nil
}

func (s *GameStore) ListIDsByPerson(ctx context.Context, ownerID, personID string) ([]string, error) {
	ids, err := s.repo.ListIDsByPerson(ctx, ownerID, personID)
	if err != nil {
		return nil, storageError("list games by person", err)
	}
	return ids, nil
}

func (s *GameStore) saveLocked(ctx context.Context, g *game.Game) error {
	if err := g.ValidateBasic(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return storageError("save game", err)
	}
	s.notify(ctx, g)
	return nil
}

func (s *GameStore) notify(ctx context.Context, g *game.Game) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, g)
	}
}

func (s *GameStore) liveGames() LiveGames {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

func (s *GameStore) lock(gameID string) func() {
	return s.stripes.lock(gameID)
}

// keyedMutex serializes work per key over a fixed set of stripes.
type keyedMutex [gameStripeCount]sync.Mutex

func (m *keyedMutex) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &m[h.Sum32()%gameStripeCount]
	mu.Lock()
	return mu.Unlock
}

// storageError marks a repository failure so callers can tell it apart from
// a rejected operation. Context cancellation passes through untouched.
func storageError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}
