package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/statline/internal/platform/id"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

func newSequence(prefix string) *id.Sequence {
	return &id.Sequence{Prefix: prefix}
}

func seedGame(t *testing.T, store *GameStore, gameID string, clock *testClock, people ...string) *game.Game {
	t.Helper()

	g := game.New(gameID, "owner-1", clock.Now(), clock.Now())
	for _, personID := range people {
		if err := g.AddPerson(game.NewPersonGameStats("pgs-"+personID, personID, personID)); err != nil {
			t.Fatalf("add person: %v", err)
		}
	}
	if err := store.Save(context.Background(), g); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return g
}

func newTestLockService(clock *testClock) (*LockService, *GameStore) {
	store := NewGameStore(memory.NewGameRepository())
	locks := NewLockService(store, 4*time.Hour, logging.NewNop())
	locks.now = clock.Now
	return locks, store
}
