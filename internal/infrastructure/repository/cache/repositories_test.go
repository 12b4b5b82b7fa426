package cache

import (
	"testing"
	"time"

	"github.com/riskibarqy/statline/internal/domain/achievement"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/infrastructure/repository/memory"
	achievementmock "github.com/riskibarqy/statline/internal/mocks/domain/achievement"
	gamemock "github.com/riskibarqy/statline/internal/mocks/domain/game"
	basecache "github.com/riskibarqy/statline/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)

func TestGameRepository_GetByIDLoadsOnce(t *testing.T) {
	next := gamemock.NewRepository(t)
	next.On("GetByID", mock.Anything, "g1").Return(game.New("g1", "owner-1", testNow, testNow), true, nil).Once()
	next.On("GetByID", mock.Anything, "missing").Return(nil, false, nil).Once()

	repo := NewGameRepository(next, basecache.NewStore(time.Minute))
	ctx := t.Context()

	for range 3 {
		g, ok, err := repo.GetByID(ctx, "g1")
		if err != nil || !ok || g.ID != "g1" {
			t.Fatalf("unexpected get result g=%v ok=%t err=%v", g, ok, err)
		}
		g.Opponent = "mutated"
	}
	for range 2 {
		if _, ok, err := repo.GetByID(ctx, "missing"); err != nil || ok {
			t.Fatalf("expected cached miss, got ok=%t err=%v", ok, err)
		}
	}

	g, _, _ := repo.GetByID(ctx, "g1")
	if g.Opponent != "" {
		t.Fatalf("expected cached game isolated from callers, got %q", g.Opponent)
	}
}

func TestGameRepository_SaveInvalidatesReads(t *testing.T) {
	repo := NewGameRepository(memory.NewGameRepository(), basecache.NewStore(time.Minute))
	ctx := t.Context()

	g := game.New("g1", "owner-1", testNow, testNow)
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ids, _ := repo.ListIDsByPerson(ctx, "owner-1", "jack"); len(ids) != 0 {
		t.Fatalf("expected no games for jack yet, got %v", ids)
	}
	if games, _ := repo.ListByOwner(ctx, "owner-1"); len(games) != 1 {
		t.Fatalf("expected one game, got %d", len(games))
	}

	_ = g.AddPerson(game.NewPersonGameStats("pgs-jack", "jack", "Jack"))
	g.Opponent = "Falcons"
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, _, _ := repo.GetByID(ctx, "g1")
	if loaded.Opponent != "Falcons" || len(loaded.People) != 1 {
		t.Fatalf("expected saved game after invalidation, got %+v", loaded)
	}
	if ids, _ := repo.ListIDsByPerson(ctx, "owner-1", "jack"); len(ids) != 1 {
		t.Fatalf("expected person list invalidated, got %v", ids)
	}

	if err := repo.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.GetByID(ctx, "g1"); ok {
		t.Fatalf("expected deleted game to be gone")
	}
	if games, _ := repo.ListByOwner(ctx, "owner-1"); len(games) != 0 {
		t.Fatalf("expected owner list invalidated, got %d", len(games))
	}
}

func TestAchievementRepository_SaveInvalidatesLedger(t *testing.T) {
	next := achievementmock.NewRepository(t)
	empty := achievement.NewLedger("user-1")
	next.On("GetLedger", mock.Anything, "user-1").Return(empty, nil).Once()

	repo := NewAchievementRepository(next, basecache.NewStore(time.Minute))
	ctx := t.Context()

	if _, err := repo.GetLedger(ctx, "user-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := repo.GetLedger(ctx, "user-1"); err != nil {
		t.Fatalf("get cached: %v", err)
	}

	unlocked := achievement.NewLedger("user-1")
	unlocked.Unlock(achievement.DefaultRules()[0], testNow)
	next.On("SaveLedger", mock.Anything, unlocked).Return(nil).Once()
	next.On("GetLedger", mock.Anything, "user-1").Return(unlocked, nil).Once()

	if err := repo.SaveLedger(ctx, unlocked); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.GetLedger(ctx, "user-1")
	if err != nil || got.TotalPoints != 10 {
		t.Fatalf("expected reloaded ledger with 10 points, got %+v err=%v", got, err)
	}
}
