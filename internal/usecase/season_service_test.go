package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	basecache "github.com/riskibarqy/statline/internal/platform/cache"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

func seedSeason(t *testing.T, store *GameStore, clock *testClock) {
	t.Helper()

	made := []int{3, 0, 5}
	for i, n := range made {
		g := seedGame(t, store, []string{"g1", "g2", "g3"}[i], clock, "jack")
		g.Date = clock.Now().AddDate(0, 0, i)
		g.IsCompleted = i != 1
		jack, _ := g.Person("jack")
		jack.Stats.Ensure(stat.NameTwoPoint, 2, clock.Now()).Made = n
		jack.Stats.Ensure(stat.NameTwoPoint, 2, clock.Now()).Missed = 1
		if err := store.Save(t.Context(), g); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
}

func TestSeasonService_PlayerSeason(t *testing.T) {
	clock := newTestClock()
	_, store := newTestLockService(clock)
	seedSeason(t, store, clock)
	service := NewSeasonService(store, nil, 2, logging.NewNop())

	season, err := service.PlayerSeason(t.Context(), SeasonQuery{OwnerID: "owner-1", PersonID: "jack", StatName: stat.NameTwoPoint})
	if err != nil {
		t.Fatalf("player season: %v", err)
	}
	if season.GamesPlayed != 3 || season.Total != 8 || season.High != 5 || season.TotalMissed != 3 {
		t.Fatalf("unexpected season %+v", season)
	}
	if season.Average < 2.66 || season.Average > 2.67 {
		t.Fatalf("expected average 8/3, got %f", season.Average)
	}
	if season.Games[0].GameID != "g1" || season.Games[2].GameID != "g3" {
		t.Fatalf("expected games ordered by date, got %+v", season.Games)
	}
	if season.CareerPoints != 16 {
		t.Fatalf("expected 16 career points, got %d", season.CareerPoints)
	}

	completed, err := service.PlayerSeason(t.Context(), SeasonQuery{OwnerID: "owner-1", PersonID: "jack", CompletedOnly: true})
	if err != nil {
		t.Fatalf("completed season: %v", err)
	}
	if completed.StatName != StatPoints || completed.GamesPlayed != 2 || completed.Total != 16 || completed.High != 10 {
		t.Fatalf("unexpected completed season %+v", completed)
	}
}

func TestSeasonService_CacheInvalidatedOnGameChange(t *testing.T) {
	clock := newTestClock()
	_, store := newTestLockService(clock)
	seedSeason(t, store, clock)
	cache := basecache.NewStore(time.Hour)
	service := NewSeasonService(store, cache, 4, logging.NewNop())
	ctx := t.Context()
	query := SeasonQuery{OwnerID: "owner-1", PersonID: "jack"}

	first, err := service.PlayerSeason(ctx, query)
	if err != nil {
		t.Fatalf("first season: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected the rollup to be cached, got %d entries", cache.Len())
	}

	if _, err := store.Update(ctx, "g2", func(g *game.Game) error {
		jack, _ := g.Person("jack")
		jack.Stats[stat.NameTwoPoint].Made = 10
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected owner rollups to be invalidated, got %d entries", cache.Len())
	}

	second, err := service.PlayerSeason(ctx, query)
	if err != nil {
		t.Fatalf("second season: %v", err)
	}
	if second.Total != first.Total+20 {
		t.Fatalf("expected refreshed total %d, got %d", first.Total+20, second.Total)
	}
}

func TestSeasonService_RejectsBadQuery(t *testing.T) {
	clock := newTestClock()
	_, store := newTestLockService(clock)
	service := NewSeasonService(store, nil, 0, nil)

	from := clock.Now()
	to := from.Add(-time.Hour)
	if _, err := service.PlayerSeason(t.Context(), SeasonQuery{OwnerID: "owner-1", PersonID: "jack", From: &from, To: &to}); err == nil {
		t.Fatalf("expected invalid range error")
	}
	if _, err := service.PlayerSeason(t.Context(), SeasonQuery{PersonID: "jack"}); err == nil {
		t.Fatalf("expected missing owner error")
	}
}
