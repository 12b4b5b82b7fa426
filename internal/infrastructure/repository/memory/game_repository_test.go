package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
)

func TestGameRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepository()
	now := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

	g := game.New("g1", "owner-1", now, now)
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	g.Opponent = "mutated after save"

	loaded, ok, err := repo.GetByID(ctx, "g1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%t err=%v", ok, err)
	}
	if loaded.Opponent != "" {
		t.Fatalf("expected stored copy to be isolated, got %q", loaded.Opponent)
	}
	loaded.Stats.Ensure("2PT", 2, now).Made = 5

	again, _, _ := repo.GetByID(ctx, "g1")
	if again.TotalPoints() != 0 {
		t.Fatalf("expected loaded copy to be isolated, got %d points", again.TotalPoints())
	}
}

func TestGameRepository_ListIDsByPerson(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepository()
	base := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

	for i, id := range []string{"g3", "g1", "g2"} {
		g := game.New(id, "owner-1", base.AddDate(0, 0, -i), base)
		if id != "g2" {
			_ = g.AddPerson(game.NewPersonGameStats("pgs-"+id, "jack", "Jack"))
		}
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	other := game.New("g9", "owner-2", base, base)
	_ = other.AddPerson(game.NewPersonGameStats("pgs-g9", "jack", "Jack"))
	_ = repo.Save(ctx, other)

	ids, err := repo.ListIDsByPerson(ctx, "owner-1", "jack")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "g1" || ids[1] != "g3" {
		t.Fatalf("expected [g1 g3] by date, got %v", ids)
	}

	if err := repo.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.GetByID(ctx, "g1"); ok {
		t.Fatalf("expected g1 to be deleted")
	}
}
