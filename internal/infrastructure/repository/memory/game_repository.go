package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/statline/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]*game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{items: make(map[string]*game.Game)}
}

func (r *GameRepository) GetByID(_ context.Context, id string) (*game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[id]
	if !ok {
		return nil, false, nil
	}
	return g.Clone(), true, nil
}

func (r *GameRepository) ListByOwner(_ context.Context, ownerID string) ([]*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*game.Game, 0)
	for _, g := range r.items {
		if g.OwnerID == ownerID {
			out = append(out, g.Clone())
		}
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) ListIDsByPerson(_ context.Context, ownerID, personID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*game.Game, 0)
	for _, g := range r.items {
		if g.OwnerID != ownerID {
			continue
		}
		if _, ok := g.Person(personID); ok {
			matched = append(matched, g)
		}
	}
	sortGames(matched)

	ids := make([]string, 0, len(matched))
	for _, g := range matched {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func (r *GameRepository) Save(_ context.Context, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[g.ID] = g.Clone()
	return nil
}

func (r *GameRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

// sortGames orders by date, then id, matching the SQL store.
func sortGames(items []*game.Game) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
}
