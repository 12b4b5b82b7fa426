package cache

import (
	"context"

	"github.com/riskibarqy/statline/internal/domain/achievement"
	"github.com/riskibarqy/statline/internal/domain/game"
	basecache "github.com/riskibarqy/statline/internal/platform/cache"
)

const (
	gameByIDPrefix     = "game:id:"
	gameByOwnerPrefix  = "game:owner:"
	gameByPersonPrefix = "game:person:"
	ledgerPrefix       = "achievement:ledger:"
)

// GameRepository caches reads and invalidates on every write. Cached games
// are cloned on the way in and out so callers can mutate what they get.
type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (*game.Game, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, gameByIDPrefix+id, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			item = item.Clone()
		}
		return cachedGameByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return nil, false, err
	}

	cached, _ := v.(cachedGameByID)
	if !cached.exists || cached.value == nil {
		return nil, false, nil
	}
	return cached.value.Clone(), true, nil
}

type cachedGameByID struct {
	value  *game.Game
	exists bool
}

func (r *GameRepository) ListByOwner(ctx context.Context, ownerID string) ([]*game.Game, error) {
	v, err := r.cache.GetOrLoad(ctx, gameByOwnerPrefix+ownerID, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return cloneGames(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]*game.Game)
	return cloneGames(items), nil
}

func (r *GameRepository) ListIDsByPerson(ctx context.Context, ownerID, personID string) ([]string, error) {
	key := gameByPersonPrefix + ownerID + ":" + personID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		ids, err := r.next.ListIDsByPerson(ctx, ownerID, personID)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), ids...), nil
	})
	if err != nil {
		return nil, err
	}

	ids, _ := v.([]string)
	return append([]string(nil), ids...), nil
}

func (r *GameRepository) Save(ctx context.Context, g *game.Game) error {
	if err := r.next.Save(ctx, g); err != nil {
		return err
	}
	r.cache.Delete(ctx, gameByIDPrefix+g.ID, gameByOwnerPrefix+g.OwnerID)
	r.cache.DeletePrefix(ctx, gameByPersonPrefix+g.OwnerID+":")
	return nil
}

// Delete drops every list entry since the owner of id is not known here.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.Delete(ctx, gameByIDPrefix+id)
	r.cache.DeletePrefix(ctx, gameByOwnerPrefix)
	r.cache.DeletePrefix(ctx, gameByPersonPrefix)
	return nil
}

func cloneGames(items []*game.Game) []*game.Game {
	out := make([]*game.Game, 0, len(items))
	for _, g := range items {
		out = append(out, g.Clone())
	}
	return out
}

type AchievementRepository struct {
	next  achievement.Repository
	cache *basecache.Store
}

func NewAchievementRepository(next achievement.Repository, cache *basecache.Store) *AchievementRepository {
	return &AchievementRepository{next: next, cache: cache}
}

func (r *AchievementRepository) GetLedger(ctx context.Context, userID string) (*achievement.Ledger, error) {
	v, err := r.cache.GetOrLoad(ctx, ledgerPrefix+userID, func(ctx context.Context) (any, error) {
		ledger, err := r.next.GetLedger(ctx, userID)
		if err != nil {
			return nil, err
		}
		return ledger.Clone(), nil
	})
	if err != nil {
		return nil, err
	}

	ledger, ok := v.(*achievement.Ledger)
	if !ok || ledger == nil {
		return achievement.NewLedger(userID), nil
	}
	return ledger.Clone(), nil
}

func (r *AchievementRepository) SaveLedger(ctx context.Context, ledger *achievement.Ledger) error {
	if err := r.next.SaveLedger(ctx, ledger); err != nil {
		return err
	}
	r.cache.Delete(ctx, ledgerPrefix+ledger.UserID)
	return nil
}
