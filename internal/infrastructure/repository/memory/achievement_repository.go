package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/statline/internal/domain/achievement"
)

type AchievementRepository struct {
	mu    sync.RWMutex
	items map[string]*achievement.Ledger
}

func NewAchievementRepository() *AchievementRepository {
	return &AchievementRepository{items: make(map[string]*achievement.Ledger)}
}

// GetLedger returns an empty ledger for users with no unlocks yet.
func (r *AchievementRepository) GetLedger(_ context.Context, userID string) (*achievement.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ledger, ok := r.items[userID]
	if !ok {
		return achievement.NewLedger(userID), nil
	}
	return ledger.Clone(), nil
}

func (r *AchievementRepository) SaveLedger(_ context.Context, ledger *achievement.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[ledger.UserID] = ledger.Clone()
	return nil
}
