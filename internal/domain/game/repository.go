package game

import "context"

// Repository persists whole game aggregates. Save replaces the stored tree.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Game, bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Game, error)
	ListIDsByPerson(ctx context.Context, ownerID, personID string) ([]string, error)
	Save(ctx context.Context, g *Game) error
	Delete(ctx context.Context, id string) error
}
