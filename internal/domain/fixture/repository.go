package fixture

import "context"

// Repository exposes fixture read operations.
type Repository interface {
	ListByRound(ctx context.Context, roundID int64) ([]Fixture, error)
}
