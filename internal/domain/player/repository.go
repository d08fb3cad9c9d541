package player

import "context"

// Repository describes player catalog reads needed by use cases.
type Repository interface {
	GetByIDs(ctx context.Context, playerIDs []int64) ([]Player, error)
	ListAll(ctx context.Context) ([]Player, error)
}
