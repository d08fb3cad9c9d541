package scoring

import "context"

// Repository reads settled points. Writes go through the settlement store.
type Repository interface {
	ListRoundPoints(ctx context.Context, seasonID int64, roundNumber int) ([]PointsRound, error)
	ListSeasonPoints(ctx context.Context, seasonID int64) ([]PointsRound, error)
}
