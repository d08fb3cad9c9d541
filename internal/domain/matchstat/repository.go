package matchstat

import "context"

// Repository reads raw per-match stat lines.
type Repository interface {
	ListByRound(ctx context.Context, roundID int64) ([]PlayerMatchStat, error)
}
