package season

import (
	"context"
	"time"
)

// Repository exposes season and round persistence.
type Repository interface {
	GetActiveSeason(ctx context.Context) (Season, bool, error)
	GetRound(ctx context.Context, seasonID int64, number int) (Round, bool, error)
	ListOpenRounds(ctx context.Context, seasonID int64) ([]Round, error)
	// CloseRound marks the round closed and sets ends_at only when it is still empty.
	CloseRound(ctx context.Context, roundID int64, endedAt time.Time) error
	ReopenRound(ctx context.Context, roundID int64) error
}
