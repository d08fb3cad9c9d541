package settlement

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
)

// Store runs round writes serialized per (season, round).
type Store interface {
	// WithRoundLock runs fn in one transaction that holds the round's lock.
	// Returning an error from fn rolls every write back.
	WithRoundLock(ctx context.Context, key season.Key, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write surface available while the round lock is held.
type Tx interface {
	// ReplaceRoundResults deletes then inserts points and round stat rows.
	ReplaceRoundResults(ctx context.Context, key season.Key, stats []scoring.PlayerRoundStat) error
	ListPlayers(ctx context.Context, playerIDs []int64) ([]player.Player, error)
	ListPriceMovements(ctx context.Context, key season.Key) ([]pricing.Movement, error)
	// ApplyPriceChanges sets player prices, upserts or drops movement rows and
	// adds each change's budget delta to every team owning the player.
	// It returns the number of teams whose budget moved.
	ApplyPriceChanges(ctx context.Context, key season.Key, changes []pricing.Change) (int, error)
	AppendPriceHistory(ctx context.Context, entries []pricing.HistoryEntry, at time.Time) error
}
