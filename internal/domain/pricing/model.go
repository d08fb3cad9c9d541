package pricing

import "time"

// Movement is the recorded price change of one player for one round.
// PriceBefore is the price the round's delta was applied to.
type Movement struct {
	SeasonID    int64
	RoundNumber int
	PlayerID    int64
	PriceBefore float64
	PriceAfter  float64
	Delta       float64
	Points      float64
}

// HistoryEntry is an append-only price audit row.
type HistoryEntry struct {
	SeasonID    int64
	RoundNumber int
	PlayerID    int64
	Price       float64
	Delta       float64
	RecordedAt  time.Time
}
