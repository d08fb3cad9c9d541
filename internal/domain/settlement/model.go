package settlement

// Report summarizes one round settlement.
type Report struct {
	SeasonID       int64   `json:"season_id"`
	RoundNumber    int     `json:"round_number"`
	PointsRows     int     `json:"points_rows"`
	PricesUpdated  int     `json:"prices_updated"`
	BudgetsChanged int     `json:"budgets_changed"`
	SkippedPlayers []int64 `json:"skipped_players,omitempty"`
}

// Options controls which side effects a settlement performs.
type Options struct {
	ApplyPrices       bool
	WritePriceHistory bool
}

func DefaultOptions() Options {
	return Options{ApplyPrices: true, WritePriceHistory: true}
}
