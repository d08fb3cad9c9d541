package scoring

// Resolved is the outcome of tri-state stat resolution.
type Resolved struct {
	Value int
	Known bool
}

func known(v int) Resolved {
	return Resolved{Value: v, Known: true}
}

// MatchResult is the scored outcome of one player in one fixture.
type MatchResult struct {
	PlayerID      int64
	FixtureID     int64
	Points        float64
	CleanSheet    Resolved
	GoalsConceded Resolved
}

// PointsRound is the persisted per-player points total for a round.
type PointsRound struct {
	SeasonID    int64
	RoundNumber int
	PlayerID    int64
	Points      float64
}

// PlayerRoundStat aggregates every match line of a player in one round.
type PlayerRoundStat struct {
	SeasonID      int64
	RoundNumber   int
	PlayerID      int64
	Appearances   int
	Minutes       int
	Goals         int
	Assists       int
	Saves         int
	Fouls         int
	YellowCards   int
	RedCards      int
	CleanSheets   int
	GoalsConceded int
	Points        float64
}
