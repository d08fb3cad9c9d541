package matchstat

// Override is an externally supplied stat that may be absent.
// A zero Value with Set=true is an explicit zero.
type Override struct {
	Value int
	Set   bool
}

func Explicit(v int) Override {
	return Override{Value: v, Set: true}
}

// IsZeroOrUnset reports whether fixture inference may replace the override.
func (o Override) IsZeroOrUnset() bool {
	return !o.Set || o.Value == 0
}

// PlayerMatchStat is one player's raw line for one fixture.
type PlayerMatchStat struct {
	PlayerID      int64
	FixtureID     int64
	ClubID        int64
	Minutes       int
	Goals         int
	Assists       int
	Saves         int
	Fouls         int
	YellowCards   int
	RedCards      int
	CleanSheet    Override
	GoalsConceded Override
}
