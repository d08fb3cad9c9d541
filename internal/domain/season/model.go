package season

import (
	"fmt"
	"time"
)

// Season groups rounds, prices and fantasy teams.
type Season struct {
	ID       int64
	Name     string
	IsActive bool
}

// Round is one gameweek of a season.
type Round struct {
	ID       int64
	SeasonID int64
	Number   int
	StartsAt time.Time
	EndsAt   *time.Time
	IsClosed bool
}

func (r Round) Validate() error {
	if r.SeasonID <= 0 {
		return fmt.Errorf("round season id is required")
	}
	if r.Number <= 0 {
		return fmt.Errorf("round number must be greater than zero")
	}
	return nil
}

// Key identifies a round within its season.
type Key struct {
	SeasonID int64
	Number   int
}

func (r Round) Key() Key {
	return Key{SeasonID: r.SeasonID, Number: r.Number}
}

func (k Key) String() string {
	return fmt.Sprintf("season=%d round=%d", k.SeasonID, k.Number)
}
