package player

import "fmt"

// Position is a squad role as stored in the players table.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// Positions lists every position from the back line forward.
var Positions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward}

func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// Player is a priced athlete in the season catalog.
type Player struct {
	ID       int64
	ClubID   int64
	Name     string
	Position Position
	Price    float64
	Injured  bool
}

// Validate rejects catalog rows that scoring and pricing cannot handle.
func (p Player) Validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("player %d: id must be positive", p.ID)
	case p.ClubID <= 0:
		return fmt.Errorf("player %d: club id must be positive", p.ID)
	case !p.Position.Valid():
		return fmt.Errorf("player %d: unknown position %q", p.ID, p.Position)
	case p.Price <= 0:
		return fmt.Errorf("player %d: price %.2f must be positive", p.ID, p.Price)
	}
	return nil
}

// IndexByID keys players by id. Later duplicates win.
func IndexByID(players []Player) map[int64]Player {
	out := make(map[int64]Player, len(players))
	for _, p := range players {
		out[p.ID] = p
	}
	return out
}
