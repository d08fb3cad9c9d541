package fantasy

import (
	"fmt"
	"time"
)

// Team is a user's fantasy entry for one season.
type Team struct {
	ID          int64
	SeasonID    int64
	OwnerUserID string
	Name        string
	BudgetCap   float64
	CreatedAt   time.Time
}

func (t Team) ValidateBasic() error {
	if t.SeasonID <= 0 {
		return fmt.Errorf("team season id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.BudgetCap <= 0 {
		return fmt.Errorf("budget cap must be greater than zero")
	}
	return nil
}

// SquadPlayer is current roster ownership of one player.
type SquadPlayer struct {
	TeamID      int64
	PlayerID    int64
	BoughtPrice float64
	BoughtRound int
}

// Transfer is an immutable swap record with prices frozen at transfer time.
type Transfer struct {
	ID          int64
	TeamID      int64
	SeasonID    int64
	RoundNumber int
	OutPlayerID int64
	InPlayerID  int64
	OutPrice    float64
	InPrice     float64
	CreatedAt   time.Time
}

// SquadPlayerIDs lists roster player ids in roster order.
func SquadPlayerIDs(squad []SquadPlayer) []int64 {
	out := make([]int64, 0, len(squad))
	for _, row := range squad {
		out = append(out, row.PlayerID)
	}
	return out
}
