package lineup

import (
	"sort"
	"time"
)

// Move is one recorded transfer as seen by market replay.
type Move struct {
	Seq         int64
	RoundNumber int
	OutPlayerID int64
	InPlayerID  int64
	CreatedAt   time.Time
}

// MarketAt reconstructs the roster a team owned at targetRound by undoing,
// most recent first, every move made in a later round.
func MarketAt(current []int64, moves []Move, targetRound int) []int64 {
	owned := make(map[int64]struct{}, len(current))
	for _, id := range current {
		owned[id] = struct{}{}
	}

	later := make([]Move, 0, len(moves))
	for _, m := range moves {
		if m.RoundNumber > targetRound {
			later = append(later, m)
		}
	}
	sort.SliceStable(later, func(i, j int) bool {
		if !later[i].CreatedAt.Equal(later[j].CreatedAt) {
			return later[i].CreatedAt.After(later[j].CreatedAt)
		}
		return later[i].Seq > later[j].Seq
	})

	for _, m := range later {
		delete(owned, m.InPlayerID)
		owned[m.OutPlayerID] = struct{}{}
	}

	out := make([]int64, 0, len(owned))
	for id := range owned {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
