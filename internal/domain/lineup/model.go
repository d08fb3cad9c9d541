package lineup

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
)

// Size is the number of slots in a full lineup.
const Size = 15

// Slot is one position in a round lineup. Position is the slot's role.
type Slot struct {
	Index     int
	PlayerID  int64
	IsStarter bool
	Position  player.Position
}

// Lineup stores one fantasy team's lineup for a round.
type Lineup struct {
	ID            int64
	TeamID        int64
	RoundNumber   int
	CaptainID     int64
	ViceCaptainID int64
	Slots         []Slot
	UpdatedAt     time.Time
}

// PlayerIDs returns the assigned players, ignoring empty slots.
func (l Lineup) PlayerIDs() []int64 {
	out := make([]int64, 0, len(l.Slots))
	for _, slot := range l.Slots {
		if slot.PlayerID != 0 {
			out = append(out, slot.PlayerID)
		}
	}
	return out
}

// HasAssignedPlayers reports whether at least one slot holds a player.
func (l Lineup) HasAssignedPlayers() bool {
	for _, slot := range l.Slots {
		if slot.PlayerID != 0 {
			return true
		}
	}
	return false
}

// IsComplete reports whether every one of the Size slots holds a distinct player.
func (l Lineup) IsComplete() bool {
	if len(l.Slots) != Size {
		return false
	}
	seen := make(map[int64]struct{}, Size)
	for _, slot := range l.Slots {
		if slot.PlayerID == 0 {
			return false
		}
		if _, dup := seen[slot.PlayerID]; dup {
			return false
		}
		seen[slot.PlayerID] = struct{}{}
	}
	return true
}

// SortedSlots returns a copy of the slots ordered by index.
func (l Lineup) SortedSlots() []Slot {
	out := append([]Slot(nil), l.Slots...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// StarterSet indexes starting players.
func StarterSet(slots []Slot) map[int64]struct{} {
	out := make(map[int64]struct{}, len(slots))
	for _, slot := range slots {
		if slot.IsStarter && slot.PlayerID != 0 {
			out[slot.PlayerID] = struct{}{}
		}
	}
	return out
}

// SamePlayers reports whether the lineup holds exactly the given player set.
func (l Lineup) SamePlayers(ids []int64) bool {
	assigned := l.PlayerIDs()
	if len(assigned) != len(ids) {
		return false
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for _, id := range assigned {
		if _, ok := want[id]; !ok {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}
