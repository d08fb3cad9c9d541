package lineup

import (
	"sort"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
)

// Status classifies the outcome of lineup recovery for one team.
type Status string

const (
	StatusOK                  Status = "lineup_ok"
	StatusRecovered           Status = "lineup_recovered"
	StatusMarketIncomplete    Status = "market_incomplete"
	StatusPlayersMissing      Status = "players_missing"
	StatusMarketWithoutLineup Status = "market_complete_without_lineup"
	StatusNotFound            Status = "lineup_not_found"
	StatusUnrecoverable       Status = "lineup_unrecoverable"
)

// AllStatuses lists statuses in report order.
var AllStatuses = []Status{
	StatusOK,
	StatusRecovered,
	StatusMarketIncomplete,
	StatusPlayersMissing,
	StatusMarketWithoutLineup,
	StatusNotFound,
	StatusUnrecoverable,
}

// Candidate is a market player eligible for a slot.
type Candidate struct {
	PlayerID int64
	Position player.Position
	Points   float64
}

// Rebuilt is a synthesized lineup shape.
type Rebuilt struct {
	Slots         []Slot
	CaptainID     int64
	ViceCaptainID int64
	Kept          int
	Reassigned    int
	Unfilled      int
}

// defaultRoles is the slot layout used when a team never had a complete
// lineup: 4-4-2 starters, then one bench slot per position.
var defaultRoles = [Size]player.Position{
	player.PositionGoalkeeper,
	player.PositionDefender, player.PositionDefender, player.PositionDefender, player.PositionDefender,
	player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder,
	player.PositionForward, player.PositionForward,
	player.PositionGoalkeeper, player.PositionDefender, player.PositionMidfielder, player.PositionForward,
}

// DefaultLayout returns the empty Size-slot default layout.
func DefaultLayout() []Slot {
	out := make([]Slot, 0, Size)
	for i, role := range defaultRoles {
		out = append(out, Slot{Index: i + 1, IsStarter: i < 11, Position: role})
	}
	return out
}

// PickTemplate chooses the layout to rebuild from. The stored lineup wins
// when it has any assigned player. Otherwise the closest complete lineup of
// another round is used; equal distances prefer the earlier round, then the
// lowest lineup id.
//
// A partial stored lineup is widened to Size slots. Indices it lacks take
// their starter flag and role from the closest complete lineup, or from
// DefaultLayout, and are left open.
func PickTemplate(stored *Lineup, history []Lineup, targetRound int) (Lineup, bool) {
	closest, found := closestComplete(history, targetRound)
	if stored != nil && stored.HasAssignedPlayers() {
		base := DefaultLayout()
		if found && standardIndices(closest.Slots) {
			base = closest.SortedSlots()
		}
		return widen(*stored, base), true
	}
	return closest, found
}

func closestComplete(history []Lineup, targetRound int) (Lineup, bool) {
	candidates := make([]Lineup, 0, len(history))
	for _, item := range history {
		if item.RoundNumber == targetRound || !item.IsComplete() {
			continue
		}
		candidates = append(candidates, item)
	}
	if len(candidates) == 0 {
		return Lineup{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		di, dj := distance(candidates[i].RoundNumber, targetRound), distance(candidates[j].RoundNumber, targetRound)
		if di != dj {
			return di < dj
		}
		if candidates[i].RoundNumber != candidates[j].RoundNumber {
			return candidates[i].RoundNumber < candidates[j].RoundNumber
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], true
}

func standardIndices(slots []Slot) bool {
	seen := make(map[int]struct{}, len(slots))
	for _, slot := range slots {
		if slot.Index < 1 || slot.Index > Size {
			return false
		}
		seen[slot.Index] = struct{}{}
	}
	return len(seen) == Size
}

// widen lays stored slots over base by index. Out-of-range and repeated
// indices are dropped; base slots fill the gaps without a player.
func widen(stored Lineup, base []Slot) Lineup {
	byIndex := make(map[int]Slot, Size)
	for _, slot := range stored.SortedSlots() {
		if slot.Index < 1 || slot.Index > Size {
			continue
		}
		if _, dup := byIndex[slot.Index]; !dup {
			byIndex[slot.Index] = slot
		}
	}

	slots := make([]Slot, 0, Size)
	for _, slot := range base {
		if own, ok := byIndex[slot.Index]; ok {
			slots = append(slots, own)
			continue
		}
		slot.PlayerID = 0
		slots = append(slots, slot)
	}
	stored.Slots = slots
	return stored
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Rebuild maps a template onto the market. Template players still in the
// market keep their slot (first slot wins). Remaining slots take the
// highest-scoring unused player of the slot's role, falling back to any
// unused player.
func Rebuild(template Lineup, market []Candidate) Rebuilt {
	ranked := append([]Candidate(nil), market...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].PlayerID < ranked[j].PlayerID
	})

	byID := make(map[int64]Candidate, len(ranked))
	for _, c := range ranked {
		byID[c.PlayerID] = c
	}

	slots := template.SortedSlots()
	used := make(map[int64]struct{}, len(slots))
	open := make([]int, 0, len(slots))
	out := Rebuilt{}

	for i := range slots {
		id := slots[i].PlayerID
		if _, inMarket := byID[id]; inMarket {
			if _, taken := used[id]; !taken {
				used[id] = struct{}{}
				slots[i].Position = byID[id].Position
				out.Kept++
				continue
			}
		}
		open = append(open, i)
	}

	for _, i := range open {
		pick, ok := bestUnused(ranked, used, slots[i].Position)
		if !ok {
			pick, ok = bestUnused(ranked, used, "")
		}
		if !ok {
			slots[i].PlayerID = 0
			out.Unfilled++
			continue
		}
		used[pick.PlayerID] = struct{}{}
		slots[i].PlayerID = pick.PlayerID
		slots[i].Position = pick.Position
		out.Reassigned++
	}

	out.Slots = slots
	out.CaptainID, out.ViceCaptainID = chooseCaptains(slots, byID, template.CaptainID, template.ViceCaptainID)
	return out
}

func bestUnused(ranked []Candidate, used map[int64]struct{}, pos player.Position) (Candidate, bool) {
	for _, c := range ranked {
		if _, taken := used[c.PlayerID]; taken {
			continue
		}
		if pos != "" && c.Position != pos {
			continue
		}
		return c, true
	}
	return Candidate{}, false
}

func chooseCaptains(slots []Slot, byID map[int64]Candidate, prevCaptain, prevVice int64) (int64, int64) {
	starters := make([]Candidate, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsStarter || slot.PlayerID == 0 {
			continue
		}
		starters = append(starters, byID[slot.PlayerID])
	}
	sort.SliceStable(starters, func(i, j int) bool {
		if starters[i].Points != starters[j].Points {
			return starters[i].Points > starters[j].Points
		}
		return starters[i].PlayerID < starters[j].PlayerID
	})

	isStarter := func(id int64) bool {
		for _, s := range starters {
			if s.PlayerID == id {
				return true
			}
		}
		return false
	}

	captain := int64(0)
	if prevCaptain != 0 && isStarter(prevCaptain) {
		captain = prevCaptain
	} else if len(starters) > 0 {
		captain = starters[0].PlayerID
	}

	vice := int64(0)
	if prevVice != 0 && prevVice != captain && isStarter(prevVice) {
		vice = prevVice
	} else {
		for _, s := range starters {
			if s.PlayerID != captain {
				vice = s.PlayerID
				break
			}
		}
	}
	return captain, vice
}
