package fantasy

import (
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
)

// Violation is a machine-readable rule failure code.
type Violation string

const (
	ViolationSquadSize         Violation = "squad_must_have_15_players"
	ViolationDuplicatePlayers  Violation = "squad_has_duplicate_players"
	ViolationUnknownPlayers    Violation = "squad_has_unknown_players"
	ViolationGoalkeepers       Violation = "squad_must_have_2_goalkeepers"
	ViolationDefenders         Violation = "squad_must_have_3_to_6_defenders"
	ViolationMidfielders       Violation = "squad_must_have_3_to_6_midfielders"
	ViolationForwards          Violation = "squad_must_have_1_to_3_forwards"
	ViolationMaxPerClub        Violation = "max_3_players_per_team"
	ViolationBudgetExceeded    Violation = "budget_exceeded"
	ViolationLineupSlots       Violation = "lineup_must_have_15_slots"
	ViolationInvalidSlotIndex  Violation = "lineup_has_invalid_slot_index"
	ViolationDuplicateSlot     Violation = "lineup_has_duplicate_slot_index"
	ViolationStarterCount      Violation = "lineup_must_have_11_starters"
	ViolationBenchCount        Violation = "lineup_must_have_4_bench_players"
	ViolationEmptySlot         Violation = "lineup_has_empty_slot"
	ViolationLineupDuplicate   Violation = "lineup_has_duplicate_players"
	ViolationNotInSquad        Violation = "lineup_player_not_in_squad"
	ViolationStarterGoalkeeper Violation = "starters_must_have_1_goalkeeper"
	ViolationStarterDefenders  Violation = "starters_must_have_a_defender"
	ViolationStarterMidfielder Violation = "starters_must_have_a_midfielder"
	ViolationStarterForwards   Violation = "starters_must_have_1_to_4_forwards"
	ViolationCaptainNotStarter Violation = "captain_must_be_starter"
	ViolationViceNotStarter    Violation = "vice_captain_must_be_starter"
	ViolationCaptainIsVice     Violation = "captain_and_vice_captain_must_differ"
	ViolationOutNotInSquad     Violation = "transfer_out_player_not_in_squad"
	ViolationInAlreadyInSquad  Violation = "transfer_in_player_already_in_squad"
	ViolationInUnknown         Violation = "transfer_in_player_unknown"
	ViolationSamePlayer        Violation = "transfer_players_must_differ"
)

// Range is an inclusive count bound.
type Range struct {
	Min int
	Max int
}

func (r Range) contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Rules stores fantasy roster validation parameters.
type Rules struct {
	SquadSize         int
	StarterCount      int
	BenchCount        int
	MaxPlayersPerClub int
	SquadByPosition   map[player.Position]Range
	StartersByPos     map[player.Position]Range
	TransferFee       decimal.Decimal
	BudgetEpsilon     decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		SquadSize:         15,
		StarterCount:      11,
		BenchCount:        4,
		MaxPlayersPerClub: 3,
		SquadByPosition: map[player.Position]Range{
			player.PositionGoalkeeper: {Min: 2, Max: 2},
			player.PositionDefender:   {Min: 3, Max: 6},
			player.PositionMidfielder: {Min: 3, Max: 6},
			player.PositionForward:    {Min: 1, Max: 3},
		},
		StartersByPos: map[player.Position]Range{
			player.PositionGoalkeeper: {Min: 1, Max: 1},
			player.PositionDefender:   {Min: 1, Max: 10},
			player.PositionMidfielder: {Min: 1, Max: 10},
			player.PositionForward:    {Min: 1, Max: 4},
		},
		TransferFee:   decimal.New(5, -1),
		BudgetEpsilon: decimal.New(1, -3),
	}
}

var squadPositionViolation = map[player.Position]Violation{
	player.PositionGoalkeeper: ViolationGoalkeepers,
	player.PositionDefender:   ViolationDefenders,
	player.PositionMidfielder: ViolationMidfielders,
	player.PositionForward:    ViolationForwards,
}

var starterPositionViolation = map[player.Position]Violation{
	player.PositionGoalkeeper: ViolationStarterGoalkeeper,
	player.PositionDefender:   ViolationStarterDefenders,
	player.PositionMidfielder: ViolationStarterMidfielder,
	player.PositionForward:    ViolationStarterForwards,
}

// SquadEntry is one roster candidate resolved against the catalog.
// Known is false when the id does not exist in the catalog.
type SquadEntry struct {
	PlayerID int64
	ClubID   int64
	Position player.Position
	Price    float64
	Known    bool
}

// EntryFromPlayer resolves a catalog player into a squad entry at its current price.
func EntryFromPlayer(p player.Player) SquadEntry {
	return SquadEntry{PlayerID: p.ID, ClubID: p.ClubID, Position: p.Position, Price: p.Price, Known: true}
}

type violationSet struct {
	seen map[Violation]struct{}
	out  []Violation
}

func newViolationSet() *violationSet {
	return &violationSet{seen: make(map[Violation]struct{}), out: make([]Violation, 0)}
}

func (s *violationSet) add(v Violation) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.out = append(s.out, v)
}

// ValidateSquad returns every rule the roster breaks, or an empty list.
func ValidateSquad(entries []SquadEntry, budgetCap float64, rules Rules) []Violation {
	vs := newViolationSet()

	distinct := make(map[int64]struct{}, len(entries))
	clubCount := make(map[int64]int)
	positionCount := make(map[player.Position]int)
	total := decimal.Zero

	for _, e := range entries {
		if _, dup := distinct[e.PlayerID]; dup {
			vs.add(ViolationDuplicatePlayers)
			continue
		}
		distinct[e.PlayerID] = struct{}{}
		if !e.Known {
			vs.add(ViolationUnknownPlayers)
			continue
		}
		clubCount[e.ClubID]++
		positionCount[e.Position]++
		total = total.Add(decimal.NewFromFloat(e.Price))
	}

	if len(distinct) != rules.SquadSize {
		vs.add(ViolationSquadSize)
	}

	for _, pos := range player.Positions {
		bound, ok := rules.SquadByPosition[pos]
		if ok && !bound.contains(positionCount[pos]) {
			vs.add(squadPositionViolation[pos])
		}
	}

	for _, n := range clubCount {
		if n > rules.MaxPlayersPerClub {
			vs.add(ViolationMaxPerClub)
			break
		}
	}

	if total.Round(1).Sub(decimal.NewFromFloat(budgetCap)).GreaterThan(rules.BudgetEpsilon) {
		vs.add(ViolationBudgetExceeded)
	}

	return vs.out
}

// ValidateLineup checks slot structure against the team's squad positions.
func ValidateLineup(slots []lineup.Slot, squad map[int64]player.Position, rules Rules) []Violation {
	vs := newViolationSet()

	total := rules.StarterCount + rules.BenchCount
	if len(slots) != total {
		vs.add(ViolationLineupSlots)
	}

	indexes := make(map[int]struct{}, len(slots))
	players := make(map[int64]struct{}, len(slots))
	starterCount, benchCount := 0, 0
	starterPositions := make(map[player.Position]int)

	for _, slot := range slots {
		if slot.Index < 1 || slot.Index > total {
			vs.add(ViolationInvalidSlotIndex)
		}
		if _, dup := indexes[slot.Index]; dup {
			vs.add(ViolationDuplicateSlot)
		}
		indexes[slot.Index] = struct{}{}

		if slot.IsStarter {
			starterCount++
		} else {
			benchCount++
		}

		if slot.PlayerID == 0 {
			vs.add(ViolationEmptySlot)
			continue
		}
		if _, dup := players[slot.PlayerID]; dup {
			vs.add(ViolationLineupDuplicate)
			continue
		}
		players[slot.PlayerID] = struct{}{}

		pos, ok := squad[slot.PlayerID]
		if !ok {
			vs.add(ViolationNotInSquad)
			continue
		}
		if slot.IsStarter {
			starterPositions[pos]++
		}
	}

	if starterCount != rules.StarterCount {
		vs.add(ViolationStarterCount)
	}
	if benchCount != rules.BenchCount {
		vs.add(ViolationBenchCount)
	}

	for _, pos := range player.Positions {
		bound, ok := rules.StartersByPos[pos]
		if ok && !bound.contains(starterPositions[pos]) {
			vs.add(starterPositionViolation[pos])
		}
	}

	return vs.out
}

// ValidateCaptaincy checks optional captain choices. Zero ids are ignored.
func ValidateCaptaincy(slots []lineup.Slot, captainID, viceCaptainID int64) []Violation {
	vs := newViolationSet()
	starters := lineup.StarterSet(slots)

	if captainID != 0 {
		if _, ok := starters[captainID]; !ok {
			vs.add(ViolationCaptainNotStarter)
		}
	}
	if viceCaptainID != 0 {
		if _, ok := starters[viceCaptainID]; !ok {
			vs.add(ViolationViceNotStarter)
		}
	}
	if captainID != 0 && captainID == viceCaptainID {
		vs.add(ViolationCaptainIsVice)
	}
	return vs.out
}

// TransferCheck is the snapshot a transfer is validated against.
type TransferCheck struct {
	// Squad holds current roster entries priced at bought price.
	Squad             []SquadEntry
	OutPlayerID       int64
	In                SquadEntry
	ExistingTransfers int
	BudgetCap         float64
}

// EffectiveBudget deducts the per-transfer fee for transfers already made this round.
func EffectiveBudget(budgetCap float64, existingTransfers int, rules Rules) float64 {
	fee := rules.TransferFee.Mul(decimal.NewFromInt(int64(existingTransfers)))
	return decimal.NewFromFloat(budgetCap).Sub(fee).InexactFloat64()
}

// ValidateTransfer checks a one-for-one swap and the resulting roster.
func ValidateTransfer(check TransferCheck, rules Rules) []Violation {
	vs := newViolationSet()

	if check.OutPlayerID == check.In.PlayerID {
		vs.add(ViolationSamePlayer)
		return vs.out
	}

	outFound := false
	roster := make([]SquadEntry, 0, len(check.Squad))
	for _, e := range check.Squad {
		if e.PlayerID == check.In.PlayerID {
			vs.add(ViolationInAlreadyInSquad)
		}
		if e.PlayerID == check.OutPlayerID {
			outFound = true
			continue
		}
		roster = append(roster, e)
	}
	if !outFound {
		vs.add(ViolationOutNotInSquad)
	}
	if !check.In.Known {
		vs.add(ViolationInUnknown)
	}
	if len(vs.out) > 0 {
		return vs.out
	}

	roster = append(roster, check.In)
	budget := EffectiveBudget(check.BudgetCap, check.ExistingTransfers, rules)
	for _, v := range ValidateSquad(roster, budget, rules) {
		vs.add(v)
	}
	return vs.out
}
