package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Input is one player's pricing context for a round.
type Input struct {
	PlayerID     int64
	CurrentPrice float64
	Injured      bool
	// Scored is false when the player has no stat line for the round.
	Scored bool
	Points float64
	// Prior is the movement recorded by an earlier settlement of the same round.
	Prior *Movement
}

// Change is a planned write for one player.
type Change struct {
	PlayerID int64
	// PriceBefore, PriceAfter and Delta describe the round's own movement and
	// are stored on the movement row.
	PriceBefore float64
	PriceAfter  float64
	Delta       float64
	Points      float64
	// PriceDiff is added to the player's current price. It is the round's
	// delta minus what an earlier settlement of the round already applied.
	PriceDiff float64
	// NewPrice is CurrentPrice plus PriceDiff, clamped into the band.
	NewPrice float64
	// BudgetDelta is what owning teams' budgets move by. It equals PriceDiff.
	BudgetDelta float64
	// DropMovement asks the store to delete the prior movement row.
	DropMovement bool
}

// Moved reports whether the round moved the player's price.
func (c Change) Moved() bool {
	return c.Delta != 0
}

// Plan computes price writes for a round settlement.
//
// A round's delta is measured from the price it was first applied to, so a
// re-run reproduces the recorded delta. Only the difference to the recorded
// delta is applied to the current price, which keeps movements from rounds
// settled in between. Injured players are frozen, and players whose
// recomputed delta is zero produce no movement.
func Plan(inputs []Input, band Band) []Change {
	changes := make([]Change, 0, len(inputs))
	for _, in := range inputs {
		if in.Injured {
			continue
		}

		current := RoundPrice(decimal.NewFromFloat(in.CurrentPrice))
		base, priorDelta := current, decimal.Zero
		if in.Prior != nil {
			base = RoundPrice(decimal.NewFromFloat(in.Prior.PriceBefore))
			priorDelta = decimal.NewFromFloat(in.Prior.Delta)
		}

		after, delta := base, decimal.Zero
		if in.Scored {
			after, delta = Adjust(base.InexactFloat64(), in.Points, band)
		}
		if delta.IsZero() && in.Prior == nil {
			continue
		}

		correction := delta.Sub(priorDelta)
		if in.Prior != nil && correction.IsZero() &&
			decimal.NewFromFloat(in.Prior.Points).Equal(decimal.NewFromFloat(in.Points)) {
			continue
		}
		newPrice := RoundPrice(band.Clamp(current.Add(correction)))
		diff := newPrice.Sub(current)

		changes = append(changes, Change{
			PlayerID:     in.PlayerID,
			PriceBefore:  base.InexactFloat64(),
			PriceAfter:   after.InexactFloat64(),
			Delta:        delta.InexactFloat64(),
			Points:       in.Points,
			PriceDiff:    diff.InexactFloat64(),
			NewPrice:     newPrice.InexactFloat64(),
			BudgetDelta:  diff.InexactFloat64(),
			DropMovement: delta.IsZero(),
		})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].PlayerID < changes[j].PlayerID })
	return changes
}

// Movements projects non-zero changes into movement rows.
func Movements(seasonID int64, roundNumber int, changes []Change) []Movement {
	out := make([]Movement, 0, len(changes))
	for _, c := range changes {
		if !c.Moved() {
			continue
		}
		out = append(out, Movement{
			SeasonID:    seasonID,
			RoundNumber: roundNumber,
			PlayerID:    c.PlayerID,
			PriceBefore: c.PriceBefore,
			PriceAfter:  c.PriceAfter,
			Delta:       c.Delta,
			Points:      c.Points,
		})
	}
	return out
}

// SumDeltas adds one-decimal deltas without float drift.
func SumDeltas(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return RoundPrice(total).InexactFloat64()
}
