package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_FirstSettlement(t *testing.T) {
	t.Parallel()

	changes := Plan([]Input{
		{PlayerID: 3, CurrentPrice: 7.0, Scored: true, Points: 7},
		{PlayerID: 1, CurrentPrice: 4.1, Scored: true, Points: -5},
		{PlayerID: 2, CurrentPrice: 6.0, Scored: true, Points: 2},
		{PlayerID: 4, CurrentPrice: 8.0, Injured: true, Scored: true, Points: 15},
		{PlayerID: 5, CurrentPrice: 4.0, Scored: true, Points: -3},
	}, DefaultBand())

	require.Len(t, changes, 2)
	assert.Equal(t, int64(1), changes[0].PlayerID)
	assert.InDelta(t, 4.0, changes[0].PriceAfter, 1e-9)
	assert.InDelta(t, -0.1, changes[0].Delta, 1e-9)
	assert.InDelta(t, -0.1, changes[0].BudgetDelta, 1e-9)
	assert.InDelta(t, -0.1, changes[0].PriceDiff, 1e-9)
	assert.InDelta(t, 4.0, changes[0].NewPrice, 1e-9)

	assert.Equal(t, int64(3), changes[1].PlayerID)
	assert.InDelta(t, 7.2, changes[1].PriceAfter, 1e-9)
	assert.False(t, changes[1].DropMovement)
}

func TestPlan_ResettlementRebases(t *testing.T) {
	t.Parallel()

	prior := &Movement{PlayerID: 1, PriceBefore: 7.0, PriceAfter: 7.2, Delta: 0.2, Points: 7}

	// Same inputs after the first run: nothing left to do.
	changes := Plan([]Input{{PlayerID: 1, CurrentPrice: 7.2, Scored: true, Points: 7, Prior: prior}}, DefaultBand())
	assert.Empty(t, changes)

	// Corrected stats: rebase on 7.0 and only move the budget by the difference.
	changes = Plan([]Input{{PlayerID: 1, CurrentPrice: 7.2, Scored: true, Points: 10, Prior: prior}}, DefaultBand())
	require.Len(t, changes, 1)
	assert.InDelta(t, 7.0, changes[0].PriceBefore, 1e-9)
	assert.InDelta(t, 7.3, changes[0].PriceAfter, 1e-9)
	assert.InDelta(t, 0.1, changes[0].BudgetDelta, 1e-9)
	assert.InDelta(t, 7.3, changes[0].NewPrice, 1e-9)

	// Stats removed: revert to the base price and drop the movement.
	changes = Plan([]Input{{PlayerID: 1, CurrentPrice: 7.2, Scored: false, Prior: prior}}, DefaultBand())
	require.Len(t, changes, 1)
	assert.True(t, changes[0].DropMovement)
	assert.InDelta(t, 7.0, changes[0].PriceAfter, 1e-9)
	assert.InDelta(t, -0.2, changes[0].BudgetDelta, 1e-9)
	assert.Empty(t, Movements(1, 1, changes))
}

func TestPlan_ResettlementKeepsLaterRounds(t *testing.T) {
	t.Parallel()

	// Round 1 moved 8.5 -> 9.0, then round 2 moved 9.0 -> 9.5.
	prior := &Movement{PlayerID: 66, PriceBefore: 8.5, PriceAfter: 9.0, Delta: 0.5, Points: 17}

	changes := Plan([]Input{{PlayerID: 66, CurrentPrice: 9.5, Scored: true, Points: 17, Prior: prior}}, DefaultBand())
	assert.Empty(t, changes, "re-running round 1 must not rewind round 2")

	// A correction to round 1 moves the current price by the difference only.
	changes = Plan([]Input{{PlayerID: 66, CurrentPrice: 9.5, Scored: true, Points: 6, Prior: prior}}, DefaultBand())
	require.Len(t, changes, 1)
	assert.InDelta(t, 8.5, changes[0].PriceBefore, 1e-9)
	assert.InDelta(t, 8.7, changes[0].PriceAfter, 1e-9)
	assert.InDelta(t, 0.2, changes[0].Delta, 1e-9)
	assert.InDelta(t, -0.3, changes[0].PriceDiff, 1e-9)
	assert.InDelta(t, 9.2, changes[0].NewPrice, 1e-9)
	assert.InDelta(t, changes[0].PriceDiff, changes[0].BudgetDelta, 1e-9)
}

func TestPlan_CorrectionIsClampedAtCurrentPrice(t *testing.T) {
	t.Parallel()

	band := DefaultBand()
	prior := &Movement{PlayerID: 9, PriceBefore: 11.0, PriceAfter: 11.5, Delta: 0.5, Points: 15}

	// A later round already pushed the player to the ceiling; a bigger round 1
	// cannot lift it further, and the budget follows the price.
	changes := Plan([]Input{{PlayerID: 9, CurrentPrice: 12.0, Scored: true, Points: 20, Prior: prior}}, band)
	require.Len(t, changes, 1)
	assert.InDelta(t, 0.0, changes[0].PriceDiff, 1e-9)
	assert.InDelta(t, 0.0, changes[0].BudgetDelta, 1e-9)
	assert.InDelta(t, 12.0, changes[0].NewPrice, 1e-9)
}

func TestSumDeltas(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.3, SumDeltas(0.1, 0.1, 0.1), 1e-12)
	assert.Equal(t, 0.0, SumDeltas())
}
