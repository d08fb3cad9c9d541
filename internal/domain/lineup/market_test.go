package lineup

import (
	"reflect"
	"testing"
	"time"
)

func TestMarketAt(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	current := []int64{1, 2, 30, 40}
	moves := []Move{
		{Seq: 1, RoundNumber: 2, OutPlayerID: 9, InPlayerID: 1, CreatedAt: base},
		{Seq: 2, RoundNumber: 4, OutPlayerID: 3, InPlayerID: 30, CreatedAt: base.Add(time.Hour)},
		// Chain inside one later round: 4 -> 5 -> 40.
		{Seq: 3, RoundNumber: 5, OutPlayerID: 4, InPlayerID: 5, CreatedAt: base.Add(2 * time.Hour)},
		{Seq: 4, RoundNumber: 5, OutPlayerID: 5, InPlayerID: 40, CreatedAt: base.Add(3 * time.Hour)},
	}

	tests := []struct {
		name  string
		round int
		want  []int64
	}{
		{name: "current round keeps roster", round: 5, want: []int64{1, 2, 30, 40}},
		{name: "undo round 5 chain", round: 4, want: []int64{1, 2, 4, 30}},
		{name: "undo rounds 4 and 5", round: 3, want: []int64{1, 2, 3, 4}},
		{name: "round 2 move is not undone for round 2", round: 2, want: []int64{1, 2, 3, 4}},
		{name: "undo everything", round: 1, want: []int64{2, 3, 4, 9}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := MarketAt(current, moves, tc.round)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected market: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestMarketAt_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	current := []int64{3, 1, 2}
	_ = MarketAt(current, []Move{{RoundNumber: 9, OutPlayerID: 7, InPlayerID: 3}}, 1)
	if !reflect.DeepEqual(current, []int64{3, 1, 2}) {
		t.Fatalf("input mutated: %v", current)
	}
}
