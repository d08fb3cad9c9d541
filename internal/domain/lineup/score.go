package lineup

import (
	"maps"
	"slices"
)

// TeamPoints sums starter points and doubles the captain. When the captain
// scored nothing the vice-captain is doubled instead. Starters are summed in
// id order so the float total does not depend on map iteration.
func TeamPoints(l Lineup, points map[int64]float64) float64 {
	starters := StarterSet(l.Slots)
	total := 0.0
	for _, id := range slices.Sorted(maps.Keys(starters)) {
		total += points[id]
	}

	if _, ok := starters[l.CaptainID]; ok && points[l.CaptainID] > 0 {
		return total + points[l.CaptainID]
	}
	if _, ok := starters[l.ViceCaptainID]; ok && points[l.ViceCaptainID] > 0 {
		return total + points[l.ViceCaptainID]
	}
	return total
}
