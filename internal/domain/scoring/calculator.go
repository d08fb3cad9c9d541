package scoring

import (
	"sort"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
)

const (
	pointsPerGoal        = 4
	pointsPerHatTrick    = 3
	pointsPerAssist      = 3
	pointsYellowCard     = -3
	pointsRedCard        = -5
	pointsFullMatch      = 2
	pointsAppearance     = 1
	pointsCleanSheet     = 3
	fullMatchMinutes     = 90
	goalsPerHatTrick     = 3
	foulsPerPenaltyPoint = 5
	savesPerBonusPoint   = 5
)

// ResolveDefensive resolves clean sheet and goals conceded for one match line.
//
// Explicit non-zero overrides win. Zero or missing overrides are replaced by
// inference from a finished fixture when one is given; otherwise an explicit
// zero stands and a missing value stays unknown. Inference only applies to
// players that were on the pitch, and clean sheets are never inferred for
// forwards.
func ResolveDefensive(pos player.Position, stat matchstat.PlayerMatchStat, fx *fixture.Fixture) (cleanSheet, conceded Resolved) {
	if stat.CleanSheet.Set {
		cleanSheet = known(stat.CleanSheet.Value)
	}
	if stat.GoalsConceded.Set {
		conceded = known(stat.GoalsConceded.Value)
	}

	if fx == nil || stat.Minutes <= 0 {
		return cleanSheet, conceded
	}

	if stat.GoalsConceded.IsZeroOrUnset() {
		if v, ok := fx.ConcededBy(stat.ClubID); ok {
			conceded = known(v)
		}
	}
	if stat.CleanSheet.IsZeroOrUnset() && pos != player.PositionForward && conceded.Known {
		if conceded.Value == 0 {
			cleanSheet = known(1)
		} else {
			cleanSheet = known(0)
		}
	}

	return cleanSheet, conceded
}

// Calculate scores one player's match line.
func Calculate(pos player.Position, stat matchstat.PlayerMatchStat, fx *fixture.Fixture) MatchResult {
	cleanSheet, conceded := ResolveDefensive(pos, stat, fx)

	points := 0
	points += stat.Goals * pointsPerGoal
	points += (stat.Goals / goalsPerHatTrick) * pointsPerHatTrick
	points += stat.Assists * pointsPerAssist
	points += stat.YellowCards * pointsYellowCard
	points += stat.RedCards * pointsRedCard

	switch {
	case stat.Minutes >= fullMatchMinutes:
		points += pointsFullMatch
	case stat.Minutes > 0:
		points += pointsAppearance
	}

	points -= stat.Fouls / foulsPerPenaltyPoint

	if pos == player.PositionGoalkeeper {
		points += stat.Saves / savesPerBonusPoint
		if stat.Minutes > 0 && conceded.Known {
			points -= conceded.Value
		}
	}

	if earnsCleanSheet(pos, stat.Minutes, cleanSheet, conceded) {
		points += pointsCleanSheet
	}

	return MatchResult{
		PlayerID:      stat.PlayerID,
		FixtureID:     stat.FixtureID,
		Points:        float64(points),
		CleanSheet:    cleanSheet,
		GoalsConceded: conceded,
	}
}

func earnsCleanSheet(pos player.Position, minutes int, cleanSheet, conceded Resolved) bool {
	if minutes <= 0 {
		return false
	}
	switch pos {
	case player.PositionGoalkeeper, player.PositionDefender, player.PositionMidfielder:
	default:
		return false
	}
	if cleanSheet.Known {
		return cleanSheet.Value > 0
	}
	return conceded.Known && conceded.Value == 0
}

// Aggregate folds match lines into per-player round totals.
// Lines for players missing from the catalog are skipped and reported.
func Aggregate(
	seasonID int64,
	roundNumber int,
	stats []matchstat.PlayerMatchStat,
	players map[int64]player.Player,
	fixtures map[int64]fixture.Fixture,
) (rounds []PlayerRoundStat, skipped []int64) {
	byPlayer := make(map[int64]*PlayerRoundStat)
	skippedSet := make(map[int64]struct{})

	for _, stat := range stats {
		p, ok := players[stat.PlayerID]
		if !ok {
			skippedSet[stat.PlayerID] = struct{}{}
			continue
		}
		var fx *fixture.Fixture
		if item, ok := fixtures[stat.FixtureID]; ok {
			fx = &item
		}
		if stat.ClubID == 0 {
			stat.ClubID = p.ClubID
		}

		result := Calculate(p.Position, stat, fx)

		agg, ok := byPlayer[stat.PlayerID]
		if !ok {
			agg = &PlayerRoundStat{SeasonID: seasonID, RoundNumber: roundNumber, PlayerID: stat.PlayerID}
			byPlayer[stat.PlayerID] = agg
		}
		agg.Appearances++
		agg.Minutes += stat.Minutes
		agg.Goals += stat.Goals
		agg.Assists += stat.Assists
		agg.Saves += stat.Saves
		agg.Fouls += stat.Fouls
		agg.YellowCards += stat.YellowCards
		agg.RedCards += stat.RedCards
		if result.CleanSheet.Known && result.CleanSheet.Value > 0 {
			agg.CleanSheets++
		}
		if result.GoalsConceded.Known {
			agg.GoalsConceded += result.GoalsConceded.Value
		}
		agg.Points += result.Points
	}

	rounds = make([]PlayerRoundStat, 0, len(byPlayer))
	for _, agg := range byPlayer {
		rounds = append(rounds, *agg)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].PlayerID < rounds[j].PlayerID })

	for id := range skippedSet {
		skipped = append(skipped, id)
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i] < skipped[j] })

	return rounds, skipped
}

// PointsRows projects round stats into points rows.
func PointsRows(rounds []PlayerRoundStat) []PointsRound {
	out := make([]PointsRound, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, PointsRound{
			SeasonID:    r.SeasonID,
			RoundNumber: r.RoundNumber,
			PlayerID:    r.PlayerID,
			Points:      r.Points,
		})
	}
	return out
}

// PointsByPlayer indexes points rows by player id.
func PointsByPlayer(rows []PointsRound) map[int64]float64 {
	out := make(map[int64]float64, len(rows))
	for _, row := range rows {
		out[row.PlayerID] += row.Points
	}
	return out
}
