package scoring

import (
	"math"
	"testing"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
)

func intPtr(v int) *int { return &v }

func finishedFixture(home, away int) *fixture.Fixture {
	return &fixture.Fixture{
		ID:         10,
		HomeClubID: 1,
		AwayClubID: 2,
		HomeScore:  intPtr(home),
		AwayScore:  intPtr(away),
		Status:     fixture.StatusFinished,
	}
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pos  player.Position
		stat matchstat.PlayerMatchStat
		fx   *fixture.Fixture
		want float64
	}{
		{
			name: "midfielder full match goal and assist",
			pos:  player.PositionMidfielder,
			stat: matchstat.PlayerMatchStat{Minutes: 90, Goals: 1, Assists: 1},
			want: 9,
		},
		{
			name: "forward hat-trick",
			pos:  player.PositionForward,
			stat: matchstat.PlayerMatchStat{Minutes: 90, Goals: 3},
			want: 17,
		},
		{
			name: "goalkeeper saves and conceded override",
			pos:  player.PositionGoalkeeper,
			stat: matchstat.PlayerMatchStat{Minutes: 90, Saves: 5, GoalsConceded: matchstat.Explicit(2)},
			want: 1,
		},
		{
			name: "double hat-trick",
			pos:  player.PositionForward,
			stat: matchstat.PlayerMatchStat{Minutes: 90, Goals: 6},
			want: 24 + 6 + 2,
		},
		{
			name: "cameo with cards and fouls",
			pos:  player.PositionForward,
			stat: matchstat.PlayerMatchStat{Minutes: 10, YellowCards: 1, RedCards: 1, Fouls: 11},
			want: 1 - 3 - 5 - 2,
		},
		{
			name: "unused substitute scores nothing",
			pos:  player.PositionDefender,
			stat: matchstat.PlayerMatchStat{Minutes: 0, ClubID: 1},
			fx:   finishedFixture(1, 0),
			want: 0,
		},
		{
			name: "defender inferred clean sheet",
			pos:  player.PositionDefender,
			stat: matchstat.PlayerMatchStat{Minutes: 90, ClubID: 2},
			fx:   finishedFixture(0, 3),
			want: 5,
		},
		{
			name: "explicit zero clean sheet replaced by inference",
			pos:  player.PositionMidfielder,
			stat: matchstat.PlayerMatchStat{Minutes: 60, ClubID: 1, CleanSheet: matchstat.Explicit(0)},
			fx:   finishedFixture(2, 0),
			want: 4,
		},
		{
			name: "forward never earns clean sheet",
			pos:  player.PositionForward,
			stat: matchstat.PlayerMatchStat{Minutes: 90, ClubID: 1, CleanSheet: matchstat.Explicit(1)},
			fx:   finishedFixture(2, 0),
			want: 2,
		},
		{
			name: "goalkeeper conceded inferred from fixture",
			pos:  player.PositionGoalkeeper,
			stat: matchstat.PlayerMatchStat{Minutes: 90, ClubID: 1, Saves: 10},
			fx:   finishedFixture(1, 3),
			want: 2 + 2 - 3,
		},
		{
			name: "goalkeeper without conceded data",
			pos:  player.PositionGoalkeeper,
			stat: matchstat.PlayerMatchStat{Minutes: 90},
			want: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Calculate(tc.pos, tc.stat, tc.fx)
			if math.Abs(got.Points-tc.want) > 1e-9 {
				t.Fatalf("unexpected points: got=%v want=%v", got.Points, tc.want)
			}
		})
	}
}

func TestResolveDefensive_GoalkeeperConcededTwo(t *testing.T) {
	t.Parallel()

	stat := matchstat.PlayerMatchStat{Minutes: 90, Saves: 5, GoalsConceded: matchstat.Explicit(2)}
	cs, conceded := ResolveDefensive(player.PositionGoalkeeper, stat, nil)
	if cs.Known {
		t.Fatalf("clean sheet should stay unknown without fixture and override, got %+v", cs)
	}
	if !conceded.Known || conceded.Value != 2 {
		t.Fatalf("unexpected conceded: %+v", conceded)
	}

	stat.ClubID = 1
	cs, _ = ResolveDefensive(player.PositionGoalkeeper, stat, finishedFixture(0, 2))
	if !cs.Known || cs.Value != 0 {
		t.Fatalf("clean sheet should resolve to 0, got %+v", cs)
	}
}

func TestResolveDefensive_ExplicitZeroWithoutFixtureStands(t *testing.T) {
	t.Parallel()

	stat := matchstat.PlayerMatchStat{Minutes: 90, GoalsConceded: matchstat.Explicit(0)}
	_, conceded := ResolveDefensive(player.PositionDefender, stat, nil)
	if !conceded.Known || conceded.Value != 0 {
		t.Fatalf("explicit zero should stand, got %+v", conceded)
	}

	stat.ClubID = 1
	_, conceded = ResolveDefensive(player.PositionDefender, stat, finishedFixture(1, 4))
	if conceded.Value != 4 {
		t.Fatalf("explicit zero should be replaced by inferred value, got %+v", conceded)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	players := map[int64]player.Player{
		1: {ID: 1, ClubID: 1, Position: player.PositionDefender},
		2: {ID: 2, ClubID: 2, Position: player.PositionForward},
	}
	fixtures := map[int64]fixture.Fixture{10: *finishedFixture(1, 0)}
	stats := []matchstat.PlayerMatchStat{
		{PlayerID: 2, FixtureID: 10, Minutes: 90, Goals: 1},
		{PlayerID: 1, FixtureID: 10, Minutes: 90},
		{PlayerID: 1, FixtureID: 11, Minutes: 30},
		{PlayerID: 99, FixtureID: 10, Minutes: 90},
	}

	rounds, skipped := Aggregate(7, 3, stats, players, fixtures)
	if len(rounds) != 2 {
		t.Fatalf("expected 2 aggregated players, got %d", len(rounds))
	}
	if len(skipped) != 1 || skipped[0] != 99 {
		t.Fatalf("unexpected skipped players: %v", skipped)
	}

	def := rounds[0]
	if def.PlayerID != 1 || def.Appearances != 2 || def.Minutes != 120 {
		t.Fatalf("unexpected defender aggregate: %+v", def)
	}
	// 90' +2 +clean sheet 3, then a 30' cameo without fixture data +1.
	if def.Points != 6 || def.CleanSheets != 1 {
		t.Fatalf("unexpected defender points: %+v", def)
	}
	if rounds[1].Points != 6 {
		t.Fatalf("unexpected forward points: %+v", rounds[1])
	}

	rows := PointsRows(rounds)
	if rows[0].SeasonID != 7 || rows[0].RoundNumber != 3 {
		t.Fatalf("unexpected row keys: %+v", rows[0])
	}
}
