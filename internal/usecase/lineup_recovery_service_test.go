package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

const (
	transferTeamID  int64 = 502
	shortTeamID     int64 = 503
	noHistoryTeamID int64 = 504
)

// newRecoveryEnv adds three teams next to the seeded one: one that sold the
// hat-trick forward in round 2, one with a short roster and one that never
// saved a lineup.
func newRecoveryEnv(t *testing.T) (*testEnv, *LineupRecoveryService) {
	t.Helper()

	env := newTestEnv(t)

	transferred := make([]int64, 0, len(seedSquad))
	for _, id := range seedSquad {
		if id == 66 {
			id = 46
		}
		transferred = append(transferred, id)
	}
	env.addTeam(t, transferTeamID, transferred)
	env.store.AddTransfer(fantasy.Transfer{
		TeamID:      transferTeamID,
		SeasonID:    memory.SeedSeasonID,
		RoundNumber: 2,
		OutPlayerID: 66,
		InPlayerID:  46,
		OutPrice:    8.5,
		InPrice:     8.5,
		CreatedAt:   testNow,
	})
	stored, ok, err := env.lineups.GetByTeamAndRound(t.Context(), memory.SeedTeamID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	stored.ID = 0
	stored.TeamID = transferTeamID
	env.store.AddLineup(stored)

	env.addTeam(t, shortTeamID, seedSquad[:10])
	env.addTeam(t, noHistoryTeamID, seedSquad)

	svc := NewLineupRecoveryService(
		env.fantasyRepo,
		env.lineups,
		env.players,
		env.scores,
		env.settlement,
		LineupRecoveryConfig{MaxWorkers: 2},
		logging.NewNop(),
	)
	svc.now = func() time.Time { return testNow }
	return env, svc
}

func statusByTeam(report LineupRecoveryReport) map[int64]lineup.Status {
	out := make(map[int64]lineup.Status, len(report.Teams))
	for _, row := range report.Teams {
		out[row.TeamID] = row.Status
	}
	return out
}

func TestLineupRecoveryService_Recover_ClassifiesTeams(t *testing.T) {
	t.Parallel()

	_, svc := newRecoveryEnv(t)

	roundOneReport, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, map[int64]lineup.Status{
		memory.SeedTeamID: lineup.StatusOK,
		transferTeamID:    lineup.StatusOK,
		shortTeamID:       lineup.StatusMarketIncomplete,
		noHistoryTeamID:   lineup.StatusMarketWithoutLineup,
	}, statusByTeam(roundOneReport))
	assert.Equal(t, 2, roundOneReport.Counts[lineup.StatusOK])
	assert.Equal(t, 2, roundOneReport.WorkerCount)

	roundTwoReport, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 2})
	require.NoError(t, err)
	statuses := statusByTeam(roundTwoReport)
	assert.Equal(t, lineup.StatusRecovered, statuses[memory.SeedTeamID])
	assert.Equal(t, lineup.StatusRecovered, statuses[transferTeamID])

	for _, row := range roundTwoReport.Teams {
		switch row.TeamID {
		case memory.SeedTeamID:
			assert.Equal(t, 15, row.Kept)
			assert.Equal(t, int64(26), row.CaptainID)
			assert.Equal(t, int64(14), row.ViceCaptainID)
			assert.Equal(t, 1, row.TemplateRound)
		case transferTeamID:
			assert.Equal(t, 14, row.Kept)
			assert.Equal(t, 1, row.Reassigned)
		}
	}
}

func TestLineupRecoveryService_Recover_DryRunIsDeterministic(t *testing.T) {
	t.Parallel()

	env, svc := newRecoveryEnv(t)

	first, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 2})
	require.NoError(t, err)
	second, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 2})
	require.NoError(t, err)

	assert.True(t, first.DryRun)
	assert.Zero(t, first.Applied)
	assert.Equal(t, first, second)

	_, exists, err := env.lineups.GetByTeamAndRound(t.Context(), memory.SeedTeamID, 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLineupRecoveryService_Recover_ApplyPersistsLineups(t *testing.T) {
	t.Parallel()

	env, svc := newRecoveryEnv(t)

	applied, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 2, Apply: true, RecalculatePoints: true})
	require.NoError(t, err)
	assert.Equal(t, 2, applied.Applied)
	require.NotNil(t, applied.Recalculated)
	assert.Equal(t, 2, applied.Recalculated.RoundNumber)

	saved, exists, err := env.lineups.GetByTeamAndRound(t.Context(), transferTeamID, 2)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Contains(t, saved.PlayerIDs(), int64(46))
	assert.NotContains(t, saved.PlayerIDs(), int64(66))

	again, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 2, TeamIDs: []int64{memory.SeedTeamID, transferTeamID}})
	require.NoError(t, err)
	assert.Equal(t, 2, again.TeamCount)
	assert.Equal(t, 2, again.Counts[lineup.StatusOK])
}

func recoverTeam(t *testing.T, svc *LineupRecoveryService, teamID int64, apply bool) TeamRecoveryResult {
	t.Helper()

	report, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 2, Apply: apply, TeamIDs: []int64{teamID}})
	require.NoError(t, err)
	require.Len(t, report.Teams, 1)
	return report.Teams[0]
}

func TestLineupRecoveryService_Recover_WidensPartialLineup(t *testing.T) {
	t.Parallel()

	env, svc := newRecoveryEnv(t)
	roundOne, _, err := env.lineups.GetByTeamAndRound(t.Context(), memory.SeedTeamID, 1)
	require.NoError(t, err)

	partial := roundOne
	partial.ID, partial.RoundNumber = 0, 2
	partial.Slots = roundOne.SortedSlots()[:5]
	partial = env.store.AddLineup(partial)

	row := recoverTeam(t, svc, memory.SeedTeamID, true)
	assert.Equal(t, lineup.StatusRecovered, row.Status)
	assert.Empty(t, row.Violations)
	assert.Equal(t, partial.ID, row.TemplateLineupID)
	assert.Equal(t, 5, row.Kept)
	assert.Equal(t, 10, row.Reassigned)
	assert.Equal(t, int64(26), row.CaptainID)

	saved, exists, err := env.lineups.GetByTeamAndRound(t.Context(), memory.SeedTeamID, 2)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, partial.ID, saved.ID)
	assert.True(t, saved.IsComplete())
	assert.True(t, saved.SamePlayers(seedSquad))
}

func TestLineupRecoveryService_Recover_PlayersMissing(t *testing.T) {
	t.Parallel()

	env, svc := newRecoveryEnv(t)
	env.addTeam(t, 505, seedSquad)
	env.store.RemovePlayers(66)

	row := recoverTeam(t, svc, 505, false)
	assert.Equal(t, lineup.StatusPlayersMissing, row.Status)
	assert.Equal(t, []int64{66}, row.MissingPlayers)
	assert.Equal(t, 15, row.MarketSize)
}

func TestLineupRecoveryService_Recover_OnlyIncompleteLineups(t *testing.T) {
	t.Parallel()

	env, svc := newRecoveryEnv(t)
	roundOne, _, err := env.lineups.GetByTeamAndRound(t.Context(), memory.SeedTeamID, 1)
	require.NoError(t, err)

	env.addTeam(t, 505, seedSquad)
	for _, round := range []int{1, 3} {
		partial := roundOne
		partial.ID, partial.TeamID, partial.RoundNumber = 0, 505, round
		partial.Slots = roundOne.SortedSlots()[:14]
		env.store.AddLineup(partial)
	}

	row := recoverTeam(t, svc, 505, false)
	assert.Equal(t, lineup.StatusNotFound, row.Status)
	assert.Zero(t, row.TemplateLineupID)
}

func TestLineupRecoveryService_Recover_MarketCannotFillStarters(t *testing.T) {
	t.Parallel()

	env, svc := newRecoveryEnv(t)
	// Fifteen outfield players and no goalkeeper.
	outfield := []int64{12, 13, 14, 15, 16, 22, 23, 24, 25, 26, 32, 33, 34, 35, 36}
	env.addTeam(t, 505, outfield)
	env.store.AddLineup(lineup.Lineup{
		TeamID:      505,
		RoundNumber: 2,
		Slots:       []lineup.Slot{{Index: 2, PlayerID: 12, IsStarter: true, Position: player.PositionDefender}},
	})

	row := recoverTeam(t, svc, 505, true)
	assert.Equal(t, lineup.StatusUnrecoverable, row.Status)
	assert.Contains(t, row.Violations, fantasy.ViolationStarterGoalkeeper)
	assert.NotContains(t, row.Violations, fantasy.ViolationLineupSlots)

	stored, _, err := env.lineups.GetByTeamAndRound(t.Context(), 505, 2)
	require.NoError(t, err)
	assert.Len(t, stored.Slots, 1, "unrecoverable lineups are not saved")
}

func TestLineupRecoveryService_Recover_UnknownRound(t *testing.T) {
	t.Parallel()

	_, svc := newRecoveryEnv(t)
	_, err := svc.Recover(t.Context(), LineupRecoveryInput{RoundNumber: 30})
	require.ErrorIs(t, err, ErrRoundNotFound)
}
