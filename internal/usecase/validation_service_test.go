package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

func newTestValidation(env *testEnv) *ValidationService {
	svc := NewValidationService(env.players, env.fantasyRepo, fantasy.DefaultRules(), logging.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestValidationService_ValidateSquad(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := newTestValidation(env)

	tests := []struct {
		name      string
		playerIDs []int64
		budget    float64
		want      []fantasy.Violation
	}{
		{name: "seed squad fits", playerIDs: seedSquad, budget: 100, want: []fantasy.Violation{}},
		{name: "over budget", playerIDs: seedSquad, budget: 97.9, want: []fantasy.Violation{fantasy.ViolationBudgetExceeded}},
		{
			name:      "unknown player",
			playerIDs: append(append([]int64(nil), seedSquad[:14]...), 999),
			budget:    100,
			want:      []fantasy.Violation{fantasy.ViolationUnknownPlayers},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := svc.ValidateSquad(t.Context(), SquadValidationInput{PlayerIDs: tc.playerIDs, BudgetCap: tc.budget})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := svc.ValidateSquad(t.Context(), SquadValidationInput{PlayerIDs: seedSquad})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidationService_ValidateLineup_SeedLineup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := newTestValidation(env)

	stored, _, err := env.lineups.GetByTeamAndRound(t.Context(), memory.SeedTeamID, 1)
	require.NoError(t, err)

	got, err := svc.ValidateLineup(t.Context(), LineupValidationInput{
		TeamID:        memory.SeedTeamID,
		Slots:         stored.Slots,
		CaptainID:     stored.CaptainID,
		ViceCaptainID: stored.ViceCaptainID,
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	benchCaptain, err := svc.ValidateLineup(t.Context(), LineupValidationInput{
		TeamID:        memory.SeedTeamID,
		Slots:         stored.Slots,
		CaptainID:     21,
		ViceCaptainID: 21,
	})
	require.NoError(t, err)
	assert.Contains(t, benchCaptain, fantasy.ViolationCaptainNotStarter)
	assert.Contains(t, benchCaptain, fantasy.ViolationCaptainIsVice)
}

func TestValidationService_Transfers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := newTestValidation(env)

	crowded, err := svc.ValidateTransfer(t.Context(), TransferValidationInput{
		TeamID: memory.SeedTeamID, RoundNumber: 2, OutPlayerID: 66, InPlayerID: 36,
	})
	require.NoError(t, err)
	assert.Equal(t, []fantasy.Violation{fantasy.ViolationMaxPerClub}, crowded)

	first, err := svc.ExecuteTransfer(t.Context(), TransferValidationInput{
		TeamID: memory.SeedTeamID, RoundNumber: 2, OutPlayerID: 66, InPlayerID: 46, BudgetCap: 98.2,
	})
	require.NoError(t, err)
	assert.Empty(t, first.Violations)
	require.NotNil(t, first.Transfer)
	assert.Equal(t, 8.5, first.Transfer.OutPrice)
	assert.Equal(t, 8.5, first.Transfer.InPrice)

	squad, err := env.fantasyRepo.ListSquad(t.Context(), memory.SeedTeamID)
	require.NoError(t, err)
	assert.Contains(t, fantasy.SquadPlayerIDs(squad), int64(46))
	assert.NotContains(t, fantasy.SquadPlayerIDs(squad), int64(66))

	// a second transfer in the same round pays the fee out of the cap
	second, err := svc.ExecuteTransfer(t.Context(), TransferValidationInput{
		TeamID: memory.SeedTeamID, RoundNumber: 2, OutPlayerID: 52, InPlayerID: 62, BudgetCap: 98.2,
	})
	require.NoError(t, err)
	assert.Equal(t, []fantasy.Violation{fantasy.ViolationBudgetExceeded}, second.Violations)
	assert.Nil(t, second.Transfer)

	missing, err := svc.ValidateTransfer(t.Context(), TransferValidationInput{
		TeamID: memory.SeedTeamID, RoundNumber: 2, OutPlayerID: 66, InPlayerID: 46,
	})
	require.NoError(t, err)
	assert.Contains(t, missing, fantasy.ViolationOutNotInSquad)
	assert.Contains(t, missing, fantasy.ViolationInAlreadyInSquad)
}
