package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type staticCodeGenerator struct {
	code string
}

func (g staticCodeGenerator) NewInviteCode() (string, error) {
	return g.code, nil
}

func TestLeagueService_Lifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addTeam(t, 502, seedSquad)
	env.addTeam(t, 503, seedSquad)

	svc := NewLeagueService(env.leagues, env.fantasyRepo, staticCodeGenerator{code: "JOINME"}, logging.NewNop())

	created, err := svc.Create(t.Context(), CreateLeagueInput{TeamID: memory.SeedTeamID, Name: "  Office  "})
	require.NoError(t, err)
	assert.Equal(t, "Office", created.Name)
	assert.Equal(t, memory.SeedTeamID, created.OwnerTeamID)

	joined, err := svc.Join(t.Context(), JoinLeagueInput{TeamID: 502, InviteCode: " joinme "})
	require.NoError(t, err)
	assert.Equal(t, created.ID, joined.ID)

	// joining twice is a no-op
	_, err = svc.Join(t.Context(), JoinLeagueInput{TeamID: 502, InviteCode: "JOINME"})
	require.NoError(t, err)
	_, err = svc.Join(t.Context(), JoinLeagueInput{TeamID: 503, InviteCode: "JOINME"})
	require.NoError(t, err)

	members, err := env.leagues.ListMembers(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	left, err := svc.Leave(t.Context(), created.ID, memory.SeedTeamID)
	require.NoError(t, err)
	assert.True(t, left.OwnerChanged)
	assert.Equal(t, int64(502), left.NewOwnerTeamID)

	_, err = svc.Leave(t.Context(), created.ID, memory.SeedTeamID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Leave(t.Context(), created.ID, 503)
	require.NoError(t, err)
	last, err := svc.Leave(t.Context(), created.ID, 502)
	require.NoError(t, err)
	assert.True(t, last.LeagueDeleted)
}

func TestLeagueService_InputErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := NewLeagueService(env.leagues, env.fantasyRepo, staticCodeGenerator{code: "JOINME"}, logging.NewNop())

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "blank name",
			run: func() error {
				_, err := svc.Create(t.Context(), CreateLeagueInput{TeamID: memory.SeedTeamID, Name: " "})
				return err
			},
			want: ErrInvalidInput,
		},
		{
			name: "unknown team",
			run: func() error {
				_, err := svc.Create(t.Context(), CreateLeagueInput{TeamID: 77, Name: "x"})
				return err
			},
			want: ErrNotFound,
		},
		{
			name: "unknown invite code",
			run: func() error {
				_, err := svc.Join(t.Context(), JoinLeagueInput{TeamID: memory.SeedTeamID, InviteCode: "NOPE"})
				return err
			},
			want: ErrNotFound,
		},
		{
			name: "missing ids on leave",
			run: func() error {
				_, err := svc.Leave(t.Context(), 0, memory.SeedTeamID)
				return err
			},
			want: ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		if err := tc.run(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
