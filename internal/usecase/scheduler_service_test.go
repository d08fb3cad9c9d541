package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
	fixturemock "github.com/riskibarqy/fantasy-settlement/internal/mocks/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type dispatcherFunc func(ctx context.Context) (DispatchResult, error)

func (f dispatcherFunc) DispatchPending(ctx context.Context) (DispatchResult, error) {
	return f(ctx)
}

func newTestScheduler(env *testEnv, fixtures fixture.Repository, dispatcher NotificationDispatcher) *SchedulerService {
	svc := NewSchedulerService(env.seasons, fixtures, env.settlement, dispatcher, env.outbox, SchedulerConfig{}, logging.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestSchedulerService_RunOnce_ClosesFinishedRounds(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := newTestScheduler(env, env.fixtures, nil)

	result := svc.RunOnce(t.Context())
	assert.Equal(t, 2, result.OpenRounds)
	assert.Equal(t, []int{1}, result.ClosedRounds)
	assert.Equal(t, []int{2}, result.SkippedRounds)
	assert.Empty(t, result.FailedRounds)
	assert.False(t, result.DispatchError)

	round, _ := env.store.Round(memory.SeedRound1ID)
	require.True(t, round.IsClosed)
	require.NotNil(t, round.EndsAt)
	assert.True(t, round.EndsAt.Equal(testNow))
	assert.Len(t, env.store.RoundStats(roundOne), 36)

	outbox := env.store.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, notification.KindRoundClosed, outbox[0].Kind)
	assert.Equal(t, 1, outbox[0].RoundNumber)

	// closed rounds are no longer visited
	second := svc.RunOnce(t.Context())
	assert.Equal(t, 1, second.OpenRounds)
	assert.Empty(t, second.ClosedRounds)
}

func TestSchedulerService_RunOnce_IsolatesRoundFailures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	fixtures := fixturemock.NewRepository(t)
	fixtures.
		On("ListByRound", mock.Anything, memory.SeedRound1ID).
		Return(nil, errors.New("connection reset")).
		Once()
	fixtures.
		On("ListByRound", mock.Anything, memory.SeedRound2ID).
		Return([]fixture.Fixture{{ID: 1, RoundID: memory.SeedRound2ID, Status: fixture.StatusFinished}}, nil).
		Once()

	svc := newTestScheduler(env, fixtures, nil)
	result := svc.RunOnce(t.Context())

	assert.Equal(t, []int{1}, result.FailedRounds)
	assert.Equal(t, []int{2}, result.ClosedRounds)

	round, _ := env.store.Round(memory.SeedRound1ID)
	assert.False(t, round.IsClosed)
}

func TestSchedulerService_RunOnce_DispatchFailureDoesNotBlockRounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dispatcher dispatcherFunc
	}{
		{
			name: "error",
			dispatcher: func(context.Context) (DispatchResult, error) {
				return DispatchResult{}, ErrDependencyUnavailable
			},
		},
		{
			name: "panic",
			dispatcher: func(context.Context) (DispatchResult, error) {
				panic("sender exploded")
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			svc := newTestScheduler(env, env.fixtures, tc.dispatcher)

			result := svc.RunOnce(t.Context())
			if !result.DispatchError {
				t.Fatalf("expected dispatch error to be reported")
			}
			if len(result.ClosedRounds) != 1 || result.ClosedRounds[0] != 1 {
				t.Fatalf("unexpected closed rounds: %v", result.ClosedRounds)
			}
		})
	}
}

func TestSchedulerService_CloseRound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := newTestScheduler(env, env.fixtures, nil)

	notReady, err := svc.CloseRound(t.Context(), 2, false)
	require.NoError(t, err)
	assert.False(t, notReady.Closed)
	assert.Equal(t, "fixtures not finished", notReady.Reason)

	forced, err := svc.CloseRound(t.Context(), 2, true)
	require.NoError(t, err)
	assert.True(t, forced.Closed)

	again, err := svc.CloseRound(t.Context(), 2, true)
	require.NoError(t, err)
	assert.False(t, again.Closed)
	assert.Equal(t, "round already closed", again.Reason)

	require.NoError(t, svc.ReopenRound(t.Context(), 2))
	round, _ := env.store.Round(memory.SeedRound2ID)
	assert.False(t, round.IsClosed)
	require.NotNil(t, round.EndsAt)

	_, err = svc.CloseRound(t.Context(), 7, true)
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestSchedulerService_Run_StopsOnCancel(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := NewSchedulerService(env.seasons, env.fixtures, env.settlement, nil, env.outbox, SchedulerConfig{Interval: 10 * time.Millisecond}, logging.NewNop())

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}

	round, _ := env.store.Round(memory.SeedRound1ID)
	assert.True(t, round.IsClosed)
}

func TestGuard_RecoversPanics(t *testing.T) {
	t.Parallel()

	err := guard(func() error { panic("boom") })
	require.ErrorIs(t, err, errPanicked)

	want := errors.New("plain")
	require.ErrorIs(t, guard(func() error { return want }), want)
}
