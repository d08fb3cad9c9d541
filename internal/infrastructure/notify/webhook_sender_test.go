package notify

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

func newTestSender(t *testing.T, handler fasthttp.RequestHandler, breaker resilience.CircuitBreakerConfig) *WebhookSender {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})

	sender, err := NewWebhookSender(WebhookConfig{
		URL:            "http://hooks.test/rounds",
		Timeout:        time.Second,
		CircuitBreaker: breaker,
		Dial: func(string) (net.Conn, error) {
			return ln.Dial()
		},
	})
	require.NoError(t, err)
	return sender
}

func testNotification() notification.Notification {
	return notification.Notification{
		ID:          7,
		Kind:        notification.KindRoundClosed,
		SeasonID:    1,
		RoundNumber: 3,
		Payload:     map[string]any{"round_id": 103},
		CreatedAt:   time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
	}
}

func TestWebhookSender_PostsEnvelope(t *testing.T) {
	t.Parallel()

	var got webhookEnvelope
	var contentType, notificationID string
	sender := newTestSender(t, func(ctx *fasthttp.RequestCtx) {
		contentType = string(ctx.Request.Header.ContentType())
		notificationID = string(ctx.Request.Header.Peek("X-Notification-Id"))
		if err := sonic.Unmarshal(ctx.PostBody(), &got); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}, resilience.CircuitBreakerConfig{})

	require.NoError(t, sender.Send(t.Context(), testNotification()))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "7", notificationID)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, notification.KindRoundClosed, got.Kind)
	assert.Equal(t, 3, got.RoundNumber)
	assert.Equal(t, float64(103), got.Payload["round_id"])
}

func TestWebhookSender_ClientErrorIsNotTransient(t *testing.T) {
	t.Parallel()

	sender := newTestSender(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
		ctx.SetBodyString("bad payload")
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute})

	for range 3 {
		err := sender.Send(t.Context(), testNotification())
		require.Error(t, err)
		assert.False(t, errors.Is(err, usecase.ErrDependencyUnavailable))
		assert.Contains(t, err.Error(), "status=422")
	}
	assert.Equal(t, resilience.CircuitStateClosed, sender.breaker.State())
}

func TestWebhookSender_OpensCircuitOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	sender := newTestSender(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenProbes: 1})

	for range 2 {
		err := sender.Send(t.Context(), testNotification())
		require.Error(t, err)
		assert.True(t, isWebhookCircuitFailure(err))
	}

	err := sender.Send(t.Context(), testNotification())
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookSender_CancelledContext(t *testing.T) {
	t.Parallel()

	sender := newTestSender(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
	}, resilience.CircuitBreakerConfig{})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, sender.Send(ctx, testNotification()), context.Canceled)
}

func TestNewWebhookSender_ValidatesURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://hooks.test", "http://"} {
		_, err := NewWebhookSender(WebhookConfig{URL: raw})
		require.Error(t, err, raw)
	}
}
