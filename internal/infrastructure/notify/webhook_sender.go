package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	URL            string
	Timeout        time.Duration
	UserAgent      string
	CircuitBreaker resilience.CircuitBreakerConfig
	// Dial overrides the TCP dialer. Tests use an in-memory listener.
	Dial   fasthttp.DialFunc
	Logger *logging.Logger
}

// WebhookSender posts outbox notifications as JSON to one webhook URL.
type WebhookSender struct {
	client         *fasthttp.Client
	url            string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

type webhookEnvelope struct {
	ID          int64          `json:"id"`
	Kind        string         `json:"kind"`
	SeasonID    int64          `json:"season_id"`
	RoundNumber int            `json:"round_number"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewWebhookSender(cfg WebhookConfig) (*WebhookSender, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid NOTIFY_WEBHOOK_URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "fantasy-settlement"
	}

	return &WebhookSender{
		client: &fasthttp.Client{
			Name:         userAgent,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			Dial:         cfg.Dial,
		},
		url:            target,
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}, nil
}

func (s *WebhookSender) Send(ctx context.Context, item notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.circuitEnabled {
		return s.post(ctx, item)
	}

	err := s.breaker.Do(func() error { return s.post(ctx, item) }, isWebhookCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", s.breaker.State())
		return fmt.Errorf("%w: notification webhook is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return err
}

func (s *WebhookSender) post(ctx context.Context, item notification.Notification) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	payload := item.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(webhookEnvelope{
		ID:          item.ID,
		Kind:        item.Kind,
		SeasonID:    item.SeasonID,
		RoundNumber: item.RoundNumber,
		Payload:     payload,
		CreatedAt:   item.CreatedAt.UTC(),
	}); err != nil {
		return crerr.Wrap(err, "encode webhook payload")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.url", s.url),
			attribute.Int64("webhook.notification_id", item.ID),
			attribute.String("webhook.kind", item.Kind),
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Notification-Id", fmt.Sprintf("%d", item.ID))
	req.SetBody(buf.B)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: post webhook notification_id=%d: %v", errWebhookTransient, item.ID, err)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		s.logger.DebugContext(ctx, "webhook notification delivered", "notification_id", item.ID, "status", status)
		return nil
	}
	if isRetryableStatus(status) {
		return fmt.Errorf("%w: webhook status=%d body=%s", errWebhookTransient, status, abbreviateBody(resp.Body()))
	}
	return crerr.Newf("webhook status=%d body=%s", status, abbreviateBody(resp.Body()))
}

func isWebhookCircuitFailure(err error) bool {
	return stderrors.Is(err, errWebhookTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
