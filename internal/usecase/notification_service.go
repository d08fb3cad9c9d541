package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

// NotificationSender delivers one notification to the outside world.
type NotificationSender interface {
	Send(ctx context.Context, item notification.Notification) error
}

type NotificationConfig struct {
	BatchSize   int
	MaxAttempts int
}

type DispatchResult struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

type NotificationService struct {
	repo   notification.Repository
	sender NotificationSender
	cfg    NotificationConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewNotificationService(
	repo notification.Repository,
	sender NotificationSender,
	cfg NotificationConfig,
	logger *logging.Logger,
) *NotificationService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &NotificationService{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// DispatchPending sends one batch from the outbox. A failed item is marked and
// skipped; an unavailable sender aborts the batch.
func (s *NotificationService) DispatchPending(ctx context.Context) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.DispatchPending")
	defer span.End()

	if s.sender == nil {
		return DispatchResult{}, nil
	}

	items, err := s.repo.ListPending(ctx, s.cfg.MaxAttempts, s.cfg.BatchSize)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("list pending notifications: %w", err)
	}

	result := DispatchResult{Pending: len(items)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := s.sender.Send(ctx, item); err != nil {
			result.Failed++
			if markErr := s.repo.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
				s.logger.WarnContext(ctx, "mark notification failed", "notification_id", item.ID, "error", markErr)
			}
			if errors.Is(err, ErrDependencyUnavailable) {
				return result, fmt.Errorf("send notification %d: %w", item.ID, err)
			}
			s.logger.WarnContext(ctx, "send notification failed", "notification_id", item.ID, "kind", item.Kind, "error", err)
			continue
		}

		if err := s.repo.MarkSent(ctx, item.ID, s.now().UTC()); err != nil {
			return result, fmt.Errorf("mark notification %d sent: %w", item.ID, err)
		}
		result.Sent++
	}

	return result, nil
}
