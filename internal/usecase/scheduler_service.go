package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type SchedulerConfig struct {
	Interval time.Duration
	SeasonID int64
}

// RoundSettler resolves and settles rounds.
type RoundSettler interface {
	ResolveRound(ctx context.Context, roundNumber int) (season.Round, error)
	SettleRound(ctx context.Context, round season.Round, opts settlement.Options) (settlement.Report, error)
}

// NotificationDispatcher delivers queued notifications. The scheduler treats
// it as opaque and only logs its failures.
type NotificationDispatcher interface {
	DispatchPending(ctx context.Context) (DispatchResult, error)
}

type noopDispatcher struct{}

func (noopDispatcher) DispatchPending(context.Context) (DispatchResult, error) {
	return DispatchResult{}, nil
}

type SchedulerPassResult struct {
	Dispatched    int   `json:"dispatched"`
	DispatchError bool  `json:"dispatch_error"`
	OpenRounds    int   `json:"open_rounds"`
	ClosedRounds  []int `json:"closed_rounds"`
	FailedRounds  []int `json:"failed_rounds"`
	SkippedRounds []int `json:"skipped_rounds"`
}

type CloseRoundResult struct {
	SeasonID    int64             `json:"season_id"`
	RoundNumber int               `json:"round_number"`
	Closed      bool              `json:"closed"`
	Reason      string            `json:"reason,omitempty"`
	Settlement  settlement.Report `json:"settlement"`
}

type SchedulerService struct {
	seasonRepo  season.Repository
	fixtureRepo fixture.Repository
	settler     RoundSettler
	dispatcher  NotificationDispatcher
	outbox      notification.Repository
	cfg         SchedulerConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewSchedulerService(
	seasonRepo season.Repository,
	fixtureRepo fixture.Repository,
	settler RoundSettler,
	dispatcher NotificationDispatcher,
	outbox notification.Repository,
	cfg SchedulerConfig,
	logger *logging.Logger,
) *SchedulerService {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	return &SchedulerService{
		seasonRepo:  seasonRepo,
		fixtureRepo: fixtureRepo,
		settler:     settler,
		dispatcher:  dispatcher,
		outbox:      outbox,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run sleeps for the configured interval and then runs one pass, until ctx is
// cancelled. Failures inside a pass are logged and never stop the loop.
func (s *SchedulerService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "round scheduler started", "interval", s.cfg.Interval.String())

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "round scheduler stopped")
			return nil
		case <-timer.C:
		}

		if err := guard(func() error {
			s.RunOnce(ctx)
			return nil
		}); err != nil {
			s.logger.ErrorContext(ctx, "scheduler pass crashed", "error", err)
		}
		timer.Reset(s.cfg.Interval)
	}
}

// RunOnce dispatches notifications, then settles and closes every open round
// whose fixtures are all finished. Each unit has its own error boundary.
func (s *SchedulerService) RunOnce(ctx context.Context) SchedulerPassResult {
	result := SchedulerPassResult{
		ClosedRounds:  make([]int, 0),
		FailedRounds:  make([]int, 0),
		SkippedRounds: make([]int, 0),
	}

	err := guard(func() error {
		out, err := s.dispatcher.DispatchPending(ctx)
		result.Dispatched = out.Sent
		return err
	})
	if err != nil {
		result.DispatchError = true
		s.logger.WarnContext(ctx, "notification dispatch failed", "error", err)
	}

	if ctx.Err() != nil {
		return result
	}

	seasonID, err := resolveSeasonID(ctx, s.seasonRepo, s.cfg.SeasonID)
	if err != nil {
		s.logger.WarnContext(ctx, "scheduler cannot resolve season", "error", err)
		return result
	}

	rounds, err := s.seasonRepo.ListOpenRounds(ctx, seasonID)
	if err != nil {
		s.logger.WarnContext(ctx, "list open rounds failed", "season_id", seasonID, "error", err)
		return result
	}
	result.OpenRounds = len(rounds)

	for _, round := range rounds {
		if ctx.Err() != nil {
			break
		}

		var closed bool
		err := guard(func() error {
			var err error
			closed, err = s.closeIfEligible(ctx, round)
			return err
		})
		switch {
		case err != nil:
			result.FailedRounds = append(result.FailedRounds, round.Number)
			s.logger.WarnContext(ctx, "auto close round failed",
				"season_id", round.SeasonID,
				"round", round.Number,
				"error", err,
			)
		case closed:
			result.ClosedRounds = append(result.ClosedRounds, round.Number)
		default:
			result.SkippedRounds = append(result.SkippedRounds, round.Number)
		}
	}

	return result
}

// CloseRound settles and closes one round on operator request. Unless force
// is set the round must be eligible for auto-close.
func (s *SchedulerService) CloseRound(ctx context.Context, roundNumber int, force bool) (CloseRoundResult, error) {
	round, err := s.settler.ResolveRound(ctx, roundNumber)
	if err != nil {
		return CloseRoundResult{}, err
	}

	result := CloseRoundResult{SeasonID: round.SeasonID, RoundNumber: round.Number}
	if round.IsClosed {
		result.Reason = "round already closed"
		return result, nil
	}

	if !force {
		eligible, err := s.isEligible(ctx, round)
		if err != nil {
			return CloseRoundResult{}, err
		}
		if !eligible {
			result.Reason = "fixtures not finished"
			return result, nil
		}
	}

	report, err := s.settleAndClose(ctx, round)
	if err != nil {
		return CloseRoundResult{}, err
	}
	result.Closed = true
	result.Settlement = report
	return result, nil
}

// ReopenRound clears the closed flag so the next pass can settle it again.
func (s *SchedulerService) ReopenRound(ctx context.Context, roundNumber int) error {
	round, err := s.settler.ResolveRound(ctx, roundNumber)
	if err != nil {
		return err
	}
	if err := s.seasonRepo.ReopenRound(ctx, round.ID); err != nil {
		return fmt.Errorf("reopen round %d: %w", roundNumber, err)
	}
	s.logger.InfoContext(ctx, "round reopened", "season_id", round.SeasonID, "round", round.Number)
	return nil
}

func (s *SchedulerService) isEligible(ctx context.Context, round season.Round) (bool, error) {
	fixtures, err := s.fixtureRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return false, fmt.Errorf("list fixtures for %s: %w", round.Key(), err)
	}
	return fixture.AllFinished(fixtures), nil
}

func (s *SchedulerService) closeIfEligible(ctx context.Context, round season.Round) (bool, error) {
	eligible, err := s.isEligible(ctx, round)
	if err != nil || !eligible {
		return false, err
	}
	if _, err := s.settleAndClose(ctx, round); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SchedulerService) settleAndClose(ctx context.Context, round season.Round) (settlement.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.settleAndClose")
	defer span.End()

	report, err := s.settler.SettleRound(ctx, round, settlement.DefaultOptions())
	if err != nil {
		return settlement.Report{}, err
	}

	now := s.now().UTC()
	if err := s.seasonRepo.CloseRound(ctx, round.ID, now); err != nil {
		return settlement.Report{}, fmt.Errorf("close %s: %w", round.Key(), err)
	}

	s.logger.InfoContext(ctx, "round closed",
		"season_id", round.SeasonID,
		"round", round.Number,
		"points_rows", report.PointsRows,
		"prices_updated", report.PricesUpdated,
	)

	if s.outbox != nil {
		_, err := s.outbox.Enqueue(ctx, notification.Notification{
			Kind:        notification.KindRoundClosed,
			SeasonID:    round.SeasonID,
			RoundNumber: round.Number,
			Payload: map[string]any{
				"season_id":      round.SeasonID,
				"round_number":   round.Number,
				"points_rows":    report.PointsRows,
				"prices_updated": report.PricesUpdated,
				"closed_at":      now.Format(time.RFC3339),
			},
			CreatedAt: now,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "enqueue round closed notification failed", "round", round.Number, "error", err)
		}
	}

	return report, nil
}

var errPanicked = errors.New("panic recovered")

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		err = fn()
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return fmt.Errorf("%w: %v", errPanicked, recovered.AsError())
	}
	return err
}
