package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type SettlementConfig struct {
	// SeasonID pins settlement to one season. Zero follows the active season.
	SeasonID int64
	Band     pricing.Band
}

type SettlementService struct {
	seasonRepo  season.Repository
	fixtureRepo fixture.Repository
	statRepo    matchstat.Repository
	playerRepo  player.Repository
	store       settlement.Store
	cfg         SettlementConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewSettlementService(
	seasonRepo season.Repository,
	fixtureRepo fixture.Repository,
	statRepo matchstat.Repository,
	playerRepo player.Repository,
	store settlement.Store,
	cfg SettlementConfig,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Band.Max.IsZero() {
		cfg.Band = pricing.DefaultBand()
	}

	return &SettlementService{
		seasonRepo:  seasonRepo,
		fixtureRepo: fixtureRepo,
		statRepo:    statRepo,
		playerRepo:  playerRepo,
		store:       store,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Settle resolves the round by number within the configured season and settles it.
func (s *SettlementService) Settle(ctx context.Context, roundNumber int, opts settlement.Options) (settlement.Report, error) {
	round, err := s.ResolveRound(ctx, roundNumber)
	if err != nil {
		return settlement.Report{}, err
	}
	return s.SettleRound(ctx, round, opts)
}

// ResolveRound maps a round number onto the configured or active season.
func (s *SettlementService) ResolveRound(ctx context.Context, roundNumber int) (season.Round, error) {
	if roundNumber <= 0 {
		return season.Round{}, fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}

	seasonID, err := resolveSeasonID(ctx, s.seasonRepo, s.cfg.SeasonID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return season.Round{}, fmt.Errorf("%w: number=%d: %v", ErrRoundNotFound, roundNumber, err)
		}
		return season.Round{}, err
	}

	round, exists, err := s.seasonRepo.GetRound(ctx, seasonID, roundNumber)
	if err != nil {
		return season.Round{}, fmt.Errorf("get round %d: %w", roundNumber, err)
	}
	if !exists {
		return season.Round{}, fmt.Errorf("%w: season=%d number=%d", ErrRoundNotFound, seasonID, roundNumber)
	}
	return round, nil
}

// SettleRound recomputes points for every player with match stats in the
// round and, when asked, moves prices and team budgets. Re-running it with
// unchanged inputs leaves every row as it was.
func (s *SettlementService) SettleRound(ctx context.Context, round season.Round, opts settlement.Options) (settlement.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleRound",
		attribute.Int64("season.id", round.SeasonID),
		attribute.Int("round.number", round.Number),
	)
	defer span.End()

	key := round.Key()
	report := settlement.Report{SeasonID: key.SeasonID, RoundNumber: key.Number}

	stats, err := s.statRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return settlement.Report{}, fmt.Errorf("list match stats for %s: %w", key, err)
	}
	if len(stats) == 0 {
		s.logger.InfoContext(ctx, "no match stats for round, nothing to settle", "season_id", key.SeasonID, "round", key.Number)
		return report, nil
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return settlement.Report{}, fmt.Errorf("list fixtures for %s: %w", key, err)
	}
	fixtureByID := make(map[int64]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		fixtureByID[item.ID] = item
	}

	players, err := s.playerRepo.GetByIDs(ctx, statPlayerIDs(stats))
	if err != nil {
		return settlement.Report{}, fmt.Errorf("load players for %s: %w", key, err)
	}

	rounds, skipped := scoring.Aggregate(key.SeasonID, key.Number, stats, player.IndexByID(players), fixtureByID)
	if len(skipped) > 0 {
		s.logger.WarnContext(ctx, "match stats reference unknown players", "season_id", key.SeasonID, "round", key.Number, "player_ids", skipped)
	}
	report.SkippedPlayers = skipped

	err = s.store.WithRoundLock(ctx, key, func(ctx context.Context, tx settlement.Tx) error {
		if err := tx.ReplaceRoundResults(ctx, key, rounds); err != nil {
			return fmt.Errorf("replace round results: %w", err)
		}
		report.PointsRows = len(rounds)

		if !opts.ApplyPrices {
			return nil
		}
		return s.applyPrices(ctx, tx, key, rounds, opts, &report)
	})
	if err != nil {
		return settlement.Report{}, fmt.Errorf("settle %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "round settled",
		"season_id", key.SeasonID,
		"round", key.Number,
		"points_rows", report.PointsRows,
		"prices_updated", report.PricesUpdated,
		"budgets_changed", report.BudgetsChanged,
		"apply_prices", opts.ApplyPrices,
	)
	return report, nil
}

func (s *SettlementService) applyPrices(
	ctx context.Context,
	tx settlement.Tx,
	key season.Key,
	rounds []scoring.PlayerRoundStat,
	opts settlement.Options,
	report *settlement.Report,
) error {
	movements, err := tx.ListPriceMovements(ctx, key)
	if err != nil {
		return fmt.Errorf("list price movements: %w", err)
	}
	priorByPlayer := make(map[int64]pricing.Movement, len(movements))
	for _, m := range movements {
		priorByPlayer[m.PlayerID] = m
	}

	pointsByPlayer := make(map[int64]float64, len(rounds))
	ids := make([]int64, 0, len(rounds)+len(movements))
	for _, r := range rounds {
		pointsByPlayer[r.PlayerID] = r.Points
		ids = append(ids, r.PlayerID)
	}
	for _, m := range movements {
		if _, ok := pointsByPlayer[m.PlayerID]; !ok {
			ids = append(ids, m.PlayerID)
		}
	}

	current, err := tx.ListPlayers(ctx, ids)
	if err != nil {
		return fmt.Errorf("load current prices: %w", err)
	}

	inputs := make([]pricing.Input, 0, len(current))
	for _, p := range current {
		points, scored := pointsByPlayer[p.ID]
		in := pricing.Input{
			PlayerID:     p.ID,
			CurrentPrice: p.Price,
			Injured:      p.Injured,
			Scored:       scored,
			Points:       points,
		}
		if prior, ok := priorByPlayer[p.ID]; ok {
			prior := prior
			in.Prior = &prior
		}
		inputs = append(inputs, in)
	}

	changes := pricing.Plan(inputs, s.cfg.Band)
	if len(changes) == 0 {
		return nil
	}

	budgets, err := tx.ApplyPriceChanges(ctx, key, changes)
	if err != nil {
		return fmt.Errorf("apply price changes: %w", err)
	}
	report.BudgetsChanged = budgets

	history := make([]pricing.HistoryEntry, 0, len(changes))
	for _, c := range changes {
		if c.PriceDiff == 0 {
			continue
		}
		report.PricesUpdated++
		history = append(history, pricing.HistoryEntry{
			SeasonID:    key.SeasonID,
			RoundNumber: key.Number,
			PlayerID:    c.PlayerID,
			Price:       c.NewPrice,
			Delta:       c.PriceDiff,
		})
	}

	if opts.WritePriceHistory && len(history) > 0 {
		if err := tx.AppendPriceHistory(ctx, history, s.now().UTC()); err != nil {
			return fmt.Errorf("append price history: %w", err)
		}
	}
	return nil
}

func statPlayerIDs(stats []matchstat.PlayerMatchStat) []int64 {
	seen := make(map[int64]struct{}, len(stats))
	out := make([]int64, 0, len(stats))
	for _, st := range stats {
		if _, ok := seen[st.PlayerID]; ok {
			continue
		}
		seen[st.PlayerID] = struct{}{}
		out = append(out, st.PlayerID)
	}
	return out
}

func resolveSeasonID(ctx context.Context, repo season.Repository, configured int64) (int64, error) {
	if configured > 0 {
		return configured, nil
	}
	active, exists, err := repo.GetActiveSeason(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: no active season", ErrNotFound)
	}
	return active.ID, nil
}
