package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fantasy-settlement/internal/config"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/league"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/notify"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/fantasy-settlement/internal/platform/id"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

type repositories struct {
	seasons   season.Repository
	fixtures  fixture.Repository
	stats     matchstat.Repository
	players   player.Repository
	fantasy   fantasy.Repository
	lineups   lineup.Repository
	leagues   league.Repository
	scores    scoring.Repository
	outbox    notification.Repository
	store     settlement.Store
	storeKind string
}

// Container holds every wired service. cmd/api and cmd/admin share it.
type Container struct {
	Settlement *usecase.SettlementService
	Scheduler  *usecase.SchedulerService
	Recovery   *usecase.LineupRecoveryService
	Standings  *usecase.StandingsService
	Leagues    *usecase.LeagueService
	Validation *usecase.ValidationService
	Notifier   *usecase.NotificationService

	StoreKind string
	closers   []func() error
}

func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	band, err := pricing.NewBand(cfg.PriceMin, cfg.PriceMax)
	if err != nil {
		return nil, err
	}
	rules := fantasy.DefaultRules()
	rules.TransferFee = decimal.NewFromFloat(cfg.TransferFee)

	c := &Container{}
	repos, err := c.openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.StoreKind = repos.storeKind

	c.Settlement = usecase.NewSettlementService(
		repos.seasons,
		repos.fixtures,
		repos.stats,
		repos.players,
		repos.store,
		usecase.SettlementConfig{SeasonID: cfg.SettlementSeasonID, Band: band},
		logger,
	)

	var dispatcher usecase.NotificationDispatcher
	if cfg.NotifyEnabled {
		sender, err := notify.NewWebhookSender(notify.WebhookConfig{
			URL:       cfg.NotifyWebhookURL,
			Timeout:   cfg.NotifyTimeout,
			UserAgent: cfg.ServiceName + "/" + cfg.ServiceVersion,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.NotifyCircuitEnabled,
				FailureThreshold: cfg.NotifyCircuitFailures,
				OpenTimeout:      cfg.NotifyCircuitOpenFor,
				HalfOpenProbes:   cfg.NotifyCircuitHalfOpen,
			},
			Logger: logger,
		})
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Notifier = usecase.NewNotificationService(
			repos.outbox,
			sender,
			usecase.NotificationConfig{BatchSize: cfg.NotifyBatchSize, MaxAttempts: cfg.NotifyMaxAttempts},
			logger,
		)
		dispatcher = c.Notifier
	}

	c.Scheduler = usecase.NewSchedulerService(
		repos.seasons,
		repos.fixtures,
		c.Settlement,
		dispatcher,
		repos.outbox,
		usecase.SchedulerConfig{Interval: cfg.SchedulerInterval, SeasonID: cfg.SettlementSeasonID},
		logger,
	)
	c.Recovery = usecase.NewLineupRecoveryService(
		repos.fantasy,
		repos.lineups,
		repos.players,
		repos.scores,
		c.Settlement,
		usecase.LineupRecoveryConfig{MaxWorkers: cfg.RecoveryMaxWorkers, Rules: rules},
		logger,
	)
	c.Standings = usecase.NewStandingsService(
		repos.seasons,
		repos.fantasy,
		repos.leagues,
		repos.lineups,
		repos.scores,
		cfg.SettlementSeasonID,
	)
	c.Leagues = usecase.NewLeagueService(repos.leagues, repos.fantasy, idgen.NewRandomGenerator(8), logger)
	c.Validation = usecase.NewValidationService(repos.players, repos.fantasy, rules, logger)

	logger.InfoContext(ctx, "container ready",
		"store", c.StoreKind,
		"notify_enabled", cfg.NotifyEnabled,
		"settlement_season_id", cfg.SettlementSeasonID,
	)
	return c, nil
}

func (c *Container) openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.DBURL == "" {
		store := memory.NewStore()
		if cfg.SeedDemoData {
			memory.Seed(store, time.Now().UTC())
		}
		logger.WarnContext(ctx, "DB_URL is empty, running on the in-memory store", "seeded", cfg.SeedDemoData)
		return repositories{
			seasons:   memory.NewSeasonRepository(store),
			fixtures:  memory.NewFixtureRepository(store),
			stats:     memory.NewMatchStatRepository(store),
			players:   memory.NewPlayerRepository(store),
			fantasy:   memory.NewFantasyRepository(store),
			lineups:   memory.NewLineupRepository(store),
			leagues:   memory.NewLeagueRepository(store),
			scores:    memory.NewScoringRepository(store),
			outbox:    memory.NewNotificationRepository(store),
			store:     memory.NewSettlementStore(store),
			storeKind: "memory",
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	c.closers = append(c.closers, db.Close)

	if cfg.SeedDemoData {
		if err := postgres.BootstrapSeed(ctx, db, time.Now().UTC()); err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	return repositories{
		seasons:   postgres.NewSeasonRepository(db),
		fixtures:  postgres.NewFixtureRepository(db),
		stats:     postgres.NewMatchStatRepository(db),
		players:   postgres.NewPlayerRepository(db),
		fantasy:   postgres.NewFantasyRepository(db),
		lineups:   postgres.NewLineupRepository(db),
		leagues:   postgres.NewLeagueRepository(db),
		scores:    postgres.NewScoringRepository(db),
		outbox:    postgres.NewNotificationRepository(db),
		store:     postgres.NewSettlementStore(db),
		storeKind: "postgres",
	}, nil
}

// Close releases the database handle, if any.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
