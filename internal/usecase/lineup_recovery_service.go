package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type LineupRecoveryConfig struct {
	MaxWorkers int
	Rules      fantasy.Rules
}

type LineupRecoveryInput struct {
	RoundNumber int
	// Apply persists recovered lineups. False is a dry run.
	Apply bool
	// RecalculatePoints re-settles the round without touching prices after apply.
	RecalculatePoints bool
	// TeamIDs narrows recovery to the listed teams.
	TeamIDs []int64
}

type TeamRecoveryResult struct {
	TeamID           int64               `json:"team_id"`
	Status           lineup.Status       `json:"status"`
	MarketSize       int                 `json:"market_size"`
	TemplateLineupID int64               `json:"template_lineup_id,omitempty"`
	TemplateRound    int                 `json:"template_round,omitempty"`
	Kept             int                 `json:"kept,omitempty"`
	Reassigned       int                 `json:"reassigned,omitempty"`
	CaptainID        int64               `json:"captain_id,omitempty"`
	ViceCaptainID    int64               `json:"vice_captain_id,omitempty"`
	MissingPlayers   []int64             `json:"missing_players,omitempty"`
	Violations       []fantasy.Violation `json:"violations,omitempty"`
	Message          string              `json:"message,omitempty"`

	planned *lineup.Lineup
}

type LineupRecoveryReport struct {
	SeasonID     int64                 `json:"season_id"`
	RoundNumber  int                   `json:"round_number"`
	DryRun       bool                  `json:"dry_run"`
	WorkerCount  int                   `json:"worker_count"`
	TeamCount    int                   `json:"team_count"`
	Applied      int                   `json:"applied"`
	Counts       map[lineup.Status]int `json:"counts"`
	Teams        []TeamRecoveryResult  `json:"teams"`
	Recalculated *settlement.Report    `json:"recalculated,omitempty"`
}

// RecoverySettler re-settles a round after lineups change.
type RecoverySettler interface {
	ResolveRound(ctx context.Context, roundNumber int) (season.Round, error)
	SettleRound(ctx context.Context, round season.Round, opts settlement.Options) (settlement.Report, error)
}

type LineupRecoveryService struct {
	fantasyRepo fantasy.Repository
	lineupRepo  lineup.Repository
	playerRepo  player.Repository
	scoringRepo scoring.Repository
	settler     RecoverySettler
	cfg         LineupRecoveryConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewLineupRecoveryService(
	fantasyRepo fantasy.Repository,
	lineupRepo lineup.Repository,
	playerRepo player.Repository,
	scoringRepo scoring.Repository,
	settler RecoverySettler,
	cfg LineupRecoveryConfig,
	logger *logging.Logger,
) *LineupRecoveryService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.Rules.SquadSize == 0 {
		cfg.Rules = fantasy.DefaultRules()
	}
	return &LineupRecoveryService{
		fantasyRepo: fantasyRepo,
		lineupRepo:  lineupRepo,
		playerRepo:  playerRepo,
		scoringRepo: scoringRepo,
		settler:     settler,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// recoveryContext is the read-only snapshot shared by every team analysis.
type recoveryContext struct {
	round   season.Round
	catalog map[int64]player.Player
	points  map[int64]float64
}

func (s *LineupRecoveryService) Recover(ctx context.Context, input LineupRecoveryInput) (LineupRecoveryReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupRecoveryService.Recover",
		attribute.Int("round.number", input.RoundNumber),
		attribute.Bool("apply", input.Apply),
	)
	defer span.End()

	round, err := s.settler.ResolveRound(ctx, input.RoundNumber)
	if err != nil {
		return LineupRecoveryReport{}, err
	}

	teams, err := s.fantasyRepo.ListTeams(ctx, round.SeasonID)
	if err != nil {
		return LineupRecoveryReport{}, fmt.Errorf("list teams: %w", err)
	}
	teams = filterTeams(teams, input.TeamIDs)

	catalog, err := s.playerRepo.ListAll(ctx)
	if err != nil {
		return LineupRecoveryReport{}, fmt.Errorf("list players: %w", err)
	}
	pointsRows, err := s.scoringRepo.ListRoundPoints(ctx, round.SeasonID, round.Number)
	if err != nil {
		return LineupRecoveryReport{}, fmt.Errorf("list round points: %w", err)
	}

	rc := recoveryContext{
		round:   round,
		catalog: player.IndexByID(catalog),
		points:  scoring.PointsByPlayer(pointsRows),
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(teams) {
		workerCount = len(teams)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	report := LineupRecoveryReport{
		SeasonID:    round.SeasonID,
		RoundNumber: round.Number,
		DryRun:      !input.Apply,
		WorkerCount: workerCount,
		TeamCount:   len(teams),
		Counts:      make(map[lineup.Status]int, len(lineup.AllStatuses)),
		Teams:       make([]TeamRecoveryResult, 0, len(teams)),
	}
	for _, st := range lineup.AllStatuses {
		report.Counts[st] = 0
	}
	if len(teams) == 0 {
		return report, nil
	}

	results, err := s.analyzeAll(ctx, rc, teams, workerCount)
	if err != nil {
		return LineupRecoveryReport{}, err
	}

	for _, row := range results {
		report.Counts[row.Status]++
	}

	if input.Apply {
		for i := range results {
			if results[i].planned == nil {
				continue
			}
			if _, err := s.lineupRepo.Save(ctx, *results[i].planned); err != nil {
				return LineupRecoveryReport{}, fmt.Errorf("save recovered lineup team=%d: %w", results[i].TeamID, err)
			}
			report.Applied++
		}
	}
	report.Teams = results

	if input.Apply && input.RecalculatePoints {
		recalculated, err := s.settler.SettleRound(ctx, round, settlement.Options{})
		if err != nil {
			return LineupRecoveryReport{}, fmt.Errorf("recalculate round points: %w", err)
		}
		report.Recalculated = &recalculated
	}

	s.logger.InfoContext(ctx, "lineup recovery finished",
		"season_id", round.SeasonID,
		"round", round.Number,
		"teams", report.TeamCount,
		"recovered", report.Counts[lineup.StatusRecovered],
		"applied", report.Applied,
		"dry_run", report.DryRun,
	)
	return report, nil
}

func (s *LineupRecoveryService) analyzeAll(
	ctx context.Context,
	rc recoveryContext,
	teams []fantasy.Team,
	workerCount int,
) ([]TeamRecoveryResult, error) {
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan TeamRecoveryResult, len(teams))
	var workers sync.WaitGroup
	for _, team := range teams {
		team := team
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results <- s.analyzeTeam(ctx, rc, team)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit team to worker pool: %w", err)
		}
	}
	workers.Wait()
	close(results)

	out := make([]TeamRecoveryResult, 0, len(teams))
	for row := range results {
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (s *LineupRecoveryService) analyzeTeam(ctx context.Context, rc recoveryContext, team fantasy.Team) TeamRecoveryResult {
	result := TeamRecoveryResult{TeamID: team.ID}
	unrecoverable := func(msg string) TeamRecoveryResult {
		result.Status = lineup.StatusUnrecoverable
		result.Message = msg
		return result
	}

	squad, err := s.fantasyRepo.ListSquad(ctx, team.ID)
	if err != nil {
		return unrecoverable(fmt.Sprintf("list squad: %v", err))
	}
	transfers, err := s.fantasyRepo.ListTransfers(ctx, team.ID)
	if err != nil {
		return unrecoverable(fmt.Sprintf("list transfers: %v", err))
	}

	market := lineup.MarketAt(fantasy.SquadPlayerIDs(squad), toMoves(transfers), rc.round.Number)
	result.MarketSize = len(market)
	if len(market) < s.cfg.Rules.SquadSize {
		result.Status = lineup.StatusMarketIncomplete
		return result
	}

	stored, hasStored, err := s.lineupRepo.GetByTeamAndRound(ctx, team.ID, rc.round.Number)
	if err != nil {
		return unrecoverable(fmt.Sprintf("get lineup: %v", err))
	}
	if hasStored && stored.IsComplete() && stored.SamePlayers(market) {
		result.Status = lineup.StatusOK
		result.TemplateLineupID = stored.ID
		return result
	}

	candidates := make([]lineup.Candidate, 0, len(market))
	positions := make(map[int64]player.Position, len(market))
	for _, id := range market {
		p, ok := rc.catalog[id]
		if !ok {
			result.MissingPlayers = append(result.MissingPlayers, id)
			continue
		}
		positions[id] = p.Position
		candidates = append(candidates, lineup.Candidate{PlayerID: id, Position: p.Position, Points: rc.points[id]})
	}
	if len(result.MissingPlayers) > 0 {
		result.Status = lineup.StatusPlayersMissing
		return result
	}

	history, err := s.lineupRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return unrecoverable(fmt.Sprintf("list lineup history: %v", err))
	}

	var storedPtr *lineup.Lineup
	if hasStored {
		storedPtr = &stored
	}
	template, ok := lineup.PickTemplate(storedPtr, history, rc.round.Number)
	if !ok {
		if len(history) == 0 {
			result.Status = lineup.StatusMarketWithoutLineup
		} else {
			result.Status = lineup.StatusNotFound
		}
		return result
	}
	result.TemplateLineupID = template.ID
	result.TemplateRound = template.RoundNumber

	rebuilt := lineup.Rebuild(template, candidates)
	result.Kept = rebuilt.Kept
	result.Reassigned = rebuilt.Reassigned
	result.CaptainID = rebuilt.CaptainID
	result.ViceCaptainID = rebuilt.ViceCaptainID

	violations := fantasy.ValidateLineup(rebuilt.Slots, positions, s.cfg.Rules)
	violations = append(violations, fantasy.ValidateCaptaincy(rebuilt.Slots, rebuilt.CaptainID, rebuilt.ViceCaptainID)...)
	if rebuilt.Unfilled > 0 || len(violations) > 0 {
		result.Violations = violations
		return unrecoverable(fmt.Sprintf("rebuilt lineup is invalid, unfilled=%d", rebuilt.Unfilled))
	}

	planned := lineup.Lineup{
		TeamID:        team.ID,
		RoundNumber:   rc.round.Number,
		CaptainID:     rebuilt.CaptainID,
		ViceCaptainID: rebuilt.ViceCaptainID,
		Slots:         rebuilt.Slots,
		UpdatedAt:     s.now().UTC(),
	}
	if hasStored {
		planned.ID = stored.ID
	}
	result.Status = lineup.StatusRecovered
	result.planned = &planned
	return result
}

func toMoves(transfers []fantasy.Transfer) []lineup.Move {
	out := make([]lineup.Move, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, lineup.Move{
			Seq:         t.ID,
			RoundNumber: t.RoundNumber,
			OutPlayerID: t.OutPlayerID,
			InPlayerID:  t.InPlayerID,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

func filterTeams(teams []fantasy.Team, ids []int64) []fantasy.Team {
	if len(ids) == 0 {
		return teams
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]fantasy.Team, 0, len(ids))
	for _, team := range teams {
		if _, ok := want[team.ID]; ok {
			out = append(out, team)
		}
	}
	return out
}
