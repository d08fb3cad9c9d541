package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type SquadValidationInput struct {
	PlayerIDs []int64
	BudgetCap float64
}

type LineupValidationInput struct {
	TeamID        int64
	Slots         []lineup.Slot
	CaptainID     int64
	ViceCaptainID int64
}

type TransferValidationInput struct {
	TeamID      int64
	RoundNumber int
	OutPlayerID int64
	InPlayerID  int64
	// BudgetCap overrides the team's stored cap when positive.
	BudgetCap float64
}

type TransferResult struct {
	Violations []fantasy.Violation `json:"violations"`
	Transfer   *fantasy.Transfer   `json:"transfer,omitempty"`
}

// ValidationService loads snapshots and runs the pure rule checks. Rule
// failures come back as violation codes, never as errors.
type ValidationService struct {
	playerRepo  player.Repository
	fantasyRepo fantasy.Repository
	rules       fantasy.Rules
	logger      *logging.Logger
	now         func() time.Time
}

func NewValidationService(
	playerRepo player.Repository,
	fantasyRepo fantasy.Repository,
	rules fantasy.Rules,
	logger *logging.Logger,
) *ValidationService {
	if rules.SquadSize == 0 {
		rules = fantasy.DefaultRules()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ValidationService{
		playerRepo:  playerRepo,
		fantasyRepo: fantasyRepo,
		rules:       rules,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ValidationService) ValidateSquad(ctx context.Context, input SquadValidationInput) ([]fantasy.Violation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidateSquad")
	defer span.End()

	if input.BudgetCap <= 0 {
		return nil, fmt.Errorf("%w: budget cap must be greater than zero", ErrInvalidInput)
	}

	catalog, err := s.loadPlayers(ctx, input.PlayerIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]fantasy.SquadEntry, 0, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		entries = append(entries, entryFor(id, catalog))
	}
	return fantasy.ValidateSquad(entries, input.BudgetCap, s.rules), nil
}

func (s *ValidationService) ValidateLineup(ctx context.Context, input LineupValidationInput) ([]fantasy.Violation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidateLineup")
	defer span.End()

	team, err := loadTeam(ctx, s.fantasyRepo, input.TeamID)
	if err != nil {
		return nil, err
	}
	squad, err := s.fantasyRepo.ListSquad(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("list squad team=%d: %w", team.ID, err)
	}
	catalog, err := s.loadPlayers(ctx, fantasy.SquadPlayerIDs(squad))
	if err != nil {
		return nil, err
	}

	positions := make(map[int64]player.Position, len(squad))
	for _, row := range squad {
		if p, ok := catalog[row.PlayerID]; ok {
			positions[row.PlayerID] = p.Position
		}
	}

	violations := fantasy.ValidateLineup(input.Slots, positions, s.rules)
	return append(violations, fantasy.ValidateCaptaincy(input.Slots, input.CaptainID, input.ViceCaptainID)...), nil
}

func (s *ValidationService) ValidateTransfer(ctx context.Context, input TransferValidationInput) ([]fantasy.Violation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidateTransfer")
	defer span.End()

	check, _, err := s.transferCheck(ctx, input)
	if err != nil {
		return nil, err
	}
	return fantasy.ValidateTransfer(check, s.rules), nil
}

// ExecuteTransfer validates and, when legal, records the swap with prices
// frozen at their current values.
func (s *ValidationService) ExecuteTransfer(ctx context.Context, input TransferValidationInput) (TransferResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ExecuteTransfer")
	defer span.End()

	check, team, err := s.transferCheck(ctx, input)
	if err != nil {
		return TransferResult{}, err
	}
	violations := fantasy.ValidateTransfer(check, s.rules)
	if len(violations) > 0 {
		return TransferResult{Violations: violations}, nil
	}

	outPrice := 0.0
	outCatalog, err := s.loadPlayers(ctx, []int64{input.OutPlayerID})
	if err != nil {
		return TransferResult{}, err
	}
	if p, ok := outCatalog[input.OutPlayerID]; ok {
		outPrice = p.Price
	}

	saved, err := s.fantasyRepo.ApplyTransfer(ctx, fantasy.Transfer{
		TeamID:      team.ID,
		SeasonID:    team.SeasonID,
		RoundNumber: input.RoundNumber,
		OutPlayerID: input.OutPlayerID,
		InPlayerID:  input.InPlayerID,
		OutPrice:    outPrice,
		InPrice:     check.In.Price,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return TransferResult{}, fmt.Errorf("apply transfer team=%d: %w", team.ID, err)
	}

	s.logger.InfoContext(ctx, "transfer recorded",
		"team_id", team.ID,
		"round", input.RoundNumber,
		"out_player_id", input.OutPlayerID,
		"in_player_id", input.InPlayerID,
	)
	return TransferResult{Violations: violations, Transfer: &saved}, nil
}

func (s *ValidationService) transferCheck(ctx context.Context, input TransferValidationInput) (fantasy.TransferCheck, fantasy.Team, error) {
	if input.RoundNumber <= 0 {
		return fantasy.TransferCheck{}, fantasy.Team{}, fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}
	if input.OutPlayerID <= 0 || input.InPlayerID <= 0 {
		return fantasy.TransferCheck{}, fantasy.Team{}, fmt.Errorf("%w: out and in player ids are required", ErrInvalidInput)
	}

	team, err := loadTeam(ctx, s.fantasyRepo, input.TeamID)
	if err != nil {
		return fantasy.TransferCheck{}, fantasy.Team{}, err
	}
	squad, err := s.fantasyRepo.ListSquad(ctx, team.ID)
	if err != nil {
		return fantasy.TransferCheck{}, fantasy.Team{}, fmt.Errorf("list squad team=%d: %w", team.ID, err)
	}
	existing, err := s.fantasyRepo.CountTransfers(ctx, team.ID, input.RoundNumber)
	if err != nil {
		return fantasy.TransferCheck{}, fantasy.Team{}, fmt.Errorf("count transfers team=%d: %w", team.ID, err)
	}

	ids := append(fantasy.SquadPlayerIDs(squad), input.InPlayerID)
	catalog, err := s.loadPlayers(ctx, ids)
	if err != nil {
		return fantasy.TransferCheck{}, fantasy.Team{}, err
	}

	entries := make([]fantasy.SquadEntry, 0, len(squad))
	for _, row := range squad {
		entry := entryFor(row.PlayerID, catalog)
		entry.Price = row.BoughtPrice
		entries = append(entries, entry)
	}

	budget := team.BudgetCap
	if input.BudgetCap > 0 {
		budget = input.BudgetCap
	}

	return fantasy.TransferCheck{
		Squad:             entries,
		OutPlayerID:       input.OutPlayerID,
		In:                entryFor(input.InPlayerID, catalog),
		ExistingTransfers: existing,
		BudgetCap:         budget,
	}, team, nil
}

func loadTeam(ctx context.Context, repo fantasy.Repository, teamID int64) (fantasy.Team, error) {
	if teamID <= 0 {
		return fantasy.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	team, exists, err := repo.GetTeam(ctx, teamID)
	if err != nil {
		return fantasy.Team{}, fmt.Errorf("get team %d: %w", teamID, err)
	}
	if !exists {
		return fantasy.Team{}, fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
	}
	return team, nil
}

func (s *ValidationService) loadPlayers(ctx context.Context, ids []int64) (map[int64]player.Player, error) {
	if len(ids) == 0 {
		return map[int64]player.Player{}, nil
	}
	items, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	return player.IndexByID(items), nil
}

func entryFor(id int64, catalog map[int64]player.Player) fantasy.SquadEntry {
	p, ok := catalog[id]
	if !ok {
		return fantasy.SquadEntry{PlayerID: id}
	}
	return fantasy.EntryFromPlayer(p)
}
