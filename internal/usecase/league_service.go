package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/league"
	idgen "github.com/riskibarqy/fantasy-settlement/internal/platform/id"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

type CreateLeagueInput struct {
	TeamID int64
	Name   string
}

type JoinLeagueInput struct {
	TeamID     int64
	InviteCode string
}

type LeagueService struct {
	leagueRepo  league.Repository
	fantasyRepo fantasy.Repository
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewLeagueService(
	leagueRepo league.Repository,
	fantasyRepo fantasy.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *LeagueService {
	if idGen == nil {
		idGen = idgen.NewRandomGenerator(8)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		leagueRepo:  leagueRepo,
		fantasyRepo: fantasyRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	team, err := loadTeam(ctx, s.fantasyRepo, input.TeamID)
	if err != nil {
		return league.League{}, err
	}

	code, err := s.idGen.NewInviteCode()
	if err != nil {
		return league.League{}, fmt.Errorf("generate invite code: %w", err)
	}

	item := league.League{
		SeasonID:    team.SeasonID,
		Name:        input.Name,
		InviteCode:  code,
		OwnerTeamID: team.ID,
		CreatedAt:   s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.leagueRepo.Create(ctx, item)
	if err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}
	return created, nil
}

func (s *LeagueService) Join(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	input.InviteCode = strings.ToUpper(strings.TrimSpace(input.InviteCode))
	if input.InviteCode == "" {
		return league.League{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}
	team, err := loadTeam(ctx, s.fantasyRepo, input.TeamID)
	if err != nil {
		return league.League{}, err
	}

	item, exists, err := s.leagueRepo.GetByInviteCode(ctx, input.InviteCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by invite code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: invite code", ErrNotFound)
	}
	if item.SeasonID != team.SeasonID {
		return league.League{}, fmt.Errorf("%w: team and league belong to different seasons", ErrInvalidInput)
	}

	members, err := s.leagueRepo.ListMembers(ctx, item.ID)
	if err != nil {
		return league.League{}, fmt.Errorf("list league members: %w", err)
	}
	for _, m := range members {
		if m.TeamID == team.ID {
			return item, nil
		}
	}

	if _, err := s.leagueRepo.AddMember(ctx, league.Member{
		LeagueID: item.ID,
		TeamID:   team.ID,
		JoinedAt: s.now().UTC(),
	}); err != nil {
		return league.League{}, fmt.Errorf("add league member: %w", err)
	}
	return item, nil
}

// Leave removes the team. Ownership moves to the earliest remaining joiner and
// the league is deleted when its last member leaves.
func (s *LeagueService) Leave(ctx context.Context, leagueID, teamID int64) (league.LeaveResult, error) {
	if leagueID <= 0 || teamID <= 0 {
		return league.LeaveResult{}, fmt.Errorf("%w: league id and team id are required", ErrInvalidInput)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return league.LeaveResult{}, fmt.Errorf("list league members: %w", err)
	}
	isMember := false
	for _, m := range members {
		if m.TeamID == teamID {
			isMember = true
			break
		}
	}
	if !isMember {
		return league.LeaveResult{}, fmt.Errorf("%w: team %d is not a member of league %d", ErrNotFound, teamID, leagueID)
	}

	result, err := s.leagueRepo.RemoveMember(ctx, leagueID, teamID)
	if err != nil {
		return league.LeaveResult{}, fmt.Errorf("remove league member: %w", err)
	}

	s.logger.InfoContext(ctx, "team left league",
		"league_id", leagueID,
		"team_id", teamID,
		"league_deleted", result.LeagueDeleted,
		"new_owner_team_id", result.NewOwnerTeamID,
	)
	return result, nil
}
