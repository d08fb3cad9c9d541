package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/league"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/resilience"
)

type StandingsInput struct {
	// LeagueID scopes the table to a private league. Zero is the global table.
	LeagueID int64
	// UpToRound limits the fold to rounds <= UpToRound. Zero means every round.
	UpToRound int
}

type StandingEntry struct {
	Rank            int     `json:"rank"`
	TeamID          int64   `json:"team_id"`
	TeamName        string  `json:"team_name"`
	TotalPoints     float64 `json:"total_points"`
	LastRoundPoints float64 `json:"last_round_points"`
	RoundsScored    int     `json:"rounds_scored"`
}

type Standings struct {
	SeasonID  int64           `json:"season_id"`
	LeagueID  int64           `json:"league_id,omitempty"`
	UpToRound int             `json:"up_to_round"`
	Entries   []StandingEntry `json:"entries"`
}

type StandingsService struct {
	seasonRepo  season.Repository
	fantasyRepo fantasy.Repository
	leagueRepo  league.Repository
	lineupRepo  lineup.Repository
	scoringRepo scoring.Repository
	seasonID    int64
	flight      resilience.SingleFlight[Standings]
}

func NewStandingsService(
	seasonRepo season.Repository,
	fantasyRepo fantasy.Repository,
	leagueRepo league.Repository,
	lineupRepo lineup.Repository,
	scoringRepo scoring.Repository,
	seasonID int64,
) *StandingsService {
	return &StandingsService{
		seasonRepo:  seasonRepo,
		fantasyRepo: fantasyRepo,
		leagueRepo:  leagueRepo,
		lineupRepo:  lineupRepo,
		scoringRepo: scoringRepo,
		seasonID:    seasonID,
	}
}

// Build folds settled points into a cumulative ranking. It only reads.
func (s *StandingsService) Build(ctx context.Context, input StandingsInput) (Standings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Build")
	defer span.End()

	if input.LeagueID < 0 || input.UpToRound < 0 {
		return Standings{}, fmt.Errorf("%w: league id and round must not be negative", ErrInvalidInput)
	}

	key := strconv.FormatInt(input.LeagueID, 10) + ":" + strconv.Itoa(input.UpToRound)
	out, err, _ := s.flight.Do(key, func() (Standings, error) {
		return s.build(ctx, input)
	})
	return out, err
}

func (s *StandingsService) build(ctx context.Context, input StandingsInput) (Standings, error) {
	seasonID, err := resolveSeasonID(ctx, s.seasonRepo, s.seasonID)
	if err != nil {
		return Standings{}, err
	}

	teams, err := s.fantasyRepo.ListTeams(ctx, seasonID)
	if err != nil {
		return Standings{}, fmt.Errorf("list teams: %w", err)
	}

	if input.LeagueID > 0 {
		item, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
		if err != nil {
			return Standings{}, fmt.Errorf("get league: %w", err)
		}
		if !exists || item.SeasonID != seasonID {
			return Standings{}, fmt.Errorf("%w: league=%d", ErrNotFound, input.LeagueID)
		}
		members, err := s.leagueRepo.ListMembers(ctx, input.LeagueID)
		if err != nil {
			return Standings{}, fmt.Errorf("list league members: %w", err)
		}
		memberSet := make(map[int64]struct{}, len(members))
		for _, m := range members {
			memberSet[m.TeamID] = struct{}{}
		}
		scoped := make([]fantasy.Team, 0, len(members))
		for _, team := range teams {
			if _, ok := memberSet[team.ID]; ok {
				scoped = append(scoped, team)
			}
		}
		teams = scoped
	}

	rows, err := s.scoringRepo.ListSeasonPoints(ctx, seasonID)
	if err != nil {
		return Standings{}, fmt.Errorf("list season points: %w", err)
	}

	pointsByRound := make(map[int]map[int64]float64)
	lastRound := 0
	for _, row := range rows {
		if input.UpToRound > 0 && row.RoundNumber > input.UpToRound {
			continue
		}
		byPlayer, ok := pointsByRound[row.RoundNumber]
		if !ok {
			byPlayer = make(map[int64]float64)
			pointsByRound[row.RoundNumber] = byPlayer
		}
		byPlayer[row.PlayerID] += row.Points
		if row.RoundNumber > lastRound {
			lastRound = row.RoundNumber
		}
	}

	entries := make(map[int64]*StandingEntry, len(teams))
	for _, team := range teams {
		entries[team.ID] = &StandingEntry{TeamID: team.ID, TeamName: team.Name}
	}

	// Rounds are added oldest first so totals are reproducible to the last bit.
	for _, roundNumber := range slices.Sorted(maps.Keys(pointsByRound)) {
		points := pointsByRound[roundNumber]
		lineups, err := s.lineupRepo.ListByRound(ctx, seasonID, roundNumber)
		if err != nil {
			return Standings{}, fmt.Errorf("list lineups round=%d: %w", roundNumber, err)
		}
		for _, item := range lineups {
			entry, ok := entries[item.TeamID]
			if !ok {
				continue
			}
			teamPoints := lineup.TeamPoints(item, points)
			entry.TotalPoints += teamPoints
			entry.RoundsScored++
			if roundNumber == lastRound {
				entry.LastRoundPoints = teamPoints
			}
		}
	}

	list := make([]StandingEntry, 0, len(entries))
	for _, entry := range entries {
		list = append(list, *entry)
	}
	rankStandings(list)

	upTo := input.UpToRound
	if upTo == 0 {
		upTo = lastRound
	}
	return Standings{
		SeasonID:  seasonID,
		LeagueID:  input.LeagueID,
		UpToRound: upTo,
		Entries:   list,
	}, nil
}

// rankStandings orders by points desc then team id. Equal points share a rank
// and the next distinct score takes the following rank.
func rankStandings(list []StandingEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TotalPoints != list[j].TotalPoints {
			return list[i].TotalPoints > list[j].TotalPoints
		}
		return list[i].TeamID < list[j].TeamID
	})

	rank := 0
	for i := range list {
		if i == 0 || list[i].TotalPoints != list[i-1].TotalPoints {
			rank++
		}
		list[i].Rank = rank
	}
}
