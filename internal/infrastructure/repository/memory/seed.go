package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
)

const (
	SeedSeasonID int64 = 1
	SeedRound1ID int64 = 101
	SeedRound2ID int64 = 102
	SeedTeamID   int64 = 501
	seedClubs          = 6
)

var seedClubNames = [seedClubs]string{"Persija", "Persib", "Persebaya", "Bali United", "PSM", "Arema"}

// seedSlotPositions maps the per-club player suffix to a position.
var seedSlotPositions = map[int64]player.Position{
	1: player.PositionGoalkeeper,
	2: player.PositionDefender,
	3: player.PositionDefender,
	4: player.PositionMidfielder,
	5: player.PositionMidfielder,
	6: player.PositionForward,
}

var seedPrices = map[player.Position]float64{
	player.PositionGoalkeeper: 5.0,
	player.PositionDefender:   5.5,
	player.PositionMidfielder: 7.0,
	player.PositionForward:    8.5,
}

// Club is a seeded real-world club.
type Club struct {
	ID   int64
	Name string
}

// SeedSet is the demo dataset shared by the memory store and database bootstrap.
type SeedSet struct {
	Season   season.Season
	Rounds   []season.Round
	Clubs    []Club
	Players  []player.Player
	Fixtures []fixture.Fixture
	// MatchStats is keyed by round id.
	MatchStats map[int64][]matchstat.PlayerMatchStat
	Team       fantasy.Team
	Squad      []fantasy.SquadPlayer
	Lineup     lineup.Lineup
}

// SeedData builds a small season: six clubs, one finished round with match
// stats, one upcoming round and a single fantasy team with a lineup.
func SeedData(now time.Time) SeedSet {
	set := SeedSet{
		Season: season.Season{ID: SeedSeasonID, Name: "2025/2026", IsActive: true},
		Rounds: []season.Round{
			{ID: SeedRound1ID, SeasonID: SeedSeasonID, Number: 1, StartsAt: now.Add(-7 * 24 * time.Hour)},
			{ID: SeedRound2ID, SeasonID: SeedSeasonID, Number: 2, StartsAt: now.Add(24 * time.Hour)},
		},
		Players:    SeedPlayers(),
		Fixtures:   seedFixtures(now),
		MatchStats: make(map[int64][]matchstat.PlayerMatchStat),
	}
	for i, name := range seedClubNames {
		set.Clubs = append(set.Clubs, Club{ID: int64(i + 1), Name: name})
	}
	for _, fx := range set.Fixtures {
		if fx.IsFinished() {
			set.MatchStats[fx.RoundID] = append(set.MatchStats[fx.RoundID], seedStats(fx, set.Players)...)
		}
	}

	squadIDs := []int64{11, 21, 12, 32, 33, 42, 52, 14, 24, 34, 44, 54, 26, 56, 66}
	catalog := player.IndexByID(set.Players)
	for _, id := range squadIDs {
		set.Squad = append(set.Squad, fantasy.SquadPlayer{TeamID: SeedTeamID, PlayerID: id, BoughtPrice: catalog[id].Price, BoughtRound: 1})
	}
	set.Team = fantasy.Team{
		ID:          SeedTeamID,
		SeasonID:    SeedSeasonID,
		OwnerUserID: "demo-user",
		Name:        "Demo XI",
		BudgetCap:   100,
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
	}

	starters := []int64{11, 12, 32, 33, 42, 14, 24, 34, 44, 26, 66}
	bench := []int64{21, 52, 54, 56}
	slots := make([]lineup.Slot, 0, lineup.Size)
	for i, id := range append(append([]int64(nil), starters...), bench...) {
		slots = append(slots, lineup.Slot{
			Index:     i + 1,
			PlayerID:  id,
			IsStarter: i < len(starters),
			Position:  catalog[id].Position,
		})
	}
	set.Lineup = lineup.Lineup{
		TeamID:        SeedTeamID,
		RoundNumber:   1,
		CaptainID:     26,
		ViceCaptainID: 14,
		Slots:         slots,
		UpdatedAt:     now.Add(-7 * 24 * time.Hour),
	}
	return set
}

// Seed loads SeedData into the store.
func Seed(store *Store, now time.Time) {
	set := SeedData(now)
	store.AddSeason(set.Season)
	for _, r := range set.Rounds {
		store.AddRound(r)
	}
	store.AddPlayers(set.Players...)
	for _, fx := range set.Fixtures {
		store.AddFixture(fx)
	}
	for roundID, stats := range set.MatchStats {
		store.AddMatchStats(roundID, stats...)
	}
	store.AddTeam(set.Team, set.Squad)
	store.AddLineup(set.Lineup)
}

// SeedPlayers returns six players per club. Player ids are club*10 + suffix.
func SeedPlayers() []player.Player {
	out := make([]player.Player, 0, seedClubs*len(seedSlotPositions))
	for club := int64(1); club <= seedClubs; club++ {
		for suffix := int64(1); suffix <= int64(len(seedSlotPositions)); suffix++ {
			pos := seedSlotPositions[suffix]
			out = append(out, player.Player{
				ID:       club*10 + suffix,
				ClubID:   club,
				Name:     fmt.Sprintf("%s %s %d", seedClubNames[club-1], pos, suffix),
				Position: pos,
				Price:    seedPrices[pos],
			})
		}
	}
	return out
}

func seedFixtures(now time.Time) []fixture.Fixture {
	score := func(v int) *int { return &v }
	kickoff := now.Add(-6 * 24 * time.Hour)
	return []fixture.Fixture{
		{ID: 1001, RoundID: SeedRound1ID, HomeClubID: 1, AwayClubID: 2, HomeScore: score(2), AwayScore: score(1), Status: fixture.StatusFinished, KickoffAt: kickoff},
		{ID: 1002, RoundID: SeedRound1ID, HomeClubID: 3, AwayClubID: 4, HomeScore: score(0), AwayScore: score(0), Status: fixture.StatusFinished, KickoffAt: kickoff},
		{ID: 1003, RoundID: SeedRound1ID, HomeClubID: 5, AwayClubID: 6, HomeScore: score(1), AwayScore: score(3), Status: fixture.StatusFinished, KickoffAt: kickoff},
		{ID: 1004, RoundID: SeedRound2ID, HomeClubID: 2, AwayClubID: 3, Status: fixture.StatusScheduled, KickoffAt: now.Add(2 * 24 * time.Hour)},
		{ID: 1005, RoundID: SeedRound2ID, HomeClubID: 4, AwayClubID: 5, Status: fixture.StatusScheduled, KickoffAt: now.Add(2 * 24 * time.Hour)},
		{ID: 1006, RoundID: SeedRound2ID, HomeClubID: 6, AwayClubID: 1, Status: fixture.StatusScheduled, KickoffAt: now.Add(2 * 24 * time.Hour)},
	}
}

// seedStats gives every player of both clubs a full match. Goals go to the
// forward and assists to the first midfielder, matching the fixture score.
func seedStats(fx fixture.Fixture, players []player.Player) []matchstat.PlayerMatchStat {
	goalsFor := map[int64]int{fx.HomeClubID: *fx.HomeScore, fx.AwayClubID: *fx.AwayScore}
	out := make([]matchstat.PlayerMatchStat, 0, 12)
	for _, p := range players {
		goals, ok := goalsFor[p.ClubID]
		if !ok {
			continue
		}
		st := matchstat.PlayerMatchStat{
			PlayerID:  p.ID,
			FixtureID: fx.ID,
			ClubID:    p.ClubID,
			Minutes:   90,
		}
		switch p.ID % 10 {
		case 6:
			st.Goals = goals
		case 4:
			st.Assists = goals
		case 1:
			st.Saves = 3
		case 3:
			st.Fouls = 2
			st.YellowCards = 1
		}
		out = append(out, st)
	}
	return out
}
