package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

// testEnv wires every service against one seeded memory store.
type testEnv struct {
	store       *memory.Store
	seasons     *memory.SeasonRepository
	fixtures    *memory.FixtureRepository
	stats       *memory.MatchStatRepository
	players     *memory.PlayerRepository
	fantasyRepo *memory.FantasyRepository
	lineups     *memory.LineupRepository
	leagues     *memory.LeagueRepository
	scores      *memory.ScoringRepository
	outbox      *memory.NotificationRepository
	settlement  *SettlementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	memory.Seed(store, testNow)

	env := &testEnv{
		store:       store,
		seasons:     memory.NewSeasonRepository(store),
		fixtures:    memory.NewFixtureRepository(store),
		stats:       memory.NewMatchStatRepository(store),
		players:     memory.NewPlayerRepository(store),
		fantasyRepo: memory.NewFantasyRepository(store),
		lineups:     memory.NewLineupRepository(store),
		leagues:     memory.NewLeagueRepository(store),
		scores:      memory.NewScoringRepository(store),
		outbox:      memory.NewNotificationRepository(store),
	}
	env.settlement = NewSettlementService(
		env.seasons,
		env.fixtures,
		env.stats,
		env.players,
		memory.NewSettlementStore(store),
		SettlementConfig{},
		logging.NewNop(),
	)
	env.settlement.now = func() time.Time { return testNow }
	return env
}

// seedSquad is the demo team's roster.
var seedSquad = []int64{11, 21, 12, 32, 33, 42, 52, 14, 24, 34, 44, 54, 26, 56, 66}

// addTeam stores another season team owning the given players at seed prices.
func (e *testEnv) addTeam(t *testing.T, id int64, playerIDs []int64) {
	t.Helper()

	squad := make([]fantasy.SquadPlayer, 0, len(playerIDs))
	for _, pid := range playerIDs {
		p, ok := e.store.Player(pid)
		if !ok {
			t.Fatalf("unknown seed player %d", pid)
		}
		squad = append(squad, fantasy.SquadPlayer{PlayerID: pid, BoughtPrice: p.Price, BoughtRound: 1})
	}
	e.store.AddTeam(fantasy.Team{
		ID:          id,
		SeasonID:    memory.SeedSeasonID,
		OwnerUserID: "user",
		Name:        "Team",
		BudgetCap:   100,
		CreatedAt:   testNow,
	}, squad)
}
