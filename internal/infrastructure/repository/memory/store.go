package memory

import (
	"sync"

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
)

// Store is an in-process database shared by every memory repository. It backs
// local runs without DB_URL and the use case tests.
type Store struct {
	mu sync.RWMutex

	seasons   map[int64]season.Season
	rounds    map[int64]season.Round
	fixtures  map[int64]fixture.Fixture
	stats     map[int64][]matchstat.PlayerMatchStat
	players   map[int64]player.Player
	teams     map[int64]fantasy.Team
	squads    map[int64][]fantasy.SquadPlayer
	transfers []fantasy.Transfer
	lineups   map[int64]lineup.Lineup
	leagues   map[int64]league.League
	members   []league.Member
	outbox    map[int64]notification.Notification

	roundStats map[season.Key][]scoring.PlayerRoundStat
	movements  map[season.Key]map[int64]pricing.Movement
	history    []pricing.HistoryEntry

	seq        int64
	roundLocks keyedMutex
}

func NewStore() *Store {
	return &Store{
		seasons:    make(map[int64]season.Season),
		rounds:     make(map[int64]season.Round),
		fixtures:   make(map[int64]fixture.Fixture),
		stats:      make(map[int64][]matchstat.PlayerMatchStat),
		players:    make(map[int64]player.Player),
		teams:      make(map[int64]fantasy.Team),
		squads:     make(map[int64][]fantasy.SquadPlayer),
		lineups:    make(map[int64]lineup.Lineup),
		leagues:    make(map[int64]league.League),
		outbox:     make(map[int64]notification.Notification),
		roundStats: make(map[season.Key][]scoring.PlayerRoundStat),
		movements:  make(map[season.Key]map[int64]pricing.Movement),
	}
}

// nextID must be called with mu held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) AddSeason(item season.Season) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons[item.ID] = item
}

func (s *Store) AddRound(item season.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[item.ID] = item
}

func (s *Store) AddFixture(item fixture.Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[item.ID] = item
}

func (s *Store) AddMatchStats(roundID int64, items ...matchstat.PlayerMatchStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[roundID] = append(s.stats[roundID], items...)
}

// SetMatchStats replaces the raw stat lines of a round.
func (s *Store) SetMatchStats(roundID int64, items []matchstat.PlayerMatchStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[roundID] = append([]matchstat.PlayerMatchStat(nil), items...)
}

func (s *Store) AddPlayers(items ...player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.players[item.ID] = item
	}
}

// RemovePlayers drops players from the catalog. Squads that own them keep the ids.
func (s *Store) RemovePlayers(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.players, id)
	}
}

// AddTeam stores a team with its current roster.
func (s *Store) AddTeam(item fantasy.Team, squad []fantasy.SquadPlayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[item.ID] = item
	rows := make([]fantasy.SquadPlayer, 0, len(squad))
	for _, row := range squad {
		row.TeamID = item.ID
		rows = append(rows, row)
	}
	s.squads[item.ID] = rows
}

func (s *Store) AddTransfer(item fantasy.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		item.ID = s.nextID()
	}
	s.transfers = append(s.transfers, item)
}

func (s *Store) AddLineup(item lineup.Lineup) lineup.Lineup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		item.ID = s.nextID()
	}
	s.lineups[item.ID] = cloneLineup(item)
	return item
}

// PriceHistory returns the appended audit rows.
func (s *Store) PriceHistory() []pricing.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pricing.HistoryEntry(nil), s.history...)
}

// RoundStats returns the aggregated round stat rows.
func (s *Store) RoundStats(key season.Key) []scoring.PlayerRoundStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]scoring.PlayerRoundStat(nil), s.roundStats[key]...)
}

func cloneLineup(item lineup.Lineup) lineup.Lineup {
	copied := item
	copied.Slots = append([]lineup.Slot(nil), item.Slots...)
	return copied
}

// keyedMutex serializes work per round key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[season.Key]*sync.Mutex
}

func (k *keyedMutex) lock(key season.Key) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[season.Key]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (s *Store) Player(id int64) (player.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.players[id]
	return item, ok
}

func (s *Store) Team(id int64) (fantasy.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.teams[id]
	return item, ok
}

func (s *Store) Round(id int64) (season.Round, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.rounds[id]
	return item, ok
}
