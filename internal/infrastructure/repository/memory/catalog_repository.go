package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
)

type SeasonRepository struct{ store *Store }

func NewSeasonRepository(store *Store) *SeasonRepository {
	return &SeasonRepository{store: store}
}

func (r *SeasonRepository) GetActiveSeason(_ context.Context) (season.Season, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *season.Season
	for _, item := range r.store.seasons {
		if !item.IsActive {
			continue
		}
		if found == nil || item.ID > found.ID {
			item := item
			found = &item
		}
	}
	if found == nil {
		return season.Season{}, false, nil
	}
	return *found, true, nil
}

func (r *SeasonRepository) GetRound(_ context.Context, seasonID int64, number int) (season.Round, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.rounds {
		if item.SeasonID == seasonID && item.Number == number {
			return item, true, nil
		}
	}
	return season.Round{}, false, nil
}

func (r *SeasonRepository) ListOpenRounds(_ context.Context, seasonID int64) ([]season.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]season.Round, 0)
	for _, item := range r.store.rounds {
		if item.SeasonID == seasonID && !item.IsClosed {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *SeasonRepository) CloseRound(_ context.Context, roundID int64, endedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.rounds[roundID]
	if !ok {
		return nil
	}
	item.IsClosed = true
	if item.EndsAt == nil {
		ended := endedAt
		item.EndsAt = &ended
	}
	r.store.rounds[roundID] = item
	return nil
}

func (r *SeasonRepository) ReopenRound(_ context.Context, roundID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.rounds[roundID]
	if !ok {
		return nil
	}
	item.IsClosed = false
	r.store.rounds[roundID] = item
	return nil
}

type FixtureRepository struct{ store *Store }

func NewFixtureRepository(store *Store) *FixtureRepository {
	return &FixtureRepository{store: store}
}

func (r *FixtureRepository) ListByRound(_ context.Context, roundID int64) ([]fixture.Fixture, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.store.fixtures {
		if item.RoundID == roundID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type MatchStatRepository struct{ store *Store }

func NewMatchStatRepository(store *Store) *MatchStatRepository {
	return &MatchStatRepository{store: store}
}

func (r *MatchStatRepository) ListByRound(_ context.Context, roundID int64) ([]matchstat.PlayerMatchStat, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]matchstat.PlayerMatchStat(nil), r.store.stats[roundID]...), nil
}

type PlayerRepository struct{ store *Store }

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []int64) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.playersByIDs(playerIDs), nil
}

func (r *PlayerRepository) ListAll(_ context.Context) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]player.Player, 0, len(r.store.players))
	for _, item := range r.store.players {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// playersByIDs must be called with mu held.
func (s *Store) playersByIDs(ids []int64) []player.Player {
	out := make([]player.Player, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := s.players[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

type ScoringRepository struct{ store *Store }

func NewScoringRepository(store *Store) *ScoringRepository {
	return &ScoringRepository{store: store}
}

func (r *ScoringRepository) ListRoundPoints(_ context.Context, seasonID int64, roundNumber int) ([]scoring.PointsRound, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return scoring.PointsRows(r.store.roundStats[season.Key{SeasonID: seasonID, Number: roundNumber}]), nil
}

func (r *ScoringRepository) ListSeasonPoints(_ context.Context, seasonID int64) ([]scoring.PointsRound, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]scoring.PointsRound, 0)
	for key, rows := range r.store.roundStats {
		if key.SeasonID == seasonID {
			out = append(out, scoring.PointsRows(rows)...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}
