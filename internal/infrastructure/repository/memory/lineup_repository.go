package memory

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
)

type LineupRepository struct{ store *Store }

func NewLineupRepository(store *Store) *LineupRepository {
	return &LineupRepository{store: store}
}

func (r *LineupRepository) GetByTeamAndRound(_ context.Context, teamID int64, roundNumber int) (lineup.Lineup, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.lineups {
		if item.TeamID == teamID && item.RoundNumber == roundNumber {
			return cloneLineup(item), true, nil
		}
	}
	return lineup.Lineup{}, false, nil
}

func (r *LineupRepository) ListByTeam(_ context.Context, teamID int64) ([]lineup.Lineup, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]lineup.Lineup, 0)
	for _, item := range r.store.lineups {
		if item.TeamID == teamID {
			out = append(out, cloneLineup(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (r *LineupRepository) ListByRound(_ context.Context, seasonID int64, roundNumber int) ([]lineup.Lineup, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]lineup.Lineup, 0)
	for _, item := range r.store.lineups {
		if item.RoundNumber != roundNumber {
			continue
		}
		if team, ok := r.store.teams[item.TeamID]; !ok || team.SeasonID != seasonID {
			continue
		}
		out = append(out, cloneLineup(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *LineupRepository) Save(_ context.Context, item lineup.Lineup) (lineup.Lineup, error) {
	if item.TeamID <= 0 || item.RoundNumber <= 0 {
		return lineup.Lineup{}, errors.New("lineup team id and round number are required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.ID = 0
	for id, existing := range r.store.lineups {
		if existing.TeamID == item.TeamID && existing.RoundNumber == item.RoundNumber {
			item.ID = id
			break
		}
	}
	if item.ID == 0 {
		item.ID = r.store.nextID()
	}
	r.store.lineups[item.ID] = cloneLineup(item)
	return cloneLineup(item), nil
}
