package memory

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
)

type FantasyRepository struct{ store *Store }

func NewFantasyRepository(store *Store) *FantasyRepository {
	return &FantasyRepository{store: store}
}

func (r *FantasyRepository) GetTeam(_ context.Context, teamID int64) (fantasy.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.teams[teamID]
	return item, ok, nil
}

func (r *FantasyRepository) ListTeams(_ context.Context, seasonID int64) ([]fantasy.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]fantasy.Team, 0)
	for _, item := range r.store.teams {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FantasyRepository) ListSquad(_ context.Context, teamID int64) ([]fantasy.SquadPlayer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]fantasy.SquadPlayer(nil), r.store.squads[teamID]...), nil
}

func (r *FantasyRepository) ListTransfers(_ context.Context, teamID int64) ([]fantasy.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]fantasy.Transfer, 0)
	for _, item := range r.store.transfers {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *FantasyRepository) CountTransfers(_ context.Context, teamID int64, roundNumber int) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, item := range r.store.transfers {
		if item.TeamID == teamID && item.RoundNumber == roundNumber {
			count++
		}
	}
	return count, nil
}

func (r *FantasyRepository) ApplyTransfer(_ context.Context, transfer fantasy.Transfer) (fantasy.Transfer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.teams[transfer.TeamID]; !ok {
		return fantasy.Transfer{}, errors.Newf("team %d not found", transfer.TeamID)
	}
	squad := r.store.squads[transfer.TeamID]
	outIdx := -1
	for i, row := range squad {
		if row.PlayerID == transfer.InPlayerID {
			return fantasy.Transfer{}, errors.Newf("player %d already in squad of team %d", transfer.InPlayerID, transfer.TeamID)
		}
		if row.PlayerID == transfer.OutPlayerID {
			outIdx = i
		}
	}
	if outIdx < 0 {
		return fantasy.Transfer{}, errors.Newf("player %d not in squad of team %d", transfer.OutPlayerID, transfer.TeamID)
	}

	updated := append([]fantasy.SquadPlayer(nil), squad...)
	updated[outIdx] = fantasy.SquadPlayer{
		TeamID:      transfer.TeamID,
		PlayerID:    transfer.InPlayerID,
		BoughtPrice: transfer.InPrice,
		BoughtRound: transfer.RoundNumber,
	}
	r.store.squads[transfer.TeamID] = updated

	transfer.ID = r.store.nextID()
	r.store.transfers = append(r.store.transfers, transfer)
	return transfer, nil
}
