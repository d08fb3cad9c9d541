package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
)

// SettlementStore serializes settlement per round with a keyed mutex and
// buffers writes until the callback returns without error.
type SettlementStore struct{ store *Store }

func NewSettlementStore(store *Store) *SettlementStore {
	return &SettlementStore{store: store}
}

func (s *SettlementStore) WithRoundLock(ctx context.Context, key season.Key, fn func(ctx context.Context, tx settlement.Tx) error) error {
	unlock := s.store.roundLocks.lock(key)
	defer unlock()

	tx := &settlementTx{store: s.store}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, op := range tx.ops {
		op(s.store)
	}
	return nil
}

// settlementTx reads committed state; staged writes become visible on commit.
type settlementTx struct {
	store *Store
	ops   []func(*Store)
}

func (tx *settlementTx) stage(op func(*Store)) {
	tx.ops = append(tx.ops, op)
}

func (tx *settlementTx) ReplaceRoundResults(_ context.Context, key season.Key, stats []scoring.PlayerRoundStat) error {
	rows := append([]scoring.PlayerRoundStat(nil), stats...)
	tx.stage(func(s *Store) {
		if len(rows) == 0 {
			delete(s.roundStats, key)
			return
		}
		s.roundStats[key] = rows
	})
	return nil
}

func (tx *settlementTx) ListPlayers(_ context.Context, playerIDs []int64) ([]player.Player, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	return tx.store.playersByIDs(playerIDs), nil
}

func (tx *settlementTx) ListPriceMovements(_ context.Context, key season.Key) ([]pricing.Movement, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	out := make([]pricing.Movement, 0, len(tx.store.movements[key]))
	for _, m := range tx.store.movements[key] {
		out = append(out, m)
	}
	return out, nil
}

func (tx *settlementTx) ApplyPriceChanges(_ context.Context, key season.Key, changes []pricing.Change) (int, error) {
	tx.store.mu.RLock()
	budgetDeltas := make(map[int64][]float64)
	for _, c := range changes {
		if c.BudgetDelta == 0 {
			continue
		}
		for teamID, squad := range tx.store.squads {
			team, ok := tx.store.teams[teamID]
			if !ok || team.SeasonID != key.SeasonID {
				continue
			}
			for _, row := range squad {
				if row.PlayerID == c.PlayerID {
					budgetDeltas[teamID] = append(budgetDeltas[teamID], c.BudgetDelta)
					break
				}
			}
		}
	}
	tx.store.mu.RUnlock()

	netByTeam := make(map[int64]float64, len(budgetDeltas))
	for teamID, deltas := range budgetDeltas {
		if net := pricing.SumDeltas(deltas...); net != 0 {
			netByTeam[teamID] = net
		}
	}

	movements := pricing.Movements(key.SeasonID, key.Number, changes)
	applied := append([]pricing.Change(nil), changes...)
	tx.stage(func(s *Store) {
		for _, c := range applied {
			// Relative so a round settled in between keeps its movement.
			if p, ok := s.players[c.PlayerID]; ok && c.PriceDiff != 0 {
				p.Price = pricing.SumDeltas(p.Price, c.PriceDiff)
				s.players[c.PlayerID] = p
			}
			if c.DropMovement {
				delete(s.movements[key], c.PlayerID)
			}
		}
		if len(movements) > 0 && s.movements[key] == nil {
			s.movements[key] = make(map[int64]pricing.Movement, len(movements))
		}
		for _, m := range movements {
			s.movements[key][m.PlayerID] = m
		}
		for teamID, net := range netByTeam {
			team := s.teams[teamID]
			team.BudgetCap = pricing.SumDeltas(team.BudgetCap, net)
			s.teams[teamID] = team
		}
	})
	return len(netByTeam), nil
}

func (tx *settlementTx) AppendPriceHistory(_ context.Context, entries []pricing.HistoryEntry, at time.Time) error {
	rows := make([]pricing.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		e.RecordedAt = at
		rows = append(rows, e)
	}
	tx.stage(func(s *Store) {
		s.history = append(s.history, rows...)
	})
	return nil
}

// PriceMovements returns the recorded movements of a round keyed by player.
func (s *Store) PriceMovements(key season.Key) map[int64]pricing.Movement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]pricing.Movement, len(s.movements[key]))
	for id, m := range s.movements[key] {
		out[id] = m
	}
	return out
}
