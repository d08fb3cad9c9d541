package postgres

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

// insertBatchSize keeps multi-row inserts under the 65535 bind parameter limit.
const insertBatchSize = 500

// SettlementStore serializes round settlement with a transaction-scoped
// advisory lock keyed by (season_id, round_number).
type SettlementStore struct {
	db *sqlx.DB
}

func NewSettlementStore(db *sqlx.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

func (s *SettlementStore) WithRoundLock(ctx context.Context, key season.Key, fn func(ctx context.Context, tx settlement.Tx) error) error {
	return withTx(ctx, s.db, "settle round", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", roundLockKey(key)); err != nil {
			return fmt.Errorf("acquire round lock %s: %w", key, err)
		}
		return fn(ctx, &settlementTx{tx: tx})
	})
}

// roundLockKey hashes the full season id and round number into the single
// bigint lock space. A collision only serializes two unrelated rounds.
func roundLockKey(key season.Key) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("settle_round:" + strconv.FormatInt(key.SeasonID, 10) + ":" + strconv.Itoa(key.Number)))
	return int64(h.Sum64())
}

type settlementTx struct {
	tx *sqlx.Tx
}

func (t *settlementTx) ReplaceRoundResults(ctx context.Context, key season.Key, stats []scoring.PlayerRoundStat) error {
	for _, table := range []string{"player_round_points", "player_round_stats"} {
		query, args, err := qb.DeleteFrom(table).
			Where(qb.Eq("season_id", key.SeasonID), qb.Eq("round_number", key.Number)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete %s query: %w", table, err)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	points := make([]roundPointsModel, 0, len(stats))
	rows := make([]roundStatModel, 0, len(stats))
	for _, st := range stats {
		points = append(points, roundPointsModel{
			SeasonID:    key.SeasonID,
			RoundNumber: key.Number,
			PlayerID:    st.PlayerID,
			Points:      st.Points,
		})
		row := roundStatModel(st)
		row.SeasonID, row.RoundNumber = key.SeasonID, key.Number
		rows = append(rows, row)
	}

	if err := insertBatches(ctx, t.tx, "player_round_points", points); err != nil {
		return err
	}
	return insertBatches(ctx, t.tx, "player_round_stats", rows)
}

// ListPlayers locks the rows until commit, so a concurrent settlement of
// another round reads the prices this one writes.
func (t *settlementTx) ListPlayers(ctx context.Context, playerIDs []int64) ([]player.Player, error) {
	return selectPlayers(ctx, t.tx, playerIDs, "FOR UPDATE")
}

func (t *settlementTx) ListPriceMovements(ctx context.Context, key season.Key) ([]pricing.Movement, error) {
	query, args, err := qb.Select(
		"season_id", "round_number", "player_id", "price_before", "price_after", "delta", "points",
	).From("player_price_movements").
		Where(qb.Eq("season_id", key.SeasonID), qb.Eq("round_number", key.Number)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list price movements query: %w", err)
	}

	var rows []priceMovementModel
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list price movements: %w", err)
	}

	out := make([]pricing.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, pricing.Movement(row))
	}
	return out, nil
}

func (t *settlementTx) ApplyPriceChanges(ctx context.Context, key season.Key, changes []pricing.Change) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	var (
		ids, dropped, budgetIDs []int64
		diffs, budgetDeltas     []float64
	)
	for _, c := range changes {
		if c.PriceDiff != 0 {
			ids = append(ids, c.PlayerID)
			diffs = append(diffs, c.PriceDiff)
		}
		if c.DropMovement {
			dropped = append(dropped, c.PlayerID)
		}
		if c.BudgetDelta != 0 {
			budgetIDs = append(budgetIDs, c.PlayerID)
			budgetDeltas = append(budgetDeltas, c.BudgetDelta)
		}
	}

	// Prices move by difference so movements of other rounds are kept.
	if len(ids) > 0 {
		if _, err := t.tx.ExecContext(ctx, `UPDATE players p
			SET price = p.price + u.diff, updated_at = NOW()
			FROM unnest($1::bigint[], $2::numeric[]) AS u(id, diff)
			WHERE p.id = u.id`, pq.Array(ids), pq.Array(diffs)); err != nil {
			return 0, fmt.Errorf("update player prices: %w", err)
		}
	}

	if len(dropped) > 0 {
		query, args, err := qb.DeleteFrom("player_price_movements").
			Where(
				qb.Eq("season_id", key.SeasonID),
				qb.Eq("round_number", key.Number),
				qb.Any("player_id", pq.Array(dropped)),
			).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build delete price movements query: %w", err)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("delete price movements: %w", err)
		}
	}

	movements := pricing.Movements(key.SeasonID, key.Number, changes)
	if len(movements) > 0 {
		rows := make([]priceMovementModel, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, priceMovementModel(m))
		}
		query, args, err := qb.InsertModels("player_price_movements", rows, `ON CONFLICT (season_id, round_number, player_id) DO UPDATE SET
			price_before = EXCLUDED.price_before,
			price_after = EXCLUDED.price_after,
			delta = EXCLUDED.delta,
			points = EXCLUDED.points,
			updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert price movements query: %w", err)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert price movements: %w", err)
		}
	}

	if len(budgetIDs) == 0 {
		return 0, nil
	}

	// Deltas are summed as numeric so one-decimal budgets never drift.
	res, err := t.tx.ExecContext(ctx, `UPDATE fantasy_teams t
		SET budget_cap = t.budget_cap + d.net
		FROM (
			SELECT sp.team_id, SUM(c.delta) AS net
			FROM fantasy_team_players sp
			JOIN fantasy_teams ft ON ft.id = sp.team_id
			JOIN unnest($1::bigint[], $2::numeric[]) AS c(player_id, delta) ON c.player_id = sp.player_id
			WHERE ft.season_id = $3
			GROUP BY sp.team_id
			HAVING SUM(c.delta) <> 0
		) d
		WHERE t.id = d.team_id`, pq.Array(budgetIDs), pq.Array(budgetDeltas), key.SeasonID)
	if err != nil {
		return 0, fmt.Errorf("update team budgets: %w", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update team budgets rows affected: %w", err)
	}
	return int(changed), nil
}

func (t *settlementTx) AppendPriceHistory(ctx context.Context, entries []pricing.HistoryEntry, at time.Time) error {
	rows := make([]priceHistoryInsertModel, 0, len(entries))
	for _, e := range entries {
		e.RecordedAt = at
		rows = append(rows, priceHistoryInsertModel(e))
	}
	return insertBatches(ctx, t.tx, "player_price_history", rows)
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, table string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		query, args, err := qb.InsertModels(table, rows[start:end], "")
		if err != nil {
			return fmt.Errorf("build insert %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}
