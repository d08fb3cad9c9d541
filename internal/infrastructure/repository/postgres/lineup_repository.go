package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) GetByTeamAndRound(ctx context.Context, teamID int64, roundNumber int) (lineup.Lineup, bool, error) {
	query, args, err := lineupSelectBuilder().
		Where(qb.Eq("team_id", teamID), qb.Eq("round_number", roundNumber)).
		ToSQL()
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("build get lineup query: %w", err)
	}

	var row lineupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Lineup{}, false, nil
		}
		return lineup.Lineup{}, false, fmt.Errorf("get lineup: %w", err)
	}

	items, err := r.withSlots(ctx, []lineupTableModel{row})
	if err != nil {
		return lineup.Lineup{}, false, err
	}
	return items[0], true, nil
}

func (r *LineupRepository) ListByTeam(ctx context.Context, teamID int64) ([]lineup.Lineup, error) {
	query, args, err := lineupSelectBuilder().
		Where(qb.Eq("team_id", teamID)).
		OrderBy("round_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineups by team query: %w", err)
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lineups by team: %w", err)
	}
	return r.withSlots(ctx, rows)
}

func (r *LineupRepository) ListByRound(ctx context.Context, seasonID int64, roundNumber int) ([]lineup.Lineup, error) {
	query, args, err := qb.Select(
		"l.id", "l.team_id", "l.round_number", "l.captain_id", "l.vice_captain_id", "l.updated_at",
	).From("lineups l JOIN fantasy_teams t ON t.id = l.team_id").
		Where(qb.Eq("t.season_id", seasonID), qb.Eq("l.round_number", roundNumber)).
		OrderBy("l.team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineups by round query: %w", err)
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lineups by round: %w", err)
	}
	return r.withSlots(ctx, rows)
}

func (r *LineupRepository) Save(ctx context.Context, item lineup.Lineup) (lineup.Lineup, error) {
	err := withTx(ctx, r.db, "save lineup", func(tx *sqlx.Tx) error {
		query, args, err := qb.InsertInto("lineups").
			Columns("team_id", "round_number", "captain_id", "vice_captain_id", "updated_at").
			Values(item.TeamID, item.RoundNumber, nullInt64(item.CaptainID), nullInt64(item.ViceCaptainID), item.UpdatedAt).
			Suffix(`ON CONFLICT (team_id, round_number) DO UPDATE SET
				captain_id = EXCLUDED.captain_id,
				vice_captain_id = EXCLUDED.vice_captain_id,
				updated_at = EXCLUDED.updated_at
			RETURNING id`).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert lineup query: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
			return fmt.Errorf("upsert lineup: %w", err)
		}

		deleteQuery, deleteArgs, err := qb.DeleteFrom("lineup_slots").Where(qb.Eq("lineup_id", item.ID)).ToSQL()
		if err != nil {
			return fmt.Errorf("build delete lineup slots query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("delete lineup slots: %w", err)
		}

		if len(item.Slots) == 0 {
			return nil
		}
		slots := make([]lineupSlotModel, 0, len(item.Slots))
		for _, slot := range item.Slots {
			slots = append(slots, lineupSlotModel{
				LineupID:  item.ID,
				SlotIndex: slot.Index,
				PlayerID:  nullInt64(slot.PlayerID),
				IsStarter: slot.IsStarter,
				Position:  string(slot.Position),
			})
		}
		slotQuery, slotArgs, err := qb.InsertModels("lineup_slots", slots, "")
		if err != nil {
			return fmt.Errorf("build insert lineup slots query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, slotQuery, slotArgs...); err != nil {
			return fmt.Errorf("insert lineup slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return lineup.Lineup{}, err
	}
	item.Slots = item.SortedSlots()
	return item, nil
}

func (r *LineupRepository) withSlots(ctx context.Context, rows []lineupTableModel) ([]lineup.Lineup, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	query, args, err := qb.Select("lineup_id", "slot_index", "player_id", "is_starter", "position").
		From("lineup_slots").
		Where(qb.In("lineup_id", int64sToAny(ids))).
		OrderBy("lineup_id", "slot_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineup slots query: %w", err)
	}

	var slotRows []lineupSlotModel
	if err := r.db.SelectContext(ctx, &slotRows, query, args...); err != nil {
		return nil, fmt.Errorf("list lineup slots: %w", err)
	}

	slotsByLineup := make(map[int64][]lineup.Slot, len(rows))
	for _, s := range slotRows {
		slotsByLineup[s.LineupID] = append(slotsByLineup[s.LineupID], lineup.Slot{
			Index:     s.SlotIndex,
			PlayerID:  s.PlayerID.Int64,
			IsStarter: s.IsStarter,
			Position:  player.Position(s.Position),
		})
	}

	out := make([]lineup.Lineup, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineup.Lineup{
			ID:            row.ID,
			TeamID:        row.TeamID,
			RoundNumber:   row.RoundNumber,
			CaptainID:     row.CaptainID.Int64,
			ViceCaptainID: row.ViceCaptainID.Int64,
			Slots:         slotsByLineup[row.ID],
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return out, nil
}

func lineupSelectBuilder() *qb.SelectBuilder {
	return qb.Select("id", "team_id", "round_number", "captain_id", "vice_captain_id", "updated_at").From("lineups")
}

// nullInt64 stores zero ids as NULL.
func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
