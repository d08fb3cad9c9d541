package postgres

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type FantasyRepository struct {
	db *sqlx.DB
}

func NewFantasyRepository(db *sqlx.DB) *FantasyRepository {
	return &FantasyRepository{db: db}
}

func (r *FantasyRepository) GetTeam(ctx context.Context, teamID int64) (fantasy.Team, bool, error) {
	query, args, err := teamSelectBuilder().Where(qb.Eq("id", teamID)).ToSQL()
	if err != nil {
		return fantasy.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fantasy.Team{}, false, nil
		}
		return fantasy.Team{}, false, fmt.Errorf("get team: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *FantasyRepository) ListTeams(ctx context.Context, seasonID int64) ([]fantasy.Team, error) {
	query, args, err := teamSelectBuilder().
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]fantasy.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *FantasyRepository) ListSquad(ctx context.Context, teamID int64) ([]fantasy.SquadPlayer, error) {
	query, args, err := qb.Select("team_id", "player_id", "bought_price", "bought_round").
		From("fantasy_team_players").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squad query: %w", err)
	}

	var rows []squadPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list squad: %w", err)
	}

	out := make([]fantasy.SquadPlayer, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.SquadPlayer(row))
	}
	return out, nil
}

func (r *FantasyRepository) ListTransfers(ctx context.Context, teamID int64) ([]fantasy.Transfer, error) {
	query, args, err := qb.Select(
		"id", "team_id", "season_id", "round_number", "out_player_id",
		"in_player_id", "out_price", "in_price", "created_at",
	).From("transfers").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfers query: %w", err)
	}

	var rows []transferTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	out := make([]fantasy.Transfer, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.Transfer(row))
	}
	return out, nil
}

func (r *FantasyRepository) CountTransfers(ctx context.Context, teamID int64, roundNumber int) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("transfers").
		Where(qb.Eq("team_id", teamID), qb.Eq("round_number", roundNumber)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count transfers query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count transfers: %w", err)
	}
	return count, nil
}

func (r *FantasyRepository) ApplyTransfer(ctx context.Context, transfer fantasy.Transfer) (fantasy.Transfer, error) {
	err := withTx(ctx, r.db, "apply transfer", func(tx *sqlx.Tx) error {
		deleteQuery, deleteArgs, err := qb.DeleteFrom("fantasy_team_players").
			Where(qb.Eq("team_id", transfer.TeamID), qb.Eq("player_id", transfer.OutPlayerID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete squad player query: %w", err)
		}
		res, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...)
		if err != nil {
			return fmt.Errorf("delete squad player: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("delete squad player rows affected: %w", err)
		} else if n == 0 {
			return errors.Newf("player %d not in squad of team %d", transfer.OutPlayerID, transfer.TeamID)
		}

		insertQuery, insertArgs, err := qb.InsertModel("fantasy_team_players", squadPlayerTableModel{
			TeamID:      transfer.TeamID,
			PlayerID:    transfer.InPlayerID,
			BoughtPrice: transfer.InPrice,
			BoughtRound: transfer.RoundNumber,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert squad player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			if isUniqueViolation(err) {
				return errors.Newf("player %d already in squad of team %d", transfer.InPlayerID, transfer.TeamID)
			}
			return fmt.Errorf("insert squad player: %w", err)
		}

		transferQuery, transferArgs, err := qb.InsertModel("transfers", transferInsertModel{
			TeamID:      transfer.TeamID,
			SeasonID:    transfer.SeasonID,
			RoundNumber: transfer.RoundNumber,
			OutPlayerID: transfer.OutPlayerID,
			InPlayerID:  transfer.InPlayerID,
			OutPrice:    transfer.OutPrice,
			InPrice:     transfer.InPrice,
			CreatedAt:   transfer.CreatedAt,
		}, "RETURNING id")
		if err != nil {
			return fmt.Errorf("build insert transfer query: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, transferQuery, transferArgs...).Scan(&transfer.ID); err != nil {
			return fmt.Errorf("insert transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return fantasy.Transfer{}, err
	}
	return transfer, nil
}

func teamSelectBuilder() *qb.SelectBuilder {
	return qb.Select("id", "season_id", "owner_user_id", "name", "budget_cap", "created_at").From("fantasy_teams")
}

func teamFromRow(row teamTableModel) fantasy.Team {
	return fantasy.Team(row)
}
