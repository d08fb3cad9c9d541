package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/season"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetActiveSeason(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("id", "name", "is_active").
		From("seasons").
		Where(qb.Eq("is_active", true)).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get active season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get active season: %w", err)
	}
	return season.Season{ID: row.ID, Name: row.Name, IsActive: row.IsActive}, true, nil
}

func (r *SeasonRepository) GetRound(ctx context.Context, seasonID int64, number int) (season.Round, bool, error) {
	query, args, err := roundSelectBuilder().
		Where(qb.Eq("season_id", seasonID), qb.Eq("number", number)).
		ToSQL()
	if err != nil {
		return season.Round{}, false, fmt.Errorf("build get round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Round{}, false, nil
		}
		return season.Round{}, false, fmt.Errorf("get round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *SeasonRepository) ListOpenRounds(ctx context.Context, seasonID int64) ([]season.Round, error) {
	query, args, err := roundSelectBuilder().
		Where(qb.Eq("season_id", seasonID), qb.Eq("is_closed", false)).
		OrderBy("number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list open rounds query: %w", err)
	}

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list open rounds: %w", err)
	}

	out := make([]season.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}
	return out, nil
}

func (r *SeasonRepository) CloseRound(ctx context.Context, roundID int64, endedAt time.Time) error {
	query, args, err := qb.Update("rounds").
		Set("is_closed", true).
		SetExpr("ends_at", "COALESCE(ends_at, ?)", endedAt).
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build close round query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("close round: %w", err)
	}
	return nil
}

func (r *SeasonRepository) ReopenRound(ctx context.Context, roundID int64) error {
	query, args, err := qb.Update("rounds").
		Set("is_closed", false).
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reopen round query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reopen round: %w", err)
	}
	return nil
}

func roundSelectBuilder() *qb.SelectBuilder {
	return qb.Select("id", "season_id", "number", "starts_at", "ends_at", "is_closed").From("rounds")
}

func roundFromRow(row roundTableModel) season.Round {
	return season.Round{
		ID:       row.ID,
		SeasonID: row.SeasonID,
		Number:   row.Number,
		StartsAt: row.StartsAt,
		EndsAt:   nullableTime(row.EndsAt),
		IsClosed: row.IsClosed,
	}
}
