package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) ListRoundPoints(ctx context.Context, seasonID int64, roundNumber int) ([]scoring.PointsRound, error) {
	query, args, err := pointsSelectBuilder().
		Where(qb.Eq("season_id", seasonID), qb.Eq("round_number", roundNumber)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list round points query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *ScoringRepository) ListSeasonPoints(ctx context.Context, seasonID int64) ([]scoring.PointsRound, error) {
	query, args, err := pointsSelectBuilder().
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("round_number", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season points query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *ScoringRepository) list(ctx context.Context, query string, args []any) ([]scoring.PointsRound, error) {
	var rows []roundPointsModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}

	out := make([]scoring.PointsRound, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.PointsRound(row))
	}
	return out, nil
}

func pointsSelectBuilder() *qb.SelectBuilder {
	return qb.Select("season_id", "round_number", "player_id", "points").From("player_round_points")
}
