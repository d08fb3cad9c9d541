package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/matchstat"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListByRound(ctx context.Context, roundID int64) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(
		"id", "round_id", "home_club_id", "away_club_id",
		"home_score", "away_score", "status", "kickoff_at",
	).From("fixtures").
		Where(qb.Eq("round_id", roundID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by round query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures by round: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Fixture{
			ID:         row.ID,
			RoundID:    row.RoundID,
			HomeClubID: row.HomeClubID,
			AwayClubID: row.AwayClubID,
			HomeScore:  nullableInt(row.HomeScore),
			AwayScore:  nullableInt(row.AwayScore),
			Status:     fixture.NormalizeStatus(row.Status),
			KickoffAt:  row.KickoffAt,
		})
	}
	return out, nil
}

type MatchStatRepository struct {
	db *sqlx.DB
}

func NewMatchStatRepository(db *sqlx.DB) *MatchStatRepository {
	return &MatchStatRepository{db: db}
}

func (r *MatchStatRepository) ListByRound(ctx context.Context, roundID int64) ([]matchstat.PlayerMatchStat, error) {
	query, args, err := qb.Select(
		"s.player_id", "s.fixture_id", "s.club_id", "s.minutes", "s.goals", "s.assists",
		"s.saves", "s.fouls", "s.yellow_cards", "s.red_cards", "s.clean_sheet", "s.goals_conceded",
	).From("player_match_stats s JOIN fixtures f ON f.id = s.fixture_id").
		Where(qb.Eq("f.round_id", roundID)).
		OrderBy("s.fixture_id", "s.player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match stats by round query: %w", err)
	}

	var rows []matchStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match stats by round: %w", err)
	}

	out := make([]matchstat.PlayerMatchStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchstat.PlayerMatchStat{
			PlayerID:      row.PlayerID,
			FixtureID:     row.FixtureID,
			ClubID:        row.ClubID,
			Minutes:       row.Minutes,
			Goals:         row.Goals,
			Assists:       row.Assists,
			Saves:         row.Saves,
			Fouls:         row.Fouls,
			YellowCards:   row.YellowCards,
			RedCards:      row.RedCards,
			CleanSheet:    overrideFromNull(row.CleanSheet),
			GoalsConceded: overrideFromNull(row.GoalsConceded),
		})
	}
	return out, nil
}

func overrideFromNull(v sql.NullInt64) matchstat.Override {
	if !v.Valid {
		return matchstat.Override{}
	}
	return matchstat.Explicit(int(v.Int64))
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []int64) ([]player.Player, error) {
	return selectPlayers(ctx, r.db, playerIDs, "")
}

func (r *PlayerRepository) ListAll(ctx context.Context) ([]player.Player, error) {
	query, args, err := playerSelectBuilder().OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return playersFromRows(rows)
}

// selectPlayers loads players by id. suffix is appended after ORDER BY, e.g.
// a row locking clause.
func selectPlayers(ctx context.Context, q queryer, playerIDs []int64, suffix string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	query, args, err := playerSelectBuilder().
		Where(qb.In("id", int64sToAny(playerIDs))).
		OrderBy("id").
		Suffix(suffix).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get players by ids: %w", err)
	}
	return playersFromRows(rows)
}

func playerSelectBuilder() *qb.SelectBuilder {
	return qb.Select("id", "club_id", "name", "position", "price", "injured").From("players")
}

func playersFromRows(rows []playerTableModel) ([]player.Player, error) {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		item := player.Player{
			ID:       row.ID,
			ClubID:   row.ClubID,
			Name:     row.Name,
			Position: player.Position(row.Position),
			Price:    row.Price,
			Injured:  row.Injured,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("decode players row: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}
