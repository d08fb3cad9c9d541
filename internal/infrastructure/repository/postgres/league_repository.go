package postgres

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/league"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) (league.League, error) {
	if err := item.Validate(); err != nil {
		return league.League{}, err
	}

	err := withTx(ctx, r.db, "create league", func(tx *sqlx.Tx) error {
		query, args, err := qb.InsertInto("private_leagues").
			Columns("season_id", "name", "invite_code", "owner_team_id", "created_at").
			Values(item.SeasonID, item.Name, item.InviteCode, item.OwnerTeamID, item.CreatedAt).
			Suffix("RETURNING id").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert league query: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
			if isUniqueViolation(err) {
				return errors.Newf("invite code %q already used", item.InviteCode)
			}
			return fmt.Errorf("insert league: %w", err)
		}

		_, err = insertMember(ctx, tx, league.Member{
			LeagueID: item.ID,
			TeamID:   item.OwnerTeamID,
			JoinedAt: item.CreatedAt,
		})
		return err
	})
	if err != nil {
		return league.League{}, err
	}
	return item, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("id", leagueID))
}

func (r *LeagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("invite_code", inviteCode))
}

func (r *LeagueRepository) getOne(ctx context.Context, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("id", "season_id", "name", "invite_code", "owner_team_id", "created_at").
		From("private_leagues").
		Where(cond).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return league.League(row), true, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID int64) ([]league.Member, error) {
	return listMembers(ctx, r.db, leagueID)
}

func (r *LeagueRepository) AddMember(ctx context.Context, member league.Member) (league.Member, error) {
	return insertMember(ctx, r.db, member)
}

func (r *LeagueRepository) RemoveMember(ctx context.Context, leagueID, teamID int64) (league.LeaveResult, error) {
	var result league.LeaveResult
	err := withTx(ctx, r.db, "remove league member", func(tx *sqlx.Tx) error {
		// Row lock on the league serializes concurrent leaves.
		var ownerTeamID int64
		lockQuery, lockArgs, err := qb.Select("owner_team_id").
			From("private_leagues").
			Where(qb.Eq("id", leagueID)).
			Suffix("FOR UPDATE").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build lock league query: %w", err)
		}
		if err := tx.GetContext(ctx, &ownerTeamID, lockQuery, lockArgs...); err != nil {
			if isNotFound(err) {
				return errors.Newf("league %d not found", leagueID)
			}
			return fmt.Errorf("lock league: %w", err)
		}

		members, err := listMembers(ctx, tx, leagueID)
		if err != nil {
			return err
		}

		deleteQuery, deleteArgs, err := qb.DeleteFrom("private_league_members").
			Where(qb.Eq("league_id", leagueID), qb.Eq("team_id", teamID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete league member query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("delete league member: %w", err)
		}

		next, ok := league.NextOwner(members, teamID)
		if !ok {
			query, args, err := qb.DeleteFrom("private_leagues").Where(qb.Eq("id", leagueID)).ToSQL()
			if err != nil {
				return fmt.Errorf("build delete league query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("delete league: %w", err)
			}
			result = league.LeaveResult{LeagueDeleted: true}
			return nil
		}
		if ownerTeamID != teamID {
			return nil
		}

		query, args, err := qb.Update("private_leagues").
			Set("owner_team_id", next.TeamID).
			Where(qb.Eq("id", leagueID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build transfer league ownership query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("transfer league ownership: %w", err)
		}
		result = league.LeaveResult{OwnerChanged: true, NewOwnerTeamID: next.TeamID}
		return nil
	})
	if err != nil {
		return league.LeaveResult{}, err
	}
	return result, nil
}

func listMembers(ctx context.Context, q queryer, leagueID int64) ([]league.Member, error) {
	query, args, err := qb.Select("id", "league_id", "team_id", "joined_at").
		From("private_league_members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league members query: %w", err)
	}

	var rows []leagueMemberTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.Member(row))
	}
	return out, nil
}

// insertMember is idempotent on (league, team) and returns the stored row.
func insertMember(ctx context.Context, q queryer, member league.Member) (league.Member, error) {
	query, args, err := qb.InsertInto("private_league_members").
		Columns("league_id", "team_id", "joined_at").
		Values(member.LeagueID, member.TeamID, member.JoinedAt).
		Suffix(`ON CONFLICT (league_id, team_id) DO UPDATE SET league_id = EXCLUDED.league_id
			RETURNING id, league_id, team_id, joined_at`).
		ToSQL()
	if err != nil {
		return league.Member{}, fmt.Errorf("build insert league member query: %w", err)
	}

	var row leagueMemberTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		return league.Member{}, fmt.Errorf("insert league member: %w", err)
	}
	return league.Member(row), nil
}
