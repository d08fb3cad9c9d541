package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo season into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM seasons`); err != nil {
		return fmt.Errorf("count seasons for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	set := memory.SeedData(now)
	err := withTx(ctx, db, "bootstrap seed", func(tx *sqlx.Tx) error {
		exec := func(label, query string, arg any) error {
			sqlQuery, args, err := sqlx.Named(query, arg)
			if err != nil {
				return fmt.Errorf("bind seed %s query: %w", label, err)
			}
			sqlQuery = tx.Rebind(sqlQuery)
			if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
				return fmt.Errorf("seed %s: %w", label, err)
			}
			return nil
		}

		if err := exec("season", `
INSERT INTO seasons (id, name, is_active) VALUES (:id, :name, :is_active)`, seasonTableModel{
			ID: set.Season.ID, Name: set.Season.Name, IsActive: set.Season.IsActive,
		}); err != nil {
			return err
		}

		for _, r := range set.Rounds {
			if err := exec(fmt.Sprintf("round %d", r.ID), `
INSERT INTO rounds (id, season_id, number, starts_at, is_closed)
VALUES (:id, :season_id, :number, :starts_at, :is_closed)`, roundTableModel{
				ID: r.ID, SeasonID: r.SeasonID, Number: r.Number, StartsAt: r.StartsAt.UTC(), IsClosed: r.IsClosed,
			}); err != nil {
				return err
			}
		}

		for _, c := range set.Clubs {
			if err := exec(fmt.Sprintf("club %d", c.ID), `
INSERT INTO clubs (id, name) VALUES (:id, :name)`, map[string]any{"id": c.ID, "name": c.Name}); err != nil {
				return err
			}
		}

		for _, p := range set.Players {
			if err := exec(fmt.Sprintf("player %d", p.ID), `
INSERT INTO players (id, club_id, name, position, price, injured)
VALUES (:id, :club_id, :name, :position, :price, :injured)`, playerTableModel{
				ID: p.ID, ClubID: p.ClubID, Name: p.Name, Position: string(p.Position), Price: p.Price, Injured: p.Injured,
			}); err != nil {
				return err
			}
		}

		for _, f := range set.Fixtures {
			if err := exec(fmt.Sprintf("fixture %d", f.ID), `
INSERT INTO fixtures (id, round_id, home_club_id, away_club_id, home_score, away_score, status, kickoff_at)
VALUES (:id, :round_id, :home_club_id, :away_club_id, :home_score, :away_score, :status, :kickoff_at)`, map[string]any{
				"id":           f.ID,
				"round_id":     f.RoundID,
				"home_club_id": f.HomeClubID,
				"away_club_id": f.AwayClubID,
				"home_score":   f.HomeScore,
				"away_score":   f.AwayScore,
				"status":       f.Status,
				"kickoff_at":   f.KickoffAt.UTC(),
			}); err != nil {
				return err
			}
		}

		for _, stats := range set.MatchStats {
			for _, st := range stats {
				if err := exec(fmt.Sprintf("match stat %d/%d", st.FixtureID, st.PlayerID), `
INSERT INTO player_match_stats (player_id, fixture_id, club_id, minutes, goals, assists, saves, fouls, yellow_cards, red_cards)
VALUES (:player_id, :fixture_id, :club_id, :minutes, :goals, :assists, :saves, :fouls, :yellow_cards, :red_cards)`, matchStatTableModel{
					PlayerID: st.PlayerID, FixtureID: st.FixtureID, ClubID: st.ClubID, Minutes: st.Minutes,
					Goals: st.Goals, Assists: st.Assists, Saves: st.Saves, Fouls: st.Fouls,
					YellowCards: st.YellowCards, RedCards: st.RedCards,
				}); err != nil {
					return err
				}
			}
		}

		if err := exec("team", `
INSERT INTO fantasy_teams (id, season_id, owner_user_id, name, budget_cap, created_at)
VALUES (:id, :season_id, :owner_user_id, :name, :budget_cap, :created_at)`, teamTableModel(set.Team)); err != nil {
			return err
		}
		for _, sp := range set.Squad {
			if err := exec(fmt.Sprintf("squad player %d", sp.PlayerID), `
INSERT INTO fantasy_team_players (team_id, player_id, bought_price, bought_round)
VALUES (:team_id, :player_id, :bought_price, :bought_round)`, squadPlayerTableModel(sp)); err != nil {
				return err
			}
		}

		// Explicit ids bypass the sequences, so move them past the seeded rows.
		for _, table := range []string{"seasons", "rounds", "clubs", "players", "fixtures", "fantasy_teams"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))`, table,
			)); err != nil {
				return fmt.Errorf("reset %s sequence: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := NewLineupRepository(db).Save(ctx, set.Lineup); err != nil {
		return fmt.Errorf("seed lineup: %w", err)
	}
	return nil
}
