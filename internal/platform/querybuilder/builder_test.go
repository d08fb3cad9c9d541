package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "team_id").
		From("lineups").
		Where(Eq("round_number", 3), IsNull("deleted_at")).
		OrderBy("team_id", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, team_id FROM lineups WHERE round_number = $1 AND deleted_at IS NULL ORDER BY team_id, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprAndIn(t *testing.T) {
	tests := []struct {
		name      string
		where     []Condition
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "expr binds in order",
			where:     []Condition{Eq("kind", "settled"), Expr("attempts < ? AND created_at > ?", 5, "2026-01-01")},
			wantQuery: "SELECT id FROM notifications WHERE kind = $1 AND attempts < $2 AND created_at > $3",
			wantArgs:  3,
		},
		{
			name:      "expr keeps unbound markers",
			where:     []Condition{Expr("payload ? 'round'")},
			wantQuery: "SELECT id FROM notifications WHERE payload ? 'round'",
		},
		{
			name:      "in list",
			where:     []Condition{In("id", []any{int64(4), int64(9)})},
			wantQuery: "SELECT id FROM notifications WHERE id IN ($1, $2)",
			wantArgs:  2,
		},
		{
			name:      "empty in matches nothing",
			where:     []Condition{In("id", nil)},
			wantQuery: "SELECT id FROM notifications WHERE 1=0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			query, args, err := Select("id").From("notifications").Where(tc.where...).ToSQL()
			if err != nil {
				t.Fatalf("build select query: %v", err)
			}
			if query != tc.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tc.wantQuery, query)
			}
			if len(args) != tc.wantArgs {
				t.Fatalf("unexpected args: %+v", args)
			}
		})
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("private_leagues").
		Columns("name", "invite_code").
		Values("Office", "AB12CD34").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO private_leagues (name, invite_code) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Office" || args[1] != "AB12CD34" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertInto("private_leagues").Columns("name").Values("a", "b").ToSQL(); err == nil {
		t.Fatalf("expected row width mismatch to be rejected")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("seasons").
		Set("is_active", false).
		SetExpr("ends_at", "COALESCE(ends_at, ?)", "2026-05-30").
		Where(Eq("id", int64(1))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE seasons SET is_active = $1, ends_at = COALESCE(ends_at, $2) WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != false || args[2] != int64(1) {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Update("seasons").ToSQL(); err == nil {
		t.Fatalf("expected update without sets to be rejected")
	}
}

func TestSelectBuilder_Any(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(Any("id", []int64{1, 2}), Eq("injured", false)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE id = ANY($1) AND injured = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_round_points").
		Where(Eq("season_id", int64(1)), Eq("round_number", 3)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM player_round_points WHERE season_id = $1 AND round_number = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("player_round_points").ToSQL(); err == nil {
		t.Fatalf("expected unbounded delete to be rejected")
	}
}

func TestInsertModels(t *testing.T) {
	type row struct {
		ID     int64  `db:"id"`
		Name   string `db:"name"`
		hidden string
	}

	query, args, err := InsertModels("clubs", []row{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO clubs (id, name) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels[row]("clubs", nil, ""); err == nil {
		t.Fatalf("expected empty insert to be rejected")
	}
}

func TestSelectBuilder_Suffix(t *testing.T) {
	query, args, err := Select("owner_team_id").
		From("private_leagues").
		Where(Eq("id", int64(7))).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT owner_team_id FROM private_leagues WHERE id = $1 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}
