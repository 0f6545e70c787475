package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("season_id", "number", "document").
		From("weeks").
		Where(Eq("season_id", "s1"), Expr("state <> ?", "draft")).
		OrderBy("number").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT season_id, number, document FROM weeks WHERE season_id = $1 AND state <> $2 ORDER BY number LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "s1" || args[1] != "draft" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderSuffix(t *testing.T) {
	query, args, err := Select("document", "revision").
		From("weeks").
		Where(Eq("season_id", "s1"), Eq("number", 2)).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		t.Fatalf("build locking select: %v", err)
	}

	wantQuery := "SELECT document, revision FROM weeks WHERE season_id = $1 AND number = $2 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[1] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderRequiresTable(t *testing.T) {
	if _, _, err := Select("document").ToSQL(); err == nil {
		t.Fatalf("expected missing table error")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("members").
		SetExpr("substitutes_used", "GREATEST(substitutes_used + ?, 0)", 1).
		Set("updated_at", "now").
		Where(Eq("league_id", "l1"), Eq("player_id", "p1")).
		Suffix("RETURNING substitutes_used").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE members SET substitutes_used = GREATEST(substitutes_used + $1, 0), updated_at = $2 WHERE league_id = $3 AND player_id = $4 RETURNING substitutes_used"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != 1 || args[3] != "p1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type memberRow struct {
	LeagueID    string    `db:"league_id"`
	PlayerID    string    `db:"player_id"`
	DisplayName string    `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at,insertonly"`
	internal    string
	Skipped     string `db:"-"`
}

func TestUpsertModel(t *testing.T) {
	joined := time.Date(2031, 1, 9, 0, 0, 0, 0, time.UTC)
	query, args, err := UpsertModel("members", memberRow{
		LeagueID:    "l1",
		PlayerID:    "p1",
		DisplayName: "Player One",
		JoinedAt:    joined,
		internal:    "x",
		Skipped:     "y",
	}, "league_id", "player_id")
	if err != nil {
		t.Fatalf("build upsert: %v", err)
	}

	wantQuery := "INSERT INTO members (league_id, player_id, display_name, joined_at) VALUES ($1, $2, $3, $4)" +
		" ON CONFLICT (league_id, player_id) DO UPDATE SET display_name = EXCLUDED.display_name"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "Player One" || args[3] != joined {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpsertModelWithoutUpdatableColumns(t *testing.T) {
	type keyOnly struct {
		ID string `db:"id"`
	}
	if _, _, err := UpsertModel("leagues", keyOnly{ID: "l1"}, "id"); err == nil {
		t.Fatalf("expected error when nothing can be updated")
	}
}

func TestInsertModels(t *testing.T) {
	rows := []memberRow{
		{LeagueID: "l1", PlayerID: "p1", DisplayName: "One"},
		{LeagueID: "l1", PlayerID: "p2", DisplayName: "Two"},
	}
	query, args, err := InsertModels("members", rows...).ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	wantQuery := "INSERT INTO members (league_id, player_id, display_name, joined_at) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 8 || args[5] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelsRejectsNonStruct(t *testing.T) {
	if _, _, err := InsertModels("members", 1, 2).ToSQL(); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
	var nilRow *memberRow
	if _, _, err := InsertModels("members", nilRow).ToSQL(); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
