package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestIsReturningStar(t *testing.T) {
	cases := map[string]bool{
		"INSERT INTO widgets (name) VALUES ('a') RETURNING *":     true,
		"insert into widgets (name) values ('a') returning  * ":   true,
		"INSERT INTO widgets (name) VALUES ('a') RETURNING id":    false,
		"UPDATE widgets SET name = 'a' WHERE id = 1 RETURNING id": false,
		"SELECT 1": false,
	}
	for sql, want := range cases {
		if got := isReturningStar(sql); got != want {
			t.Errorf("isReturningStar(%q) = %v, want %v", sql, got, want)
		}
	}
}

// TestEmulateReturningStarAfterFirstRow confirms RETURNING * reflects the
// row actually written, not whatever sqlite3_last_insert_rowid happens to
// report, by inserting a second row and checking its own id/name come back.
func TestEmulateReturningStarAfterFirstRow(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)
	_, err = shared.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("first"))
	require.NoError(t, err)

	rows, err := shared.Query(ctx, "INSERT INTO widgets (name) VALUES (?) RETURNING *", sqlmodel.NewText("second"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"id", "name"}, rows[0].Columns().Names())

	id, err := rows[0].Get("id")
	require.NoError(t, err)
	idVal, err := id.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(2), idVal)

	name, err := rows[0].Get("name")
	require.NoError(t, err)
	nameVal, err := name.Text()
	require.NoError(t, err)
	require.Equal(t, "second", nameVal)
}

// TestEmulateReturningUpdate confirms UPDATE ... RETURNING reports the
// post-update values of the row the WHERE clause actually targeted, rather
// than whatever row sqlite3_last_insert_rowid would point at.
func TestEmulateReturningUpdate(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)
	_, err = shared.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("first"))
	require.NoError(t, err)
	_, err = shared.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("second"))
	require.NoError(t, err)

	rows, err := shared.Query(ctx, "UPDATE widgets SET name = ? WHERE id = ? RETURNING *",
		sqlmodel.NewText("updated"), sqlmodel.NewBigInt(1))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	name, err := rows[0].Get("name")
	require.NoError(t, err)
	nameVal, err := name.Text()
	require.NoError(t, err)
	require.Equal(t, "updated", nameVal)

	id, err := rows[0].Get("id")
	require.NoError(t, err)
	idVal, err := id.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(1), idVal)
}

// TestEmulateReturningDelete confirms DELETE ... RETURNING reports the
// deleted row's own data even though the row no longer exists by the time
// a naive rowid re-SELECT would have run.
func TestEmulateReturningDelete(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)
	_, err = shared.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("only"))
	require.NoError(t, err)

	rows, err := shared.Query(ctx, "DELETE FROM widgets WHERE id = ? RETURNING *", sqlmodel.NewBigInt(1))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	name, err := rows[0].Get("name")
	require.NoError(t, err)
	nameVal, err := name.Text()
	require.NoError(t, err)
	require.Equal(t, "only", nameVal)

	remaining, err := shared.Query(ctx, "SELECT * FROM widgets")
	require.NoError(t, err)
	require.Len(t, remaining, 0)
}

// TestEmulateReturningExplicitColumn confirms RETURNING id (an explicit
// column list, not *) reports only the requested column instead of every
// table column.
func TestEmulateReturningExplicitColumn(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	rows, err := shared.Query(ctx, "INSERT INTO widgets (name) VALUES (?) RETURNING id", sqlmodel.NewText("sprocket"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"id"}, rows[0].Columns().Names())
}
