package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlmodel-go/sqlmodel"
)

// TestSharedQueryExecuteRoundTrip drives Connect/Execute/Query/Insert/Close
// against a real in-memory SQLite database, exercising the cgo binding end
// to end the way postgres/integration_test.go does against its fake wire
// server.
func TestSharedQueryExecuteRoundTrip(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	require.NoError(t, shared.Ping(ctx))

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	id, err := shared.Insert(ctx, "INSERT INTO widgets (name) VALUES (?) RETURNING id", sqlmodel.NewText("sprocket"))
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	affected, err := shared.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("gear"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), affected)

	rows, err := shared.Query(ctx, "SELECT id, name FROM widgets ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	name, err := rows[0].Get("name")
	require.NoError(t, err)
	text, err := name.Text()
	require.NoError(t, err)
	require.Equal(t, "sprocket", text)

	row, err := shared.QueryOne(ctx, "SELECT name FROM widgets WHERE id = ?", sqlmodel.NewBigInt(2))
	require.NoError(t, err)
	require.NotNil(t, row)
	name2, err := row.Get("name")
	require.NoError(t, err)
	text2, err := name2.Text()
	require.NoError(t, err)
	require.Equal(t, "gear", text2)
}

// TestSharedPreparedStatement exercises the lightweight Prepare/
// QueryPrepared/ExecutePrepared path and its parameter-count check.
func TestSharedPreparedStatement(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	stmt, err := shared.Prepare(ctx, "INSERT INTO widgets (name) VALUES (?)")
	require.NoError(t, err)
	require.Equal(t, 1, stmt.ParamCount)

	affected, err := shared.ExecutePrepared(ctx, stmt, sqlmodel.NewText("sprocket"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), affected)

	_, err = shared.ExecutePrepared(ctx, stmt)
	require.Error(t, err)
}

// TestTxCommitRollback exercises Begin/Savepoint/RollbackTo/Commit against
// a real SQLite transaction, asserting that a rolled-back savepoint's write
// never lands while the outer transaction's write survives the commit.
func TestTxCommitRollback(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	_, err = shared.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	tx, err := shared.Begin(ctx)
	require.NoError(t, err)
	require.Equal(t, sqlmodel.StateInTransaction, shared.State())

	_, err = tx.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("kept"))
	require.NoError(t, err)

	require.NoError(t, tx.Savepoint(ctx, "sp1"))
	_, err = tx.Execute(ctx, "INSERT INTO widgets (name) VALUES (?)", sqlmodel.NewText("discarded"))
	require.NoError(t, err)
	require.NoError(t, tx.RollbackTo(ctx, "sp1"))

	require.NoError(t, tx.Commit(ctx))
	require.Equal(t, sqlmodel.StateReady, shared.State())

	rows, err := shared.Query(ctx, "SELECT name FROM widgets")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, err := rows[0].Get("name")
	require.NoError(t, err)
	text, err := name.Text()
	require.NoError(t, err)
	require.Equal(t, "kept", text)
}

// TestBeginWithLockingMode confirms BeginWith maps isolation levels onto
// SQLite's locking-mode BEGIN variants rather than rejecting them outright.
func TestBeginWithLockingMode(t *testing.T) {
	ctx := context.Background()
	shared, err := Connect(ctx, Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = shared.Close(ctx) }()

	tx, err := shared.BeginWith(ctx, sqlmodel.Serializable)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}
