package postgres_test

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlmodel-go/sqlmodel/postgres"
	"github.com/sqlmodel-go/sqlmodel/sqlmodeltest"
)

// TestConnectQueryAgainstFakeServer drives a real Connect/Query/Ping/Close
// round trip against sqlmodeltest's in-process PostgreSQL v3-protocol fake
// (grounded on lib-pq's own internal fake-server test pattern), exercising
// the startup/auth handshake and extended-query codec end to end instead
// of only unit-testing individual frame encoders.
func TestConnectQueryAgainstFakeServer(t *testing.T) {
	fake, err := sqlmodeltest.NewPGFake()
	require.NoError(t, err)
	defer fake.Close()

	fake.SeedTable("widgets", []string{"id", "name"}, [][]string{
		{"1", "sprocket"},
		{"2", "gear"},
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- fake.Serve() }()

	host, portStr, err := net.SplitHostPort(fake.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	ctx := context.Background()
	conn, err := postgres.Connect(ctx, postgres.Config{
		Host:     host,
		Port:     port,
		Database: "testdb",
		User:     "tester",
	})
	require.NoError(t, err)

	require.NoError(t, conn.Ping(ctx))

	rows, err := conn.Query(ctx, "SELECT * FROM widgets")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	name, err := rows[0].Get("name")
	require.NoError(t, err)
	text, err := name.Text()
	require.NoError(t, err)
	require.Equal(t, "sprocket", text)

	require.NoError(t, conn.Close(ctx))
	require.NoError(t, <-serveErr)
}
