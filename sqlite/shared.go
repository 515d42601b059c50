package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/sqlmodel-go/sqlmodel"
)

// Shared is the mutex-guarded form of a SQLite connection (spec §5
// "Shared-connection wrapper"), generalized from postgres.Shared/
// mysql.Shared to a backend with no wire protocol: the mutex here
// protects the single libsqlite3 handle from concurrent cgo calls rather
// than from interleaved request/response frames.
type Shared struct {
	mu   sync.Mutex
	raw  *conn
	inTx bool
}

var _ sqlmodel.Connection = (*Shared)(nil)

// Connect opens the database file (or ":memory:") and returns a ready
// Shared connection.
func Connect(ctx context.Context, cfg Config) (*Shared, error) {
	raw, err := Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Shared{raw: raw}, nil
}

// WithLogger attaches a structured logger (ambient concern; spec §9 Open
// Question (a)).
func (s *Shared) WithLogger(l sqlmodel.Logger) *Shared {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.WithLogger(l)
	return s
}

func (s *Shared) State() sqlmodel.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw.state
}

func (s *Shared) Query(ctx context.Context, sql string, params ...sqlmodel.Value) ([]sqlmodel.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.state = sqlmodel.StateInQuery
	res, err := s.raw.runStatement(ctx, sql, params)
	s.restState()
	if err != nil {
		return nil, err
	}
	return res.rows, nil
}

func (s *Shared) QueryOne(ctx context.Context, sql string, params ...sqlmodel.Value) (*sqlmodel.Row, error) {
	rows, err := s.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Shared) Execute(ctx context.Context, sql string, params ...sqlmodel.Value) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.state = sqlmodel.StateInQuery
	res, err := s.raw.runStatement(ctx, sql, params)
	s.restState()
	if err != nil {
		return 0, err
	}
	return res.affected, nil
}

// Insert requires the caller's SQL to include "RETURNING id" (spec §4.1),
// emulated per returning.go; it returns the integer of column 0 of row 0.
func (s *Shared) Insert(ctx context.Context, sql string, params ...sqlmodel.Value) (int64, error) {
	rows, err := s.Query(ctx, sql, params...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, sqlmodel.NewQueryError(sqlmodel.QueryDatabase, "insert: no row returned; SQL must include RETURNING id", nil)
	}
	v, err := rows[0].At(0)
	if err != nil {
		return 0, sqlmodel.NewQueryError(sqlmodel.QueryDatabase, "insert: no column returned", nil)
	}
	id, err := v.Int64()
	if err != nil {
		return 0, sqlmodel.NewQueryError(sqlmodel.QueryDatabase, "insert: returned column 0 is not an integer", nil)
	}
	return id, nil
}

// Batch runs each (sql, params) pair in order; the first error aborts and
// returns the accumulated prefix results alongside the error (spec §4.1).
func (s *Shared) Batch(ctx context.Context, batches []sqlmodel.Batch) ([]uint64, error) {
	results := make([]uint64, 0, len(batches))
	for _, b := range batches {
		n, err := s.Execute(ctx, b.SQL, b.Params...)
		if err != nil {
			return results, err
		}
		results = append(results, n)
	}
	return results, nil
}

// Prepare returns a handle holding only the SQL text and its placeholder
// count (spec §4.1), the way mysql.Shared.Prepare does for a driver
// without a server-side prepared-statement cache to reuse across calls.
func (s *Shared) Prepare(ctx context.Context, sql string) (*sqlmodel.PreparedStatement, error) {
	return &sqlmodel.PreparedStatement{SQL: sql, ParamCount: countPlaceholders(sql)}, nil
}

func (s *Shared) checkParamCount(stmt *sqlmodel.PreparedStatement, got int) error {
	if got != stmt.ParamCount {
		return sqlmodel.NewQueryError(sqlmodel.QuerySyntax,
			fmt.Sprintf("parameter count mismatch: statement declares %d, got %d", stmt.ParamCount, got), nil)
	}
	return nil
}

func (s *Shared) QueryPrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params ...sqlmodel.Value) ([]sqlmodel.Row, error) {
	if err := s.checkParamCount(stmt, len(params)); err != nil {
		return nil, err
	}
	return s.Query(ctx, stmt.SQL, params...)
}

func (s *Shared) ExecutePrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params ...sqlmodel.Value) (uint64, error) {
	if err := s.checkParamCount(stmt, len(params)); err != nil {
		return 0, err
	}
	return s.Execute(ctx, stmt.SQL, params...)
}

// Begin and BeginWith emit BEGIN [mode] under the mutex and return a Tx
// holding a reference to this Shared connection (spec §5 "Transaction
// locking"). SQLite has no per-statement isolation level, only a
// deferred/immediate/exclusive locking mode, so BeginWith maps the
// requested IsolationLevel onto the closest of those (spec §4.4 table).
func (s *Shared) Begin(ctx context.Context) (sqlmodel.Transaction, error) {
	if _, err := s.Execute(ctx, "BEGIN DEFERRED"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.inTx = true
	s.mu.Unlock()
	return &Tx{shared: s}, nil
}

func (s *Shared) BeginWith(ctx context.Context, level sqlmodel.IsolationLevel) (sqlmodel.Transaction, error) {
	if _, err := s.Execute(ctx, "BEGIN "+lockingModeSQL(level)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.inTx = true
	s.mu.Unlock()
	return &Tx{shared: s}, nil
}

func (s *Shared) Ping(ctx context.Context) error {
	_, err := s.Execute(ctx, "SELECT 1")
	return err
}

func (s *Shared) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw.close()
}

// restState reflects whether a transaction is open into the public State
// (spec §3.3), since SQLite carries no ReadyForQuery-style status byte
// the way postgres.restStateAfterTx reads off the wire.
func (s *Shared) restState() {
	if s.raw.state == sqlmodel.StateError {
		return
	}
	if s.inTx {
		s.raw.state = sqlmodel.StateInTransaction
	} else {
		s.raw.state = sqlmodel.StateReady
	}
}

// lockingModeSQL maps the shared IsolationLevel enum onto SQLite's
// BEGIN DEFERRED/IMMEDIATE/EXCLUSIVE locking modes (spec §4.4): there is
// no server-enforced READ COMMITTED/REPEATABLE READ distinction, so the
// two weaker levels both fall back to DEFERRED.
func lockingModeSQL(level sqlmodel.IsolationLevel) string {
	switch level {
	case sqlmodel.Serializable:
		return "EXCLUSIVE"
	case sqlmodel.RepeatableRead:
		return "IMMEDIATE"
	default:
		return "DEFERRED"
	}
}
