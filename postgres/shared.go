package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/sqlmodel-go/sqlmodel"
)

// Shared is the reference-counted, mutex-guarded form of a PostgreSQL
// connection (spec §5 "Shared-connection wrapper"). sqlmodel.Connection
// is implemented on *Shared, not on the raw conn: every method below
// acquires mu for its entire duration, guaranteeing a query's request and
// response are never interleaved with another query's.
type Shared struct {
	mu  sync.Mutex
	raw *conn
}

var _ sqlmodel.Connection = (*Shared)(nil)

// Connect dials, authenticates, and returns a ready Shared connection.
func Connect(ctx context.Context, cfg Config) (*Shared, error) {
	raw, err := Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Shared{raw: raw}, nil
}

// WithLogger attaches a structured logger (ambient concern; spec §9 Open
// Question (a) routes SQLite/Postgres diagnostics through this instead of
// unconditional stderr writes).
func (s *Shared) WithLogger(l sqlmodel.Logger) *Shared {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.logger = l
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
	res, err := s.raw.runExtended(ctx, sql, params)
	s.raw.restStateAfterTx()
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
	res, err := s.raw.runExtended(ctx, sql, params)
	s.raw.restStateAfterTx()
	if err != nil {
		return 0, err
	}
	return res.affected, nil
}

// Insert requires the caller's SQL to include "RETURNING id" (spec §4.1);
// it returns the integer of column 0 of row 0, failing with
// Query(Database) if no row comes back or the column isn't an integer.
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

func (s *Shared) Prepare(ctx context.Context, sql string) (*sqlmodel.PreparedStatement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw.prepare(ctx, sql)
}

func (s *Shared) QueryPrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params ...sqlmodel.Value) ([]sqlmodel.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.state = sqlmodel.StateInQuery
	res, err := s.raw.execPrepared(ctx, stmt, params)
	s.raw.restStateAfterTx()
	if err != nil {
		return nil, err
	}
	return res.rows, nil
}

func (s *Shared) ExecutePrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params ...sqlmodel.Value) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.state = sqlmodel.StateInQuery
	res, err := s.raw.execPrepared(ctx, stmt, params)
	s.raw.restStateAfterTx()
	if err != nil {
		return 0, err
	}
	return res.affected, nil
}

// Begin acquires the mutex, emits BEGIN, releases it, and returns a Tx
// that holds a reference to this Shared connection (spec §5 "Transaction
// locking"). Every subsequent Tx operation re-acquires the mutex itself,
// so ordinary Query calls on the base connection are NOT excluded between
// a transaction's individual operations (documented limitation, spec §9c).
func (s *Shared) Begin(ctx context.Context) (sqlmodel.Transaction, error) {
	if _, err := s.Execute(ctx, "BEGIN"); err != nil {
		return nil, err
	}
	return &Tx{shared: s}, nil
}

func (s *Shared) BeginWith(ctx context.Context, level sqlmodel.IsolationLevel) (sqlmodel.Transaction, error) {
	stmt := fmt.Sprintf("BEGIN ISOLATION LEVEL %s", isolationSQL(level))
	if _, err := s.Execute(ctx, stmt); err != nil {
		return nil, err
	}
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

// restStateAfterTx reflects the last ReadyForQuery transaction-status
// byte into the public State (spec §3.3): 'T'/'E' keep the connection
// logically "in transaction" even though the wire round trip itself has
// finished and released the mutex.
func (cn *conn) restStateAfterTx() {
	if cn.state == sqlmodel.StateError {
		return
	}
	switch cn.txStatus {
	case txInBlockT, txFailedE:
		cn.state = sqlmodel.StateInTransaction
	default:
		cn.state = sqlmodel.StateReady
	}
}

// TxStatus (TxIdle/TxInBlock/TxFailed) exposes the raw connection's last
// ReadyForQuery transaction-status flag (spec §3.3) for diagnostics.
type TxStatus int

const (
	TxIdle TxStatus = iota
	TxInBlock
	TxFailed
)

func (s *Shared) TxStatus() TxStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.raw.txStatus {
	case txInBlockT:
		return TxInBlock
	case txFailedE:
		return TxFailed
	default:
		return TxIdle
	}
}

func (s TxStatus) String() string {
	switch s {
	case TxInBlock:
		return "InBlock"
	case TxFailed:
		return "Failed"
	default:
		return "Idle"
	}
}
