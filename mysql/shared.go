package mysql

import (
	"context"
	"fmt"
	"sync"

	"github.com/sqlmodel-go/sqlmodel"
)

// Shared is the reference-counted, mutex-guarded form of a MySQL
// connection (spec §5), mirroring the postgres package's wrapper shape.
type Shared struct {
	mu  sync.Mutex
	raw *conn
}

var _ sqlmodel.Connection = (*Shared)(nil)

func Connect(ctx context.Context, cfg Config) (*Shared, error) {
	raw, err := Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Shared{raw: raw}, nil
}

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
	res, err := s.raw.runInterpolated(ctx, sql, params)
	s.raw.restStateAfterQuery()
	if err != nil {
		return nil, err
	}
	return rowsFromResult(res), nil
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
	res, err := s.raw.runInterpolated(ctx, sql, params)
	s.raw.restStateAfterQuery()
	if err != nil {
		return 0, err
	}
	return res.ok.affectedRows, nil
}

// Insert returns MySQL's last-insert-id directly (spec §4.1), unlike the
// PostgreSQL driver which requires RETURNING id.
func (s *Shared) Insert(ctx context.Context, sql string, params ...sqlmodel.Value) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw.state = sqlmodel.StateInQuery
	res, err := s.raw.runInterpolated(ctx, sql, params)
	s.raw.restStateAfterQuery()
	if err != nil {
		return 0, err
	}
	return int64(res.ok.lastInsertID), nil
}

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

// Prepare returns a handle holding only the SQL string (spec §4.1); MySQL
// text-protocol execution has no server-side prepared-statement lifecycle
// in this driver's scope.
func (s *Shared) Prepare(ctx context.Context, sql string) (*sqlmodel.PreparedStatement, error) {
	return &sqlmodel.PreparedStatement{SQL: sql, ParamCount: countPlaceholders(sql)}, nil
}

func (s *Shared) QueryPrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params ...sqlmodel.Value) ([]sqlmodel.Row, error) {
	if err := checkParamCount(stmt, len(params)); err != nil {
		return nil, err
	}
	return s.Query(ctx, stmt.SQL, params...)
}

func (s *Shared) ExecutePrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params ...sqlmodel.Value) (uint64, error) {
	if err := checkParamCount(stmt, len(params)); err != nil {
		return 0, err
	}
	return s.Execute(ctx, stmt.SQL, params...)
}

func countPlaceholders(sql string) int {
	n := 0
	for _, c := range sql {
		if c == '?' {
			n++
		}
	}
	return n
}

func checkParamCount(stmt *sqlmodel.PreparedStatement, got int) error {
	if got != stmt.ParamCount {
		return sqlmodel.NewQueryError(sqlmodel.QuerySyntax,
			fmt.Sprintf("parameter count mismatch: statement declares %d, got %d", stmt.ParamCount, got), nil)
	}
	return nil
}

func (s *Shared) Begin(ctx context.Context) (sqlmodel.Transaction, error) {
	if _, err := s.Execute(ctx, "START TRANSACTION"); err != nil {
		return nil, err
	}
	return &Tx{shared: s}, nil
}

func (s *Shared) BeginWith(ctx context.Context, level sqlmodel.IsolationLevel) (sqlmodel.Transaction, error) {
	if _, err := s.Execute(ctx, fmt.Sprintf("SET TRANSACTION ISOLATION LEVEL %s", isolationSQL(level))); err != nil {
		return nil, err
	}
	return s.Begin(ctx)
}

func (s *Shared) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := cnPing(s.raw); err != nil {
		return err
	}
	return nil
}

func cnPing(cn *conn) error {
	cn.pr.resetSeq()
	if err := cn.writePacket([]byte{comPing}); err != nil {
		return err
	}
	pkt, err := cn.readPacket()
	if err != nil {
		return err
	}
	if len(pkt) > 0 && pkt[0] == 0xff {
		return decodeErrPacket(pkt).toError()
	}
	return nil
}

func (s *Shared) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw.quit()
}

// restStateAfterQuery reflects the last OK_Packet's SERVER_STATUS_IN_TRANS
// flag into the public State (spec §3.3), the MySQL analogue of the
// postgres package's transaction-status tracking.
func (cn *conn) restStateAfterQuery() {
	if cn.state == sqlmodel.StateError {
		return
	}
	if cn.statusFlags&serverStatusInTrans != 0 {
		cn.state = sqlmodel.StateInTransaction
	} else {
		cn.state = sqlmodel.StateReady
	}
}
