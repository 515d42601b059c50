package sqlmodel

import "context"

// State is a driver's connection state (spec §3.3).
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateReady
	StateInQuery
	StateInTransaction
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateReady:
		return "Ready"
	case StateInQuery:
		return "InQuery"
	case StateInTransaction:
		return "InTransaction"
	case StateError:
		return "Error"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// IsolationLevel is dialect-mapped per spec §4.1.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota
	ReadCommitted
	RepeatableRead
	Serializable
)

func (l IsolationLevel) String() string {
	switch l {
	case ReadUncommitted:
		return "ReadUncommitted"
	case ReadCommitted:
		return "ReadCommitted"
	case RepeatableRead:
		return "RepeatableRead"
	case Serializable:
		return "Serializable"
	default:
		return "Unknown"
	}
}

// PreparedStatement is the opaque handle described in spec §3.4. Lifetime
// is bound to the connection that issued it; reuse across connections is
// undefined behavior, not a checked error.
type PreparedStatement struct {
	ID          string
	SQL         string
	ParamCount  int
	ParamHints  []string // driver-specific type hint per parameter, if known
	ColumnNames []string // result column names, if known ahead of execution
}

// Batch is one (sql, params) pair submitted to Connection.Batch.
type Batch struct {
	SQL    string
	Params []Value
}

// Logger is the ambient structured-logging seam every driver accepts.
// The zero value of any implementation that no-ops on every call is the
// default; see NopLogger.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

// NopLogger is a Logger that discards everything.
var NopLogger Logger = nopLogger{}

// Connection is the uniform asynchronous contract every driver implements
// (spec §4.1). context.Context is this module's concrete realization of
// an external cancellation-reason contract: ctx.Done()/ctx.Err() plays
// that role, which is why none of these methods take a separate
// cancellation token.
type Connection interface {
	Query(ctx context.Context, sql string, params ...Value) ([]Row, error)
	QueryOne(ctx context.Context, sql string, params ...Value) (*Row, error)
	Execute(ctx context.Context, sql string, params ...Value) (uint64, error)
	Insert(ctx context.Context, sql string, params ...Value) (int64, error)
	Batch(ctx context.Context, batches []Batch) ([]uint64, error)

	Prepare(ctx context.Context, sql string) (*PreparedStatement, error)
	QueryPrepared(ctx context.Context, stmt *PreparedStatement, params ...Value) ([]Row, error)
	ExecutePrepared(ctx context.Context, stmt *PreparedStatement, params ...Value) (uint64, error)

	Begin(ctx context.Context) (Transaction, error)
	BeginWith(ctx context.Context, level IsolationLevel) (Transaction, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	State() State
}

// TransactionOps is the operation surface exposed inside a transaction
// (spec §4.1). Commit and Rollback consume the handle: calling either a
// second time, or calling one after the other already ran, returns
// Query(Database) "not in a transaction" without side effects (spec §8.2).
type TransactionOps interface {
	Query(ctx context.Context, sql string, params ...Value) ([]Row, error)
	QueryOne(ctx context.Context, sql string, params ...Value) (*Row, error)
	Execute(ctx context.Context, sql string, params ...Value) (uint64, error)

	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transaction is the handle returned by Begin/BeginWith.
type Transaction interface {
	TransactionOps
}
