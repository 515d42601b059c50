package postgres

import (
	"context"
	"fmt"

	"github.com/sqlmodel-go/sqlmodel"
	"github.com/sqlmodel-go/sqlmodel/internal/ident"
)

// isolationSQL maps IsolationLevel to PostgreSQL's SET TRANSACTION ISOLATION
// LEVEL variant (spec §4.1 table).
func isolationSQL(level sqlmodel.IsolationLevel) string {
	switch level {
	case sqlmodel.Serializable:
		return "SERIALIZABLE"
	case sqlmodel.RepeatableRead:
		return "REPEATABLE READ"
	case sqlmodel.ReadCommitted:
		return "READ COMMITTED"
	case sqlmodel.ReadUncommitted:
		return "READ UNCOMMITTED"
	default:
		return "READ COMMITTED"
	}
}

// Tx is the transaction handle returned by Shared.Begin/BeginWith. It
// holds a reference to the Shared wrapper (spec §5: "the returned
// transaction handle holds a clone of the refcount") and re-acquires the
// mutex per operation rather than holding it for the transaction's whole
// lifetime — the known limitation recorded in spec §5/§9(c).
type Tx struct {
	shared *Shared
	done   bool
}

func (t *Tx) notInTransaction() error {
	return sqlmodel.NewQueryError(sqlmodel.QueryDatabase, "not in a transaction", nil)
}

func (t *Tx) Query(ctx context.Context, sql string, params ...sqlmodel.Value) ([]sqlmodel.Row, error) {
	if t.done {
		return nil, t.notInTransaction()
	}
	return t.shared.Query(ctx, sql, params...)
}

func (t *Tx) QueryOne(ctx context.Context, sql string, params ...sqlmodel.Value) (*sqlmodel.Row, error) {
	if t.done {
		return nil, t.notInTransaction()
	}
	return t.shared.QueryOne(ctx, sql, params...)
}

func (t *Tx) Execute(ctx context.Context, sql string, params ...sqlmodel.Value) (uint64, error) {
	if t.done {
		return 0, t.notInTransaction()
	}
	return t.shared.Execute(ctx, sql, params...)
}

func (t *Tx) Savepoint(ctx context.Context, name string) error {
	if t.done {
		return t.notInTransaction()
	}
	if err := ident.ValidateSavepointName(name); err != nil {
		return sqlmodel.NewQueryError(sqlmodel.QuerySyntax, err.Error(), nil)
	}
	_, err := t.shared.Execute(ctx, fmt.Sprintf("SAVEPOINT %s", name))
	return err
}

func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	if t.done {
		return t.notInTransaction()
	}
	if err := ident.ValidateSavepointName(name); err != nil {
		return sqlmodel.NewQueryError(sqlmodel.QuerySyntax, err.Error(), nil)
	}
	_, err := t.shared.Execute(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name))
	return err
}

func (t *Tx) Release(ctx context.Context, name string) error {
	if t.done {
		return t.notInTransaction()
	}
	if err := ident.ValidateSavepointName(name); err != nil {
		return sqlmodel.NewQueryError(sqlmodel.QuerySyntax, err.Error(), nil)
	}
	_, err := t.shared.Execute(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", name))
	return err
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return t.notInTransaction()
	}
	_, err := t.shared.Execute(ctx, "COMMIT")
	t.done = true
	return err
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return t.notInTransaction()
	}
	_, err := t.shared.Execute(ctx, "ROLLBACK")
	t.done = true
	return err
}
