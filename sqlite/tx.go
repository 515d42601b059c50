package sqlite

import (
	"context"
	"fmt"

	"github.com/sqlmodel-go/sqlmodel"
	"github.com/sqlmodel-go/sqlmodel/internal/ident"
)

// Tx is the SQLite transaction handle. As with postgres.Tx/mysql.Tx, every
// operation re-acquires the shared connection's mutex individually rather
// than holding it for the transaction's whole lifetime (spec §5/§9c).
// SAVEPOINT/RELEASE/ROLLBACK TO are standard SQL that SQLite supports
// natively, so nested savepoints work the same way they do on the other
// two backends.
type Tx struct {
	shared *Shared
	done   bool
}

var _ sqlmodel.TransactionOps = (*Tx)(nil)

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

// Commit and Rollback are idempotent: calling either again after the
// transaction is done returns Query(Database) "not in a transaction"
// without side effects (spec §8.2).
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return t.notInTransaction()
	}
	_, err := t.shared.Execute(ctx, "COMMIT")
	t.done = true
	t.shared.mu.Lock()
	t.shared.inTx = false
	t.shared.mu.Unlock()
	return err
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return t.notInTransaction()
	}
	_, err := t.shared.Execute(ctx, "ROLLBACK")
	t.done = true
	t.shared.mu.Lock()
	t.shared.inTx = false
	t.shared.mu.Unlock()
	return err
}
