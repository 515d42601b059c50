package sqlite

import (
	"context"

	"github.com/sqlmodel-go/sqlmodel"
)

// execResult is what runStatement collects for one prepare/bind/step
// sequence, mirroring postgres/query.go's execResult and mysql/textproto.go's
// execResult even though SQLite has neither a wire protocol nor a server
// round trip to drive.
type execResult struct {
	rows     []sqlmodel.Row
	affected uint64
}

// runStatement prepares sql, binds params, steps it to completion, and
// reports rows affected via sqlite3_changes (spec §4.4 "Execute"). A
// RETURNING clause is detected up front and handed off to emulateReturning
// in returning.go, which runs the statement natively and, for RETURNING *,
// relabels the columns from PRAGMA table_info; affected is then the number
// of rows returned.
func (cn *conn) runStatement(ctx context.Context, sql string, params []sqlmodel.Value) (*execResult, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	if hasReturning(sql) {
		rows, err := cn.emulateReturning(ctx, sql, params)
		if err != nil {
			return nil, err
		}
		return &execResult{rows: rows, affected: uint64(len(rows))}, nil
	}

	stmt, err := cn.prepare(sql)
	if err != nil {
		return nil, err
	}
	defer stmt.finalize()

	if err := stmt.bindArgs(params); err != nil {
		return nil, err
	}
	rows, err := stmt.collectRows()
	if err != nil {
		return nil, err
	}

	return &execResult{rows: rows, affected: uint64(cn.changes())}, nil
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return sqlmodel.NewQueryError(sqlmodel.QueryCancelled, ctx.Err().Error(), nil)
	default:
		return nil
	}
}

// countPlaceholders counts '?' parameter markers in sql, used to populate
// PreparedStatement.ParamCount the way mysql/shared.go's countPlaceholders
// does for its own bare-'?' dialect.
func countPlaceholders(sql string) int {
	n := 0
	inLiteral := false
	for _, c := range sql {
		switch c {
		case '\'':
			inLiteral = !inLiteral
		case '?':
			if !inLiteral {
				n++
			}
		}
	}
	return n
}
