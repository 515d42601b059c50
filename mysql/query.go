package mysql

import (
	"context"

	"github.com/sqlmodel-go/sqlmodel"
)

// runInterpolated interpolates params into sql client-side and runs it as
// a single text-protocol COM_QUERY (spec §4.3). Used by both direct
// execution and prepared-statement execution, since this driver's
// PreparedStatement handle holds only the SQL string (spec §4.1 "Other
// backends return a handle holding only the SQL string").
func (cn *conn) runInterpolated(ctx context.Context, sql string, params []sqlmodel.Value) (*execResult, error) {
	rendered, err := interpolate(sql, params)
	if err != nil {
		return nil, err
	}
	return cn.runQuery(ctx, rendered)
}

func rowsFromResult(res *execResult) []sqlmodel.Row {
	if !res.isQuery {
		return nil
	}
	names := make([]string, len(res.columns))
	for i, c := range res.columns {
		names[i] = c.name
	}
	cols := sqlmodel.NewColumnInfo(names)
	rows := make([]sqlmodel.Row, len(res.rows))
	for i, vals := range res.rows {
		rows[i] = sqlmodel.NewRow(cols, vals)
	}
	return rows
}
