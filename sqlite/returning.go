package sqlite

import (
	"context"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// hasReturning reports whether sql contains the word RETURNING anywhere,
// case insensitively, the way this driver's emulation path detects when to
// engage (spec §4.4 "RETURNING support").
func hasReturning(sql string) bool {
	return strings.Contains(strings.ToUpper(sql), "RETURNING")
}

// targetTable extracts the table name an INSERT INTO / UPDATE / DELETE FROM
// statement addresses, tolerating a quoted identifier, so a `RETURNING *`
// clause knows which table's PRAGMA table_info(<table>) to consult for
// column names (spec §4.4).
func targetTable(sql string) (string, bool) {
	upper := strings.ToUpper(sql)
	var rest string
	switch {
	case strings.HasPrefix(upper, "INSERT INTO "):
		rest = sql[len("INSERT INTO "):]
	case strings.HasPrefix(upper, "UPDATE "):
		rest = sql[len("UPDATE "):]
	case strings.HasPrefix(upper, "DELETE FROM "):
		rest = sql[len("DELETE FROM "):]
	default:
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	if quoteLike(rest) {
		closer := byte('"')
		switch rest[0] {
		case '`':
			closer = '`'
		case '[':
			closer = ']'
		}
		end := strings.IndexByte(rest[1:], closer)
		if end < 0 {
			return "", false
		}
		return rest[1 : 1+end], true
	}
	end := strings.IndexAny(rest, " \t\n(")
	if end < 0 {
		end = len(rest)
	}
	return rest[:end], true
}

// tableColumns queries PRAGMA table_info(table) for its column names, used
// to relabel the rows of a RETURNING * clause with the table's declared
// column names (spec §4.4). The RETURNING clause itself runs natively, so
// the linked libsqlite3 must be 3.35 or newer.
func (cn *conn) tableColumns(ctx context.Context, table string) ([]string, error) {
	stmt, err := cn.prepare("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, err
	}
	defer stmt.finalize()

	rows, err := stmt.collectRows()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		v, err := r.Get("name")
		if err != nil {
			continue
		}
		s, err := v.Text()
		if err != nil {
			continue
		}
		names = append(names, s)
	}
	return names, nil
}

// isReturningStar reports whether sql's RETURNING clause is exactly
// `RETURNING *`, as opposed to an explicit column list such as
// `RETURNING id` (spec §4.4 "RETURNING support" only relabels columns for
// the `*` case).
func isReturningStar(sql string) bool {
	upper := strings.ToUpper(sql)
	idx := strings.Index(upper, "RETURNING")
	if idx < 0 {
		return false
	}
	return strings.TrimSpace(sql[idx+len("RETURNING"):]) == "*"
}

// emulateReturning runs sql with its RETURNING clause intact through the
// normal prepare/bind/step path — libsqlite3 has supported RETURNING
// natively since 3.35, so the real engine produces the real result rows
// directly, the same way it does for a plain SELECT. The only emulation
// left to do is cosmetic: a bare `RETURNING *` reports its columns as the
// inferred projection sqlite3_column_name gives it, so for that one case
// PRAGMA table_info(<table>) supplies the canonical column names to
// relabel the rows with (spec §4.4). An explicit column list such as
// `RETURNING id` is left exactly as the statement reports it.
func (cn *conn) emulateReturning(ctx context.Context, sql string, params []sqlmodel.Value) ([]sqlmodel.Row, error) {
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

	if !isReturningStar(sql) {
		return rows, nil
	}

	table, ok := targetTable(sql)
	if !ok {
		return nil, sqlmodel.NewQueryError(sqlmodel.QuerySyntax,
			"RETURNING emulation could not determine the target table", nil)
	}
	cols, err := cn.tableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(cols) != rows[0].Len() {
		return rows, nil
	}
	colInfo := sqlmodel.NewColumnInfo(cols)
	relabeled := make([]sqlmodel.Row, len(rows))
	for i, r := range rows {
		relabeled[i] = sqlmodel.NewRow(colInfo, r.Values())
	}
	return relabeled, nil
}
