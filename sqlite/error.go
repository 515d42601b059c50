package sqlite

import "github.com/sqlmodel-go/sqlmodel"

// Primary SQLite result codes (the low byte of an extended result code),
// per spec §4.4's error-mapping table and sqlite3.h.
const (
	sqliteOK         = 0
	sqliteError      = 1
	sqliteBusy       = 5
	sqliteLocked     = 6
	sqliteNoMem      = 7
	sqliteReadOnly   = 8
	sqliteInterrupt  = 9
	sqliteIOErr      = 10
	sqliteCorrupt    = 11
	sqliteFull       = 13
	sqliteCantOpen   = 14
	sqliteConstraint = 19
	sqliteMismatch   = 20
	sqliteMisuse     = 21
	sqliteTooBig     = 18
	sqliteRow        = 100
	sqliteDone       = 101
)

// decodeSQLiteErr maps a primary result code to this module's taxonomy
// (spec §4.4/§7 "SQLite mapping"): constraint violations, busy/locked
// contention, interrupt-as-cancellation, and truncation each get their own
// QuerySubKind; anything unrecognized falls back to QueryDatabase.
func decodeSQLiteErr(code int, msg string) error {
	switch code {
	case sqliteConstraint:
		return sqlmodel.NewQueryError(sqlmodel.QueryConstraint, msg, &sqlmodel.QueryErrorInfo{Detail: msg})
	case sqliteBusy, sqliteLocked:
		return sqlmodel.NewQueryError(sqlmodel.QueryDeadlock, msg, nil)
	case sqliteInterrupt:
		return sqlmodel.NewQueryError(sqlmodel.QueryCancelled, msg, nil)
	case sqliteTooBig:
		return sqlmodel.NewQueryError(sqlmodel.QueryDataTruncation, msg, nil)
	case sqliteReadOnly, sqliteCantOpen, sqliteIOErr:
		return sqlmodel.NewConnectionError(sqlmodel.ConnConnect, msg, nil)
	case sqliteCorrupt, sqliteNoMem, sqliteFull:
		return sqlmodel.NewQueryError(sqlmodel.QueryDatabase, msg, nil)
	case sqliteMismatch:
		return sqlmodel.NewQueryError(sqlmodel.QuerySyntax, msg, nil)
	default:
		return sqlmodel.NewQueryError(sqlmodel.QueryDatabase, msg, nil)
	}
}
