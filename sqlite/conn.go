package sqlite

/*
#cgo LDFLAGS: -lsqlite3
#include <sqlite3.h>
#include <stdlib.h>

// SQLITE_TRANSIENT is a (void(*)(void*))(-1) macro constant that cgo
// cannot translate directly, so these small wrappers pass it through
// from C.
static int my_bind_text(sqlite3_stmt *stmt, int i, const char *s, int n) {
	return sqlite3_bind_text(stmt, i, s, n, SQLITE_TRANSIENT);
}

static int my_bind_blob(sqlite3_stmt *stmt, int i, const void *b, int n) {
	return sqlite3_bind_blob(stmt, i, b, n, SQLITE_TRANSIENT);
}
*/
import "C"

import (
	"context"
	"strings"
	"unsafe"

	"github.com/sqlmodel-go/sqlmodel"
)

// conn is the raw cgo-backed SQLite connection (spec §4.4, §6.3). Unlike
// postgres/mysql there is no wire protocol: every operation is a direct
// call into libsqlite3 through the C API enumerated there.
type conn struct {
	cfg    Config
	db     *C.sqlite3
	logger sqlmodel.Logger
	state  sqlmodel.State
}

// Dial opens the database file (or ":memory:") and applies the pragmas
// from Config (spec §4.4 "Connect"), following the same open-then-exec-
// pragmas sequence as maragudk/sqlite's Open.
func Dial(ctx context.Context, cfg Config) (*conn, error) {
	cfg = cfg.withDefaults()

	cn := &conn{cfg: cfg, logger: sqlmodel.NopLogger, state: sqlmodel.StateConnecting}

	cPath := C.CString(cfg.Path)
	defer C.free(unsafe.Pointer(cPath))

	var db *C.sqlite3
	flags := C.int(C.SQLITE_OPEN_READWRITE | C.SQLITE_OPEN_CREATE | C.SQLITE_OPEN_FULLMUTEX)
	rc := C.sqlite3_open_v2(cPath, &db, flags, nil)
	if rc != C.SQLITE_OK {
		msg := "failed to open sqlite database"
		if db != nil {
			msg = errString(db)
			C.sqlite3_close_v2(db)
		}
		cn.state = sqlmodel.StateError
		return nil, sqlmodel.NewConnectionError(sqlmodel.ConnConnect, msg, nil)
	}
	cn.db = db

	if err := cn.applyPragmas(); err != nil {
		C.sqlite3_close_v2(db)
		cn.state = sqlmodel.StateError
		return nil, err
	}

	cn.state = sqlmodel.StateReady
	return cn, nil
}

func (cn *conn) applyPragmas() error {
	stmts := []string{"PRAGMA busy_timeout = " + itoa(cn.cfg.BusyTimeoutMillis)}
	if cn.cfg.ForeignKeys != nil && *cn.cfg.ForeignKeys {
		stmts = append(stmts, "PRAGMA foreign_keys = ON")
	}
	if cn.cfg.JournalModeWAL {
		stmts = append(stmts, "PRAGMA journal_mode = WAL")
	}
	for _, s := range stmts {
		if err := cn.execDirect(s); err != nil {
			return err
		}
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// execDirect runs a statement with no parameters and no result rows via
// sqlite3_exec, used only for pragmas at connect time.
func (cn *conn) execDirect(sql string) error {
	cSQL := C.CString(sql)
	defer C.free(unsafe.Pointer(cSQL))
	var errMsg *C.char
	rc := C.sqlite3_exec(cn.db, cSQL, nil, nil, &errMsg)
	if rc != C.SQLITE_OK {
		msg := C.GoString(errMsg)
		C.sqlite3_free(unsafe.Pointer(errMsg))
		return wrapErrorCode(rc, msg)
	}
	return nil
}

func (cn *conn) WithLogger(l sqlmodel.Logger) { cn.logger = l }

func (cn *conn) close() error {
	if cn.db == nil {
		return nil
	}
	rc := C.sqlite3_close_v2(cn.db)
	cn.db = nil
	cn.state = sqlmodel.StateClosed
	if rc != C.SQLITE_OK {
		return sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "close failed", nil)
	}
	return nil
}

// statement wraps a prepared sqlite3_stmt* and the column names captured
// at prepare time, mirroring maragudk/sqlite's own statement/columnNames
// pair.
type statement struct {
	stmt    *C.sqlite3_stmt
	columns []string
}

func (cn *conn) prepare(sql string) (*statement, error) {
	cSQL := C.CString(sql)
	defer C.free(unsafe.Pointer(cSQL))

	var stmt *C.sqlite3_stmt
	rc := C.sqlite3_prepare_v2(cn.db, cSQL, C.int(len(sql)+1), &stmt, nil)
	if rc != C.SQLITE_OK {
		return nil, wrapError(cn.db, rc)
	}

	n := int(C.sqlite3_column_count(stmt))
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		cols[i] = C.GoString(C.sqlite3_column_name(stmt, C.int(i)))
	}
	return &statement{stmt: stmt, columns: cols}, nil
}

func (s *statement) finalize() {
	if s.stmt != nil {
		C.sqlite3_finalize(s.stmt)
		s.stmt = nil
	}
}

// bindArgs binds params in order (1-indexed in the C API), dispatching on
// sqlmodel.Value.Kind the way maragudk/sqlite's own bindArgs type-switches
// on driver.Value (spec §4.4 parameter binding).
func (s *statement) bindArgs(params []sqlmodel.Value) error {
	for i, p := range params {
		idx := C.int(i + 1)
		var rc C.int
		switch {
		case p.IsNull():
			rc = C.sqlite3_bind_null(s.stmt, idx)
		case p.Kind() == sqlmodel.KindBool:
			b, _ := p.Bool()
			n := int64(0)
			if b {
				n = 1
			}
			rc = C.sqlite3_bind_int64(s.stmt, idx, C.sqlite3_int64(n))
		case p.Kind() == sqlmodel.KindTinyInt, p.Kind() == sqlmodel.KindSmallInt,
			p.Kind() == sqlmodel.KindInt, p.Kind() == sqlmodel.KindBigInt:
			n, _ := p.Int64()
			rc = C.sqlite3_bind_int64(s.stmt, idx, C.sqlite3_int64(n))
		case p.Kind() == sqlmodel.KindFloat:
			f, _ := p.Float32()
			rc = C.sqlite3_bind_double(s.stmt, idx, C.double(f))
		case p.Kind() == sqlmodel.KindDouble:
			f, _ := p.Float64()
			rc = C.sqlite3_bind_double(s.stmt, idx, C.double(f))
		case p.Kind() == sqlmodel.KindBytes:
			b, _ := p.Bytes()
			if len(b) == 0 {
				rc = C.sqlite3_bind_zeroblob(s.stmt, idx, 0)
			} else {
				rc = C.my_bind_blob(s.stmt, idx, unsafe.Pointer(&b[0]), C.int(len(b)))
			}
		default:
			text := encodeText(p)
			cText := C.CString(text)
			rc = C.my_bind_text(s.stmt, idx, cText, C.int(len(text)))
			C.free(unsafe.Pointer(cText))
		}
		if rc != C.SQLITE_OK {
			return sqlmodel.NewProtocolError("failed to bind parameter", nil)
		}
	}
	return nil
}

// collectRows steps the statement to completion, collecting every row (spec §4.4
// result materialization is eager, matching the rest of this module's
// []Row-returning Query contract rather than a streaming cursor).
func (s *statement) collectRows() ([]sqlmodel.Row, error) {
	cols := sqlmodel.NewColumnInfo(s.columns)
	var rows []sqlmodel.Row
	for {
		rc := C.sqlite3_step(s.stmt)
		switch rc {
		case C.SQLITE_DONE:
			return rows, nil
		case C.SQLITE_ROW:
			vals := make([]sqlmodel.Value, len(s.columns))
			for i := range s.columns {
				vals[i] = columnValue(s.stmt, C.int(i))
			}
			rows = append(rows, sqlmodel.NewRow(cols, vals))
		default:
			return rows, wrapErrorCode(rc, "")
		}
	}
}

// columnValue decodes one result column per sqlite3_column_type dispatch,
// mirroring maragudk/sqlite's own rows.Next() switch.
func columnValue(stmt *C.sqlite3_stmt, i C.int) sqlmodel.Value {
	switch C.sqlite3_column_type(stmt, i) {
	case C.SQLITE_INTEGER:
		return sqlmodel.NewBigInt(int64(C.sqlite3_column_int64(stmt, i)))
	case C.SQLITE_FLOAT:
		return sqlmodel.NewDouble(float64(C.sqlite3_column_double(stmt, i)))
	case C.SQLITE_BLOB:
		n := int(C.sqlite3_column_bytes(stmt, i))
		if n == 0 {
			return sqlmodel.NewBytes(nil)
		}
		p := C.sqlite3_column_blob(stmt, i)
		b := C.GoBytes(p, C.int(n))
		return sqlmodel.NewBytes(b)
	case C.SQLITE_TEXT:
		n := int(C.sqlite3_column_bytes(stmt, i))
		p := unsafe.Pointer(C.sqlite3_column_text(stmt, i))
		s := C.GoStringN((*C.char)(p), C.int(n))
		return sqlmodel.NewText(s)
	default: // SQLITE_NULL
		return sqlmodel.Null()
	}
}

func (cn *conn) lastInsertID() int64 {
	return int64(C.sqlite3_last_insert_rowid(cn.db))
}

func (cn *conn) changes() int64 {
	return int64(C.sqlite3_changes(cn.db))
}

func errString(db *C.sqlite3) string {
	return C.GoString((*C.char)(unsafe.Pointer(C.sqlite3_errmsg(db))))
}

func wrapError(db *C.sqlite3, rc C.int) error {
	return wrapErrorCode(rc, errString(db))
}

func wrapErrorCode(rc C.int, msg string) error {
	if msg == "" {
		msg = C.GoString(C.sqlite3_errstr(rc))
	}
	return decodeSQLiteErr(int(rc&0xff), msg)
}

// quoteLike reports whether s looks like it already carries SQL quoting,
// used by returning.go's INSERT-target detection.
func quoteLike(s string) bool {
	return strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "`") || strings.HasPrefix(s, "[")
}
