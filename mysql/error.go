package mysql

import (
	"fmt"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// protocolErrf builds a protocol-level error for malformed packets — these
// never reach a real server's SQLSTATE, so they are reported as Protocol
// errors the way lib-pq treats a broken startup sequence.
func protocolErrf(format string, args ...any) error {
	return sqlmodel.NewProtocolError(fmt.Sprintf(format, args...), nil)
}

// errPacket is a decoded ERR_Packet (protocol docs §14.1.3.2).
type errPacket struct {
	code     uint16
	sqlstate string
	message  string
}

func decodeErrPacket(payload []byte) errPacket {
	var e errPacket
	if len(payload) < 3 {
		return e
	}
	rest := payload[1:] // skip 0xff header
	e.code = uint16(rest[0]) | uint16(rest[1])<<8
	rest = rest[2:]
	if len(rest) > 0 && rest[0] == '#' {
		if len(rest) >= 6 {
			e.sqlstate = string(rest[1:6])
			rest = rest[6:]
		}
	}
	e.message = string(rest)
	return e
}

func (e errPacket) toError() error {
	if sub, ok := connSubKindForCode(e.code); ok {
		return sqlmodel.NewConnectionError(sub, fmt.Sprintf("mysql error %d (%s): %s", e.code, e.sqlstate, e.message), nil)
	}
	kind := querySubKindForCode(e.code, e.sqlstate)
	return sqlmodel.NewQueryError(kind, fmt.Sprintf("mysql error %d (%s): %s", e.code, e.sqlstate, e.message), &sqlmodel.QueryErrorInfo{SQLState: e.sqlstate})
}

// querySubKindForCode maps the MySQL error-number space (and fallback
// SQLSTATE class) onto the shared QuerySubKind taxonomy (spec §7).
func querySubKindForCode(code uint16, sqlstate string) sqlmodel.QuerySubKind {
	switch code {
	case 1044, 1045, 1142, 1143, 1227: // access-denied family
		return sqlmodel.QueryDatabase
	case 1048, 1062, 1451, 1452, 1216, 1217: // constraint violations
		return sqlmodel.QueryConstraint
	case 1064, 1149: // syntax errors
		return sqlmodel.QuerySyntax
	case 1213: // deadlock found when trying to get lock
		return sqlmodel.QueryDeadlock
	case 1205: // lock wait timeout
		return sqlmodel.QueryTimeout
	case 1317: // query execution was interrupted
		return sqlmodel.QueryCancelled
	case 1406: // data too long for column
		return sqlmodel.QueryDataTruncation
	}
	switch {
	case strings.HasPrefix(sqlstate, "23"):
		return sqlmodel.QueryConstraint
	case strings.HasPrefix(sqlstate, "42"):
		return sqlmodel.QuerySyntax
	case strings.HasPrefix(sqlstate, "40"):
		return sqlmodel.QueryDeadlock
	}
	return sqlmodel.QueryDatabase
}

func connSubKindForCode(code uint16) (sqlmodel.ConnectionSubKind, bool) {
	switch code {
	case 1042, 2002, 2003, 2013: // can't connect / server gone / lost connection
		return sqlmodel.ConnConnect, true
	case 1045, 1130: // access denied
		return sqlmodel.ConnAuthentication, true
	}
	return 0, false
}
