package postgres

import (
	"strconv"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// decodeError parses an ErrorResponse payload into a *sqlmodel.Error per
// spec §7's SQLSTATE-prefix mapping table.
func (cn *conn) decodeError(r readBuf) error {
	fields := map[byte]string{}
	for len(r) > 0 {
		code := r.byte()
		if code == 0 {
			break
		}
		s, err := r.string()
		if err != nil {
			break
		}
		fields[code] = s
	}

	sqlstate := fields['C']
	message := fields['M']
	detail := fields['D']
	hint := fields['H']
	position, _ := strconv.Atoi(fields['P'])

	if connSub, ok := sqlstateToConnSubKind(sqlstate); ok {
		return sqlmodel.NewConnectionError(connSub, message, nil)
	}

	return sqlmodel.NewQueryError(sqlstateToQuerySubKind(sqlstate), message, &sqlmodel.QueryErrorInfo{
		SQLState: sqlstate,
		Detail:   detail,
		Hint:     hint,
		Position: position,
	})
}

// sqlstateToConnSubKind handles the two SQLSTATE classes spec §7 maps to
// Connection errors rather than Query errors.
func sqlstateToConnSubKind(sqlstate string) (sqlmodel.ConnectionSubKind, bool) {
	switch {
	case strings.HasPrefix(sqlstate, "08"):
		return sqlmodel.ConnConnect, true
	case strings.HasPrefix(sqlstate, "28"):
		return sqlmodel.ConnAuthentication, true
	default:
		return 0, false
	}
}

func sqlstateToQuerySubKind(sqlstate string) sqlmodel.QuerySubKind {
	switch {
	case strings.HasPrefix(sqlstate, "42"):
		return sqlmodel.QuerySyntax
	case strings.HasPrefix(sqlstate, "23"):
		return sqlmodel.QueryConstraint
	case sqlstate == "40001":
		return sqlmodel.QuerySerialization
	case strings.HasPrefix(sqlstate, "40"):
		return sqlmodel.QueryDeadlock
	case sqlstate == "57014":
		return sqlmodel.QueryCancelled
	case strings.HasPrefix(sqlstate, "57"):
		return sqlmodel.QueryTimeout
	default:
		return sqlmodel.QueryDatabase
	}
}
