package postgres

import (
	"context"
	"fmt"

	"github.com/sqlmodel-go/sqlmodel"
)

// prepare implements spec §4.2 "Prepared statements": Parse(named, sql,
// []) + Describe(Statement, named) + Sync, capturing ParameterDescription
// and RowDescription.
func (cn *conn) prepare(ctx context.Context, sql string) (*sqlmodel.PreparedStatement, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	cn.nextStmtID++
	name := fmt.Sprintf("sqlmodel_stmt_%d", cn.nextStmtID)

	if err := cn.sendParse(name, sql, nil); err != nil {
		return nil, err
	}
	if err := cn.sendDescribe(describeStatement, name); err != nil {
		return nil, err
	}
	if err := cn.sendSync(); err != nil {
		return nil, err
	}

	var paramOIDs []oid
	var colNames []string
	var pendingErr error

	for {
		tag, r, err := cn.recv()
		if err != nil {
			if tag == msgErrorResponseE {
				pendingErr = err
				continue
			}
			return nil, err
		}
		switch tag {
		case msgParseComplete1:
		case msgParameterDescriptiont:
			n := r.int16()
			paramOIDs = make([]oid, n)
			for i := 0; i < int(n); i++ {
				paramOIDs[i] = oid(r.uint32())
			}
		case msgRowDescriptionT:
			colNames, _ = decodeRowDescription(r)
		case msgNoDatan:
		case msgReadyForQueryZ:
			cn.txStatus = r.byte()
			if pendingErr != nil {
				return nil, pendingErr
			}
			hints := make([]string, len(paramOIDs))
			for i, o := range paramOIDs {
				hints[i] = oidTypeName(o)
			}
			return &sqlmodel.PreparedStatement{
				ID:          name,
				SQL:         sql,
				ParamCount:  len(paramOIDs),
				ParamHints:  hints,
				ColumnNames: colNames,
			}, nil
		default:
			return nil, sqlmodel.NewProtocolError(fmt.Sprintf("unexpected message %q preparing statement", tag), nil)
		}
	}
}

// execPrepared runs Bind(portal="", statement=name, ...) + Describe +
// Execute + Sync, skipping Parse (spec §4.2). Parameter count is
// validated locally before transmission (spec §4.1 "wrong count is
// rejected locally"); parameter type hints captured at prepare time are
// checked for gross incompatibility (e.g. text value bound against an
// integer OID) before sending anything.
func (cn *conn) execPrepared(ctx context.Context, stmt *sqlmodel.PreparedStatement, params []sqlmodel.Value) (*execResult, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if len(params) != stmt.ParamCount {
		return nil, sqlmodel.NewQueryError(sqlmodel.QuerySyntax,
			fmt.Sprintf("expected %d parameters, got %d", stmt.ParamCount, len(params)), nil)
	}
	for i, p := range params {
		if i < len(stmt.ParamHints) {
			if err := checkParamCompatible(stmt.ParamHints[i], p); err != nil {
				return nil, err
			}
		}
	}

	if err := cn.sendBind("", stmt.ID, params); err != nil {
		return nil, err
	}
	if err := cn.sendDescribe(describePortal, ""); err != nil {
		return nil, err
	}
	if err := cn.sendExecute("", 0); err != nil {
		return nil, err
	}
	if err := cn.sendSync(); err != nil {
		return nil, err
	}
	return cn.readExtendedResults()
}

func oidTypeName(o oid) string {
	switch o {
	case oidBool:
		return "bool"
	case oidInt2:
		return "int2"
	case oidInt4:
		return "int4"
	case oidInt8:
		return "int8"
	case oidFloat4:
		return "float4"
	case oidFloat8:
		return "float8"
	case oidText, oidVarchar, oidName:
		return "text"
	case oidBytea:
		return "bytea"
	case oidDate:
		return "date"
	case oidTime:
		return "time"
	case oidTimestamp:
		return "timestamp"
	case oidTimestampTz:
		return "timestamptz"
	case oidUUID:
		return "uuid"
	case oidJSON, oidJSONB:
		return "json"
	default:
		return "unknown"
	}
}

// checkParamCompatible rejects an obviously incompatible parameter (e.g.
// Text bound against an integer OID) before any bytes go over the wire
// (spec §8.4 scenario 4).
func checkParamCompatible(hint string, v sqlmodel.Value) error {
	if v.IsNull() {
		return nil
	}
	switch hint {
	case "int2", "int4", "int8":
		if v.Kind() != sqlmodel.KindTinyInt && v.Kind() != sqlmodel.KindSmallInt &&
			v.Kind() != sqlmodel.KindInt && v.Kind() != sqlmodel.KindBigInt {
			return sqlmodel.NewQueryError(sqlmodel.QuerySyntax,
				fmt.Sprintf("parameter type mismatch: expected integer, got %s", v.Kind()), nil)
		}
	case "bool":
		if v.Kind() != sqlmodel.KindBool {
			return sqlmodel.NewQueryError(sqlmodel.QuerySyntax,
				fmt.Sprintf("parameter type mismatch: expected bool, got %s", v.Kind()), nil)
		}
	}
	return nil
}
