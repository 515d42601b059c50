package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// execResult is what runExtended collects across one Parse/Bind/Describe/
// Execute/Sync round trip (spec §4.2 "Extended query").
type execResult struct {
	cols     *sqlmodel.ColumnInfo
	colOIDs  []oid
	rows     []sqlmodel.Row
	affected uint64
}

// runExtended drives the extended-query sequence for an unnamed portal
// and statement: Parse("", sql, []) -> Bind("", "", text, params, []) ->
// Describe(Portal, "") -> Execute("", 0) -> Sync, reading until exactly
// one ReadyForQuery (spec §8.1).
func (cn *conn) runExtended(ctx context.Context, sql string, params []sqlmodel.Value) (*execResult, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	if err := cn.sendParse("", sql, nil); err != nil {
		return nil, err
	}
	if err := cn.sendBind("", "", params); err != nil {
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

func (cn *conn) sendParse(name, sql string, paramOIDs []oid) error {
	w := newWriteBuf()
	w.string(name)
	w.string(sql)
	w.int16(int16(len(paramOIDs)))
	for _, o := range paramOIDs {
		w.int32(int32(o))
	}
	return cn.send(msgParseP, w)
}

func (cn *conn) sendBind(portal, stmt string, params []sqlmodel.Value) error {
	w := newWriteBuf()
	w.string(portal)
	w.string(stmt)

	// All parameters use text format (spec §4.2 "Parameter format choice").
	w.int16(1)
	w.int16(0)

	w.int16(int16(len(params)))
	for _, p := range params {
		s, isNull := encodeText(p)
		if isNull {
			w.int32(-1)
			continue
		}
		w.int32(int32(len(s)))
		w.bytes([]byte(s))
	}

	w.int16(1)
	w.int16(0)
	return cn.send(msgBindB, w)
}

func (cn *conn) sendDescribe(kind byte, name string) error {
	w := newWriteBuf()
	w.byte(kind)
	w.string(name)
	return cn.send(msgDescribeD, w)
}

func (cn *conn) sendExecute(portal string, maxRows int32) error {
	w := newWriteBuf()
	w.string(portal)
	w.int32(maxRows)
	return cn.send(msgExecuteE, w)
}

func (cn *conn) sendSync() error {
	return cn.send(msgSyncS, newWriteBuf())
}

// readExtendedResults reads backend messages until ReadyForQuery,
// populating an execResult. An ErrorResponse aborts the whole sequence
// with the mapped error (spec §4.2, §7).
func (cn *conn) readExtendedResults() (*execResult, error) {
	res := &execResult{}
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
		case msgParseComplete1, msgBindComplete2, msgNoDatan, msgEmptyQueryResponseI,
			msgPortalSuspendeds, msgNotificationResponseA:
			// no-op acknowledgements
		case msgParameterDescriptiont:
			// captured separately by prepared.go's Describe(Statement, ...)
		case msgRowDescriptionT:
			names, oids := decodeRowDescription(r)
			res.cols = sqlmodel.NewColumnInfo(names)
			res.colOIDs = oids
		case msgDataRowD:
			row, err := cn.decodeDataRow(res.cols, res.colOIDs, r)
			if err != nil {
				pendingErr = err
				continue
			}
			res.rows = append(res.rows, row)
		case msgCommandCompleteC:
			tagStr, _ := r.string()
			res.affected = parseCommandTag(tagStr)
		case msgReadyForQueryZ:
			cn.txStatus = r.byte()
			return res, pendingErr
		default:
			return nil, sqlmodel.NewProtocolError(fmt.Sprintf("unexpected message %q in extended query", tag), nil)
		}
	}
}

func decodeRowDescription(r readBuf) ([]string, []oid) {
	n := r.int16()
	names := make([]string, n)
	oids := make([]oid, n)
	for i := 0; i < int(n); i++ {
		name, _ := r.string()
		names[i] = name
		r.int32() // table OID
		r.int16() // column attr number
		oids[i] = oid(r.uint32())
		r.int16() // type size
		r.int32() // type modifier
		r.int16() // format code
	}
	return names, oids
}

func (cn *conn) decodeDataRow(cols *sqlmodel.ColumnInfo, oids []oid, r readBuf) (sqlmodel.Row, error) {
	n := r.int16()
	vals := make([]sqlmodel.Value, n)
	for i := 0; i < int(n); i++ {
		l := r.int32()
		if l < 0 {
			vals[i] = sqlmodel.Null()
			continue
		}
		raw := r.next(int(l))
		v, err := decodeText(oids[i], raw)
		if err != nil {
			return sqlmodel.Row{}, err
		}
		vals[i] = v
	}
	return sqlmodel.NewRow(cols, vals), nil
}

// parseCommandTag extracts the trailing row count from a CommandComplete
// tag (spec §4.2): "INSERT 0 N" -> N; "UPDATE N"/"DELETE N"/"SELECT N" -> N.
func parseCommandTag(tag string) uint64 {
	fields := strings.Fields(tag)
	if len(fields) == 0 {
		return 0
	}
	last := fields[len(fields)-1]
	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return sqlmodel.NewQueryError(sqlmodel.QueryCancelled, "context cancelled", nil)
	default:
		return nil
	}
}
