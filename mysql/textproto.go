package mysql

import (
	"context"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

const (
	serverStatusInTrans = 0x0001
)

// okPacket is a decoded OK_Packet (protocol docs §14.1.3.1).
type okPacket struct {
	affectedRows uint64
	lastInsertID uint64
	statusFlags  uint16
	warnings     uint16
}

func decodeOKPacket(pkt []byte, caps uint32) okPacket {
	var ok okPacket
	rest := pkt[1:]
	ar, _, n := readLenEncInt(rest)
	ok.affectedRows = ar
	rest = rest[n:]
	li, _, n := readLenEncInt(rest)
	ok.lastInsertID = li
	rest = rest[n:]
	if caps&capProtocol41 != 0 && len(rest) >= 4 {
		ok.statusFlags = uint16(rest[0]) | uint16(rest[1])<<8
		ok.warnings = uint16(rest[2]) | uint16(rest[3])<<8
	}
	return ok
}

// isEOFPacket distinguishes a legacy EOF_Packet from the superficially
// similar 0xfe-prefixed "OK with header 0xFE" sent when CLIENT_DEPRECATE_EOF
// is negotiated: an EOF is always < 9 bytes (spec §3.3 supplement).
func isEOFPacket(pkt []byte) bool {
	return len(pkt) > 0 && pkt[0] == 0xfe && len(pkt) < 9
}

// execResult is the parsed outcome of a text-protocol COM_QUERY.
type execResult struct {
	columns []columnDef
	rows    [][]sqlmodel.Value
	ok      okPacket
	isQuery bool
}

// runQuery sends COM_QUERY with sql (parameters already interpolated by
// the caller per spec §4.3) and parses the dispatched response: an
// OK_Packet, an ERR_Packet, or a full result set.
func (cn *conn) runQuery(ctx context.Context, sql string) (*execResult, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	cn.pr.resetSeq()
	payload := append([]byte{comQuery}, []byte(sql)...)
	if err := cn.writePacket(payload); err != nil {
		return nil, err
	}

	first, err := cn.readPacket()
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, sqlmodel.NewProtocolError("empty query response packet", nil)
	}

	switch first[0] {
	case 0x00:
		ok := cn.consumeOKPacket(first)
		return &execResult{ok: ok}, nil
	case 0xff:
		return nil, decodeErrPacket(first).toError()
	case 0xfb:
		// LOCAL INFILE request: the server wants the client to stream a
		// local file's contents back as the query's data (spec §4.3).
		// Falling through to readResultSet would misparse this packet as
		// a column-count length-encoded integer (0xfb is also the
		// length-encoded NULL sentinel), silently yielding a bogus empty
		// result set instead of failing.
		return nil, sqlmodel.NewQueryError(sqlmodel.QueryDatabase,
			"LOCAL INFILE requests are not supported by this driver", nil)
	default:
		return cn.readResultSet(ctx, first)
	}
}

// readResultSet parses the column-count packet (already read into first),
// the column definitions, an optional intermediate EOF (when
// CLIENT_DEPRECATE_EOF was not negotiated), and the row packets.
func (cn *conn) readResultSet(ctx context.Context, first []byte) (*execResult, error) {
	colCount, _, _ := readLenEncInt(first)

	res := &execResult{isQuery: true, columns: make([]columnDef, 0, colCount)}
	for i := uint64(0); i < colCount; i++ {
		pkt, err := cn.readPacket()
		if err != nil {
			return nil, err
		}
		res.columns = append(res.columns, decodeColumnDef(pkt))
	}

	deprecateEOF := cn.capabilities&capDeprecateEOF != 0
	if !deprecateEOF {
		pkt, err := cn.readPacket()
		if err != nil {
			return nil, err
		}
		if !isEOFPacket(pkt) {
			return nil, sqlmodel.NewProtocolError("expected EOF after column definitions", nil)
		}
	}

	for {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		pkt, err := cn.readPacket()
		if err != nil {
			return nil, err
		}
		if len(pkt) == 0 {
			return nil, sqlmodel.NewProtocolError("empty row packet", nil)
		}
		if pkt[0] == 0xff {
			return nil, decodeErrPacket(pkt).toError()
		}
		if deprecateEOF && pkt[0] == 0x00 {
			res.ok = cn.consumeOKPacket(pkt)
			return res, nil
		}
		if !deprecateEOF && isEOFPacket(pkt) {
			return res, nil
		}
		row, err := decodeTextRow(res.columns, pkt)
		if err != nil {
			return nil, err
		}
		res.rows = append(res.rows, row)
	}
}

func decodeTextRow(columns []columnDef, pkt []byte) ([]sqlmodel.Value, error) {
	row := make([]sqlmodel.Value, len(columns))
	rest := pkt
	for i, col := range columns {
		if len(rest) > 0 && rest[0] == lencNull {
			row[i] = sqlmodel.Null()
			rest = rest[1:]
			continue
		}
		raw, isNull, n := readLenEncString(rest)
		if n == 0 {
			return nil, sqlmodel.NewProtocolError("truncated row packet", nil)
		}
		rest = rest[n:]
		if isNull {
			row[i] = sqlmodel.Null()
			continue
		}
		v, err := decodeTextValue(col, raw)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// interpolate renders sql with each `?` placeholder replaced by the
// client-side-escaped text of the corresponding parameter (spec §4.3).
// This module's MySQL driver uses the text protocol exclusively; there is
// no server-side placeholder substitution to fall back on.
func interpolate(sql string, params []sqlmodel.Value) (string, error) {
	var b strings.Builder
	pi := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' {
			if pi >= len(params) {
				return "", sqlmodel.NewQueryError(sqlmodel.QuerySyntax, "not enough parameters for placeholders in SQL", nil)
			}
			b.WriteString(escapeLiteral(params[pi]))
			pi++
			continue
		}
		b.WriteByte(sql[i])
	}
	if pi != len(params) {
		return "", sqlmodel.NewQueryError(sqlmodel.QuerySyntax, "too many parameters for placeholders in SQL", nil)
	}
	return b.String(), nil
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return sqlmodel.NewQueryError(sqlmodel.QueryCancelled, "context cancelled", nil)
	default:
		return nil
	}
}
