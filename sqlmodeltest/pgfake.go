// Package sqlmodeltest provides minimal in-process fake wire servers used
// by the driver packages' own tests, grounded on lib-pq's internal fake
// server test helper (internal/pqtest) and the end-to-end scenarios named
// in spec §8.4. These are not general-purpose SQL engines: each fake
// recognizes only the handful of statement shapes its scenario needs,
// matching real backend byte-for-byte framing but not real SQL semantics.
package sqlmodeltest

import (
	"encoding/binary"
	"io"
	"net"
	"strings"
)

// PGFake is a tiny PostgreSQL v3-protocol server. It accepts a single
// connection, completes an AuthenticationOk handshake (no real password
// check — this is a test double, not a security surface), and then
// answers the extended-query sequence for a small set of recognized SQL
// statements, recorded via SeedTable.
type PGFake struct {
	ln     net.Listener
	tables map[string]*fakeTable
}

type fakeTable struct {
	columns []string
	rows    [][]string // text-format encoded cells; "" with null=true handled via nulls slice
	nulls   [][]bool
}

// NewPGFake starts listening on a loopback TCP port and returns the fake
// server; call Addr to get the dial target and Serve to run the accept
// loop (typically in its own goroutine).
func NewPGFake() (*PGFake, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &PGFake{ln: ln, tables: map[string]*fakeTable{}}, nil
}

func (f *PGFake) Addr() string { return f.ln.Addr().String() }

func (f *PGFake) Close() error { return f.ln.Close() }

// Serve accepts exactly one connection and drives the fake protocol
// handler on it; it returns when the connection closes.
func (f *PGFake) Serve() error {
	c, err := f.ln.Accept()
	if err != nil {
		return err
	}
	defer c.Close()
	return f.handle(c)
}

// SeedTable registers the row set a "SELECT * FROM name" will return.
func (f *PGFake) SeedTable(name string, columns []string, rows [][]string) {
	f.tables[name] = &fakeTable{columns: columns, rows: rows}
}

func (f *PGFake) handle(c net.Conn) error {
	r := newFrameReader(c)

	// Possibly an SSLRequest: peek the first 8 bytes.
	first, err := r.peekN(8)
	if err == nil && len(first) == 8 && binary.BigEndian.Uint32(first[4:8]) == 80877103 {
		r.discard(8)
		c.Write([]byte{'N'})
	}

	// StartupMessage: length-prefixed, untagged.
	if _, err := r.readStartup(); err != nil {
		return err
	}

	// AuthenticationOk, ReadyForQuery('I').
	writeMsg(c, 'R', int32buf(0))
	writeMsg(c, 'Z', []byte{'I'})

	for {
		tag, payload, err := r.readTagged()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch tag {
		case 'X':
			return nil
		case 'P':
			f.handleExtendedQuery(c, r, payload)
		case 'Q':
			// Simple query protocol, unused by this module's drivers
			// but harmless to support minimally for completeness.
			writeMsg(c, 'Z', []byte{'I'})
		}
	}
}

// handleExtendedQuery consumes the Parse message already read and the
// Bind/Describe/Execute/Sync that follow, replying according to which
// recognized statement shape the SQL matches.
func (f *PGFake) handleExtendedQuery(c net.Conn, r *frameReader, parsePayload []byte) {
	sql := parseSQL(parsePayload)

	// Drain Bind, Describe, Execute, Sync.
	var params [][]byte
	for {
		tag, payload, err := r.readTagged()
		if err != nil {
			return
		}
		switch tag {
		case 'B':
			params = parseBindParams(payload)
		case 'D', 'E':
			// no-op, handled after Sync
		case 'S':
			writeMsg(c, '1', nil) // ParseComplete
			writeMsg(c, '2', nil) // BindComplete
			f.respond(c, sql, params)
			writeMsg(c, 'Z', []byte{'I'})
			return
		}
	}
}

func (f *PGFake) respond(c net.Conn, sql string, params [][]byte) {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		writeCommandComplete(c, "CREATE TABLE")
	case strings.HasPrefix(upper, "INSERT"):
		writeCommandComplete(c, "INSERT 0 1")
	case strings.HasPrefix(upper, "SELECT 1"):
		writeRowDescription(c, []string{"?column?"}, []int32{23})
		writeDataRow(c, [][]byte{[]byte("1")})
		writeCommandComplete(c, "SELECT 1")
	case strings.HasPrefix(upper, "SELECT * FROM"):
		name := strings.TrimSpace(strings.TrimPrefix(upper, "SELECT * FROM"))
		name = strings.ToLower(strings.Fields(name)[0])
		tbl, ok := f.tables[name]
		if !ok {
			writeCommandComplete(c, "SELECT 0")
			return
		}
		oids := make([]int32, len(tbl.columns))
		for i := range oids {
			oids[i] = 25 // text, kept simple; callers decode as text regardless
		}
		writeRowDescription(c, tbl.columns, oids)
		for _, row := range tbl.rows {
			cells := make([][]byte, len(row))
			for i, v := range row {
				cells[i] = []byte(v)
			}
			writeDataRow(c, cells)
		}
		writeCommandComplete(c, "SELECT")
	default:
		writeCommandComplete(c, "")
	}
}

func parseSQL(parsePayload []byte) string {
	// Parse message: name (cstring), query (cstring), param count int16, oids...
	i := indexByte(parsePayload, 0)
	rest := parsePayload[i+1:]
	j := indexByte(rest, 0)
	return string(rest[:j])
}

func parseBindParams(payload []byte) [][]byte {
	// Minimal Bind parser: portal cstring, statement cstring, format
	// count+formats, param count, then length-prefixed params.
	i := indexByte(payload, 0)
	rest := payload[i+1:]
	j := indexByte(rest, 0)
	rest = rest[j+1:]
	if len(rest) < 2 {
		return nil
	}
	fmtCount := int(binary.BigEndian.Uint16(rest[:2]))
	rest = rest[2+2*fmtCount:]
	if len(rest) < 2 {
		return nil
	}
	paramCount := int(binary.BigEndian.Uint16(rest[:2]))
	rest = rest[2:]
	params := make([][]byte, 0, paramCount)
	for i := 0; i < paramCount; i++ {
		if len(rest) < 4 {
			break
		}
		n := int32(binary.BigEndian.Uint32(rest[:4]))
		rest = rest[4:]
		if n < 0 {
			params = append(params, nil)
			continue
		}
		params = append(params, rest[:n])
		rest = rest[n:]
	}
	return params
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return len(b)
}
