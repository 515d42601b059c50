package mysql

import (
	"testing"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestDecodeErrPacket(t *testing.T) {
	var pkt []byte
	pkt = append(pkt, 0xff)
	pkt = append(pkt, 0x1a, 0x04) // 1050 (ER_TABLE_EXISTS_ERROR)
	pkt = append(pkt, '#')
	pkt = append(pkt, []byte("42S01")...)
	pkt = append(pkt, []byte("Table 't' already exists")...)

	e := decodeErrPacket(pkt)
	if e.code != 1050 {
		t.Errorf("code = %d, want 1050", e.code)
	}
	if e.sqlstate != "42S01" {
		t.Errorf("sqlstate = %q", e.sqlstate)
	}
	err := e.toError()
	se, ok := err.(*sqlmodel.Error)
	if !ok {
		t.Fatalf("not a *sqlmodel.Error")
	}
	if se.Kind != sqlmodel.KindErrQuery {
		t.Errorf("kind = %v, want Query", se.Kind)
	}
}

func TestQuerySubKindForCode(t *testing.T) {
	cases := map[uint16]sqlmodel.QuerySubKind{
		1062: sqlmodel.QueryConstraint,
		1451: sqlmodel.QueryConstraint,
		1064: sqlmodel.QuerySyntax,
		1213: sqlmodel.QueryDeadlock,
		1205: sqlmodel.QueryTimeout,
		1317: sqlmodel.QueryCancelled,
	}
	for code, want := range cases {
		if got := querySubKindForCode(code, ""); got != want {
			t.Errorf("code %d: got %v, want %v", code, got, want)
		}
	}
}

func TestConnSubKindForCode(t *testing.T) {
	if sub, ok := connSubKindForCode(2003); !ok || sub != sqlmodel.ConnConnect {
		t.Errorf("code 2003: got %v, %v", sub, ok)
	}
	if _, ok := connSubKindForCode(1062); ok {
		t.Error("code 1062 should not map to a connection subkind")
	}
}
