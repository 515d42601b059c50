package mysql

import (
	"context"
	"net"
	"testing"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestDecodeOKPacket(t *testing.T) {
	var pkt []byte
	pkt = append(pkt, 0x00)
	pkt = writeLenEncInt(pkt, 5) // affected rows
	pkt = writeLenEncInt(pkt, 12) // last insert id
	pkt = append(pkt, 0x01, 0x00) // status flags: SERVER_STATUS_IN_TRANS
	pkt = append(pkt, 0x00, 0x00) // warnings

	ok := decodeOKPacket(pkt, capProtocol41)
	if ok.affectedRows != 5 {
		t.Errorf("affectedRows = %d, want 5", ok.affectedRows)
	}
	if ok.lastInsertID != 12 {
		t.Errorf("lastInsertID = %d, want 12", ok.lastInsertID)
	}
	if ok.statusFlags&serverStatusInTrans == 0 {
		t.Error("expected SERVER_STATUS_IN_TRANS flag set")
	}
}

func TestIsEOFPacket(t *testing.T) {
	if !isEOFPacket([]byte{0xfe, 0x00, 0x00, 0x02, 0x00}) {
		t.Error("expected short 0xfe-prefixed packet to be recognized as EOF")
	}
	longOK := append([]byte{0xfe}, make([]byte, 10)...)
	if isEOFPacket(longOK) {
		t.Error("a >= 9 byte 0xfe-prefixed packet must not be treated as EOF (OK-with-deprecated-EOF header)")
	}
}

func TestDecodeColumnDef(t *testing.T) {
	var pkt []byte
	pkt = writeLenEncString(pkt, []byte("def"))  // catalog
	pkt = writeLenEncString(pkt, []byte("db"))    // schema
	pkt = writeLenEncString(pkt, []byte("t"))     // table
	pkt = writeLenEncString(pkt, []byte("t"))     // org_table
	pkt = writeLenEncString(pkt, []byte("x"))     // name
	pkt = writeLenEncString(pkt, []byte("x"))     // org_name
	pkt = writeLenEncInt(pkt, 0x0c)               // fixed-length fields marker
	pkt = append(pkt, 33, 0)                      // charset
	pkt = append(pkt, 0, 0, 0, 0)                 // column length
	pkt = append(pkt, fieldTypeLongLong)          // type
	pkt = append(pkt, 0, 0)                       // flags
	pkt = append(pkt, 0)                          // decimals

	col := decodeColumnDef(pkt)
	if col.name != "x" {
		t.Errorf("name = %q, want %q", col.name, "x")
	}
	if col.fieldType != fieldTypeLongLong {
		t.Errorf("fieldType = %d, want %d", col.fieldType, fieldTypeLongLong)
	}
}

// TestRunQueryRejectsLocalInfileRequest confirms a 0xfb-prefixed response
// (LOCAL INFILE request) fails explicitly instead of falling through to
// readResultSet, which would misparse 0xfb as the length-encoded-NULL
// column-count sentinel and silently return an empty result set.
func TestRunQueryRejectsLocalInfileRequest(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	cn := &conn{c: clientSide, pr: newPacketReader(clientSide), logger: sqlmodel.NopLogger}

	go func() {
		pr := newPacketReader(serverSide)
		if _, err := pr.readPacket(); err != nil { // COM_QUERY request
			return
		}
		_ = writePacket(serverSide, pr, []byte{0xfb})
	}()

	_, err := cn.runQuery(context.Background(), "LOAD DATA LOCAL INFILE 'x' INTO TABLE t")
	if err == nil {
		t.Fatal("expected an error for a LOCAL INFILE request, got nil")
	}
}
