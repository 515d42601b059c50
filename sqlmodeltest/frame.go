package sqlmodeltest

import (
	"bufio"
	"encoding/binary"
	"io"
)

// frameReader reads the PostgreSQL wire protocol's two message shapes:
// the length-prefixed, untagged StartupMessage, and the tag-byte-plus-
// length-prefixed messages that follow it.
type frameReader struct {
	br *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{br: bufio.NewReader(r)}
}

func (f *frameReader) peekN(n int) ([]byte, error) {
	return f.br.Peek(n)
}

func (f *frameReader) discard(n int) {
	f.br.Discard(n)
}

func (f *frameReader) readStartup() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(f.br, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n-4)
	if _, err := io.ReadFull(f.br, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *frameReader) readTagged() (byte, []byte, error) {
	tag, err := f.br.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(f.br, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n-4)
	if _, err := io.ReadFull(f.br, body); err != nil {
		return 0, nil, err
	}
	return tag, body, nil
}

func writeMsg(w io.Writer, tag byte, payload []byte) {
	buf := make([]byte, 0, 5+len(payload))
	buf = append(buf, tag)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(4+len(payload)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, payload...)
	w.Write(buf)
}

func int32buf(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func writeRowDescription(w io.Writer, columns []string, oids []int32) {
	var body []byte
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(columns)))
	body = append(body, countBuf[:]...)
	for i, name := range columns {
		body = append(body, []byte(name)...)
		body = append(body, 0)
		body = append(body, int32buf(0)...)   // table oid
		body = append(body, 0, 0)              // column attnum
		body = append(body, int32buf(oids[i])...)
		body = append(body, 0, 0)              // type size
		body = append(body, int32buf(-1)...)   // type modifier
		body = append(body, 0, 0)              // format code (text)
	}
	writeMsg(w, 'T', body)
}

func writeDataRow(w io.Writer, cells [][]byte) {
	var body []byte
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(cells)))
	body = append(body, countBuf[:]...)
	for _, c := range cells {
		if c == nil {
			body = append(body, int32buf(-1)...)
			continue
		}
		body = append(body, int32buf(int32(len(c)))...)
		body = append(body, c...)
	}
	writeMsg(w, 'D', body)
}

func writeCommandComplete(w io.Writer, tag string) {
	body := append([]byte(tag), 0)
	writeMsg(w, 'C', body)
}
