package postgres

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// readBuf is a message payload being consumed front-to-back, mirroring
// lib-pq's buf.go readBuf.
type readBuf []byte

func (b *readBuf) int32() int32 {
	n := int32(binary.BigEndian.Uint32(*b))
	*b = (*b)[4:]
	return n
}

func (b *readBuf) uint32() uint32 {
	n := binary.BigEndian.Uint32(*b)
	*b = (*b)[4:]
	return n
}

func (b *readBuf) int16() int16 {
	n := int16(binary.BigEndian.Uint16(*b))
	*b = (*b)[2:]
	return n
}

func (b *readBuf) byte() byte {
	c := (*b)[0]
	*b = (*b)[1:]
	return c
}

func (b *readBuf) next(n int) []byte {
	v := (*b)[:n]
	*b = (*b)[n:]
	return v
}

func (b *readBuf) remainder() []byte {
	v := []byte(*b)
	*b = nil
	return v
}

func (b *readBuf) string() (string, error) {
	i := bytes.IndexByte(*b, 0)
	if i < 0 {
		return "", fmt.Errorf("postgres: invalid message format; expected string terminator")
	}
	s := (*b)[:i]
	*b = (*b)[i+1:]
	return string(s), nil
}

// writeBuf accumulates a single outgoing message's payload; the type tag
// (or none, for the untagged startup/SSLRequest messages) and the 4-byte
// big-endian length prefix are written by conn.send.
type writeBuf struct {
	buf []byte
}

func newWriteBuf() *writeBuf {
	return &writeBuf{buf: make([]byte, 4)} // reserve space for the length prefix
}

func (w *writeBuf) int32(n int32) {
	var x [4]byte
	binary.BigEndian.PutUint32(x[:], uint32(n))
	w.buf = append(w.buf, x[:]...)
}

func (w *writeBuf) int16(n int16) {
	var x [2]byte
	binary.BigEndian.PutUint16(x[:], uint16(n))
	w.buf = append(w.buf, x[:]...)
}

func (w *writeBuf) byte(c byte) {
	w.buf = append(w.buf, c)
}

func (w *writeBuf) string(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

func (w *writeBuf) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// finish fills in the length prefix (the 4 bytes reserved by newWriteBuf)
// and returns the full payload, ready to be prefixed with a type tag (or
// sent as-is for the untagged startup messages).
func (w *writeBuf) finish() []byte {
	binary.BigEndian.PutUint32(w.buf[0:4], uint32(len(w.buf)))
	return w.buf
}
