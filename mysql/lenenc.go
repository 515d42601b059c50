package mysql

import "encoding/binary"

// Length-encoded integer and string helpers per the MySQL client/server
// protocol docs: a leading byte selects a fixed-width encoding, with
// 0xfb/0xfc/0xfd/0xfe as the sentinel values below.
const (
	lencNull = 0xfb
	lenc2    = 0xfc
	lenc3    = 0xfd
	lenc8    = 0xfe
)

// readLenEncInt parses a length-encoded integer starting at b[0] and
// returns the value, whether it was SQL NULL, and the number of bytes
// consumed.
func readLenEncInt(b []byte) (value uint64, isNull bool, n int) {
	if len(b) == 0 {
		return 0, false, 0
	}
	switch b[0] {
	case lencNull:
		return 0, true, 1
	case lenc2:
		if len(b) < 3 {
			return 0, false, len(b)
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), false, 3
	case lenc3:
		if len(b) < 4 {
			return 0, false, len(b)
		}
		v := uint64(b[1]) | uint64(b[2])<<8 | uint64(b[3])<<16
		return v, false, 4
	case lenc8:
		if len(b) < 9 {
			return 0, false, len(b)
		}
		return binary.LittleEndian.Uint64(b[1:9]), false, 9
	default:
		return uint64(b[0]), false, 1
	}
}

// readLenEncString parses a length-encoded string and returns its value,
// whether it was SQL NULL, and the number of bytes consumed.
func readLenEncString(b []byte) (value []byte, isNull bool, n int) {
	length, isNull, hdrLen := readLenEncInt(b)
	if isNull || hdrLen == 0 {
		return nil, isNull, hdrLen
	}
	total := hdrLen + int(length)
	if total > len(b) {
		return nil, false, 0
	}
	return b[hdrLen:total], false, total
}

// writeLenEncInt appends v to dst in length-encoded-integer form.
func writeLenEncInt(dst []byte, v uint64) []byte {
	switch {
	case v < 251:
		return append(dst, byte(v))
	case v < 1<<16:
		dst = append(dst, lenc2)
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v))
		return append(dst, b...)
	case v < 1<<24:
		dst = append(dst, lenc3)
		return append(dst, byte(v), byte(v>>8), byte(v>>16))
	default:
		dst = append(dst, lenc8)
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		return append(dst, b...)
	}
}

// writeLenEncString appends s to dst as a length-encoded string.
func writeLenEncString(dst []byte, s []byte) []byte {
	dst = writeLenEncInt(dst, uint64(len(s)))
	return append(dst, s...)
}

func readNullTerminatedString(b []byte) (s string, rest []byte) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), b[i+1:]
		}
	}
	return string(b), nil
}
