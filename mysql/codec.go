package mysql

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/sqlmodel-go/sqlmodel"
)

// Column field types (protocol docs enum_field_types), the subset this
// driver decodes.
const (
	fieldTypeDecimal    = 0x00
	fieldTypeTiny       = 0x01
	fieldTypeShort      = 0x02
	fieldTypeLong       = 0x03
	fieldTypeFloat      = 0x04
	fieldTypeDouble     = 0x05
	fieldTypeNull       = 0x06
	fieldTypeTimestamp  = 0x07
	fieldTypeLongLong   = 0x08
	fieldTypeInt24      = 0x09
	fieldTypeDate       = 0x0a
	fieldTypeTime       = 0x0b
	fieldTypeDatetime   = 0x0c
	fieldTypeYear       = 0x0d
	fieldTypeNewDate    = 0x0e
	fieldTypeVarChar    = 0x0f
	fieldTypeBit        = 0x10
	fieldTypeNewDecimal = 0xf6
	fieldTypeEnum       = 0xf7
	fieldTypeSet        = 0xf8
	fieldTypeTinyBlob   = 0xf9
	fieldTypeMediumBlob = 0xfa
	fieldTypeLongBlob   = 0xfb
	fieldTypeBlob       = 0xfc
	fieldTypeVarString  = 0xfd
	fieldTypeString     = 0xfe
	fieldTypeGeometry   = 0xff
)

const flagUnsigned = 0x0020

// columnDef is the parsed Column Definition packet (protocol docs
// §14.6.4.1.1.2), used to drive row decoding.
type columnDef struct {
	name      string
	fieldType byte
	flags     uint16
}

func decodeColumnDef(payload []byte) columnDef {
	var c columnDef
	rest := payload
	_, _, n := readLenEncString(rest) // catalog
	rest = rest[n:]
	_, _, n = readLenEncString(rest) // schema
	rest = rest[n:]
	_, _, n = readLenEncString(rest) // table
	rest = rest[n:]
	_, _, n = readLenEncString(rest) // org_table
	rest = rest[n:]
	name, _, n := readLenEncString(rest)
	c.name = string(name)
	rest = rest[n:]
	_, _, n = readLenEncString(rest) // org_name
	rest = rest[n:]

	_, _, n = readLenEncInt(rest) // fixed-length fields marker (0x0c)
	rest = rest[n:]
	if len(rest) < 2 {
		return c
	}
	rest = rest[2:] // character set
	if len(rest) < 4 {
		return c
	}
	rest = rest[4:] // column length
	if len(rest) < 1 {
		return c
	}
	c.fieldType = rest[0]
	rest = rest[1:]
	if len(rest) < 2 {
		return c
	}
	c.flags = uint16(rest[0]) | uint16(rest[1])<<8
	return c
}

// decodeTextValue decodes one length-encoded-string cell of a text-
// protocol row according to the column's field type and UNSIGNED flag
// (spec §4.3's "Decoding dispatches on MySQL field type and the UNSIGNED
// flag").
func decodeTextValue(col columnDef, raw []byte) (sqlmodel.Value, error) {
	s := string(raw)
	unsigned := col.flags&flagUnsigned != 0

	switch col.fieldType {
	case fieldTypeTiny:
		if unsigned {
			n, err := strconv.ParseUint(s, 10, 8)
			if err != nil {
				return sqlmodel.Value{}, decodeErr("TinyInt", s, err)
			}
			return sqlmodel.NewTinyInt(int8(n)), nil
		}
		n, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("TinyInt", s, err)
		}
		return sqlmodel.NewTinyInt(int8(n)), nil
	case fieldTypeShort, fieldTypeYear:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("SmallInt", s, err)
		}
		return sqlmodel.NewSmallInt(int16(n)), nil
	case fieldTypeLong, fieldTypeInt24:
		if unsigned {
			n, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return sqlmodel.Value{}, decodeErr("Int", s, err)
			}
			return sqlmodel.NewBigInt(int64(n)), nil
		}
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Int", s, err)
		}
		return sqlmodel.NewInt(int32(n)), nil
	case fieldTypeLongLong:
		if unsigned {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return sqlmodel.Value{}, decodeErr("BigInt", s, err)
			}
			return sqlmodel.NewBigInt(int64(n)), nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("BigInt", s, err)
		}
		return sqlmodel.NewBigInt(n), nil
	case fieldTypeFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Float", s, err)
		}
		return sqlmodel.NewFloat(float32(f)), nil
	case fieldTypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Double", s, err)
		}
		return sqlmodel.NewDouble(f), nil
	case fieldTypeDecimal, fieldTypeNewDecimal:
		return sqlmodel.NewDecimal(s), nil
	case fieldTypeDate, fieldTypeNewDate:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Date", s, err)
		}
		return sqlmodel.NewDate(int32(t.Unix() / 86400)), nil
	case fieldTypeTime:
		// MySQL's TIME is a signed duration, not a time-of-day; kept as
		// text rather than forced into the Time-since-midnight variant.
		return sqlmodel.NewText(s), nil
	case fieldTypeTimestamp, fieldTypeDatetime:
		t, err := parseMySQLDatetime(s)
		if err != nil {
			return sqlmodel.Value{}, err
		}
		return sqlmodel.NewTimestamp(t.UnixMicro()), nil
	case fieldTypeTinyBlob, fieldTypeMediumBlob, fieldTypeLongBlob, fieldTypeBlob:
		return sqlmodel.NewBytes(raw), nil
	default:
		return sqlmodel.NewText(s), nil
	}
}

func decodeErr(kind, raw string, src error) error {
	err := sqlmodel.NewQueryError(sqlmodel.QueryDatabase, "failed to decode "+kind+" from "+strconv.Quote(raw), nil)
	err.Source = src
	return err
}

func parseMySQLDatetime(s string) (time.Time, error) {
	layouts := []string{"2006-01-02 15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
	var lastErr error
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, decodeErr("Timestamp", s, lastErr)
}

// escapeLiteral renders v as a client-side-interpolated SQL literal per
// spec §4.3: single quotes doubled, backslash-escaping disabled, binary
// values hex-encoded as X'…', nulls as NULL.
func escapeLiteral(v sqlmodel.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Kind() {
	case sqlmodel.KindBytes:
		b, _ := v.Bytes()
		return "X'" + hex.EncodeToString(b) + "'"
	case sqlmodel.KindBool:
		b, _ := v.Bool()
		if b {
			return "1"
		}
		return "0"
	case sqlmodel.KindTinyInt, sqlmodel.KindSmallInt, sqlmodel.KindInt, sqlmodel.KindBigInt,
		sqlmodel.KindFloat, sqlmodel.KindDouble, sqlmodel.KindDecimal:
		return v.String()
	default:
		s := v.String()
		s = strings.ReplaceAll(s, "'", "''")
		return "'" + s + "'"
	}
}
