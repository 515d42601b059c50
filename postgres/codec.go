package postgres

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sqlmodel-go/sqlmodel"
)

// oid is a PostgreSQL type OID. Only the subset named in spec §4.2's
// codec section is named here; anything else falls back to Text.
type oid uint32

const (
	oidBool        oid = 16
	oidBytea       oid = 17
	oidInt8        oid = 20
	oidInt2        oid = 21
	oidInt4        oid = 23
	oidText        oid = 25
	oidJSON        oid = 114
	oidFloat4      oid = 700
	oidFloat8      oid = 701
	oidVarchar     oid = 1043
	oidDate        oid = 1082
	oidTime        oid = 1083
	oidTimestamp   oid = 1114
	oidTimestampTz oid = 1184
	oidName        oid = 19
	oidJSONB       oid = 3802
	oidUUID        oid = 2950
	oidArrayInt4   oid = 1007
	oidArrayText   oid = 1009
)

// decodeText decodes a text-format column value per the (OID, format)
// dispatch table of spec §4.2. PostgreSQL's text-format NULL is
// represented by the caller passing raw == nil, handled by the query
// executor before this is called.
func decodeText(o oid, raw []byte) (sqlmodel.Value, error) {
	s := string(raw)
	switch o {
	case oidBool:
		return sqlmodel.NewBool(s == "t"), nil
	case oidInt2:
		n, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("SmallInt", s, err)
		}
		return sqlmodel.NewSmallInt(int16(n)), nil
	case oidInt4:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Int", s, err)
		}
		return sqlmodel.NewInt(int32(n)), nil
	case oidInt8:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("BigInt", s, err)
		}
		return sqlmodel.NewBigInt(n), nil
	case oidFloat4:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Float", s, err)
		}
		return sqlmodel.NewFloat(float32(f)), nil
	case oidFloat8:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Double", s, err)
		}
		return sqlmodel.NewDouble(f), nil
	case oidText, oidVarchar, oidName:
		return sqlmodel.NewText(s), nil
	case oidBytea:
		b, err := decodeBytea(s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Bytes", s, err)
		}
		return sqlmodel.NewBytes(b), nil
	case oidDate:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Date", s, err)
		}
		days := int32(t.Unix() / 86400)
		return sqlmodel.NewDate(days), nil
	case oidTime:
		t, err := time.Parse("15:04:05.999999", s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Time", s, err)
		}
		nanos := ((t.Hour()*3600+t.Minute()*60+t.Second())*1e9 + t.Nanosecond())
		return sqlmodel.NewTime(int64(nanos)), nil
	case oidTimestamp:
		t, err := parsePGTimestamp(s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Timestamp", s, err)
		}
		return sqlmodel.NewTimestamp(t.UnixMicro()), nil
	case oidTimestampTz:
		t, err := parsePGTimestamp(s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("TimestampTz", s, err)
		}
		return sqlmodel.NewTimestampTz(t.UTC().UnixMicro()), nil
	case oidUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Uuid", s, err)
		}
		return sqlmodel.NewUUID(u), nil
	case oidJSON, oidJSONB:
		return sqlmodel.NewJSON(s), nil
	case oidArrayInt4, oidArrayText:
		elems, err := decodePGArray(s)
		if err != nil {
			return sqlmodel.Value{}, decodeErr("Array", s, err)
		}
		inner := oidText
		if o == oidArrayInt4 {
			inner = oidInt4
		}
		vals := make([]sqlmodel.Value, len(elems))
		for i, e := range elems {
			v, err := decodeText(inner, []byte(e))
			if err != nil {
				return sqlmodel.Value{}, err
			}
			vals[i] = v
		}
		return sqlmodel.NewArray(vals), nil
	default:
		// Unknown OIDs fall back to raw Text (spec §4.2); this is not
		// itself an error, only a structural decode failure is.
		return sqlmodel.NewText(s), nil
	}
}

func decodeErr(kind, raw string, src error) error {
	err := sqlmodel.NewQueryError(sqlmodel.QueryDatabase, fmt.Sprintf("failed to decode %s from %q", kind, raw), nil)
	err.Source = src
	return err
}

func decodeBytea(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "\\x") {
		return nil, fmt.Errorf("postgres: unsupported bytea encoding (expected hex)")
	}
	return hex.DecodeString(s[2:])
}

func parsePGTimestamp(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05.999999Z07:00",
		"2006-01-02 15:04:05.999999",
		"2006-01-02T15:04:05.999999Z07:00",
		"2006-01-02T15:04:05.999999",
	}
	var lastErr error
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// decodePGArray splits PostgreSQL's {a,b,c} text array representation.
// Nested arrays and quoted elements containing commas are not handled;
// this driver targets the common-case scalar array encoding.
func decodePGArray(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("postgres: malformed array literal %q", s)
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, nil
	}
	return strings.Split(inner, ","), nil
}

// encodeText renders a Value in PostgreSQL's text parameter format (spec
// §4.2 "Parameter format choice" / §9).
func encodeText(v sqlmodel.Value) (string, bool) {
	if v.IsNull() {
		return "", true
	}
	switch v.Kind() {
	case sqlmodel.KindBool:
		b, _ := v.Bool()
		if b {
			return "t", false
		}
		return "f", false
	case sqlmodel.KindTinyInt, sqlmodel.KindSmallInt, sqlmodel.KindInt, sqlmodel.KindBigInt:
		n, _ := v.Int64()
		return strconv.FormatInt(n, 10), false
	case sqlmodel.KindFloat:
		f, _ := v.Float32()
		return strconv.FormatFloat(float64(f), 'g', -1, 32), false
	case sqlmodel.KindDouble:
		f, _ := v.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64), false
	case sqlmodel.KindDecimal:
		s, _ := v.DecimalText()
		return s, false
	case sqlmodel.KindText:
		s, _ := v.Text()
		return s, false
	case sqlmodel.KindBytes:
		b, _ := v.Bytes()
		return "\\x" + hex.EncodeToString(b), false
	case sqlmodel.KindDate:
		d, _ := v.Date()
		t := time.Unix(int64(d)*86400, 0).UTC()
		return t.Format("2006-01-02"), false
	case sqlmodel.KindTime:
		ns, _ := v.Time()
		dur := time.Duration(ns)
		t := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Add(dur)
		return t.Format("15:04:05.999999"), false
	case sqlmodel.KindTimestamp, sqlmodel.KindTimestampTz:
		us, _ := v.Timestamp()
		t := time.UnixMicro(us).UTC()
		return t.Format("2006-01-02 15:04:05.999999Z07:00"), false
	case sqlmodel.KindUUID:
		u, _ := v.UUID()
		return u.String(), false
	case sqlmodel.KindJSON:
		j, _ := v.JSON()
		return fmt.Sprintf("%v", j), false
	default:
		return v.String(), false
	}
}
