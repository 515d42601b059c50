package sqlite

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sqlmodel-go/sqlmodel"
)

// encodeText renders any Value SQLite has no native bind call for (dates,
// decimals, UUIDs, JSON) as the text it binds with sqlite3_bind_text, since
// SQLite's type system is dynamic and column affinity, not a fixed wire
// format, governs storage (spec §4.4 "Type mapping").
func encodeText(v sqlmodel.Value) string {
	switch v.Kind() {
	case sqlmodel.KindDecimal:
		s, _ := v.DecimalText()
		return s
	case sqlmodel.KindText:
		s, _ := v.Text()
		return s
	case sqlmodel.KindDate:
		d, _ := v.Date()
		t := time.Unix(int64(d)*86400, 0).UTC()
		return t.Format("2006-01-02")
	case sqlmodel.KindTime:
		ns, _ := v.Time()
		t := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(ns))
		return t.Format("15:04:05.999999")
	case sqlmodel.KindTimestamp, sqlmodel.KindTimestampTz:
		us, _ := v.Timestamp()
		t := time.UnixMicro(us).UTC()
		return t.Format("2006-01-02 15:04:05.999999")
	case sqlmodel.KindUUID:
		u, _ := v.UUID()
		return u.String()
	case sqlmodel.KindJSON:
		j, _ := v.JSON()
		return fmt.Sprintf("%v", j)
	default:
		return v.String()
	}
}

// escapeLiteral quotes a Value for direct inclusion in SQL text. Nothing
// in this package calls it; parameter binding, including on the RETURNING
// path in returning.go, goes through bindArgs.
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
	case sqlmodel.KindTinyInt, sqlmodel.KindSmallInt, sqlmodel.KindInt, sqlmodel.KindBigInt:
		n, _ := v.Int64()
		return strconv.FormatInt(n, 10)
	case sqlmodel.KindFloat, sqlmodel.KindDouble, sqlmodel.KindDecimal:
		return v.String()
	default:
		return "'" + strings.ReplaceAll(encodeText(v), "'", "''") + "'"
	}
}
