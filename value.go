package sqlmodel

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindTinyInt
	KindSmallInt
	KindInt
	KindBigInt
	KindFloat
	KindDouble
	KindDecimal
	KindText
	KindBytes
	KindDate
	KindTime
	KindTimestamp
	KindTimestampTz
	KindUUID
	KindJSON
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindTinyInt:
		return "TinyInt"
	case KindSmallInt:
		return "SmallInt"
	case KindInt:
		return "Int"
	case KindBigInt:
		return "BigInt"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindDecimal:
		return "Decimal"
	case KindText:
		return "Text"
	case KindBytes:
		return "Bytes"
	case KindDate:
		return "Date"
	case KindTime:
		return "Time"
	case KindTimestamp:
		return "Timestamp"
	case KindTimestampTz:
		return "TimestampTz"
	case KindUUID:
		return "Uuid"
	case KindJSON:
		return "Json"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value is the universal value sum type marshaled across every backend.
//
// Only the field matching Kind is meaningful; the others are zero.
// Decimal carries its exact textual representation (DecimalText) so
// precision survives a round trip through any backend. Date is days
// since the Unix epoch; Time is nanoseconds since midnight; Timestamp
// and TimestampTz are microseconds since the Unix epoch, the latter
// always normalized to UTC.
type Value struct {
	kind Kind

	boolVal    bool
	intVal     int64
	floatVal   float32
	doubleVal  float64
	decimalVal string
	textVal    string
	bytesVal   []byte
	dateVal    int32
	timeVal    int64
	tsVal      int64
	uuidVal    [16]byte
	jsonVal    any
	arrayVal   []Value
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func Null() Value { return Value{kind: KindNull} }

func NewBool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

func NewTinyInt(i int8) Value { return Value{kind: KindTinyInt, intVal: int64(i)} }

func NewSmallInt(i int16) Value { return Value{kind: KindSmallInt, intVal: int64(i)} }

func NewInt(i int32) Value { return Value{kind: KindInt, intVal: int64(i)} }

func NewBigInt(i int64) Value { return Value{kind: KindBigInt, intVal: i} }

func NewFloat(f float32) Value { return Value{kind: KindFloat, floatVal: f} }

func NewDouble(f float64) Value { return Value{kind: KindDouble, doubleVal: f} }

// NewDecimal stores the exact textual form of a decimal value. Callers
// that already have a shopspring/decimal.Decimal should call .String()
// before passing it in, to keep this package free of a hard dependency
// on any one decimal representation at the Value boundary.
func NewDecimal(text string) Value { return Value{kind: KindDecimal, decimalVal: text} }

func NewDecimalFromDecimal(d decimal.Decimal) Value { return NewDecimal(d.String()) }

func NewText(s string) Value { return Value{kind: KindText, textVal: s} }

func NewBytes(b []byte) Value { return Value{kind: KindBytes, bytesVal: b} }

// NewDate stores days since the Unix epoch (1970-01-01).
func NewDate(daysSinceEpoch int32) Value { return Value{kind: KindDate, dateVal: daysSinceEpoch} }

// NewTime stores nanoseconds since midnight.
func NewTime(nanosSinceMidnight int64) Value { return Value{kind: KindTime, timeVal: nanosSinceMidnight} }

// NewTimestamp stores microseconds since the Unix epoch, no timezone.
func NewTimestamp(microsSinceEpoch int64) Value { return Value{kind: KindTimestamp, tsVal: microsSinceEpoch} }

// NewTimestampTz stores microseconds since the Unix epoch, normalized to UTC.
func NewTimestampTz(microsSinceEpoch int64) Value { return Value{kind: KindTimestampTz, tsVal: microsSinceEpoch} }

func NewUUID(u uuid.UUID) Value { return Value{kind: KindUUID, uuidVal: [16]byte(u)} }

func NewJSON(v any) Value { return Value{kind: KindJSON, jsonVal: v} }

func NewArray(vs []Value) Value { return Value{kind: KindArray, arrayVal: vs} }

func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, typeMismatch("Bool", v.kind)
	}
	return v.boolVal, nil
}

func (v Value) Int64() (int64, error) {
	switch v.kind {
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt:
		return v.intVal, nil
	}
	return 0, typeMismatch("Int64", v.kind)
}

func (v Value) Float32() (float32, error) {
	if v.kind != KindFloat {
		return 0, typeMismatch("Float", v.kind)
	}
	return v.floatVal, nil
}

func (v Value) Float64() (float64, error) {
	if v.kind != KindDouble {
		return 0, typeMismatch("Double", v.kind)
	}
	return v.doubleVal, nil
}

func (v Value) DecimalText() (string, error) {
	if v.kind != KindDecimal {
		return "", typeMismatch("Decimal", v.kind)
	}
	return v.decimalVal, nil
}

func (v Value) Decimal() (decimal.Decimal, error) {
	s, err := v.DecimalText()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(s)
}

func (v Value) Text() (string, error) {
	if v.kind != KindText {
		return "", typeMismatch("Text", v.kind)
	}
	return v.textVal, nil
}

func (v Value) Bytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, typeMismatch("Bytes", v.kind)
	}
	return v.bytesVal, nil
}

func (v Value) Date() (int32, error) {
	if v.kind != KindDate {
		return 0, typeMismatch("Date", v.kind)
	}
	return v.dateVal, nil
}

func (v Value) Time() (int64, error) {
	if v.kind != KindTime {
		return 0, typeMismatch("Time", v.kind)
	}
	return v.timeVal, nil
}

func (v Value) Timestamp() (int64, error) {
	if v.kind != KindTimestamp && v.kind != KindTimestampTz {
		return 0, typeMismatch("Timestamp", v.kind)
	}
	return v.tsVal, nil
}

func (v Value) UUID() (uuid.UUID, error) {
	if v.kind != KindUUID {
		return uuid.Nil, typeMismatch("Uuid", v.kind)
	}
	return uuid.UUID(v.uuidVal), nil
}

func (v Value) JSON() (any, error) {
	if v.kind != KindJSON {
		return nil, typeMismatch("Json", v.kind)
	}
	return v.jsonVal, nil
}

func (v Value) Array() ([]Value, error) {
	if v.kind != KindArray {
		return nil, typeMismatch("Array", v.kind)
	}
	return v.arrayVal, nil
}

func typeMismatch(want string, got Kind) error {
	return &Error{
		Kind:     KindErrType,
		Message:  fmt.Sprintf("expected %s, got %s", want, got),
		TypeInfo: &TypeErrorInfo{Expected: want, Actual: got.String()},
	}
}

// String renders the value for debugging/logging; it is not the SQL
// text representation used by any driver's encoder.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%v", v.boolVal)
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt:
		return fmt.Sprintf("%d", v.intVal)
	case KindFloat:
		return fmt.Sprintf("%v", v.floatVal)
	case KindDouble:
		return fmt.Sprintf("%v", v.doubleVal)
	case KindDecimal:
		return v.decimalVal
	case KindText:
		return v.textVal
	case KindBytes:
		return fmt.Sprintf("%x", v.bytesVal)
	case KindDate:
		return fmt.Sprintf("date:%d", v.dateVal)
	case KindTime:
		return fmt.Sprintf("time:%d", v.timeVal)
	case KindTimestamp, KindTimestampTz:
		return fmt.Sprintf("ts:%d", v.tsVal)
	case KindUUID:
		return uuid.UUID(v.uuidVal).String()
	case KindJSON:
		return fmt.Sprintf("%v", v.jsonVal)
	case KindArray:
		return fmt.Sprintf("%v", v.arrayVal)
	default:
		return "?"
	}
}
