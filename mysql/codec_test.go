package mysql

import (
	"testing"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestDecodeTextValueIntegers(t *testing.T) {
	signed := columnDef{fieldType: fieldTypeLong}
	v, err := decodeTextValue(signed, []byte("-42"))
	if err != nil {
		t.Fatalf("decode signed int: %v", err)
	}
	n, _ := v.Int64()
	if n != -42 {
		t.Errorf("got %d, want -42", n)
	}

	unsigned := columnDef{fieldType: fieldTypeLong, flags: flagUnsigned}
	v, err = decodeTextValue(unsigned, []byte("4294967295"))
	if err != nil {
		t.Fatalf("decode unsigned int: %v", err)
	}
	n, _ = v.Int64()
	if n != 4294967295 {
		t.Errorf("got %d, want 4294967295", n)
	}
}

func TestDecodeTextValueBigIntUnsigned(t *testing.T) {
	col := columnDef{fieldType: fieldTypeLongLong, flags: flagUnsigned}
	v, err := decodeTextValue(col, []byte("18446744073709551615"))
	if err != nil {
		t.Fatalf("decode unsigned bigint: %v", err)
	}
	if v.Kind() != sqlmodel.KindBigInt {
		t.Errorf("kind = %v, want BigInt", v.Kind())
	}
}

func TestDecodeTextValueDecimalAndBlob(t *testing.T) {
	dec, err := decodeTextValue(columnDef{fieldType: fieldTypeNewDecimal}, []byte("12.3400"))
	if err != nil {
		t.Fatalf("decode decimal: %v", err)
	}
	s, _ := dec.DecimalText()
	if s != "12.3400" {
		t.Errorf("got %q", s)
	}

	blob, err := decodeTextValue(columnDef{fieldType: fieldTypeBlob}, []byte{0x01, 0x02, 0xff})
	if err != nil {
		t.Fatalf("decode blob: %v", err)
	}
	if blob.Kind() != sqlmodel.KindBytes {
		t.Errorf("kind = %v, want Bytes", blob.Kind())
	}
}

func TestEscapeLiteral(t *testing.T) {
	if got := escapeLiteral(sqlmodel.Null()); got != "NULL" {
		t.Errorf("Null: got %q", got)
	}
	if got := escapeLiteral(sqlmodel.NewText("it's")); got != "'it''s'" {
		t.Errorf("quote doubling: got %q", got)
	}
	if got := escapeLiteral(sqlmodel.NewBool(true)); got != "1" {
		t.Errorf("bool true: got %q", got)
	}
	if got := escapeLiteral(sqlmodel.NewBytes([]byte{0xde, 0xad})); got != "X'dead'" {
		t.Errorf("bytes: got %q", got)
	}
}

func TestInterpolate(t *testing.T) {
	sql := "SELECT * FROM t WHERE id = ? AND name = ?"
	out, err := interpolate(sql, []sqlmodel.Value{sqlmodel.NewInt(5), sqlmodel.NewText("a")})
	if err != nil {
		t.Fatalf("interpolate: %v", err)
	}
	want := "SELECT * FROM t WHERE id = 5 AND name = 'a'"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestInterpolateParamCountMismatch(t *testing.T) {
	if _, err := interpolate("SELECT ?", nil); err == nil {
		t.Fatal("expected error for too few parameters")
	}
	if _, err := interpolate("SELECT 1", []sqlmodel.Value{sqlmodel.NewInt(1)}); err == nil {
		t.Fatal("expected error for too many parameters")
	}
}
