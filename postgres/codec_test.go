package postgres

import (
	"testing"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestEncodeDecodeTextRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		o    oid
		v    sqlmodel.Value
	}{
		{"int4", oidInt4, sqlmodel.NewInt(42)},
		{"bigint", oidInt8, sqlmodel.NewBigInt(-9223372036854775000)},
		{"text", oidText, sqlmodel.NewText("hello, world")},
		{"bool-true", oidBool, sqlmodel.NewBool(true)},
		{"bool-false", oidBool, sqlmodel.NewBool(false)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, isNull := encodeText(c.v)
			if isNull {
				t.Fatalf("unexpected null encoding")
			}
			got, err := decodeText(c.o, []byte(s))
			if err != nil {
				t.Fatalf("decodeText: %v", err)
			}
			if got.String() != c.v.String() {
				t.Errorf("round trip mismatch: got %v want %v", got, c.v)
			}
		})
	}
}

func TestEncodeTextNull(t *testing.T) {
	_, isNull := encodeText(sqlmodel.Null())
	if !isNull {
		t.Fatal("expected Null value to encode as NULL")
	}
}

func TestParseCommandTag(t *testing.T) {
	cases := map[string]uint64{
		"INSERT 0 1": 1,
		"UPDATE 5":   5,
		"DELETE 0":   0,
		"SELECT 10":  10,
		"BEGIN":      0,
	}
	for tag, want := range cases {
		if got := parseCommandTag(tag); got != want {
			t.Errorf("parseCommandTag(%q) = %d, want %d", tag, got, want)
		}
	}
}

func TestDecodePGArray(t *testing.T) {
	got, err := decodePGArray("{1,2,3}")
	if err != nil {
		t.Fatalf("decodePGArray: %v", err)
	}
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestDecodePGArrayMalformed(t *testing.T) {
	if _, err := decodePGArray("1,2,3"); err == nil {
		t.Fatal("expected error for malformed array literal")
	}
}
