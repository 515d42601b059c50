package mysql

import "testing"

func TestLenEncIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 250, 251, 65535, 65536, 1<<24 - 1, 1 << 24, 1 << 40}
	for _, v := range cases {
		buf := writeLenEncInt(nil, v)
		got, isNull, n := readLenEncInt(buf)
		if isNull {
			t.Fatalf("value %d: unexpected null", v)
		}
		if n != len(buf) {
			t.Errorf("value %d: consumed %d, want %d", v, n, len(buf))
		}
		if got != v {
			t.Errorf("value %d: got %d", v, got)
		}
	}
}

func TestLenEncStringRoundTrip(t *testing.T) {
	buf := writeLenEncString(nil, []byte("hello world"))
	got, isNull, n := readLenEncString(buf)
	if isNull {
		t.Fatal("unexpected null")
	}
	if n != len(buf) {
		t.Errorf("consumed %d, want %d", n, len(buf))
	}
	if string(got) != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestReadLenEncIntNull(t *testing.T) {
	_, isNull, n := readLenEncInt([]byte{lencNull})
	if !isNull || n != 1 {
		t.Fatalf("expected null, 1 byte consumed; got isNull=%v n=%d", isNull, n)
	}
}
