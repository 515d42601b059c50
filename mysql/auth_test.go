package mysql

import "testing"

func TestScrambleNativeDeterministic(t *testing.T) {
	scramble := make([]byte, 20)
	for i := range scramble {
		scramble[i] = 1
	}
	a := scrambleNative("pw", scramble)
	b := scrambleNative("pw", scramble)
	if len(a) != 20 || len(b) != 20 {
		t.Fatalf("expected 20-byte scramble, got %d/%d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("scrambleNative is not deterministic")
		}
	}
}

func TestScrambleNativeEmptyPassword(t *testing.T) {
	if got := scrambleNative("", make([]byte, 20)); got != nil {
		t.Errorf("expected nil response for empty password, got %v", got)
	}
}

func TestScrambleCachingSHA2Deterministic(t *testing.T) {
	scramble := make([]byte, 20)
	for i := range scramble {
		scramble[i] = 1
	}
	a := scrambleCachingSHA2("pw", scramble)
	b := scrambleCachingSHA2("pw", scramble)
	if len(a) != 32 {
		t.Fatalf("expected 32-byte SHA-256 scramble, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("scrambleCachingSHA2 is not deterministic")
		}
	}
}

func TestScrambleDifferentPasswordsDiffer(t *testing.T) {
	scramble := make([]byte, 20)
	a := scrambleNative("pw1", scramble)
	b := scrambleNative("pw2", scramble)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different passwords produced the same native scramble")
	}
}
