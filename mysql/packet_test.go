package mysql

import (
	"bytes"
	"testing"
)

func TestPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pr := newPacketReader(&buf)
	payload := []byte("hello mysql")
	if err := writePacket(&buf, pr, payload); err != nil {
		t.Fatalf("writePacket: %v", err)
	}
	pr2 := newPacketReader(&buf)
	got, err := pr2.readPacket()
	if err != nil {
		t.Fatalf("readPacket: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestPacketMultiPacketReassembly(t *testing.T) {
	var buf bytes.Buffer
	pr := newPacketReader(&buf)
	payload := make([]byte, maxPacketSize+100)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	if err := writePacket(&buf, pr, payload); err != nil {
		t.Fatalf("writePacket: %v", err)
	}
	pr2 := newPacketReader(&buf)
	got, err := pr2.readPacket()
	if err != nil {
		t.Fatalf("readPacket: %v", err)
	}
	if len(got) != len(payload) {
		t.Fatalf("got %d bytes, want %d", len(got), len(payload))
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("mismatch at byte %d", i)
		}
	}
}

func TestPacketExactMultipleGetsTerminator(t *testing.T) {
	var buf bytes.Buffer
	pr := newPacketReader(&buf)
	payload := make([]byte, maxPacketSize)
	if err := writePacket(&buf, pr, payload); err != nil {
		t.Fatalf("writePacket: %v", err)
	}
	pr2 := newPacketReader(&buf)
	got, err := pr2.readPacket()
	if err != nil {
		t.Fatalf("readPacket: %v", err)
	}
	if len(got) != len(payload) {
		t.Fatalf("got %d bytes, want %d", len(got), len(payload))
	}
}
