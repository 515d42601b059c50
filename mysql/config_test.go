package mysql

import "testing"

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Host: "db.internal"}.withDefaults()
	if cfg.Port != 3306 {
		t.Errorf("Port = %d, want 3306", cfg.Port)
	}
	if cfg.ConnectTimeout == 0 {
		t.Error("ConnectTimeout should default to a non-zero value")
	}
	if cfg.Charset != defaultCharset {
		t.Errorf("Charset = %q, want %q", cfg.Charset, defaultCharset)
	}
	if cfg.MaxPacketSize != defaultMaxPacketSize {
		t.Errorf("MaxPacketSize = %d, want %d", cfg.MaxPacketSize, defaultMaxPacketSize)
	}
}

func TestConfigWithDefaultsRespectsExplicitValues(t *testing.T) {
	cfg := Config{Host: "db.internal", Charset: "utf8mb4_general_ci", MaxPacketSize: 1 << 20}.withDefaults()
	if cfg.Charset != "utf8mb4_general_ci" {
		t.Errorf("Charset = %q, want explicit value preserved", cfg.Charset)
	}
	if cfg.MaxPacketSize != 1<<20 {
		t.Errorf("MaxPacketSize = %d, want explicit value preserved", cfg.MaxPacketSize)
	}
}

func TestCollationID(t *testing.T) {
	if got := collationID(""); got != charsetCollations[defaultCharset] {
		t.Errorf("collationID(\"\") = %d, want default %d", got, charsetCollations[defaultCharset])
	}
	if got := collationID("unknown_charset"); got != charsetCollations[defaultCharset] {
		t.Errorf("collationID(unknown) = %d, want default %d", got, charsetCollations[defaultCharset])
	}
	if got := collationID("utf8_general_ci"); got != 33 {
		t.Errorf("collationID(utf8_general_ci) = %d, want 33", got)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := Config{Host: "db.internal", Port: 3307}
	if got := cfg.address(); got != "db.internal:3307" {
		t.Errorf("address = %q", got)
	}
}
