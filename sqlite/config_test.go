package sqlite

import "testing"

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Path: ":memory:"}.withDefaults()
	if cfg.BusyTimeoutMillis != 5000 {
		t.Errorf("BusyTimeoutMillis = %d, want 5000", cfg.BusyTimeoutMillis)
	}
	if cfg.ForeignKeys == nil || !*cfg.ForeignKeys {
		t.Error("ForeignKeys should default to enabled")
	}
}

func TestConfigWithDefaultsRespectsExplicitValues(t *testing.T) {
	disabled := false
	cfg := Config{Path: ":memory:", BusyTimeoutMillis: 1000, ForeignKeys: &disabled}.withDefaults()
	if cfg.BusyTimeoutMillis != 1000 {
		t.Errorf("BusyTimeoutMillis = %d, want 1000", cfg.BusyTimeoutMillis)
	}
	if cfg.ForeignKeys == nil || *cfg.ForeignKeys {
		t.Error("ForeignKeys should stay disabled when explicitly set")
	}
}
