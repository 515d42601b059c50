package sqlite

// Config is the SQLite connection configuration (spec §4.4, §6.5). Path
// may be a filesystem path or ":memory:"; ForeignKeys defaults to
// enabled and BusyTimeoutMillis to a conservative non-zero wait; Dial in
// conn.go applies them as pragmas when the database is opened.
type Config struct {
	Path              string
	ForeignKeys       *bool
	BusyTimeoutMillis int
	JournalModeWAL    bool
}

func (c Config) withDefaults() Config {
	if c.BusyTimeoutMillis == 0 {
		c.BusyTimeoutMillis = 5000
	}
	if c.ForeignKeys == nil {
		enabled := true
		c.ForeignKeys = &enabled
	}
	return c
}
