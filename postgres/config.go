// Package postgres implements the PostgreSQL v3 wire-protocol driver:
// startup, SCRAM-SHA-256/MD5 authentication, the extended query protocol,
// server-side prepared statements, and an optional TLS upgrade. The
// surface mirrors lib-pq's own conn.go/buf.go/scram.go/ssl.go style but
// implements sqlmodel.Connection on a mutex-guarded shared wrapper
// instead of database/sql/driver.
package postgres

import (
	"fmt"
	"strconv"
	"time"
)

// SSLMode controls whether and how the driver upgrades the connection to
// TLS (spec §6.5).
type SSLMode int

const (
	SSLDisable SSLMode = iota
	SSLPrefer
	SSLRequire
	SSLVerifyCa
	SSLVerifyFull
)

// Config is the PostgreSQL driver's configuration (spec §6.5).
type Config struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	ApplicationName string
	ConnectTimeout  time.Duration
	SSLMode         SSLMode
	CACertPath      string
	ClientCertPath  string
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 15 * time.Second
	}
	return c
}

func (c Config) address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c Config) sslRequested() bool {
	return c.SSLMode != SSLDisable
}

// ParseSSLMode parses the ssl_mode config values named in spec §6.5.
func ParseSSLMode(s string) (SSLMode, error) {
	switch s {
	case "", "disable":
		return SSLDisable, nil
	case "prefer":
		return SSLPrefer, nil
	case "require":
		return SSLRequire, nil
	case "verify-ca":
		return SSLVerifyCa, nil
	case "verify-full":
		return SSLVerifyFull, nil
	default:
		return SSLDisable, fmt.Errorf("postgres: unknown ssl_mode %q", s)
	}
}
