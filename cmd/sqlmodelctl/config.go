package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sqlmodel-go/sqlmodel/mysql"
	"github.com/sqlmodel-go/sqlmodel/postgres"
	"github.com/sqlmodel-go/sqlmodel/sqlite"
)

// Config holds the connection parameters needed to dial any one of the
// three backends (spec §6.5's per-driver Config structs, flattened into
// one CLI-facing shape), grounded on Higurashi09473-queen's cli.Config and
// its flags > env > config-file precedence (cli/config.go).
type Config struct {
	Driver   string        `yaml:"driver"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Database string        `yaml:"database"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	SSLMode  string        `yaml:"ssl_mode"`
	Path     string        `yaml:"path"` // sqlite file path, or ":memory:"
	Timeout  time.Duration `yaml:"connect_timeout"`

	ConfigFile string `yaml:"-"`
	JSON       bool   `yaml:"-"`
}

// load applies environment variables, then the optional YAML config file,
// over whatever cobra flags already populated — flags win, since
// loadEnv/loadFile only fill in fields still at their zero value, and env
// is applied before the file so it wins over the file
// (spec §9 ambient: "Configuration priority: flags > env > file"), the same
// precedence Higurashi09473-queen's loadConfig follows.
func (c *Config) load() error {
	c.loadEnv()
	if c.ConfigFile != "" {
		if err := c.loadFile(c.ConfigFile); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if c.Driver == "" {
		c.Driver = fromFile.Driver
	}
	if c.Host == "" {
		c.Host = fromFile.Host
	}
	if c.Port == 0 {
		c.Port = fromFile.Port
	}
	if c.Database == "" {
		c.Database = fromFile.Database
	}
	if c.User == "" {
		c.User = fromFile.User
	}
	if c.Password == "" {
		c.Password = fromFile.Password
	}
	if c.SSLMode == "" {
		c.SSLMode = fromFile.SSLMode
	}
	if c.Path == "" {
		c.Path = fromFile.Path
	}
	if c.Timeout == 0 {
		c.Timeout = fromFile.Timeout
	}
	return nil
}

func (c *Config) loadEnv() {
	if c.Driver == "" {
		c.Driver = os.Getenv("SQLMODELCTL_DRIVER")
	}
	if c.Host == "" {
		c.Host = os.Getenv("SQLMODELCTL_HOST")
	}
	if c.Database == "" {
		c.Database = os.Getenv("SQLMODELCTL_DATABASE")
	}
	if c.User == "" {
		c.User = os.Getenv("SQLMODELCTL_USER")
	}
	if c.Password == "" {
		c.Password = os.Getenv("SQLMODELCTL_PASSWORD")
	}
	if c.Path == "" {
		c.Path = os.Getenv("SQLMODELCTL_PATH")
	}
}

// postgresConfig builds a postgres.Config from the flattened CLI config.
func (c *Config) postgresConfig() (postgres.Config, error) {
	mode := postgres.SSLDisable
	if c.SSLMode != "" {
		parsed, err := postgres.ParseSSLMode(c.SSLMode)
		if err != nil {
			return postgres.Config{}, err
		}
		mode = parsed
	}
	return postgres.Config{
		Host:           c.Host,
		Port:           c.Port,
		Database:       c.Database,
		User:           c.User,
		Password:       c.Password,
		ConnectTimeout: c.Timeout,
		SSLMode:        mode,
	}, nil
}

// mysqlConfig builds a mysql.Config from the flattened CLI config.
func (c *Config) mysqlConfig() (mysql.Config, error) {
	mode := mysql.TLSDisabled
	switch c.SSLMode {
	case "", "disabled":
		mode = mysql.TLSDisabled
	case "preferred":
		mode = mysql.TLSPreferred
	case "required":
		mode = mysql.TLSRequired
	default:
		return mysql.Config{}, fmt.Errorf("unrecognized ssl mode %q for mysql", c.SSLMode)
	}
	return mysql.Config{
		Host:           c.Host,
		Port:           c.Port,
		Database:       c.Database,
		User:           c.User,
		Password:       c.Password,
		ConnectTimeout: c.Timeout,
		TLS:            mode,
	}, nil
}

// sqliteConfig builds a sqlite.Config from the flattened CLI config.
func (c *Config) sqliteConfig() sqlite.Config {
	path := c.Path
	if path == "" {
		path = c.Database
	}
	return sqlite.Config{Path: path}
}
