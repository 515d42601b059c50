package main

import (
	"context"
	"fmt"

	"github.com/sqlmodel-go/sqlmodel"
	"github.com/sqlmodel-go/sqlmodel/expr"
	"github.com/sqlmodel-go/sqlmodel/mysql"
	"github.com/sqlmodel-go/sqlmodel/postgres"
	"github.com/sqlmodel-go/sqlmodel/sqlite"
)

// connect dials whichever of the three backends cfg.Driver names,
// returning the uniform sqlmodel.Connection contract (spec §4.1) so every
// subcommand below is driver-agnostic past this point.
func connect(ctx context.Context, cfg *Config) (sqlmodel.Connection, error) {
	switch cfg.Driver {
	case "postgres", "postgresql":
		pgCfg, err := cfg.postgresConfig()
		if err != nil {
			return nil, err
		}
		return postgres.Connect(ctx, pgCfg)
	case "mysql":
		myCfg, err := cfg.mysqlConfig()
		if err != nil {
			return nil, err
		}
		return mysql.Connect(ctx, myCfg)
	case "sqlite", "sqlite3":
		return sqlite.Connect(ctx, cfg.sqliteConfig())
	case "":
		return nil, fmt.Errorf("driver is required (use --driver, a config file, or SQLMODELCTL_DRIVER)")
	default:
		return nil, fmt.Errorf("unrecognized driver %q (want postgres, mysql, or sqlite)", cfg.Driver)
	}
}

// dialectFor maps a driver name to the expr package's dialect enum, used
// by the explain subcommand to pick the right EXPLAIN syntax.
func dialectFor(driver string) (expr.Dialect, error) {
	switch driver {
	case "postgres", "postgresql":
		return expr.Postgres, nil
	case "mysql":
		return expr.Mysql, nil
	case "sqlite", "sqlite3":
		return expr.Sqlite, nil
	default:
		return 0, fmt.Errorf("unrecognized driver %q", driver)
	}
}
