// Command sqlmodelctl is a tiny diagnostic CLI over the three backend
// drivers (spec §4.1, §6): ping a connection, run an arbitrary query and
// print its rows, or show a backend's query plan for a statement. It is
// explicitly not a migration or query-builder tool, just a thin cobra
// wrapper exercising the whole driver stack, grounded on
// Higurashi09473-queen's cli.App/Run (cli/cli.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// App holds the CLI's shared state across subcommands.
type App struct {
	config  *Config
	rootCmd *cobra.Command
}

func main() {
	app := &App{config: &Config{}}

	app.rootCmd = &cobra.Command{
		Use:           "sqlmodelctl",
		Short:         "Diagnostic CLI for the sqlmodel postgres/mysql/sqlite drivers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.addGlobalFlags()
	app.rootCmd.AddCommand(
		app.pingCmd(),
		app.queryCmd(),
		app.explainCmd(),
	)

	if err := app.rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (app *App) addGlobalFlags() {
	flags := app.rootCmd.PersistentFlags()

	flags.StringVar(&app.config.Driver, "driver", "", "backend driver: postgres, mysql, or sqlite")
	flags.StringVar(&app.config.Host, "host", "", "server host (postgres/mysql)")
	flags.IntVar(&app.config.Port, "port", 0, "server port (postgres/mysql)")
	flags.StringVar(&app.config.Database, "database", "", "database name")
	flags.StringVar(&app.config.User, "user", "", "username")
	flags.StringVar(&app.config.Password, "password", "", "password")
	flags.StringVar(&app.config.SSLMode, "ssl-mode", "", "TLS mode (postgres: disable/prefer/require/verify-ca/verify-full; mysql: disabled/preferred/required)")
	flags.StringVar(&app.config.Path, "path", "", "database file path, or \":memory:\" (sqlite)")
	flags.DurationVar(&app.config.Timeout, "timeout", 0, "connect timeout")
	flags.StringVar(&app.config.ConfigFile, "config", "", "optional YAML config file (e.g. sqlmodel.yaml)")
	flags.BoolVar(&app.config.JSON, "json", false, "output rows as JSON instead of a text table")
}
