package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmodel-go/sqlmodel"
)

func (app *App) queryCmd() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SQL statement and print its result rows",
		Long: `Run a single SQL statement against the configured backend and
print whatever rows come back (spec §4.1 Query). Positional parameters are
bound in order from --param, as text; the statement's own placeholder
syntax ($1/?1/?) is left to the caller per backend.

Examples:
  sqlmodelctl query --driver sqlite --path ./app.db "SELECT * FROM users"
  sqlmodelctl query --driver postgres --host db --user app --database app \
    --param 42 "SELECT * FROM users WHERE id = $1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.config.load(); err != nil {
				return err
			}
			ctx := context.Background()

			conn, err := connect(ctx, app.config)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer func() { _ = conn.Close(ctx) }()

			values := make([]sqlmodel.Value, len(params))
			for i, p := range params {
				values[i] = sqlmodel.NewText(p)
			}

			rows, err := conn.Query(ctx, args[0], values...)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			return printRows(rows, app.config.JSON)
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "bind a positional parameter (repeatable, bound in order)")
	return cmd
}
