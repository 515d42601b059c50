package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmodel-go/sqlmodel"
	"github.com/sqlmodel-go/sqlmodel/expr"
)

func (app *App) explainCmd() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "explain <sql>",
		Short: "Show the backend's query plan for a statement",
		Long: `Prefix the given statement with the configured backend's
EXPLAIN variant and print the resulting plan rows: PostgreSQL and MySQL
both understand a bare EXPLAIN, SQLite needs EXPLAIN QUERY PLAN.

Examples:
  sqlmodelctl explain --driver postgres --host db --user app --database app \
    "SELECT * FROM users WHERE id = $1" --param 1
  sqlmodelctl explain --driver sqlite --path ./app.db "SELECT * FROM users"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.config.load(); err != nil {
				return err
			}
			dialect, err := dialectFor(app.config.Driver)
			if err != nil {
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

			rows, err := conn.Query(ctx, explainPrefix(dialect)+args[0], values...)
			if err != nil {
				return fmt.Errorf("explain: %w", err)
			}
			return printRows(rows, app.config.JSON)
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "bind a positional parameter (repeatable, bound in order)")
	return cmd
}

// explainPrefix returns the dialect-specific EXPLAIN keyword sequence
// (spec §4.6 dialect table has no EXPLAIN entry of its own; this mirrors
// the same per-dialect branching expr.Dialect already does for operator
// lowering).
func explainPrefix(d expr.Dialect) string {
	switch d {
	case expr.Sqlite:
		return "EXPLAIN QUERY PLAN "
	default:
		return "EXPLAIN "
	}
}
