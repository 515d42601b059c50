package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (app *App) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Open a connection and run a round-trip liveness check",
		Long: `Connect to the configured backend and issue its cheapest
possible round trip (spec §4.1 Ping), reporting the elapsed time.

Examples:
  sqlmodelctl ping --driver postgres --host localhost --user app --database app
  sqlmodelctl ping --driver sqlite --path ./app.db`,
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

			start := time.Now()
			if err := conn.Ping(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			fmt.Printf("ok (%s), state=%s\n", time.Since(start), conn.State())
			return nil
		},
	}
}
