package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/unieats/internal/app"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local dashboard with metrics and health endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.deps.Config.HTTPAddr = addr
			}
			err := app.Run(cmd.Context(), c.deps)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
