package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := buildClient(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			health, err := client.HealthCheck(ctx)
			if err != nil {
				return fmt.Errorf("backend at %s is not healthy: %w", cfg.Backend.URL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s: ok=%t\n", health.Name, cfg.Backend.URL, health.OK)
			return nil
		},
	}
}
