package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/spf13/cobra"
)

func pingCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the API is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			attempts, _ := cmd.Flags().GetInt("attempts")

			return withApp(cmd, opts, false, func(ctx context.Context, a *app) error {
				var status string
				start := time.Now()
				err := common.WithRetry(ctx, func() error {
					var herr error
					status, herr = a.client.Health(ctx)
					return herr
				}, common.RetryOptions{MaxAttempts: attempts, InitialDelay: 250 * time.Millisecond})
				if err != nil {
					return fmt.Errorf("API at %s is unreachable: %w", a.settings.BaseURL, err)
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("%s is %s (%s)", //nolint:forbidigo // User-facing output
					a.settings.BaseURL, status, time.Since(start).Round(time.Millisecond))))
				return nil
			})
		},
	}

	cmd.Flags().Int("attempts", 3, "attempts before giving up")
	return cmd
}
