package main

import (
	"context"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/spf13/cobra"
)

func dashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"stats"},
		Short:   "Show account totals and recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				dash := views.NewDashboard(a.deps())
				if err := dash.Mount(ctx); err != nil {
					return reported(err)
				}
				stats, _ := dash.Value()
				return cli.RenderDashboard(a.out, stats)
			})
		},
	}
}
