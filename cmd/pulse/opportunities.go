package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/spf13/cobra"
)

func opportunitiesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "opportunities",
		Aliases: []string{"opps"},
		Short:   "List opportunities found by your analyses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			if priority != views.PriorityAll && !model.Level(priority).Valid() {
				return fmt.Errorf("invalid priority %q: use all, %v", priority, model.Levels)
			}
			summary, _ := cmd.Flags().GetBool("summary")

			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				opps := views.NewOpportunities(a.deps())
				if err := opps.Mount(ctx); err != nil {
					return reported(err)
				}

				shown := opps.FilterByPriority(priority)
				if len(shown) == 0 {
					fmt.Fprintln(a.out, cli.FormatInfo("No opportunities match.")) //nolint:forbidigo // User-facing output
					return nil
				}
				if err := cli.RenderOpportunities(a.out, shown); err != nil {
					return err
				}
				if summary {
					return renderRevenueSummary(a, opps, views.SummarizeRevenue(shown))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringP("priority", "p", views.PriorityAll, "filter by priority (all, high, medium, low)")
	cmd.Flags().Bool("summary", false, "print counts and a revenue estimate")
	return cmd
}

func renderRevenueSummary(a *app, opps *views.Opportunities, sum views.RevenueSummary) error {
	counts := opps.CountByPriority()

	fmt.Fprintln(a.out) //nolint:forbidigo // User-facing output
	for _, l := range model.Levels {
		fmt.Fprintf(a.out, "%s %-6s %d\n", cli.LevelBadge(l), l, counts[l]) //nolint:forbidigo // User-facing output
	}
	if sum.Parsed == 0 {
		return nil
	}
	_, err := fmt.Fprintf(a.out, "Potential revenue: %s %.0f - %.0f (median %.0f, %d unparsed)\n",
		sum.Currency, sum.TotalLow, sum.TotalHigh, sum.MedianMiddle, sum.Unparsed)
	return err
}
