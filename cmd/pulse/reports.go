package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/export"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/spf13/cobra"
)

func reportsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Generate, read and export reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReportsList(cmd, opts)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List generated reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReportsList(cmd, opts)
		},
	})
	cmd.AddCommand(reportsShowCmd(opts))
	cmd.AddCommand(reportsCreateCmd(opts))
	cmd.AddCommand(reportsExportCmd(opts))
	return cmd
}

func runReportsList(cmd *cobra.Command, opts *rootOptions) error {
	return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
		r := views.NewReports(a.deps())
		if err := r.Mount(ctx); err != nil {
			return reported(err)
		}
		if r.Len() == 0 {
			fmt.Fprintln(a.out, cli.FormatInfo("No reports yet. Generate one with `pulse reports create`.")) //nolint:forbidigo // User-facing output
			return nil
		}
		return cli.RenderReports(a.out, r.Items(), r.AnalysisTitle)
	})
}

func reportsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				rep, err := views.NewReports(a.deps()).Get(ctx, args[0])
				if err != nil {
					return reported(err)
				}
				return cli.RenderReport(a.out, rep)
			})
		},
	}
}

func reportsCreateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a report from an analysis",
		Long: `Generate a report from an analysis. Generation runs on the server and
can take a while; interrupting stops waiting but not the generation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analysisID, _ := cmd.Flags().GetString("analysis")
			reportType, _ := cmd.Flags().GetString("type")

			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				r := views.NewReports(a.deps())
				if err := r.Analyses.Mount(ctx); err != nil {
					return reported(err)
				}

				in := views.ReportInput{AnalysisID: analysisID, ReportType: model.ReportType(reportType)}
				if err := promptReport(ctx, a.prompter, r, &in); err != nil {
					return err
				}

				ctx, guard := cli.GuardRequest(ctx, a.errOut, "Report generation")
				defer guard.Release()

				spin := cli.StartSpinner(a.errOut, "Generating "+in.ReportType.Label())
				rep, err := r.Create(ctx, in)
				spin.Stop()
				if err != nil {
					if cli.Interrupted(ctx) {
						return cli.Reported(err)
					}
					return reported(err)
				}
				return cli.RenderReport(a.out, rep)
			})
		},
	}

	cmd.Flags().StringP("analysis", "a", "", "analysis id")
	cmd.Flags().StringP("type", "t", "", "report type (market_overview, competitor_analysis, opportunity_report)")
	return cmd
}

// promptReport fills in missing choices. With no analyses there is nothing
// to choose from and validation reports it.
func promptReport(ctx context.Context, p *cli.Prompter, r *views.Reports, in *views.ReportInput) error {
	analyses := r.Analyses.Items()
	if in.AnalysisID == "" && len(analyses) > 0 {
		titles := make([]string, len(analyses))
		for i, an := range analyses {
			titles[i] = an.Title
		}
		i, err := p.Choose(ctx, "Analysis", titles)
		if err != nil {
			return err
		}
		in.AnalysisID = analyses[i].ID
	}

	if in.ReportType == "" && len(analyses) > 0 {
		labels := make([]string, len(model.ReportTypes))
		for i, t := range model.ReportTypes {
			labels[i] = t.Label()
		}
		i, err := p.Choose(ctx, "Report type", labels)
		if err != nil {
			return err
		}
		in.ReportType = model.ReportTypes[i]
	}
	return nil
}

func reportsExportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Save a report to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")

			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				rep, err := views.NewReports(a.deps()).Get(ctx, args[0])
				if err != nil {
					return reported(err)
				}

				path, err := export.Write(dir, rep, format)
				if err != nil {
					return fmt.Errorf("failed to export report: %w", err)
				}
				fmt.Fprintln(a.out, cli.FormatSuccess("Report saved to "+path)) //nolint:forbidigo // User-facing output
				return nil
			})
		},
	}

	cmd.Flags().StringP("format", "f", string(export.FormatText), "file format (txt, md, html)")
	cmd.Flags().StringP("dir", "d", ".", "output directory")
	return cmd
}
