package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/spf13/cobra"
)

func analysesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyses",
		Aliases: []string{"analysis"},
		Short:   "Manage market analyses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysesList(cmd, opts)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysesList(cmd, opts)
		},
	})
	cmd.AddCommand(analysesShowCmd(opts))
	cmd.AddCommand(analysesCreateCmd(opts))
	cmd.AddCommand(analysesDeleteCmd(opts))
	return cmd
}

func runAnalysesList(cmd *cobra.Command, opts *rootOptions) error {
	return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
		an := views.NewAnalyses(a.deps())
		if err := an.Mount(ctx); err != nil {
			return reported(err)
		}
		if an.Len() == 0 {
			fmt.Fprintln(a.out, cli.FormatInfo("No analyses yet. Create one with `pulse analyses create`.")) //nolint:forbidigo // User-facing output
			return nil
		}
		return cli.RenderAnalyses(a.out, an.Items())
	})
}

func analysesShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an analysis with its insights and opportunities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				an, err := views.NewAnalyses(a.deps()).Get(ctx, args[0])
				if err != nil {
					return reported(err)
				}
				return cli.RenderAnalysis(a.out, an)
			})
		},
	}
}

func analysesCreateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new market analysis",
		Long: `Start a new market analysis. Title, industry and target market are
required and prompted for when not given as flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in views.AnalysisInput
			in.Title, _ = cmd.Flags().GetString("title")
			in.Industry, _ = cmd.Flags().GetString("industry")
			in.TargetMarket, _ = cmd.Flags().GetString("target")
			in.Competitors, _ = cmd.Flags().GetString("competitors")
			in.Description, _ = cmd.Flags().GetString("description")

			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				if err := promptAnalysis(ctx, a.prompter, &in); err != nil {
					return err
				}

				ctx, guard := cli.GuardRequest(ctx, a.errOut, "Analysis creation")
				defer guard.Release()

				spin := cli.StartSpinner(a.errOut, "Creating analysis")
				created, err := views.NewAnalyses(a.deps()).Create(ctx, in)
				spin.Stop()
				if err != nil {
					if cli.Interrupted(ctx) {
						return cli.Reported(err)
					}
					return reported(err)
				}
				return cli.RenderAnalysis(a.out, created)
			})
		},
	}

	cmd.Flags().String("title", "", "analysis title")
	cmd.Flags().String("industry", "", "industry")
	cmd.Flags().String("target", "", "target market")
	cmd.Flags().String("competitors", "", "comma separated competitors")
	cmd.Flags().String("description", "", "what the analysis should focus on")
	return cmd
}

func promptAnalysis(ctx context.Context, p *cli.Prompter, in *views.AnalysisInput) error {
	var err error
	if in.Title == "" {
		if in.Title, err = p.Ask(ctx, "Title", ""); err != nil {
			return err
		}
	}
	if in.Industry == "" {
		i, err := p.Choose(ctx, "Industry", model.Industries)
		if err != nil {
			return err
		}
		in.Industry = model.Industries[i]
	}
	if in.TargetMarket == "" {
		if in.TargetMarket, err = p.Ask(ctx, "Target market", ""); err != nil {
			return err
		}
	}
	return nil
}

func analysesDeleteCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				var confirm resource.Confirmer = resource.Confirmed
				if !yes {
					confirm = a.prompter.Confirmer(ctx)
				}

				err := views.NewAnalyses(a.deps()).Remove(ctx, args[0], confirm)
				if errors.Is(err, resource.ErrDeclined) {
					fmt.Fprintln(a.errOut, cli.FormatInfo("Nothing deleted")) //nolint:forbidigo // User-facing output
					return nil
				}
				return reported(err)
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "delete without asking")
	return cmd
}
