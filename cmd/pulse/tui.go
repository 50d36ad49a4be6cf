package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/marketpulse/internal/export"
	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/tui"
	"github.com/Veraticus/marketpulse/internal/tui/themes"
	"github.com/spf13/cobra"
)

func tuiFlags(cmd *cobra.Command) {
	cmd.Flags().String("theme", "default", "color theme")
	cmd.Flags().String("start", string(gate.RouteDashboard), "screen to open first")
	cmd.Flags().String("export-dir", ".", "directory exported reports are written to")
	cmd.Flags().String("export-format", string(export.FormatText), "export format (txt, md, html)")
	cmd.Flags().Bool("no-animations", false, "disable the spinner and timed notices")
}

func (o *rootOptions) runTUI(cmd *cobra.Command, _ []string) error {
	themeName, _ := cmd.Flags().GetString("theme")
	theme, ok := themes.ByName(themeName)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", themeName, themes.Names())
	}

	formatName, _ := cmd.Flags().GetString("export-format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	start, _ := cmd.Flags().GetString("start")
	exportDir, _ := cmd.Flags().GetString("export-dir")
	noAnimations, _ := cmd.Flags().GetBool("no-animations")

	a, err := newApp(cmd, o)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			slog.Warn("Failed to close credential store", "error", cerr)
		}
	}()

	if err := o.redirectLogs(a.settings.LogFile); err != nil {
		return err
	}
	slog.Info("Starting interactive client", "api", a.settings.BaseURL)

	return tui.Run(cmd.Context(), a.session, a.client,
		tui.WithTheme(theme),
		tui.WithStartRoute(gate.Route(start)),
		tui.WithExportDir(exportDir),
		tui.WithExportFormat(format),
		tui.WithAnimations(!noAnimations),
	)
}
