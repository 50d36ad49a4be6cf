package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// rootOptions carries the state shared by every command.
type rootOptions struct {
	v       *viper.Viper
	logFile io.Closer
	cfgFile   string
	envFile   string
	ephemeral bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "📈 MarketPulse market intelligence client",
		Long: `pulse is a terminal client for MarketPulse: create market analyses,
track the opportunities they uncover and generate reports.

Run without a command to open the interactive interface.`,
		PersistentPreRunE:  opts.initConfig,
		PersistentPostRunE: opts.cleanup,
		RunE:               opts.runTUI,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.config/pulse/config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("api-url", "", "MarketPulse API base URL")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep the session in memory only")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	_ = opts.v.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = opts.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	tuiFlags(cmd)

	cmd.AddCommand(loginCmd(opts))
	cmd.AddCommand(registerCmd(opts))
	cmd.AddCommand(logoutCmd(opts))
	cmd.AddCommand(whoamiCmd(opts))
	cmd.AddCommand(dashboardCmd(opts))
	cmd.AddCommand(analysesCmd(opts))
	cmd.AddCommand(opportunitiesCmd(opts))
	cmd.AddCommand(reportsCmd(opts))
	cmd.AddCommand(pingCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !cli.WasReported(err) {
			fmt.Fprintln(os.Stderr, cli.FormatError(common.Message(err, err.Error()))) //nolint:forbidigo // Final error output
		}
		os.Exit(1)
	}
}

func (o *rootOptions) initConfig(cmd *cobra.Command, _ []string) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	}

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		o.v.AddConfigPath(dir)
		o.v.AddConfigPath(".")
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
	}

	o.v.SetEnvPrefix("PULSE")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()
	config.SetDefaults(o.v)
	if o.ephemeral {
		o.v.Set("credentials.backend", config.BackendMemory)
	}

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return o.setupLogging(cmd.ErrOrStderr())
}

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pulse"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pulse"), nil
}

func (o *rootOptions) setupLogging(w io.Writer) error {
	level, err := common.ParseLevel(o.v.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(w, level, o.v.GetString("logging.format"))
}

// redirectLogs sends logging to a file so it does not draw over the TUI.
func (o *rootOptions) redirectLogs(path string) error {
	if path == "" {
		dir, err := config.DataDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "pulse.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	o.logFile = f
	return o.setupLogging(f)
}

func (o *rootOptions) cleanup(_ *cobra.Command, _ []string) error {
	if o.logFile == nil {
		return nil
	}
	err := o.logFile.Close()
	o.logFile = nil
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pulse %s\n", version) //nolint:forbidigo // User-facing output
			slog.Debug("Version requested", "version", version)
		},
	}
}
