package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/marketpulse/internal/api"
	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/config"
	"github.com/Veraticus/marketpulse/internal/credentials"
	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/spf13/cobra"
)

// app is the wiring behind one command invocation.
type app struct {
	out      io.Writer
	errOut   io.Writer
	store    credentials.Store
	client   *api.Client
	session  *session.Controller
	prompter *cli.Prompter
	settings config.Settings
}

// newApp loads settings and opens the credential store. The session is left
// Initializing. Callers must Close the result.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	settings, err := config.Load(opts.v)
	if err != nil {
		return nil, err
	}

	store, err := credentials.Open(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	client, err := api.New(settings.BaseURL,
		api.WithTimeout(settings.Timeout),
		api.WithUserAgent("pulse/"+version),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		store:    store,
		client:   client,
		session:  session.New(store, client),
		prompter: cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		settings: settings,
	}
	return a, nil
}

// Close releases the credential store.
func (a *app) Close() error {
	return a.store.Close()
}

// requireAuth applies the protected-route gate to a command.
func (a *app) requireAuth() error {
	d := gate.Protected{SignIn: gate.RouteLogin}.Evaluate(a.session.State())
	if d.Outcome == gate.Allow {
		return nil
	}
	fmt.Fprintln(a.errOut, cli.FormatWarning("You are not signed in. Run `pulse login` first.")) //nolint:forbidigo // User-facing output
	return cli.Reported(session.ErrNoSession)
}

// deps builds the view dependencies with notices printed to stderr.
func (a *app) deps() views.Deps {
	return views.Deps{
		Backend:  a.client,
		Session:  a.session,
		Notifier: cli.NewNotifier(a.errOut),
	}
}

// withApp runs fn with a ready app, closing it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, protected bool, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			slog.Warn("Failed to close credential store", "error", cerr)
		}
	}()

	if err := a.session.Initialize(cmd.Context()); err != nil {
		slog.Warn("Stored session could not be restored", "error", err)
	}
	if protected {
		if err := a.requireAuth(); err != nil {
			return err
		}
	}
	return fn(cmd.Context(), a)
}

// reported marks errors the resource layer already printed as notices.
func reported(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return cli.Reported(err)
}
