package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/marketpulse/internal/cli"
	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/spf13/cobra"
)

func loginCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to MarketPulse",
		Long: `Sign in with your email and password. Missing values are prompted for;
the password is never echoed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			return withApp(cmd, opts, false, func(ctx context.Context, a *app) error {
				var err error
				if email == "" {
					if email, err = a.prompter.Ask(ctx, "Email", ""); err != nil {
						return err
					}
				}
				if password == "" {
					if password, err = a.prompter.AskSecret(ctx, "Password"); err != nil {
						return err
					}
				}

				if err := a.session.Login(ctx, email, password); err != nil {
					return err
				}
				return a.greet("Signed in")
			})
		},
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")
	return cmd
}

func registerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a MarketPulse account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var reg model.Registration
			reg.FullName, _ = cmd.Flags().GetString("name")
			reg.CompanyName, _ = cmd.Flags().GetString("company")
			reg.Email, _ = cmd.Flags().GetString("email")
			reg.Password, _ = cmd.Flags().GetString("password")

			return withApp(cmd, opts, false, func(ctx context.Context, a *app) error {
				prompts := []struct {
					value *string
					label string
				}{
					{&reg.FullName, "Full name"},
					{&reg.CompanyName, "Company"},
					{&reg.Email, "Email"},
				}
				for _, p := range prompts {
					if *p.value != "" {
						continue
					}
					v, err := a.prompter.Ask(ctx, p.label, "")
					if err != nil {
						return err
					}
					*p.value = v
				}
				if reg.Password == "" {
					v, err := a.prompter.AskSecret(ctx, "Password")
					if err != nil {
						return err
					}
					reg.Password = v
				}

				if err := a.session.Register(ctx, reg); err != nil {
					return err
				}
				return a.greet("Account created")
			})
		},
	}

	cmd.Flags().String("name", "", "your full name")
	cmd.Flags().String("company", "", "your company")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, false, func(ctx context.Context, a *app) error {
				if err := a.session.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out, cli.FormatSuccess("Signed out")) //nolint:forbidigo // User-facing output
				return nil
			})
		},
	}
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")

			return withApp(cmd, opts, true, func(ctx context.Context, a *app) error {
				if refresh {
					if err := a.session.Refresh(ctx); err != nil {
						if errors.Is(err, common.ErrAuthorization) {
							fmt.Fprintln(a.errOut, cli.FormatError(resource.SessionExpiredMessage)) //nolint:forbidigo // User-facing output
							return cli.Reported(err)
						}
						return err
					}
				}
				u := a.session.User()
				if u == nil {
					return errors.New("no profile available")
				}
				return cli.RenderProfile(a.out, *u)
			})
		},
	}

	cmd.Flags().Bool("refresh", false, "re-fetch the profile from the server")
	return cmd
}

func (a *app) greet(prefix string) error {
	u := a.session.User()
	if u == nil {
		return nil
	}
	_, err := fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("%s as %s (%s)", prefix, u.FullName, u.Email)))
	return err
}
