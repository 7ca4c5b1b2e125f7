package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/go-crm/authflow"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Log in with email and password. On success the access token, refresh
token and user profile are stored for this API origin.

Examples:
  crmctl login --email jane@example.com --password 'Secret123'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, path, err := a.session()
			if err != nil {
				return err
			}

			var route string
			ctrl := authflow.NewController(a.client(store), store, authflow.NavigatorFunc(func(r string) { route = r }))
			defer ctrl.Close()

			if err := ctrl.SubmitLogin(cmd.Context(), authflow.Credentials{Email: email, Password: password}); err != nil {
				fmt.Fprintln(a.out, ctrl.Message())
				return err
			}
			fmt.Fprintf(a.out, "Logged in. Session stored in %s\n", path)
			if route == authflow.RouteDashboard {
				fmt.Fprintln(a.out, "Run `crmctl dashboard` to watch the counts.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) signupCmd() *cobra.Command {
	var (
		profile       authflow.Profile
		redirectDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Register a new account. After a successful signup crmctl waits for the
redirect delay and then points you at login.

Examples:
  crmctl signup --name Jane --email jane@example.com --password 'Secret123'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.session()
			if err != nil {
				return err
			}

			redirected := make(chan string, 1)
			ctrl := authflow.NewController(a.client(store), store,
				authflow.NavigatorFunc(func(r string) {
					select {
					case redirected <- r:
					default:
					}
				}),
				authflow.WithSignupRedirectDelay(redirectDelay),
			)
			defer ctrl.Close()

			if err := ctrl.SubmitSignup(cmd.Context(), profile); err != nil {
				fmt.Fprintln(a.out, ctrl.Message())
				return err
			}
			fmt.Fprintln(a.out, ctrl.Message())

			select {
			case <-redirected:
				fmt.Fprintln(a.out, "Run `crmctl login` to sign in.")
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profile.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&profile.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&profile.Password, "password", "", "Account password")
	cmd.Flags().DurationVar(&redirectDelay, "redirect-delay", authflow.DefaultSignupRedirectDelay, "Pause before moving on to login")
	_ = cmd.Flags().MarkHidden("redirect-delay")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.session()
			if err != nil {
				return err
			}
			ctrl := authflow.NewController(a.client(store), store, authflow.NavigatorFunc(func(string) {}))
			defer ctrl.Close()

			if err := ctrl.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the user of the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.session()
			if err != nil {
				return err
			}
			ctrl := authflow.NewController(a.client(store), store, authflow.NavigatorFunc(func(string) {}))
			defer ctrl.Close()

			session, ok, err := ctrl.Restore()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}

			var user struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			}
			if err := json.Unmarshal(session.User, &user); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}
