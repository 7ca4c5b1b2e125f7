// Package cli implements crmctl, the terminal client for the CRM API.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-crm/apiclient"
	"github.com/jrsteele09/go-crm/credentials"
	"github.com/jrsteele09/go-crm/credentials/filekv"
	"github.com/jrsteele09/go-crm/internal/config"
	"github.com/jrsteele09/go-crm/internal/logging"
	"github.com/spf13/cobra"
)

// app holds the flag values shared by every command.
type app struct {
	out            io.Writer
	apiURL         string
	credentialsDir string
	timeout        time.Duration
	pollInterval   time.Duration
}

// Execute runs crmctl and exits non-zero on failure.
func Execute() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.GetEnv(), cfg.GetLogLevel(), os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(cfg, os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with defaults taken from cfg.
func NewRootCmd(cfg config.ClientConfig, out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Terminal client for the CRM API",
		Long:          "Log in, sign up and watch the CRM dashboard counts from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", cfg.GetAPIBaseURL(), "CRM API base URL")
	flags.StringVar(&a.credentialsDir, "credentials-dir", cfg.GetCredentialsDir(), "Directory holding stored sessions (default: user config dir)")
	flags.DurationVar(&a.timeout, "timeout", cfg.GetRequestTimeout(), "Per-request timeout")
	a.pollInterval = cfg.GetPollInterval()

	root.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.leadsCmd(),
		a.employeesCmd(),
		envCmd(),
	)
	return root
}

// session opens the credential store for the configured API origin.
func (a *app) session() (*credentials.Store, string, error) {
	path, err := filekv.PathFor(a.credentialsDir, a.apiURL)
	if err != nil {
		return nil, "", err
	}
	return credentials.NewStore(filekv.New(path)), path, nil
}

// client returns an API client whose protected calls carry the stored token.
func (a *app) client(store *credentials.Store) *apiclient.Client {
	return apiclient.New(a.apiURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: a.timeout}),
		apiclient.WithTokenSource(apiclient.StoreTokenSource{Sessions: store}),
	)
}

func envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables crmctl and the server read",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Description())
		},
	}
}
