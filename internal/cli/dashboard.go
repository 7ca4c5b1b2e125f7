package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jrsteele09/go-crm/metrics"
	"github.com/spf13/cobra"
)

func (a *app) dashboardCmd() *cobra.Command {
	var (
		once       bool
		interval   time.Duration
		backoffMax time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Watch the lead and employee counts",
		Long: `Fetch the lead and employee counts together and refresh them on an
interval until interrupted. A cycle in which either request fails keeps the
previous counts.

Examples:
  crmctl dashboard
  crmctl dashboard --once
  crmctl dashboard --interval 10s --backoff-max 2m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			if backoffMax < 0 {
				return fmt.Errorf("--backoff-max must not be negative, got %s", backoffMax)
			}

			store, _, err := a.session()
			if err != nil {
				return err
			}
			client := a.client(store)

			options := []metrics.PollerOption{
				metrics.WithInterval(interval),
				metrics.WithRequestTimeout(a.timeout),
			}
			if backoffMax > 0 {
				options = append(options, metrics.WithBackoff(metrics.ExponentialBackoff{Max: backoffMax}))
			}
			poller := metrics.NewPoller(
				metrics.CountFetcherFunc(client.LeadsCount),
				metrics.CountFetcherFunc(client.EmployeesCount),
				options...,
			)

			if once {
				snap := poller.Refresh(cmd.Context())
				printSnapshot(a.out, snap)
				return snap.LastError
			}

			updates := poller.Subscribe()
			poller.Start(cmd.Context())
			defer poller.Stop()

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case snap, ok := <-updates:
					if !ok {
						return nil
					}
					printSnapshot(a.out, snap)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Fetch once and exit")
	cmd.Flags().DurationVar(&interval, "interval", a.pollInterval, "Refresh interval")
	cmd.Flags().DurationVar(&backoffMax, "backoff-max", 0, "Back off exponentially after failures, up to this delay (0 keeps the fixed interval)")
	return cmd
}

func printSnapshot(w io.Writer, snap metrics.Snapshot) {
	if snap.Loading {
		fmt.Fprintf(w, "Leads: %s  Employees: %s  (refreshing)\n", formatCount(snap.LeadsCount), formatCount(snap.EmployeesCount))
		return
	}
	fmt.Fprintf(w, "Leads: %s  Employees: %s\n", formatCount(snap.LeadsCount), formatCount(snap.EmployeesCount))
	if snap.LastError != nil {
		fmt.Fprintf(w, "  last refresh failed: %v\n", snap.LastError)
	}
}

func formatCount(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
