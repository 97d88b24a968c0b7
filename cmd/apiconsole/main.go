package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iampro1712/apiconsole/internal/cli"
	"github.com/Iampro1712/apiconsole/internal/tui"
	"github.com/Iampro1712/apiconsole/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// The payload was already printed
		if !errors.Is(err, cli.ErrRequestFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "apiconsole",
	Short: "API Console - developer console for the shop REST API",
	Long: `API Console sends requests to the shop REST API, shows formatted
responses, and keeps the bearer token returned by login for later calls.

Run without arguments to start the interactive TUI.

Examples:
  apiconsole                                  # Start interactive TUI
  apiconsole status                           # Check API health
  apiconsole login --user                     # Login and store the token
  apiconsole products --search laptop --max-price 1500
  apiconsole call orders.get --param id=12    # Call a catalog endpoint
  apiconsole request POST /cart/items -b '{"product_id":1,"quantity":2}'
  apiconsole request GET /products -q 'products[].name'`,
	Version:       version.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.Run(cmd.Context(), tui.Options{
			Console:   a.console,
			Catalog:   a.catalog,
			Notices:   a.notices,
			Bookmarks: a.bookmarks,
			Logger:    a.logger,
		})
	},
}

// Global flags
var (
	flagBaseURL   string
	flagSettings  string
	flagEphemeral bool
	flagLogLevel  string
	flagVerbose   bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBaseURL, "base-url", "", "API base URL (overrides settings and $APICONSOLE_BASE_URL)")
	pf.StringVar(&flagSettings, "settings", "", "Settings file (default ~/.apiconsole/settings.yaml)")
	pf.BoolVar(&flagEphemeral, "ephemeral", false, "Keep the token in memory and skip history")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Also log to stderr (non-interactive commands)")

	rootCmd.AddCommand(
		statusCmd,
		requestCmd,
		callCmd,
		productsCmd,
		loginCmd,
		tokenCmd,
		endpointsCmd,
		historyCmd,
		statsCmd,
		filtersCmd,
		mockCmd,
		versionCmd,
	)
}
