package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/cli"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/logging"
	"github.com/Iampro1712/apiconsole/internal/mock"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/Iampro1712/apiconsole/internal/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the API health endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		status := a.console.Probe(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n", status.Label(), a.console.Config().BaseURL)
		if status.Message != "" {
			fmt.Fprintln(out, status.Message)
		}
		if !status.OK {
			return cli.ErrRequestFailed
		}
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show or change the stored bearer token",
}

var flagReveal bool

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := a.console.Token(cmd.Context())
		if err != nil {
			return err
		}
		switch {
		case token == "":
			fmt.Fprintln(os.Stderr, "No token stored")
		case flagReveal || !cli.IsTerminal(os.Stdout):
			fmt.Fprintln(cmd.OutOrStdout(), token)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), maskToken(token))
		}
		return nil
	},
}

// maskToken keeps the first and last characters of long tokens
func maskToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}

var tokenSetCmd = &cobra.Command{
	Use:   "set TOKEN",
	Short: "Store a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.console.SetToken(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Token saved")
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.console.ClearToken(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, console.MsgTokenCleared)
		return nil
	},
}

var tokenCaptureCmd = &cobra.Command{
	Use:   "capture [FILE]",
	Short: "Store the token found in a JSON response (file or stdin)",
	Example: `  curl -s -X POST localhost:5000/api/auth/login -d @creds.json | apiconsole token capture
  apiconsole token capture login-response.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		_, result := a.console.AutoSetToken(cmd.Context(), string(data))
		switch result {
		case render.CaptureFound:
			fmt.Fprintln(os.Stderr, console.MsgTokenSaved)
			return nil
		case render.CaptureNoToken:
			return fmt.Errorf("%s", console.MsgNoTokenFound)
		default:
			return fmt.Errorf("%s: input is not valid JSON", console.MsgTokenExtractFail)
		}
	},
}

var endpointsCmd = &cobra.Command{
	Use:   "endpoints [SEARCH]",
	Short: "List catalog endpoints",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		endpoints := a.catalog.Endpoints()
		if len(args) == 1 {
			endpoints = a.catalog.Find(args[0])
		}

		switch flagListOutput {
		case cli.FormatJSON, cli.FormatYAML:
			return encode(cmd.OutOrStdout(), flagListOutput, endpoints)
		}

		rows := make([][]string, 0, len(endpoints))
		for _, ep := range endpoints {
			flags := ""
			if ep.RequiresAuth {
				flags += "auth "
			}
			if ep.CapturesAuthToken {
				flags += "token"
			}
			rows = append(rows, []string{ep.Name, ep.Method, ep.Path, strings.TrimSpace(flags), ep.Description})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"NAME", "METHOD", "PATH", "FLAGS", "DESCRIPTION"}, rows))
		return nil
	},
}

var (
	flagListOutput   string
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear recorded exchanges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.history == nil {
			return fmt.Errorf("history is disabled (history: false in settings, or --ephemeral)")
		}

		if flagHistoryClear {
			if err := a.history.Clear(cmd.Context()); err != nil {
				return err
			}
			a.analytics.Invalidate()
			fmt.Fprintln(os.Stderr, "History cleared")
			return nil
		}

		entries, err := a.history.Load(cmd.Context(), flagHistoryLimit)
		if err != nil {
			return err
		}

		switch flagListOutput {
		case cli.FormatJSON, cli.FormatYAML:
			return encode(cmd.OutOrStdout(), flagListOutput, entries)
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			status := strconv.Itoa(e.ResponseStatus)
			if e.Outcome != types.OutcomeOK.String() {
				status = e.Outcome
			}
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.Timestamp,
				e.Method,
				e.URL,
				status,
				fmt.Sprintf("%dms", e.Duration),
				executor.FormatSize(e.ResponseSize),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "TIME", "METHOD", "URL", "STATUS", "DURATION", "SIZE"}, rows))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-endpoint statistics from history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.analytics == nil {
			return fmt.Errorf("stats need the history database (drop --ephemeral)")
		}

		stats, err := a.analytics.PerEndpoint(cmd.Context())
		if err != nil {
			return err
		}

		switch flagListOutput {
		case cli.FormatJSON, cli.FormatYAML:
			return encode(cmd.OutOrStdout(), flagListOutput, stats)
		}

		rows := make([][]string, 0, len(stats))
		for _, s := range stats {
			rows = append(rows, []string{
				s.Endpoint,
				s.Method,
				strconv.Itoa(s.TotalCalls),
				fmt.Sprintf("%.0f%%", s.SuccessRate()*100),
				strconv.Itoa(s.ErrorCount),
				strconv.Itoa(s.NetworkErrors),
				strconv.Itoa(s.Validation),
				fmt.Sprintf("%.0fms", s.AvgDurationMs),
				fmt.Sprintf("%dms", s.MaxDurationMs),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ENDPOINT", "METHOD", "CALLS", "2XX", "4XX/5XX", "NETWORK", "INVALID", "AVG", "MAX"}, rows))
		return nil
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters [SEARCH]",
	Short: "List saved filter expressions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.bookmarks == nil {
			return fmt.Errorf("saved filters need the database (drop --ephemeral)")
		}

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		list, err := a.bookmarks.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		for _, b := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", b.ID, b.Expression)
		}
		return nil
	},
}

var filtersAddCmd = &cobra.Command{
	Use:   "add EXPRESSION",
	Short: "Save a filter expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.bookmarks == nil {
			return fmt.Errorf("saved filters need the database (drop --ephemeral)")
		}
		added, err := a.bookmarks.Save(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintln(os.Stderr, "Filter already saved")
		}
		return nil
	},
}

var filtersRemoveCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a saved filter expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.bookmarks == nil {
			return fmt.Errorf("saved filters need the database (drop --ephemeral)")
		}
		return a.bookmarks.Delete(cmd.Context(), id)
	},
}

var (
	flagMockConfig string
	flagMockHost   string
	flagMockPort   int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local fake of the shop API",
	Long: `Serve a local fake of the shop API for offline use. Without --config
the built-in routes are served (health, login, products, cart, orders).`,
	Example: `  apiconsole mock &
  apiconsole login && apiconsole call auth.profile`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg     *mock.Config
			err     error
			workdir string
		)
		if flagMockConfig != "" {
			cfg, err = mock.LoadConfig(flagMockConfig)
			workdir = filepath.Dir(flagMockConfig)
		} else {
			cfg, err = mock.DefaultConfig()
			workdir, _ = os.Getwd()
		}
		if err != nil {
			return err
		}
		if flagMockHost != "" {
			cfg.Host = flagMockHost
		}
		if flagMockPort != 0 {
			cfg.Port = flagMockPort
		}

		level := flagLogLevel
		if level == "" {
			level = "info"
		}
		logger := logging.New(logging.Config{Level: level, Stderr: true})
		defer logger.Sync()

		srv := mock.NewServer(cfg, workdir, logger)
		fmt.Fprintf(os.Stderr, "Mock API on %s (ctrl+c to stop)\n", srv.BaseURL())
		return srv.Run(cmd.Context())
	},
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "apiconsole %s\n", version.Version)
		if !flagCheckUpdate {
			return nil
		}

		update, err := version.NewChecker().CheckForUpdate(cmd.Context(), version.Version)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}
		if update.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "A newer version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "You are up to date")
		}
		return nil
	},
}

// encode writes v as indented JSON or YAML
func encode(w io.Writer, format string, v any) error {
	if format == cli.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var tableCellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(none)"
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}

func init() {
	tokenShowCmd.Flags().BoolVar(&flagReveal, "reveal", false, "Print the full token on a terminal")
	tokenCmd.AddCommand(tokenShowCmd, tokenSetCmd, tokenClearCmd, tokenCaptureCmd)

	for _, c := range []*cobra.Command{endpointsCmd, historyCmd, statsCmd} {
		c.Flags().StringVarP(&flagListOutput, "output", "o", "", "Output format (table/json/yaml)")
	}
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries (0 for all)")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all history")

	filtersCmd.AddCommand(filtersAddCmd, filtersRemoveCmd)

	mockCmd.Flags().StringVarP(&flagMockConfig, "config", "c", "", "Routes file (.yaml or .json)")
	mockCmd.Flags().StringVar(&flagMockHost, "host", "", "Listen host (default localhost)")
	mockCmd.Flags().IntVar(&flagMockPort, "port", 0, "Listen port (default 5000)")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "Check for a newer release")
}
