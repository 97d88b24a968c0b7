package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/catalog"
	"github.com/Iampro1712/apiconsole/internal/cli"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Output flags shared by the request commands
var (
	flagOutput   string
	flagFilter   string
	flagQuery    string
	flagFull     bool
	flagSave     string
	flagNoColor  bool
	flagBody     string
	flagBodyFile string
)

func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml/body)")
	f.StringVar(&flagFilter, "filter", "", "JMESPath filter applied before --query")
	f.StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command)")
	f.BoolVarP(&flagFull, "full", "f", false, "Include response headers")
	f.StringVarP(&flagSave, "save", "s", "", "Save output to file")
	f.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagBody, "body", "b", "", "Request body (JSON)")
	cmd.Flags().StringVar(&flagBodyFile, "body-file", "", "Read the request body from a file")
}

func outputOptions(logger *zap.Logger) cli.Options {
	format := flagOutput
	if format == "" {
		format = cli.DetectFormat(os.Stdout)
	}
	return cli.Options{
		OutputFormat: format,
		Filter:       flagFilter,
		Query:        flagQuery,
		ShowFull:     flagFull,
		SavePath:     flagSave,
		Color:        !flagNoColor && cli.IsTerminal(os.Stdout),
		Stderr:       os.Stderr,
		Logger:       logger,
	}
}

// readBody resolves -b, --body-file or piped stdin
func readBody() (*string, error) {
	return cli.ReadBody(flagBody, flagBodyFile, os.Stdin, !cli.IsTerminal(os.Stdin))
}

// send runs req through a fresh console and prints the result
func send(cmd *cobra.Command, req console.Request) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if req.Endpoint.Name == "" {
		req.Endpoint = a.catalog.Match(req.Method, req.Path)
	}
	_, err = cli.Run(cmd.Context(), a.console, req, outputOptions(a.logger), cmd.OutOrStdout())
	return err
}

var requestCmd = &cobra.Command{
	Use:   "request METHOD PATH",
	Short: "Send an ad-hoc request",
	Long: `Send an ad-hoc request. PATH is relative to the base URL.

The body comes from -b, --body-file or piped stdin and is only sent
with POST and PUT.`,
	Example: `  apiconsole request GET /orders
  echo '{"quantity":3}' | apiconsole request PUT /cart/items/4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method := strings.ToUpper(args[0])
		if !builder.IsSupportedMethod(method) {
			return fmt.Errorf("unsupported method %q", args[0])
		}
		body, err := readBody()
		if err != nil {
			return err
		}
		return send(cmd, console.Request{Method: method, Path: args[1], Body: body})
	},
}

var flagParams []string

var callCmd = &cobra.Command{
	Use:   "call [NAME]",
	Short: "Call a catalog endpoint by name",
	Long: `Call a catalog endpoint. NAME may be a fuzzy match; with several
matches (or no NAME) an interactive list is shown. Path parameters come
from --param or are prompted for.`,
	Example: `  apiconsole call health
  apiconsole call orders.get --param id=12
  apiconsole call cart.add -b '{"product_id":1,"quantity":1}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		ep, err := resolveEndpoint(a.catalog, query)
		if err != nil {
			return err
		}

		params, err := cli.ParseParams(flagParams)
		if err != nil {
			return err
		}
		var missing []string
		for _, name := range catalog.Placeholders(ep.Path) {
			if _, ok := params[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			if !cli.IsTerminal(os.Stdin) {
				return fmt.Errorf("missing path parameters: %s (use --param)", strings.Join(missing, ", "))
			}
			prompted, err := cli.PromptParams(missing, os.Stdin, os.Stderr)
			if err != nil {
				return err
			}
			for k, v := range prompted {
				params[k] = v
			}
		}

		path, err := catalog.ExpandPath(ep.Path, params)
		if err != nil {
			return err
		}

		body, err := readBody()
		if err != nil {
			return err
		}
		if body == nil && builder.CarriesPayload(ep.Method) && ep.BodyTemplate != "" {
			template := ep.BodyTemplate
			body = &template
		}

		_, err = cli.Run(cmd.Context(), a.console, console.Request{
			Endpoint: ep,
			Method:   ep.Method,
			Path:     path,
			Body:     body,
		}, outputOptions(a.logger), cmd.OutOrStdout())
		return err
	},
}

// resolveEndpoint finds the endpoint named by query, asking when ambiguous
func resolveEndpoint(cat *catalog.Catalog, query string) (types.Endpoint, error) {
	if ep, ok := cat.Get(query); ok {
		return ep, nil
	}

	candidates := cat.Endpoints()
	if query != "" {
		candidates = cat.Find(query)
	}
	switch {
	case len(candidates) == 0:
		return types.Endpoint{}, fmt.Errorf("no endpoint matches %q (see 'apiconsole endpoints')", query)
	case len(candidates) == 1:
		return candidates[0], nil
	case !cli.IsTerminal(os.Stdin) || !cli.IsTerminal(os.Stderr):
		names := make([]string, 0, len(candidates))
		for _, ep := range candidates {
			names = append(names, ep.Name)
		}
		return types.Endpoint{}, fmt.Errorf("%q is ambiguous: %s", query, strings.Join(names, ", "))
	}
	return cli.SelectEndpoint("Select endpoint", candidates)
}

var (
	flagSearch   string
	flagMinPrice string
	flagMaxPrice string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products with optional search and price filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := catalog.ProductsEndpoint(
			strings.TrimSpace(flagSearch),
			strings.TrimSpace(flagMinPrice),
			strings.TrimSpace(flagMaxPrice),
		)
		return send(cmd, console.Request{Method: "GET", Path: path})
	},
}

var (
	flagAdmin bool
	flagUser  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login and store the returned token",
	Long: `Login with the seeded admin account (default), the seeded user
account (--user), or a custom body (-b). A successful login stores the
access token for later requests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ep, ok := a.catalog.Get(catalog.LoginEndpointName)
		if !ok {
			return fmt.Errorf("catalog has no %s endpoint", catalog.LoginEndpointName)
		}

		body, err := readBody()
		if err != nil {
			return err
		}
		if body == nil {
			creds := catalog.AdminLogin
			if flagUser {
				creds = catalog.UserLogin
			}
			login := catalog.LoginBody(creds)
			body = &login
		}

		_, err = cli.Run(cmd.Context(), a.console, console.Request{Endpoint: ep, Body: body}, outputOptions(a.logger), cmd.OutOrStdout())
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{requestCmd, callCmd, productsCmd, loginCmd} {
		addOutputFlags(c)
	}
	addBodyFlags(requestCmd)
	addBodyFlags(callCmd)
	addBodyFlags(loginCmd)

	callCmd.Flags().StringArrayVarP(&flagParams, "param", "p", nil, "Path parameter (key=value), can be repeated")

	productsCmd.Flags().StringVar(&flagSearch, "search", "", "Search text")
	// --q is the older spelling; -q stays the --query shorthand
	productsCmd.Flags().StringVar(&flagSearch, "q", "", "Search text")
	_ = productsCmd.Flags().MarkHidden("q")
	productsCmd.Flags().StringVar(&flagMinPrice, "min-price", "", "Minimum price")
	productsCmd.Flags().StringVar(&flagMaxPrice, "max-price", "", "Maximum price")

	loginCmd.Flags().BoolVar(&flagAdmin, "admin", false, "Use the seeded admin account (default)")
	loginCmd.Flags().BoolVar(&flagUser, "user", false, "Use the seeded user account")
	loginCmd.MarkFlagsMutuallyExclusive("admin", "user")
}
