package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/config"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/filter"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatBody = "body"
)

// ErrRequestFailed is returned when the exchange did not succeed, so the
// command can exit non-zero after printing the payload
var ErrRequestFailed = errors.New("request failed")

// Options controls how a CLI exchange is printed
type Options struct {
	OutputFormat string // json, yaml, text, body; empty means text
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(bash command)
	ShowFull     bool
	SavePath     string
	Color        bool
	Stderr       io.Writer
	Logger       *zap.Logger // shell queries log here; nil discards
}

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectFormat picks text for terminals and the bare body for pipes
func DetectFormat(f *os.File) string {
	if IsTerminal(f) {
		return FormatText
	}
	return FormatBody
}

// ReadBody returns the request body from the flag, a file, or piped stdin,
// in that order. nil means no body was given.
func ReadBody(flagValue, filePath string, stdin io.Reader, piped bool) (*string, error) {
	if flagValue != "" {
		return &flagValue, nil
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		body := string(data)
		return &body, nil
	}

	if piped && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > 0 {
			body := string(data)
			return &body, nil
		}
	}

	return nil, nil
}

// ParseParams parses key=value pairs from repeated --param flags
func ParseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		params[parts[0]] = parts[1]
	}
	return params, nil
}

// Run sends req through c and prints the result to w
func Run(ctx context.Context, c *console.Console, req console.Request, opts Options, w io.Writer) (console.Result, error) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	res := c.Send(ctx, req)

	if err := Print(ctx, res, opts, w); err != nil {
		return res, err
	}

	if res.TokenCaptured {
		fmt.Fprintln(opts.Stderr, console.MsgTokenSaved)
	}

	if !res.Payload.Success {
		return res, ErrRequestFailed
	}
	return res, nil
}

// Print formats res and writes it to w, or to opts.SavePath
func Print(ctx context.Context, res console.Result, opts Options, w io.Writer) error {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	body := res.Payload.Body
	data := res.Payload.Data
	if opts.Filter != "" || opts.Query != "" {
		filtered, err := filter.NewRunner(opts.Logger).Apply(ctx, body, opts.Filter, opts.Query)
		if err != nil {
			fmt.Fprintf(opts.Stderr, "Warning: filter/query error: %v\n", err)
		} else {
			body = filtered
			var parsed any
			if json.Unmarshal([]byte(filtered), &parsed) == nil {
				data = parsed
			} else {
				data = filtered
			}
		}
	}

	format := opts.OutputFormat
	if format == "" {
		format = FormatText
	}

	output, err := formatOutput(res, body, data, format, opts)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(opts.Stderr, "Response saved to %s\n", opts.SavePath)
		return nil
	}

	_, err = io.WriteString(w, output)
	return err
}

// resultView is the machine-readable shape of one exchange
type resultView struct {
	ExchangeID    string            `json:"exchangeId" yaml:"exchangeId"`
	Outcome       string            `json:"outcome" yaml:"outcome"`
	Success       bool              `json:"success" yaml:"success"`
	Status        int               `json:"status,omitempty" yaml:"status,omitempty"`
	StatusText    string            `json:"statusText,omitempty" yaml:"statusText,omitempty"`
	DurationMs    int64             `json:"durationMs" yaml:"durationMs"`
	RequestSize   int               `json:"requestSize" yaml:"requestSize"`
	ResponseSize  int               `json:"responseSize" yaml:"responseSize"`
	Headers       map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	TokenCaptured bool              `json:"tokenCaptured,omitempty" yaml:"tokenCaptured,omitempty"`
	Data          any               `json:"data" yaml:"data"`
}

// formatOutput formats the result based on the output format
func formatOutput(res console.Result, body string, data any, format string, opts Options) (string, error) {
	o := res.Outcome

	switch format {
	case FormatJSON, FormatYAML:
		view := resultView{
			ExchangeID:    res.ExchangeID,
			Outcome:       o.Kind.String(),
			Success:       res.Payload.Success,
			Status:        o.Status,
			StatusText:    o.StatusText,
			DurationMs:    o.Duration.Milliseconds(),
			RequestSize:   o.RequestSize,
			ResponseSize:  o.ResponseSize,
			TokenCaptured: res.TokenCaptured,
			Data:          data,
		}
		if opts.ShowFull {
			view.Headers = o.Headers
		}
		if format == FormatYAML {
			out, err := yaml.Marshal(view)
			if err != nil {
				return "", err
			}
			return string(out), nil
		}
		out, err := render.PrettyJSON(view)
		if err != nil {
			return "", err
		}
		return out + "\n", nil

	case FormatBody:
		return body + "\n", nil

	case FormatText:
		fallthrough
	default:
		var sb strings.Builder

		// Status line
		status := o.StatusText
		if o.IsError() || status == "" {
			status = res.Payload.Title
		}
		sb.WriteString(colorize(opts.Color, statusColor(res), status))
		sb.WriteString("\n")

		if !o.IsError() || o.Duration > 0 {
			sb.WriteString(fmt.Sprintf("Duration: %s | Size: %s\n",
				executor.FormatDuration(o.Duration),
				executor.FormatSize(o.ResponseSize)))
		}

		if opts.ShowFull && len(o.Headers) > 0 {
			sb.WriteString("\nHeaders:\n")
			keys := make([]string, 0, len(o.Headers))
			for k := range o.Headers {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", k, o.Headers[k]))
			}
		}

		if body != "" {
			sb.WriteString("\n")
			if opts.Color {
				sb.WriteString(render.Highlight(body, render.DefaultStyle))
			} else {
				sb.WriteString(body)
			}
			sb.WriteString("\n")
		}

		return sb.String(), nil
	}
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func statusColor(res console.Result) string {
	switch {
	case res.Payload.Success:
		return colorGreen
	case res.Outcome.IsError(), res.Outcome.Status >= 400:
		return colorRed
	}
	return colorYellow
}

func colorize(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}
