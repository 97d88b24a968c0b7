// Package filter narrows and reshapes JSON response bodies.
//
// An expression is either JMESPath or a shell query written as $(command).
// A shell query receives the current body on stdin and its trimmed stdout
// becomes the result.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/Iampro1712/apiconsole/internal/logging"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/jmespath/go-jmespath"
	"go.uber.org/zap"
)

// DefaultShellTimeout bounds a $(command) query
const DefaultShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Stage names the step of Apply that failed
type Stage string

const (
	StageFilter Stage = "filter"
	StageQuery  Stage = "query"
)

// ExprError reports a failed filter or query expression
type ExprError struct {
	Stage Stage
	Expr  string
	Err   error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Expr, e.Err)
}

func (e *ExprError) Unwrap() error { return e.Err }

// Runner applies filter and query expressions
type Runner struct {
	logger       *zap.Logger
	shellTimeout time.Duration
}

// NewRunner creates a Runner; a nil logger discards output
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		logger:       logging.OrNop(logger).Named("filter"),
		shellTimeout: DefaultShellTimeout,
	}
}

// Apply narrows body with filter, then reshapes the result with query.
// Empty expressions are skipped; with both empty body is returned as is.
func Apply(ctx context.Context, body, filter, query string) (string, error) {
	return NewRunner(nil).Apply(ctx, body, filter, query)
}

// Apply narrows body with filter (JMESPath), then runs query (JMESPath or
// $(command)) over the result.
func (r *Runner) Apply(ctx context.Context, body, filter, query string) (string, error) {
	if filter == "" && query == "" {
		return body, nil
	}

	doc := document{text: body}

	if filter != "" {
		if err := doc.search(filter); err != nil {
			return "", &ExprError{Stage: StageFilter, Expr: filter, Err: err}
		}
	}

	if query != "" {
		if cmd, ok := shellCommand(query); ok {
			out, err := r.runShell(ctx, doc.String(), cmd)
			if err != nil {
				return "", &ExprError{Stage: StageQuery, Expr: query, Err: err}
			}
			return out, nil
		}
		if err := doc.search(query); err != nil {
			return "", &ExprError{Stage: StageQuery, Expr: query, Err: err}
		}
	}

	return doc.String(), nil
}

// document holds the body as text until a JMESPath stage decodes it, so
// the body is parsed at most once
type document struct {
	text    string
	value   any
	decoded bool
}

func (d *document) search(expr string) error {
	jp, err := jmespath.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid JMESPath expression: %w", err)
	}
	if !d.decoded {
		if err := json.Unmarshal([]byte(d.text), &d.value); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		d.decoded = true
	}
	result, err := jp.Search(d.value)
	if err != nil {
		return fmt.Errorf("JMESPath search failed: %w", err)
	}
	d.value = result
	return nil
}

// String renders the current value; an undecoded body is returned verbatim
func (d *document) String() string {
	if !d.decoded {
		return d.text
	}
	if d.value == nil {
		return "null"
	}
	out, err := render.PrettyJSON(d.value)
	if err != nil {
		return fmt.Sprint(d.value)
	}
	return out
}

func (r *Runner) runShell(ctx context.Context, input, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	fields := []zap.Field{
		zap.String("command", command),
		zap.Int("inputBytes", len(input)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		r.logger.Warn("shell query failed", append(fields, zap.String("error", msg))...)
		return "", fmt.Errorf("command failed: %s", msg)
	}

	r.logger.Debug("shell query", append(fields, zap.Int("outputBytes", stdout.Len()))...)
	return strings.TrimSpace(stdout.String()), nil
}

func shellCommand(query string) (string, bool) {
	m := shellPattern.FindStringSubmatch(query)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// IsValidJMESPath reports whether expression compiles
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// IsShellCommand reports whether query has the $(command) form
func IsShellCommand(query string) bool {
	return shellPattern.MatchString(query)
}
