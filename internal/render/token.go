package render

import (
	"encoding/json"
	"fmt"

	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/jmespath/go-jmespath"
)

// DefaultTokenField is the JMESPath expression locating the access token
const DefaultTokenField = "access_token"

// CaptureResult describes a manual token extraction attempt
type CaptureResult int

const (
	// CaptureFound means a token was extracted
	CaptureFound CaptureResult = iota
	// CaptureMalformed means the stored text was missing or not JSON
	CaptureMalformed
	// CaptureNoToken means the JSON had no usable token field
	CaptureNoToken
)

func (r CaptureResult) String() string {
	switch r {
	case CaptureFound:
		return "found"
	case CaptureMalformed:
		return "malformed"
	case CaptureNoToken:
		return "no_token"
	default:
		return "unknown"
	}
}

// TokenExtractor pulls an access token out of parsed response bodies
type TokenExtractor struct {
	expr string
	jp   *jmespath.JMESPath
}

// NewTokenExtractor compiles a JMESPath expression; empty selects DefaultTokenField
func NewTokenExtractor(expr string) (*TokenExtractor, error) {
	if expr == "" {
		expr = DefaultTokenField
	}
	jp, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid token field expression '%s': %w", expr, err)
	}
	return &TokenExtractor{expr: expr, jp: jp}, nil
}

// MustTokenExtractor is NewTokenExtractor that panics on a bad expression
func MustTokenExtractor(expr string) *TokenExtractor {
	t, err := NewTokenExtractor(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// Expression returns the compiled expression text
func (t *TokenExtractor) Expression() string {
	return t.expr
}

// FromValue returns the token held by a parsed JSON value.
// Only non-empty strings count as tokens.
func (t *TokenExtractor) FromValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	result, err := t.jp.Search(v)
	if err != nil {
		return "", false
	}
	token, ok := result.(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Capture returns the token to store after an exchange with ep. Only
// endpoints declaring CapturesAuthToken qualify, and only when the HTTP
// call succeeded (2xx).
func (t *TokenExtractor) Capture(ep types.Endpoint, o types.Outcome) (string, bool) {
	if !ep.CapturesAuthToken {
		return "", false
	}
	if o.Kind != types.OutcomeOK || !o.OK {
		return "", false
	}
	return t.FromValue(o.JSON)
}

// FromText re-parses previously rendered JSON text and extracts the token
func (t *TokenExtractor) FromText(text string) (string, CaptureResult) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", CaptureMalformed
	}
	token, ok := t.FromValue(v)
	if !ok {
		return "", CaptureNoToken
	}
	return token, CaptureFound
}
