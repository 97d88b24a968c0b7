// Package builder assembles request descriptors from console inputs.
package builder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/types"
)

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	ContentTypeJSON     = "application/json"
)

// ErrInvalidEndpoint is returned when the endpoint is not an absolute path
var ErrInvalidEndpoint = errors.New("endpoint must start with '/'")

// ValidationError reports a request body that is not valid JSON.
// Message is the parser's own message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid JSON in request body: %s", e.Message)
}

// IsSupportedMethod reports whether method is an HTTP method the console sends
func IsSupportedMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CarriesPayload reports whether a body is attached for method
func CarriesPayload(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

// Build assembles a descriptor for method and endpoint.
//
// body is the raw text of the body field, or nil when the endpoint has no
// body source. It is only considered for payload methods, and must parse as
// JSON; the original text is sent unchanged. token may be empty, in which
// case no Authorization header is set.
func Build(method, endpoint string, body *string, token string) (*types.RequestDescriptor, error) {
	if !strings.HasPrefix(endpoint, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	desc := &types.RequestDescriptor{
		Method: method,
		URL:    endpoint,
		Headers: map[string]string{
			HeaderContentType: ContentTypeJSON,
		},
	}

	if token = strings.TrimSpace(token); token != "" {
		desc.Headers[HeaderAuthorization] = BearerValue(token)
	}

	if body != nil && CarriesPayload(method) {
		if err := ValidateJSON(*body); err != nil {
			return nil, err
		}
		text := *body
		desc.Body = &text
	}

	return desc, nil
}

// ValidateJSON checks text for JSON syntax only. The parsed value is discarded.
func ValidateJSON(text string) error {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// BearerValue formats an Authorization header value
func BearerValue(token string) string {
	return "Bearer " + token
}
