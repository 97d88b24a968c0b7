// Package render turns exchange outcomes into display payloads and
// captures access tokens from login responses.
//
// Everything here is pure; presentation adapters (TUI, CLI) decide how a
// DisplayPayload is drawn.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/types"
)

const (
	TitleResponse = "Response"
	TitleError    = "Error"

	msgInvalidRequestJSON  = "Invalid JSON in request body"
	msgConnectionError     = "Connection error"
	msgInvalidResponseJSON = "Invalid JSON response"
	msgSending             = "Sending request..."
)

// Render maps an outcome to its display payload
func Render(o types.Outcome) types.DisplayPayload {
	switch o.Kind {
	case types.OutcomeValidationError:
		return errorPayload(msgInvalidRequestJSON, o.Message)
	case types.OutcomeTransportError:
		return errorPayload(msgConnectionError, o.Message)
	}

	if o.JSONError != "" {
		data := map[string]any{
			"error":   msgInvalidResponseJSON,
			"details": o.JSONError,
			"status":  o.Status,
			"body":    o.RawBody,
		}
		return payload(false, data)
	}

	return payload(o.OK, o.JSON)
}

// Pending is shown while a request is in flight
func Pending() types.DisplayPayload {
	return payload(true, map[string]any{"message": msgSending})
}

// Failure is an error payload for problems found before a request is built
func Failure(message, details string) types.DisplayPayload {
	return errorPayload(message, details)
}

func errorPayload(message, details string) types.DisplayPayload {
	return payload(false, map[string]any{
		"error":   message,
		"details": details,
	})
}

func payload(success bool, data any) types.DisplayPayload {
	title := TitleResponse
	if !success {
		title = TitleError
	}

	body, err := PrettyJSON(data)
	if err != nil {
		body = fmt.Sprintf("%v", data)
	}

	return types.DisplayPayload{
		Success: success,
		Title:   title,
		Body:    body,
		Data:    data,
	}
}

// PrettyJSON formats v with 2-space indentation. HTML characters are left
// unescaped so the text matches what the API sent.
func PrettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// PrettyText re-indents JSON text, returning it unchanged if it does not parse
func PrettyText(text string) string {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	out, err := PrettyJSON(v)
	if err != nil {
		return text
	}
	return out
}
