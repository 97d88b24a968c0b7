// Package history records console exchanges in the sqlite database.
package history

import (
	"encoding/json"
	"net/http"
	"strings"
)

const redacted = "Bearer ***"

// secretFields are JSON keys whose values never reach the history table
var secretFields = map[string]bool{
	"password":      true,
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
}

// RedactHeaders copies headers, masking the Authorization credential
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == "Authorization" && v != "" {
			if strings.HasPrefix(v, "Bearer ") {
				v = redacted
			} else {
				v = "***"
			}
		}
		out[k] = v
	}
	return out
}

// RedactBody masks credential fields at any depth of a JSON body. Bodies
// that are not JSON, or hold no credentials, are returned unchanged.
func RedactBody(body string) string {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return body
	}
	if !redactValue(v) {
		return body
	}
	out, err := json.Marshal(v)
	if err != nil {
		return body
	}
	return string(out)
}

func redactValue(v any) bool {
	changed := false
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if secretFields[strings.ToLower(k)] {
				if child != nil && child != "***" {
					t[k] = "***"
					changed = true
				}
				continue
			}
			if redactValue(child) {
				changed = true
			}
		}
	case []any:
		for _, child := range t {
			if redactValue(child) {
				changed = true
			}
		}
	}
	return changed
}
