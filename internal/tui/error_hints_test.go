package tui

import (
	"strings"
	"testing"
)

func TestTransportHint(t *testing.T) {
	tests := []struct {
		name     string
		errStr   string
		wantText string
	}{
		{"empty error", "", ""},
		{
			"connection refused",
			`Get "http://localhost:5000/api/health": dial tcp 127.0.0.1:5000: connect: connection refused`,
			"Connection refused - check if the API is running and the port is correct",
		},
		{
			"DNS lookup failure",
			"dial tcp: lookup nonexistent.example.com: no such host",
			"DNS resolution failed - verify the hostname in the base URL",
		},
		{
			"proxy wins over refused",
			"proxyconnect tcp: dial tcp 10.0.0.1:3128: connect: connection refused",
			"Proxy connection failed - check HTTP_PROXY/HTTPS_PROXY",
		},
		{
			"deadline",
			`Get "http://x/health": context deadline exceeded`,
			"Request timeout - check the base URL (ctrl+b)",
		},
		{
			"unknown authority",
			"x509: certificate signed by unknown authority",
			"TLS certificate not trusted - set tls.caFile in settings",
		},
		{
			"hostname mismatch",
			"x509: certificate is valid for example.com, not example.org",
			"TLS hostname mismatch",
		},
		{
			"missing scheme",
			`Get "localhost:5000/api/health": unsupported protocol scheme "localhost"`,
			"Invalid base URL - include http:// or https://",
		},
		{
			"eof",
			`Get "http://x/health": EOF`,
			"Connection closed unexpectedly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transportHint(tt.errStr)
			if got != tt.wantText {
				t.Errorf("transportHint() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestTransportHint_Unknown(t *testing.T) {
	got := transportHint("something odd")
	if !strings.HasPrefix(got, "Request failed: ") {
		t.Errorf("transportHint() = %q, want generic prefix", got)
	}
}
