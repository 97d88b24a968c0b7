package tui

import "strings"

// transportHint turns a transport error message into an actionable hint
// for the status bar
func transportHint(errStr string) string {
	if errStr == "" {
		return ""
	}

	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "context canceled"),
		strings.Contains(errLower, "context cancelled"):
		return "Request cancelled"

	case strings.Contains(errLower, "deadline exceeded"):
		return "Request timeout - check the base URL (ctrl+b)"

	// Proxy errors often contain "connection refused" too
	case strings.Contains(errLower, "proxy"):
		return "Proxy connection failed - check HTTP_PROXY/HTTPS_PROXY"

	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the hostname in the base URL"

	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check if the API is running and the port is correct"

	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by server"

	case strings.Contains(errLower, "network is unreachable"),
		strings.Contains(errLower, "no route to host"):
		return "Network unreachable - check network connection and firewall settings"

	case strings.Contains(errLower, "x509"),
		strings.Contains(errLower, "certificate"),
		strings.Contains(errLower, "tls"):
		return tlsHint(errLower)

	case strings.Contains(errLower, "stopped after") && strings.Contains(errLower, "redirect"):
		return "Too many redirects"

	case strings.Contains(errLower, "unsupported protocol"),
		strings.Contains(errLower, "invalid url"),
		strings.Contains(errLower, "missing protocol scheme"):
		return "Invalid base URL - include http:// or https://"

	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly"

	case strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return "Connection timeout - server took too long to respond"
	}

	return "Request failed: " + errStr
}

func tlsHint(errLower string) string {
	switch {
	case strings.Contains(errLower, "unknown authority"):
		return "TLS certificate not trusted - set tls.caFile in settings"
	case strings.Contains(errLower, "expired"):
		return "TLS certificate has expired"
	case strings.Contains(errLower, "is valid for"),
		strings.Contains(errLower, "doesn't match"):
		return "TLS hostname mismatch"
	case strings.Contains(errLower, "handshake"):
		return "TLS handshake failed"
	case strings.Contains(errLower, "certificate required"):
		return "TLS client certificate required - set tls.certFile and tls.keyFile in settings"
	}
	return "TLS error - check tls settings"
}
