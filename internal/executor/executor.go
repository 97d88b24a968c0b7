package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Iampro1712/apiconsole/internal/logging"
	"github.com/Iampro1712/apiconsole/internal/types"
	"go.uber.org/zap"
)

// Executor sends request descriptors against a base URL
type Executor struct {
	client *http.Client
	logger *zap.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an Executor with optional TLS/mTLS configuration
func New(tlsConfig *types.TLSConfig, opts ...Option) (*Executor, error) {
	client, err := buildHTTPClient(tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	e := &Executor{client: client}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrNop(e.logger)
	return e, nil
}

// Client returns the underlying HTTP client
func (e *Executor) Client() *http.Client {
	return e.client
}

// Execute performs one exchange. It never returns a Go error: network
// failures become OutcomeTransportError, and any completed response is
// OutcomeOK whatever its status code.
func (e *Executor) Execute(ctx context.Context, desc *types.RequestDescriptor, cfg types.Config) types.Outcome {
	startTime := time.Now()
	url := JoinURL(cfg.BaseURL, desc.URL)

	var bodyReader io.Reader
	requestSize := 0
	if desc.Body != nil {
		bodyReader = bytes.NewBufferString(*desc.Body)
		requestSize = len(*desc.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, desc.Method, url, bodyReader)
	if err != nil {
		return types.Outcome{
			Kind:        types.OutcomeTransportError,
			Message:     err.Error(),
			RequestSize: requestSize,
		}
	}

	for key, value := range desc.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := e.client.Do(httpReq)
	duration := time.Since(startTime)

	if err != nil {
		e.logger.Debug("transport failure",
			zap.String("method", desc.Method),
			zap.String("url", url),
			zap.Error(err))
		return types.Outcome{
			Kind:        types.OutcomeTransportError,
			Message:     err.Error(),
			Duration:    duration,
			RequestSize: requestSize,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Outcome{
			Kind:        types.OutcomeTransportError,
			Status:      resp.StatusCode,
			StatusText:  resp.Status,
			Message:     fmt.Sprintf("failed to read response body: %v", err),
			Duration:    duration,
			RequestSize: requestSize,
		}
	}

	headers := make(map[string]string)
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	outcome := types.Outcome{
		Kind:         types.OutcomeOK,
		OK:           IsSuccessStatus(resp.StatusCode),
		Status:       resp.StatusCode,
		StatusText:   resp.Status,
		Headers:      headers,
		RawBody:      string(bodyBytes),
		Duration:     duration,
		RequestSize:  requestSize,
		ResponseSize: len(bodyBytes),
	}

	var parsed any
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		outcome.JSONError = err.Error()
	} else {
		outcome.JSON = parsed
	}

	e.logger.Debug("exchange completed",
		zap.String("method", desc.Method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	return outcome
}

// JoinURL concatenates a base URL (trailing slash already stripped) and an endpoint path
func JoinURL(baseURL, endpoint string) string {
	return baseURL + endpoint
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration.
// No client timeout is set; callers bound requests through their context.
func buildHTTPClient(tlsConfig *types.TLSConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		// Load CA certificate if provided (for server verification)
		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Transport: transport,
	}, nil
}

// FormatDuration formats a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// IsClientErrorStatus returns true if status code is 4xx
func IsClientErrorStatus(status int) bool {
	return status >= 400 && status < 500
}

// IsServerErrorStatus returns true if status code is 5xx
func IsServerErrorStatus(status int) bool {
	return status >= 500 && status < 600
}
