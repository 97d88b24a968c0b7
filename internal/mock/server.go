package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPort   = 5000
	DefaultPrefix = "/api"
	maxLogs       = 1000
)

// Server represents the mock HTTP server
type Server struct {
	config    *Config
	logger    *zap.Logger
	logs      []RequestLog
	logsMutex sync.RWMutex
	workdir   string
	patterns  map[string]*regexp.Regexp
}

// NewServer creates a new mock server; workdir resolves relative body files
func NewServer(config *Config, workdir string, logger *zap.Logger) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   config,
		logger:   logger,
		workdir:  workdir,
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, route := range config.Routes {
		if route.PathType == "regex" {
			if re, err := regexp.Compile(route.Path); err == nil {
				s.patterns[route.Path] = re
			} else {
				logger.Warn("invalid route pattern", zap.String("path", route.Path), zap.Error(err))
			}
		}
	}
	return s
}

// Handler serves the configured routes
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("mock server listening", zap.String("baseUrl", s.BaseURL()), zap.Int("routes", len(s.config.Routes)))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bodyBytes, _ := io.ReadAll(r.Body)
	r.Body.Close()

	status, responseBody, matchedRule := s.respond(w, r)

	w.WriteHeader(status)
	w.Write([]byte(responseBody))

	duration := time.Since(start)
	if s.config.Logging {
		s.logger.Info("mock request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("rule", matchedRule),
			zap.Int("status", status),
			zap.Duration("duration", duration))
	}
	s.logRequest(RequestLog{
		Timestamp:   start,
		Method:      r.Method,
		Path:        r.URL.Path,
		Headers:     flattenHeaders(r.Header),
		Body:        string(bodyBytes),
		MatchedRule: matchedRule,
		Status:      status,
		Duration:    duration,
	})
}

// respond sets the route headers and returns status, body and rule name
func (s *Server) respond(w http.ResponseWriter, r *http.Request) (int, string, string) {
	path, ok := s.stripPrefix(r.URL.Path)
	route := s.findMatchingRoute(r.Method, path)
	if !ok || route == nil {
		w.Header().Set("Content-Type", "application/json")
		return http.StatusNotFound, fmt.Sprintf(`{"detail":"no mock route for %s %s"}`, r.Method, r.URL.Path), "none"
	}

	matchedRule := route.Name
	if matchedRule == "" {
		matchedRule = route.Method + " " + route.Path
	}

	if route.RequiresAuth && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.Header().Set("Content-Type", "application/json")
		return http.StatusUnauthorized, `{"detail":"Not authenticated"}`, matchedRule
	}

	if route.Delay > 0 {
		select {
		case <-time.After(time.Duration(route.Delay) * time.Millisecond):
		case <-r.Context().Done():
		}
	}

	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}

	if route.BodyFile == "" {
		return status, route.Body, matchedRule
	}

	filePath := route.BodyFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(s.workdir, filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return http.StatusInternalServerError, fmt.Sprintf("Mock server: failed to read body file %s: %v", route.BodyFile, err), matchedRule
	}
	return status, string(data), matchedRule
}

func (s *Server) stripPrefix(path string) (string, bool) {
	prefix := strings.TrimRight(s.config.Prefix, "/")
	if prefix == "" {
		return path, true
	}
	if path != prefix && !strings.HasPrefix(path, prefix+"/") {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		rest = "/"
	}
	return rest, true
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		matched := false
		switch route.PathType {
		case "", "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		case "regex":
			if re := s.patterns[route.Path]; re != nil {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route
		}
	}

	return nil
}

func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// Logs returns a copy of the recorded requests
func (s *Server) Logs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// BaseURL is the value to use as the console base URL
func (s *Server) BaseURL() string {
	return fmt.Sprintf("http://%s:%d%s", s.config.Host, s.config.Port, strings.TrimRight(s.config.Prefix, "/"))
}

// flattenHeaders converts http.Header to map[string]string (first value only)
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}
