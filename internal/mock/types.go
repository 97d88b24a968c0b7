package mock

import "time"

// Config represents the mock server configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`       // Server port (default: 5000)
	Host    string  `json:"host" yaml:"host"`       // Server host (default: localhost)
	Prefix  string  `json:"prefix" yaml:"prefix"`   // Path prefix of every route (default: /api)
	Routes  []Route `json:"routes" yaml:"routes"`   // Route definitions
	Logging bool    `json:"logging" yaml:"logging"` // Enable request logging
}

// Route represents a mock route configuration
type Route struct {
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Method       string            `json:"method" yaml:"method"`
	Path         string            `json:"path" yaml:"path"`
	PathType     string            `json:"pathType,omitempty" yaml:"pathType,omitempty"` // exact, prefix, regex (default: exact)
	Status       int               `json:"status" yaml:"status"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile     string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`
	Delay        int               `json:"delay,omitempty" yaml:"delay,omitempty"` // milliseconds
	RequiresAuth bool              `json:"requiresAuth,omitempty" yaml:"requiresAuth,omitempty"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time         `json:"timestamp"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	MatchedRule string            `json:"matchedRule"`
	Status      int               `json:"status"`
	Duration    time.Duration     `json:"duration"`
}
