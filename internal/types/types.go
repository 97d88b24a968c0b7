package types

import "time"

// Config is the explicit per-call configuration for the exchange pipeline
type Config struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
}

// Endpoint is one declared API operation of the console catalog
type Endpoint struct {
	Name              string `json:"name" yaml:"name"`
	Group             string `json:"group,omitempty" yaml:"group,omitempty"`
	Method            string `json:"method" yaml:"method"`
	Path              string `json:"path" yaml:"path"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
	BodyTemplate      string `json:"bodyTemplate,omitempty" yaml:"bodyTemplate,omitempty"`
	RequiresAuth      bool   `json:"requiresAuth,omitempty" yaml:"requiresAuth,omitempty"`
	CapturesAuthToken bool   `json:"capturesAuthToken,omitempty" yaml:"capturesAuthToken,omitempty"`
}

// RequestDescriptor is a fully assembled request, built fresh per call.
// URL holds the endpoint path; the executor prefixes the base URL.
type RequestDescriptor struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    *string           `json:"body,omitempty" yaml:"body,omitempty"`
}

// HasBody reports whether a payload is attached
func (d *RequestDescriptor) HasBody() bool {
	return d != nil && d.Body != nil
}

// OutcomeKind tags the variant held by an Outcome
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeTransportError
	OutcomeValidationError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeValidationError:
		return "validation_error"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one exchange attempt.
//
// For OutcomeOK, OK mirrors a 2xx status and JSON holds the parsed body
// (nil when the body was not JSON; RawBody always holds the bytes read).
// For the error kinds only Message is meaningful.
type Outcome struct {
	Kind       OutcomeKind       `json:"kind"`
	OK         bool              `json:"ok"`
	Status     int               `json:"status,omitempty"`
	StatusText string            `json:"statusText,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	JSON       any               `json:"json,omitempty"`
	JSONError  string            `json:"jsonError,omitempty"`
	RawBody    string            `json:"rawBody,omitempty"`
	Message    string            `json:"message,omitempty"`
	Duration   time.Duration     `json:"duration"`
	// bytes
	RequestSize  int `json:"requestSize"`
	ResponseSize int `json:"responseSize"`
}

// IsError reports whether the outcome is one of the error variants
func (o Outcome) IsError() bool {
	return o.Kind != OutcomeOK
}

// DisplayPayload is what a presentation adapter shows for one exchange
type DisplayPayload struct {
	Success bool   `json:"success" yaml:"success"`
	Title   string `json:"title" yaml:"title"`
	Body    string `json:"body" yaml:"body"`
	Data    any    `json:"data" yaml:"data"`
}

// Severity is the level of a transient notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Notification is a toast shown for a fixed duration
type Notification struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HistoryEntry represents a saved request/response pair
type HistoryEntry struct {
	ID             int64             `json:"id"`
	ExchangeID     string            `json:"exchangeId"`
	Timestamp      string            `json:"timestamp"`
	Endpoint       string            `json:"endpoint,omitempty"`
	Method         string            `json:"method"`
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers"`
	Body           string            `json:"body,omitempty"`
	Outcome        string            `json:"outcome"`
	ResponseStatus int               `json:"responseStatus"`
	ResponseBody   string            `json:"responseBody"`
	Duration       int64             `json:"duration"` // milliseconds
	RequestSize    int               `json:"requestSize,omitempty"`
	ResponseSize   int               `json:"responseSize,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// TLSConfig contains optional TLS settings for the HTTP client
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}
