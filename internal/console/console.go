// Package console runs request/response exchanges against the configured API.
//
// A Console ties together the token store, the request builder, the HTTP
// transport, response rendering, token capture and the status probe. Both
// the TUI and the cobra commands drive it.
package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/config"
	"github.com/Iampro1712/apiconsole/internal/history"
	"github.com/Iampro1712/apiconsole/internal/notify"
	"github.com/Iampro1712/apiconsole/internal/probe"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/tokenstore"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification texts
const (
	MsgTokenSaved       = "Token saved automatically"
	MsgTokenExtractFail = "Error extracting token"
	MsgNoTokenFound     = "No token found in response"
	MsgTokenCleared     = "Token cleared"
	MsgInvalidEndpoint  = "Invalid endpoint"
)

// State is the stage of one exchange
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateValidationFailed
	StateSent
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateValidationFailed:
		return "validation_failed"
	case StateSent:
		return "sent"
	case StateRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// Request is one send action. Method and Path default to the endpoint's.
// Body is nil when there is no body field to read.
type Request struct {
	Endpoint types.Endpoint
	Method   string
	Path     string
	Body     *string
}

// Result is what a send produced
type Result struct {
	ExchangeID    string               `json:"exchangeId"`
	State         State                `json:"-"`
	Payload       types.DisplayPayload `json:"payload"`
	Outcome       types.Outcome        `json:"-"`
	TokenCaptured bool                 `json:"tokenCaptured"`
}

// Transport sends built requests
type Transport = probe.Executor

type Console struct {
	mu  sync.RWMutex
	cfg types.Config

	store     tokenstore.Store
	transport Transport
	tokens    *render.TokenExtractor
	notifier  notify.Notifier
	history   *history.Manager
	logger    *zap.Logger
	onState   func(id string, s State)
}

// Option configures a Console
type Option func(*Console)

func WithTokenExtractor(t *render.TokenExtractor) Option {
	return func(c *Console) { c.tokens = t }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Console) { c.notifier = n }
}

// WithHistory records every exchange; nil disables recording
func WithHistory(h *history.Manager) Option {
	return func(c *Console) { c.history = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// WithStateHook observes state transitions of every exchange
func WithStateHook(fn func(id string, s State)) Option {
	return func(c *Console) { c.onState = fn }
}

// New creates a Console. cfg.BaseURL is normalized.
func New(cfg types.Config, store tokenstore.Store, transport Transport, opts ...Option) *Console {
	c := &Console{
		cfg:       types.Config{BaseURL: config.NormalizeBaseURL(cfg.BaseURL)},
		store:     store,
		transport: transport,
		tokens:    render.MustTokenExtractor(render.DefaultTokenField),
		notifier:  notify.Discard{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the current pipeline configuration
func (c *Console) Config() types.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Notifier returns the notifier used for console feedback
func (c *Console) Notifier() notify.Notifier {
	return c.notifier
}

func (c *Console) transition(id string, s State) {
	c.logger.Debug("exchange state", zap.String("exchange", id), zap.Stringer("state", s))
	if c.onState != nil {
		c.onState(id, s)
	}
}

// Send runs one exchange. Failures are reported through the returned
// payload; Send itself never fails.
func (c *Console) Send(ctx context.Context, req Request) Result {
	id := uuid.NewString()
	res := Result{ExchangeID: id}

	c.transition(id, StateBuilding)

	method := req.Method
	if method == "" {
		method = req.Endpoint.Method
	}
	path := req.Path
	if path == "" {
		path = req.Endpoint.Path
	}

	token, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load token", zap.String("exchange", id), zap.Error(err))
		token = ""
	}

	desc, err := builder.Build(method, path, req.Body, token)
	if err != nil {
		res.State = StateValidationFailed
		var verr *builder.ValidationError
		if errors.As(err, &verr) {
			res.Outcome = types.Outcome{Kind: types.OutcomeValidationError, Message: verr.Message}
			res.Payload = render.Render(res.Outcome)
		} else {
			res.Outcome = types.Outcome{Kind: types.OutcomeValidationError, Message: err.Error()}
			res.Payload = render.Failure(MsgInvalidEndpoint, err.Error())
		}
		c.logger.Info("request rejected",
			zap.String("exchange", id),
			zap.String("endpoint", req.Endpoint.Name),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("error", res.Outcome.Message),
		)
		c.transition(id, res.State)
		c.record(ctx, id, req.Endpoint, nil, method, path, res.Outcome)
		return res
	}

	cfg := c.Config()
	c.transition(id, StateSent)
	res.Outcome = c.transport.Execute(ctx, desc, cfg)
	res.Payload = render.Render(res.Outcome)

	fields := []zap.Field{
		zap.String("exchange", id),
		zap.String("endpoint", req.Endpoint.Name),
		zap.String("method", desc.Method),
		zap.String("url", desc.URL),
		zap.Stringer("outcome", res.Outcome.Kind),
		zap.Int("status", res.Outcome.Status),
		zap.Duration("duration", res.Outcome.Duration),
	}
	if res.Outcome.IsError() {
		c.logger.Warn("request failed", append(fields, zap.String("error", res.Outcome.Message))...)
	} else {
		c.logger.Info("request completed", fields...)
	}

	if captured, ok := c.tokens.Capture(req.Endpoint, res.Outcome); ok {
		if err := c.store.Save(ctx, captured); err != nil {
			c.logger.Error("failed to save captured token", zap.String("exchange", id), zap.Error(err))
		} else {
			res.TokenCaptured = true
			c.notifier.Notify(MsgTokenSaved, types.SeveritySuccess)
		}
	}

	res.State = StateRendered
	c.transition(id, res.State)
	c.record(ctx, id, req.Endpoint, desc, desc.Method, desc.URL, res.Outcome)
	return res
}

func (c *Console) record(ctx context.Context, id string, ep types.Endpoint, desc *types.RequestDescriptor, method, url string, o types.Outcome) {
	if c.history == nil {
		return
	}
	err := c.history.Save(ctx, history.Record{
		ExchangeID: id,
		Endpoint:   ep.Name,
		Request:    desc,
		Method:     method,
		URL:        url,
		Outcome:    o,
	})
	if err != nil {
		c.logger.Warn("failed to record history", zap.String("exchange", id), zap.Error(err))
	}
}

// Probe checks the health endpoint of the current base URL
func (c *Console) Probe(ctx context.Context) probe.Status {
	cfg := c.Config()
	status := probe.Check(ctx, c.transport, cfg)
	c.logger.Debug("probe",
		zap.String("baseUrl", cfg.BaseURL),
		zap.Bool("ok", status.OK),
		zap.Int("status", status.Status),
	)
	return status
}

// SetBaseURL replaces the base URL and re-probes it. Blank input keeps
// the current value.
func (c *Console) SetBaseURL(ctx context.Context, raw string) (types.Config, probe.Status) {
	if normalized := config.NormalizeBaseURL(raw); normalized != "" {
		c.mu.Lock()
		c.cfg.BaseURL = normalized
		c.mu.Unlock()
		c.logger.Info("base url changed", zap.String("baseUrl", normalized))
	}
	return c.Config(), c.Probe(ctx)
}

// Token returns the stored token, "" when none
func (c *Console) Token(ctx context.Context) (string, error) {
	return c.store.Load(ctx)
}

// SetToken stores a manually entered token. Blank input clears it.
func (c *Console) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return c.ClearToken(ctx)
	}
	return c.store.Save(ctx, token)
}

// OnTokenChange registers fn to receive every newly stored token value
func (c *Console) OnTokenChange(fn func(token string)) {
	c.store.OnSave(fn)
}

// ClearToken removes the stored token
func (c *Console) ClearToken(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.notifier.Notify(MsgTokenCleared, types.SeverityInfo)
	return nil
}

// AutoSetToken extracts the token from previously rendered response text
// and stores it.
func (c *Console) AutoSetToken(ctx context.Context, text string) (string, render.CaptureResult) {
	token, result := c.tokens.FromText(text)
	switch result {
	case render.CaptureMalformed:
		c.notifier.Notify(MsgTokenExtractFail, types.SeverityDanger)
		return "", result
	case render.CaptureNoToken:
		c.notifier.Notify(MsgNoTokenFound, types.SeverityWarning)
		return "", result
	}

	if err := c.store.Save(ctx, token); err != nil {
		c.logger.Error("failed to save token", zap.Error(err))
		c.notifier.Notify(MsgTokenExtractFail, types.SeverityDanger)
		return "", render.CaptureMalformed
	}
	c.notifier.Notify(MsgTokenSaved, types.SeveritySuccess)
	return token, result
}
