package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/history"
	"github.com/Iampro1712/apiconsole/internal/migrations"
	"github.com/Iampro1712/apiconsole/internal/notify"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/tokenstore"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	mu    sync.Mutex
	calls int
}

func (f *countingTransport) Execute(context.Context, *types.RequestDescriptor, types.Config) types.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return types.Outcome{Kind: types.OutcomeOK, OK: true, Status: 200, JSON: map[string]any{}}
}

func strPtr(s string) *string { return &s }

var loginEndpoint = types.Endpoint{
	Name:              "auth.login",
	Method:            "POST",
	Path:              "/auth/login",
	CapturesAuthToken: true,
}

func newExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	exec, err := executor.New(nil)
	require.NoError(t, err)
	return exec
}

func TestSendInvalidJSONNeverReachesTransport(t *testing.T) {
	transport := &countingTransport{}
	c := New(types.Config{BaseURL: "http://example.invalid/api"}, tokenstore.NewMemory(), transport)

	res := c.Send(context.Background(), Request{Endpoint: loginEndpoint, Body: strPtr(`{"email":`)})

	assert.Equal(t, StateValidationFailed, res.State)
	assert.Equal(t, types.OutcomeValidationError, res.Outcome.Kind)
	assert.Zero(t, transport.calls)
	assert.False(t, res.Payload.Success)
	assert.Equal(t, "Invalid JSON in request body", res.Payload.Data.(map[string]any)["error"])
	assert.NotEmpty(t, res.ExchangeID)
}

func TestSendInvalidEndpoint(t *testing.T) {
	transport := &countingTransport{}
	c := New(types.Config{BaseURL: "http://example.invalid"}, tokenstore.NewMemory(), transport)

	res := c.Send(context.Background(), Request{Method: "GET", Path: "products"})

	assert.Equal(t, StateValidationFailed, res.State)
	assert.Zero(t, transport.calls)
	assert.Equal(t, MsgInvalidEndpoint, res.Payload.Data.(map[string]any)["error"])
}

func TestSendLoginCapturesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T"}`))
	}))
	defer srv.Close()

	store := tokenstore.NewMemory()
	center := notify.NewCenter()
	c := New(types.Config{BaseURL: srv.URL + "/api"}, store, newExecutor(t), WithNotifier(center))

	res := c.Send(context.Background(), Request{
		Endpoint: loginEndpoint,
		Body:     strPtr(`{"email":"admin@test.com","password":"admin123"}`),
	})

	assert.Equal(t, StateRendered, res.State)
	assert.True(t, res.Payload.Success)
	assert.True(t, res.TokenCaptured)

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T", token)

	active := center.Active()
	require.Len(t, active, 1)
	assert.Equal(t, MsgTokenSaved, active[0].Message)
	assert.Equal(t, types.SeveritySuccess, active[0].Severity)
}

func TestSendFailedLoginKeepsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"access_token":"bogus","error":"bad credentials"}`))
	}))
	defer srv.Close()

	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), "old"))
	c := New(types.Config{BaseURL: srv.URL}, store, newExecutor(t))

	res := c.Send(context.Background(), Request{Endpoint: loginEndpoint, Body: strPtr(`{}`)})

	assert.False(t, res.Payload.Success)
	assert.Equal(t, "Error", res.Payload.Title)
	assert.False(t, res.TokenCaptured)
	token, _ := store.Load(context.Background())
	assert.Equal(t, "old", token)
}

func TestSendNonCapturingEndpointIgnoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"X"}`))
	}))
	defer srv.Close()

	store := tokenstore.NewMemory()
	c := New(types.Config{BaseURL: srv.URL}, store, newExecutor(t))

	res := c.Send(context.Background(), Request{Endpoint: types.Endpoint{Name: "auth.profile", Method: "GET", Path: "/auth/profile"}})

	assert.False(t, res.TokenCaptured)
	token, _ := store.Load(context.Background())
	assert.Empty(t, token)
}

func TestSendTrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(types.Config{BaseURL: srv.URL + "/api/"}, tokenstore.NewMemory(), newExecutor(t))
	res := c.Send(context.Background(), Request{Method: "GET", Path: "/products"})

	assert.True(t, res.Payload.Success)
	assert.Equal(t, "/api/products", gotPath)
}

func TestSendAuthorizationHeader(t *testing.T) {
	var headers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	store := tokenstore.NewMemory()
	c := New(types.Config{BaseURL: srv.URL}, store, newExecutor(t))
	ctx := context.Background()

	c.Send(ctx, Request{Method: "GET", Path: "/cart"})
	require.NoError(t, c.SetToken(ctx, "abc"))
	c.Send(ctx, Request{Method: "GET", Path: "/cart"})

	assert.Equal(t, []string{"", "Bearer abc"}, headers)
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(types.Config{BaseURL: base}, tokenstore.NewMemory(), newExecutor(t))
	res := c.Send(context.Background(), Request{Method: "GET", Path: "/products"})

	assert.Equal(t, StateRendered, res.State)
	assert.Equal(t, types.OutcomeTransportError, res.Outcome.Kind)
	assert.Equal(t, "Connection error", res.Payload.Data.(map[string]any)["error"])
}

func TestStateTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []State
	hook := func(_ string, s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	}

	c := New(types.Config{BaseURL: "http://x"}, tokenstore.NewMemory(), &countingTransport{}, WithStateHook(hook))

	c.Send(context.Background(), Request{Method: "GET", Path: "/health"})
	assert.Equal(t, []State{StateBuilding, StateSent, StateRendered}, states)

	states = nil
	c.Send(context.Background(), Request{Method: "POST", Path: "/cart/add", Body: strPtr("nope")})
	assert.Equal(t, []State{StateBuilding, StateValidationFailed}, states)
}

func TestSetBaseURLProbes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(types.Config{BaseURL: "http://127.0.0.1:1"}, tokenstore.NewMemory(), newExecutor(t))

	cfg, status := c.SetBaseURL(context.Background(), "  "+srv.URL+"/api/ ")
	assert.Equal(t, srv.URL+"/api", cfg.BaseURL)
	assert.True(t, status.OK)
	assert.Equal(t, "API Online", status.Label())

	cfg, _ = c.SetBaseURL(context.Background(), "   ")
	assert.Equal(t, srv.URL+"/api", cfg.BaseURL)
}

func TestProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(types.Config{BaseURL: base}, tokenstore.NewMemory(), newExecutor(t))
	status := c.Probe(context.Background())
	assert.False(t, status.OK)
	assert.Equal(t, "API Offline", status.Label())
}

func TestAutoSetToken(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		text     string
		want     render.CaptureResult
		token    string
		message  string
		severity types.Severity
	}{
		{"found", `{"access_token":"XYZ"}`, render.CaptureFound, "XYZ", MsgTokenSaved, types.SeveritySuccess},
		{"no token", `{"user":"a"}`, render.CaptureNoToken, "", MsgNoTokenFound, types.SeverityWarning},
		{"malformed", `Sending request...`, render.CaptureMalformed, "", MsgTokenExtractFail, types.SeverityDanger},
		{"empty", ``, render.CaptureMalformed, "", MsgTokenExtractFail, types.SeverityDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tokenstore.NewMemory()
			center := notify.NewCenter()
			c := New(types.Config{}, store, &countingTransport{}, WithNotifier(center))

			token, result := c.AutoSetToken(ctx, tt.text)
			assert.Equal(t, tt.want, result)
			assert.Equal(t, tt.token, token)

			stored, _ := store.Load(ctx)
			assert.Equal(t, tt.token, stored)

			active := center.Active()
			require.Len(t, active, 1)
			assert.Equal(t, tt.message, active[0].Message)
			assert.Equal(t, tt.severity, active[0].Severity)
		})
	}
}

func TestSetTokenBlankClears(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	c := New(types.Config{}, store, &countingTransport{})

	require.NoError(t, c.SetToken(ctx, "abc"))
	token, _ := c.Token(ctx)
	assert.Equal(t, "abc", token)

	require.NoError(t, c.SetToken(ctx, ""))
	token, _ = c.Token(ctx)
	assert.Empty(t, token)
}

func TestSendRecordsHistory(t *testing.T) {
	db, err := migrations.Open(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	defer db.Close()
	hist := history.NewManager(db)

	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), "secret"))
	c := New(types.Config{BaseURL: "http://x"}, store, &countingTransport{}, WithHistory(hist))

	ok := c.Send(context.Background(), Request{Method: "GET", Path: "/orders"})
	c.Send(context.Background(), Request{Method: "PUT", Path: "/cart/update/1", Body: strPtr("{")})

	entries, err := hist.Load(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byExchange := map[string]types.HistoryEntry{}
	for _, e := range entries {
		byExchange[e.ExchangeID] = e
	}
	sent := byExchange[ok.ExchangeID]
	assert.Equal(t, "/orders", sent.URL)
	assert.Equal(t, "Bearer ***", sent.Headers["Authorization"])
	assert.Equal(t, "ok", sent.Outcome)
}

func TestConcurrentSends(t *testing.T) {
	transport := &countingTransport{}
	c := New(types.Config{BaseURL: "http://x"}, tokenstore.NewMemory(), transport)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = c.Send(context.Background(), Request{Method: "GET", Path: "/products"}).ExchangeID
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, transport.calls)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestOnTokenChangeMirrorsCapture(t *testing.T) {
	store := tokenstore.NewMemory()
	c := New(types.Config{}, store, &countingTransport{})

	var mirrored []string
	c.OnTokenChange(func(token string) { mirrored = append(mirrored, token) })

	c.AutoSetToken(context.Background(), `{"access_token":"A"}`)
	require.NoError(t, c.ClearToken(context.Background()))

	assert.Equal(t, []string{"A", ""}, mirrored)
}
