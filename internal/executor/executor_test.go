package executor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	mu      sync.Mutex
	method  string
	uri     string
	headers http.Header
	body    string
}

func newCaptureServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.method = r.Method
		c.uri = r.URL.RequestURI()
		c.headers = r.Header.Clone()
		c.body = string(data)
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := New(nil)
	require.NoError(t, err)
	return e
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://x/api/products?q=foo", JoinURL("http://x/api", "/products?q=foo"))
}

func TestExecuteSendsDescriptor(t *testing.T) {
	srv, c := newCaptureServer(t, http.StatusCreated, `{"id": 7}`)
	exec := newTestExecutor(t)

	body := `{"name":  "shoe"}`
	desc, err := builder.Build("POST", "/products?q=foo", &body, "abc")
	require.NoError(t, err)

	outcome := exec.Execute(context.Background(), desc, types.Config{BaseURL: srv.URL + "/api"})

	require.Equal(t, types.OutcomeOK, outcome.Kind)
	assert.True(t, outcome.OK)
	assert.Equal(t, http.StatusCreated, outcome.Status)
	assert.Equal(t, map[string]any{"id": float64(7)}, outcome.JSON)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, "POST", c.method)
	assert.Equal(t, "/api/products?q=foo", c.uri)
	assert.Equal(t, "Bearer abc", c.headers.Get("Authorization"))
	assert.Equal(t, "application/json", c.headers.Get("Content-Type"))
	assert.Equal(t, body, c.body)
}

func TestExecuteErrorStatusIsStillOK(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnauthorized, `{"error": "Invalid credentials"}`)
	exec := newTestExecutor(t)

	desc, err := builder.Build("GET", "/auth/profile", nil, "")
	require.NoError(t, err)

	outcome := exec.Execute(context.Background(), desc, types.Config{BaseURL: srv.URL})
	assert.Equal(t, types.OutcomeOK, outcome.Kind)
	assert.False(t, outcome.OK)
	assert.Equal(t, http.StatusUnauthorized, outcome.Status)
	assert.Equal(t, map[string]any{"error": "Invalid credentials"}, outcome.JSON)
}

func TestExecuteNonJSONBody(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `<html>oops</html>`)
	exec := newTestExecutor(t)

	desc, err := builder.Build("GET", "/", nil, "")
	require.NoError(t, err)

	outcome := exec.Execute(context.Background(), desc, types.Config{BaseURL: srv.URL})
	assert.Equal(t, types.OutcomeOK, outcome.Kind)
	assert.Nil(t, outcome.JSON)
	assert.NotEmpty(t, outcome.JSONError)
	assert.Equal(t, "<html>oops</html>", outcome.RawBody)
}

func TestExecuteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	exec := newTestExecutor(t)
	desc, err := builder.Build("GET", "/health", nil, "")
	require.NoError(t, err)

	outcome := exec.Execute(context.Background(), desc, types.Config{BaseURL: baseURL})
	assert.Equal(t, types.OutcomeTransportError, outcome.Kind)
	assert.NotEmpty(t, outcome.Message)
	assert.False(t, outcome.OK)
}

func TestExecuteRespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	exec := newTestExecutor(t)
	desc, err := builder.Build("GET", "/slow", nil, "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	outcome := exec.Execute(ctx, desc, types.Config{BaseURL: srv.URL})
	assert.Equal(t, types.OutcomeTransportError, outcome.Kind)
}

func TestClientHasNoTimeout(t *testing.T) {
	assert.Zero(t, newTestExecutor(t).Client().Timeout)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "512B", FormatSize(512))
	assert.Equal(t, "2.00KB", FormatSize(2048))
	assert.True(t, IsSuccessStatus(204))
	assert.True(t, IsClientErrorStatus(404))
	assert.True(t, IsServerErrorStatus(503))
}
