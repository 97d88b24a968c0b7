package mock

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	s := NewServer(cfg, t.TempDir(), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestDefaultRoutes(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = get(t, ts.URL+"/api/products?q=laptop&min_price=10", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Laptop")

	resp, _ = get(t, ts.URL+"/api/products/42", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, ts.URL+"/api/products/categories", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "electronics")
}

func TestLoginReturnsToken(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader(`{"email":"a","password":"b"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"access_token":"mock-token"`)
}

func TestRequiresAuth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := get(t, ts.URL+"/api/auth/profile", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := get(t, ts.URL+"/api/auth/profile", "mock-token")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "admin@test.com")
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := get(t, ts.URL+"/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/health", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "outside the prefix")
}

func TestLogs(t *testing.T) {
	s, ts := newTestServer(t)

	get(t, ts.URL+"/api/health", "")
	get(t, ts.URL+"/api/nope", "")

	logs := s.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "health", logs[0].MatchedRule)
	assert.Equal(t, http.StatusOK, logs[0].Status)
	assert.Equal(t, "none", logs[1].MatchedRule)
}

func TestBodyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`[{"id":7}]`), 0644))

	cfg := &Config{Routes: []Route{{Method: "GET", Path: "/orders", BodyFile: "orders.json"}}}
	ts := httptest.NewServer(NewServer(cfg, dir, nil).Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/orders", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"id":7}]`, body)
}

func TestBaseURL(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", NewServer(cfg, "", nil).BaseURL())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(good, []byte("routes:\n  - {method: GET, path: /x, status: 204}\n"), 0644))
	cfg, err := LoadConfig(good)
	require.NoError(t, err)
	assert.Len(t, cfg.Routes, 1)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"routes":[{"method":"GET","path":"/x","pathType":"glob"}]}`), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "routes.toml"))
	assert.Error(t, err)
}
