package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/tokenstore"
	"github.com/Iampro1712/apiconsole/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func okResult() console.Result {
	data := map[string]any{"products": []any{map[string]any{"name": "Shoe"}}}
	o := types.Outcome{
		Kind:         types.OutcomeOK,
		OK:           true,
		Status:       200,
		StatusText:   "200 OK",
		Headers:      map[string]string{"Content-Type": "application/json"},
		JSON:         data,
		Duration:     42 * time.Millisecond,
		ResponseSize: 30,
	}
	return console.Result{ExchangeID: "ex-1", State: console.StateRendered, Outcome: o, Payload: render.Render(o)}
}

func TestReadBody(t *testing.T) {
	body, err := ReadBody(`{"a":1}`, "", nil, false)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, *body)

	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"b":2}`), 0o600))
	body, err = ReadBody("", path, nil, false)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, *body)

	_, err = ReadBody("", filepath.Join(t.TempDir(), "missing.json"), nil, false)
	assert.Error(t, err)

	body, err = ReadBody("", "", strings.NewReader(`{"c":3}`), true)
	require.NoError(t, err)
	assert.Equal(t, `{"c":3}`, *body)

	body, err = ReadBody("", "", strings.NewReader(`ignored`), false)
	require.NoError(t, err)
	assert.Nil(t, body)

	body, err = ReadBody("", "", strings.NewReader(""), true)
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]string{"id=42", "q=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "42", "q": "a=b"}, params)

	_, err = ParseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestPrintText(t *testing.T) {
	var out bytes.Buffer
	err := Print(context.Background(), okResult(), Options{OutputFormat: FormatText, ShowFull: true}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "200 OK\n"))
	assert.Contains(t, s, "Duration: 42ms")
	assert.Contains(t, s, "Content-Type: application/json")
	assert.Contains(t, s, `"name": "Shoe"`)
	assert.NotContains(t, s, "\x1b[")
}

func TestPrintColor(t *testing.T) {
	var out bytes.Buffer
	err := Print(context.Background(), okResult(), Options{OutputFormat: FormatText, Color: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), colorGreen+"200 OK"+colorReset)
}

func TestPrintTransportError(t *testing.T) {
	o := types.Outcome{Kind: types.OutcomeTransportError, Message: "connection refused"}
	res := console.Result{Outcome: o, Payload: render.Render(o)}

	var out bytes.Buffer
	require.NoError(t, Print(context.Background(), res, Options{}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "Error\n"))
	assert.Contains(t, out.String(), "Connection error")
	assert.NotContains(t, out.String(), "Duration:")
}

func TestPrintJSONAndYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Print(context.Background(), okResult(), Options{OutputFormat: FormatJSON}, &out))
	assert.Contains(t, out.String(), `"exchangeId": "ex-1"`)
	assert.Contains(t, out.String(), `"durationMs": 42`)
	assert.NotContains(t, out.String(), `"headers"`)

	out.Reset()
	require.NoError(t, Print(context.Background(), okResult(), Options{OutputFormat: FormatYAML}, &out))
	var view map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "ok", view["outcome"])
	assert.Equal(t, 200, view["status"])
}

func TestPrintQuery(t *testing.T) {
	var out bytes.Buffer
	var stderr bytes.Buffer
	opts := Options{OutputFormat: FormatBody, Query: "products[0].name", Stderr: &stderr}
	require.NoError(t, Print(context.Background(), okResult(), opts, &out))
	assert.Equal(t, "\"Shoe\"\n", out.String())

	out.Reset()
	opts.Query = "[[["
	require.NoError(t, Print(context.Background(), okResult(), opts, &out))
	assert.Contains(t, stderr.String(), "filter/query error")
	assert.Contains(t, out.String(), `"products"`)
}

func TestPrintSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	var out, stderr bytes.Buffer
	require.NoError(t, Print(context.Background(), okResult(), Options{OutputFormat: FormatBody, SavePath: path, Stderr: &stderr}, &out))

	assert.Empty(t, out.String())
	assert.Contains(t, stderr.String(), "Response saved to")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Shoe"`)
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"access_token":"T"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	defer srv.Close()

	exec, err := executor.New(nil)
	require.NoError(t, err)
	store := tokenstore.NewMemory()
	c := console.New(types.Config{BaseURL: srv.URL}, store, exec)

	body := `{"email":"admin@test.com","password":"admin123"}`
	login := types.Endpoint{Name: "auth.login", Method: "POST", Path: "/auth/login", CapturesAuthToken: true}

	var out, stderr bytes.Buffer
	res, err := Run(context.Background(), c, console.Request{Endpoint: login, Body: &body}, Options{OutputFormat: FormatBody, Stderr: &stderr}, &out)
	require.NoError(t, err)
	assert.True(t, res.TokenCaptured)
	assert.Contains(t, stderr.String(), console.MsgTokenSaved)

	out.Reset()
	_, err = Run(context.Background(), c, console.Request{Method: "GET", Path: "/missing"}, Options{OutputFormat: FormatBody, Stderr: &stderr}, &out)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, out.String(), "not found")
}

func TestSelectorModel(t *testing.T) {
	endpoints := []types.Endpoint{
		{Name: "health", Method: "GET", Path: "/health"},
		{Name: "auth.login", Method: "POST", Path: "/auth/login"},
	}
	m := newSelector("Select endpoint", endpoints)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	result := next.(selectorModel)
	require.NotNil(t, result.choice)
	assert.Equal(t, "auth.login", result.choice.Name)

	cancelled, _ := newSelector("x", endpoints).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cancelled.(selectorModel).choice)
}

func TestSelectEndpointSingle(t *testing.T) {
	ep, err := SelectEndpoint("x", []types.Endpoint{{Name: "only"}})
	require.NoError(t, err)
	assert.Equal(t, "only", ep.Name)

	_, err = SelectEndpoint("x", nil)
	assert.Error(t, err)
}

func TestPromptParams(t *testing.T) {
	var out bytes.Buffer
	values, err := PromptParams([]string{"id", "itemId"}, strings.NewReader("7\n 9 "), &out)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "7", "itemId": "9"}, values)
	assert.Contains(t, out.String(), "Enter value for 'id'")

	_, err = PromptParams([]string{"id"}, strings.NewReader(""), &out)
	assert.Error(t, err)
}
