package probe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExec(t *testing.T) *executor.Executor {
	t.Helper()
	e, err := executor.New(nil)
	require.NoError(t, err)
	return e
}

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestCheckOnline(t *testing.T) {
	base := serve(t, http.StatusOK, `{"status":"healthy"}`)

	st := Check(context.Background(), newExec(t), types.Config{BaseURL: base})
	assert.True(t, st.OK)
	assert.Equal(t, "API Online", st.Label())
}

func TestCheckUnhealthyStatus(t *testing.T) {
	base := serve(t, http.StatusServiceUnavailable, `{"status":"unhealthy"}`)

	st := Check(context.Background(), newExec(t), types.Config{BaseURL: base})
	assert.False(t, st.OK)
	assert.Equal(t, http.StatusServiceUnavailable, st.Status)
	assert.Equal(t, "API Error", st.Label())
}

func TestCheckMalformedJSON(t *testing.T) {
	base := serve(t, http.StatusOK, `not json`)

	st := Check(context.Background(), newExec(t), types.Config{BaseURL: base})
	assert.False(t, st.OK)
}

func TestCheckUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	var st Status
	assert.NotPanics(t, func() {
		st = Check(context.Background(), newExec(t), types.Config{BaseURL: base})
	})
	assert.False(t, st.OK)
	assert.Equal(t, "API Offline", st.Label())
	assert.NotEmpty(t, st.Message)
}
