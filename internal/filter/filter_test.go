package filter

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const productsBody = `{
  "products": [
    {"name": "Shoe", "price": 50},
    {"name": "Hat", "price": 5}
  ],
  "total": 2
}`

func TestApplyQuery(t *testing.T) {
	out, err := Apply(context.Background(), productsBody, "", "products[].name")
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"Shoe\",\n  \"Hat\"\n]", out)
}

func TestApplyFilterThenQuery(t *testing.T) {
	out, err := Apply(context.Background(), productsBody, "products[?price > `10`]", "[].name")
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"Shoe\"\n]", out)
}

func TestApplyNullResult(t *testing.T) {
	out, err := Apply(context.Background(), productsBody, "", "missing")
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		filter string
		query  string
		stage  Stage
	}{
		{"body not json", "not json", "", "a", StageQuery},
		{"bad query", productsBody, "", "[[[", StageQuery},
		{"bad filter", productsBody, "[[[", "total", StageFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(context.Background(), tt.body, tt.filter, tt.query)
			var exprErr *ExprError
			require.True(t, errors.As(err, &exprErr), "got %v", err)
			assert.Equal(t, tt.stage, exprErr.Stage)
		})
	}
}

func TestApplyNoExpressions(t *testing.T) {
	out, err := Apply(context.Background(), "anything", "", "")
	require.NoError(t, err)
	assert.Equal(t, "anything", out)
}

func TestApplyShellQuery(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := Apply(context.Background(), productsBody, "", "$(wc -l)")
	require.NoError(t, err)
	assert.Equal(t, "6", out)
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidJMESPath("products[0].name"))
	assert.False(t, IsValidJMESPath("[[["))
	assert.True(t, IsShellCommand("$(jq .)"))
	assert.False(t, IsShellCommand("products"))
}

func TestRunnerLogsShellQueries(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRunner(zap.New(core))

	out, err := r.Apply(context.Background(), productsBody, "products[?price > `10`]", "$(grep -c name)")
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	_, err = r.Apply(context.Background(), productsBody, "", "$(exit 3)")
	var exprErr *ExprError
	require.True(t, errors.As(err, &exprErr))
	assert.Equal(t, StageQuery, exprErr.Stage)

	require.Equal(t, 1, logs.FilterMessage("shell query").Len())
	failed := logs.FilterMessage("shell query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "exit 3", failed[0].ContextMap()["command"])
}
