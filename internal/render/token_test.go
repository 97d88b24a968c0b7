package render

import (
	"testing"

	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loginEndpoint = types.Endpoint{Name: "auth.login", Method: "POST", Path: "/auth/login", CapturesAuthToken: true}

func TestCaptureFromLoginResponse(t *testing.T) {
	ex := MustTokenExtractor("")
	outcome := types.Outcome{
		Kind: types.OutcomeOK,
		OK:   true,
		JSON: map[string]any{"access_token": "T", "refresh_token": "R"},
	}

	token, ok := ex.Capture(loginEndpoint, outcome)
	assert.True(t, ok)
	assert.Equal(t, "T", token)
}

func TestCaptureRequiresDeclaredCapability(t *testing.T) {
	ex := MustTokenExtractor("")
	outcome := types.Outcome{Kind: types.OutcomeOK, OK: true, JSON: map[string]any{"access_token": "T"}}

	plain := loginEndpoint
	plain.CapturesAuthToken = false
	_, ok := ex.Capture(plain, outcome)
	assert.False(t, ok)
}

func TestCaptureIgnoresFailedStatus(t *testing.T) {
	ex := MustTokenExtractor("")
	outcome := types.Outcome{Kind: types.OutcomeOK, OK: false, Status: 401, JSON: map[string]any{"access_token": "T"}}

	_, ok := ex.Capture(loginEndpoint, outcome)
	assert.False(t, ok)
}

func TestCaptureIgnoresErrorsAndMissingField(t *testing.T) {
	ex := MustTokenExtractor("")

	_, ok := ex.Capture(loginEndpoint, types.Outcome{Kind: types.OutcomeTransportError, Message: "x"})
	assert.False(t, ok)

	_, ok = ex.Capture(loginEndpoint, types.Outcome{Kind: types.OutcomeOK, OK: true, JSON: map[string]any{"message": "hi"}})
	assert.False(t, ok)

	_, ok = ex.Capture(loginEndpoint, types.Outcome{Kind: types.OutcomeOK, OK: true, JSON: map[string]any{"access_token": ""}})
	assert.False(t, ok)

	_, ok = ex.Capture(loginEndpoint, types.Outcome{Kind: types.OutcomeOK, OK: true, JSON: []any{"access_token"}})
	assert.False(t, ok)
}

func TestCustomTokenExpression(t *testing.T) {
	ex, err := NewTokenExtractor("data.tokens.access")
	require.NoError(t, err)
	assert.Equal(t, "data.tokens.access", ex.Expression())

	token, ok := ex.FromValue(map[string]any{
		"data": map[string]any{"tokens": map[string]any{"access": "nested"}},
	})
	assert.True(t, ok)
	assert.Equal(t, "nested", token)
}

func TestInvalidTokenExpression(t *testing.T) {
	_, err := NewTokenExtractor("[[[")
	assert.Error(t, err)
}

func TestFromText(t *testing.T) {
	ex := MustTokenExtractor("")

	token, result := ex.FromText("{\n  \"access_token\": \"abc\"\n}")
	assert.Equal(t, CaptureFound, result)
	assert.Equal(t, "abc", token)

	_, result = ex.FromText(`{"user": {"id": 1}}`)
	assert.Equal(t, CaptureNoToken, result)

	_, result = ex.FromText("")
	assert.Equal(t, CaptureMalformed, result)

	_, result = ex.FromText("⏳ {broken")
	assert.Equal(t, CaptureMalformed, result)
}
