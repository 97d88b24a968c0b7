package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	login, ok := c.Get(LoginEndpointName)
	require.True(t, ok)
	assert.Equal(t, "POST", login.Method)
	assert.Equal(t, "/auth/login", login.Path)
	assert.True(t, login.CapturesAuthToken)

	health, ok := c.Get("health")
	require.True(t, ok)
	assert.False(t, health.CapturesAuthToken)

	// every body template is valid JSON
	for _, ep := range c.Endpoints() {
		if ep.BodyTemplate == "" {
			continue
		}
		assert.True(t, json.Valid([]byte(ep.BodyTemplate)), ep.Name)
	}

	assert.Contains(t, c.Groups(), "auth")
	assert.Contains(t, c.Groups(), "products")
}

func TestParseRejectsInvalidCatalog(t *testing.T) {
	cases := map[string]string{
		"missing name":   "endpoints:\n  - method: GET\n    path: /x\n",
		"relative path":  "endpoints:\n  - name: x\n    method: GET\n    path: x\n",
		"bad method":     "endpoints:\n  - name: x\n    method: FETCH\n    path: /x\n",
		"duplicate name": "endpoints:\n  - {name: x, method: GET, path: /x}\n  - {name: x, method: GET, path: /y}\n",
		"not yaml":       "endpoints: [",
	}
	for name, data := range cases {
		_, err := Parse([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "endpoints:\n  - name: token\n    method: post\n    path: /oauth/token\n    capturesAuthToken: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	ep, ok := c.Get("token")
	require.True(t, ok)
	assert.Equal(t, "POST", ep.Method)
	assert.True(t, ep.CapturesAuthToken)
}

func TestFind(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	exact := c.Find("cart.add")
	require.Len(t, exact, 1)
	assert.Equal(t, "cart.add", exact[0].Name)

	fuzzyMatches := c.Find("login")
	require.NotEmpty(t, fuzzyMatches)
	assert.Equal(t, "auth.login", fuzzyMatches[0].Name)

	assert.Empty(t, c.Find("zzzzzz"))
}

func TestMatch(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ep := c.Match("post", "/auth/login")
	assert.Equal(t, "auth.login", ep.Name)
	assert.True(t, ep.CapturesAuthToken)

	ep = c.Match("GET", "/products?q=foo")
	assert.Equal(t, "products.list", ep.Name)

	ep = c.Match("GET", "/orders/42")
	assert.Equal(t, "orders.get", ep.Name)

	ep = c.Match("GET", "/auth/login")
	assert.Equal(t, "custom", ep.Name)
	assert.False(t, ep.CapturesAuthToken)
}

func TestExpandPath(t *testing.T) {
	path, err := ExpandPath("/cart/update/{id}", map[string]string{"id": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "/cart/update/a%20b", path)

	_, err = ExpandPath("/orders/{id}/cancel", nil)
	assert.EqualError(t, err, "missing path parameters: id")

	assert.Equal(t, []string{"id"}, Placeholders("/orders/{id}/cancel"))
	assert.Empty(t, Placeholders("/health"))
}

func TestProductsEndpoint(t *testing.T) {
	assert.Equal(t, "/products", ProductsEndpoint("", "", ""))
	assert.Equal(t, "/products?q=foo", ProductsEndpoint("foo", "", ""))
	assert.Equal(t, "/products?q=red+shoe&min_price=10&max_price=99.5", ProductsEndpoint("red shoe", "10", "99.5"))
	assert.Equal(t, "/products?max_price=5", ProductsEndpoint("", "", "5"))
}

func TestLoginBody(t *testing.T) {
	assert.Equal(t, "{\n  \"email\": \"admin@test.com\",\n  \"password\": \"admin123\"\n}", LoginBody(AdminLogin))
	assert.Contains(t, LoginBody(UserLogin), "user@test.com")
}

func TestMatchPrefersLiteralSegments(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "orders.stats", c.Match("GET", "/orders/stats").Name)
	assert.Equal(t, "products.categories", c.Match("GET", "/products/categories").Name)
	assert.Equal(t, "products.get", c.Match("GET", "/products/abc").Name)
}
