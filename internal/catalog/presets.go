package catalog

import (
	"net/url"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/render"
)

// ProductsPath is the product listing endpoint
const ProductsPath = "/products"

// LoginEndpointName is the catalog entry used by the quick-login presets
const LoginEndpointName = "auth.login"

// ProductsEndpoint builds the product listing path with the optional
// q, min_price and max_price filters. Empty filters are omitted.
func ProductsEndpoint(q, minPrice, maxPrice string) string {
	var parts []string
	for _, kv := range [][2]string{{"q", q}, {"min_price", minPrice}, {"max_price", maxPrice}} {
		if kv[1] != "" {
			parts = append(parts, url.QueryEscape(kv[0])+"="+url.QueryEscape(kv[1]))
		}
	}

	if len(parts) == 0 {
		return ProductsPath
	}
	return ProductsPath + "?" + strings.Join(parts, "&")
}

// Credentials is a login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var (
	// AdminLogin is the seeded administrator account
	AdminLogin = Credentials{Email: "admin@test.com", Password: "admin123"}
	// UserLogin is the seeded customer account
	UserLogin = Credentials{Email: "user@test.com", Password: "user123"}
)

// LoginBody renders credentials as the 2-space indented login body
func LoginBody(c Credentials) string {
	body, err := render.PrettyJSON(c)
	if err != nil {
		return "{}"
	}
	return body
}
