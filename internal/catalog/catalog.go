// Package catalog declares the API endpoints the console knows about.
//
// Each endpoint carries its own capability flags; in particular
// CapturesAuthToken marks the operations whose successful responses hold
// an access token to store.
package catalog

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed endpoints.yaml
var defaultCatalog []byte

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

type catalogFile struct {
	Endpoints []types.Endpoint `yaml:"endpoints"`
}

// Catalog is an ordered, name-indexed set of endpoints
type Catalog struct {
	endpoints []types.Endpoint
	byName    map[string]int
}

// Default returns the built-in shop API catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file; an empty path selects the default catalog
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{byName: make(map[string]int, len(file.Endpoints))}
	for i, ep := range file.Endpoints {
		ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
		ep.BodyTemplate = strings.TrimRight(ep.BodyTemplate, "\n")

		switch {
		case ep.Name == "":
			return nil, fmt.Errorf("endpoint #%d: missing name", i+1)
		case !strings.HasPrefix(ep.Path, "/"):
			return nil, fmt.Errorf("endpoint %s: path must start with '/'", ep.Name)
		case !builder.IsSupportedMethod(ep.Method):
			return nil, fmt.Errorf("endpoint %s: unsupported method %q", ep.Name, ep.Method)
		}
		if _, dup := c.byName[ep.Name]; dup {
			return nil, fmt.Errorf("endpoint %s: duplicate name", ep.Name)
		}

		c.byName[ep.Name] = len(c.endpoints)
		c.endpoints = append(c.endpoints, ep)
	}

	return c, nil
}

// Endpoints returns all endpoints in declaration order
func (c *Catalog) Endpoints() []types.Endpoint {
	return append([]types.Endpoint(nil), c.endpoints...)
}

// Get looks an endpoint up by exact name
func (c *Catalog) Get(name string) (types.Endpoint, bool) {
	i, ok := c.byName[name]
	if !ok {
		return types.Endpoint{}, false
	}
	return c.endpoints[i], true
}

// Groups returns the distinct group names, sorted
func (c *Catalog) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, ep := range c.endpoints {
		if ep.Group != "" && !seen[ep.Group] {
			seen[ep.Group] = true
			groups = append(groups, ep.Group)
		}
	}
	sort.Strings(groups)
	return groups
}

// names implements fuzzy.Source over endpoint names
type names []types.Endpoint

func (n names) String(i int) string { return n[i].Name }
func (n names) Len() int            { return len(n) }

// Find returns endpoints whose names fuzzily match query, best match first.
// An exact name match is always returned alone.
func (c *Catalog) Find(query string) []types.Endpoint {
	if ep, ok := c.Get(query); ok {
		return []types.Endpoint{ep}
	}
	matches := fuzzy.FindFrom(query, names(c.endpoints))
	result := make([]types.Endpoint, 0, len(matches))
	for _, m := range matches {
		result = append(result, c.endpoints[m.Index])
	}
	return result
}

// Match returns the declared endpoint for a concrete method and path, so
// ad-hoc requests keep the declared capabilities. The query string is
// ignored and literal segments win over placeholders. Unknown paths yield
// an ad-hoc endpoint without capabilities.
func (c *Catalog) Match(method, path string) types.Endpoint {
	method = strings.ToUpper(method)
	bare := path
	if i := strings.IndexByte(bare, '?'); i >= 0 {
		bare = bare[:i]
	}

	best, bestWildcards := -1, 0
	for i, ep := range c.endpoints {
		if ep.Method != method {
			continue
		}
		wildcards, ok := pathMatches(ep.Path, bare)
		if ok && (best < 0 || wildcards < bestWildcards) {
			best, bestWildcards = i, wildcards
		}
	}
	if best >= 0 {
		return c.endpoints[best]
	}

	return types.Endpoint{Name: "custom", Method: method, Path: path}
}

func pathMatches(pattern, path string) (int, bool) {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	qs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(qs) {
		return 0, false
	}
	wildcards := 0
	for i := range ps {
		if placeholderPattern.MatchString(ps[i]) {
			if qs[i] == "" {
				return 0, false
			}
			wildcards++
			continue
		}
		if ps[i] != qs[i] {
			return 0, false
		}
	}
	return wildcards, true
}

// Placeholders lists the {name} parameters of a path in order
func Placeholders(path string) []string {
	var out []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(path, -1) {
		out = append(out, m[1])
	}
	return out
}

// ExpandPath substitutes {name} placeholders with path-escaped values
func ExpandPath(path string, params map[string]string) (string, error) {
	var missing []string
	expanded := placeholderPattern.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok || v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing path parameters: %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}
