package tui

import (
	"fmt"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/catalog"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/filter"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// navigateEndpoints moves the endpoint selection by delta
func (m *Model) navigateEndpoints(delta int) {
	if len(m.endpoints) == 0 {
		return
	}
	next := m.endpointIndex + delta
	if next < 0 || next >= len(m.endpoints) {
		return
	}
	m.selectEndpoint(next)
}

// loading reports whether any send is still waiting for its response
func (m *Model) loading() bool {
	return m.inFlight > 0
}

// adjustEndpointOffset keeps the selection inside the visible list window
func (m *Model) adjustEndpointOffset() {
	visible := m.endpointListHeight()
	if visible <= 0 {
		return
	}
	if m.endpointIndex < m.endpointOffset {
		m.endpointOffset = m.endpointIndex
	}
	if m.endpointIndex >= m.endpointOffset+visible {
		m.endpointOffset = m.endpointIndex - visible + 1
	}
}

// loadToken reads the stored token into the token field
func (m *Model) loadToken() tea.Cmd {
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		token, err := c.Token(ctx)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load token: %v", err))
		}
		return tokenMsg(token)
	}
}

// probeStatus checks the health endpoint of the current base URL
func (m *Model) probeStatus() tea.Cmd {
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		return probeMsg{cfg: c.Config(), status: c.Probe(ctx)}
	}
}

// requestPath returns the path to send, expanding the product filters
func (m *Model) requestPath() string {
	path := strings.TrimSpace(m.pathInput.Value())
	if m.isProductListing() {
		return catalog.ProductsEndpoint(
			strings.TrimSpace(m.searchInput.Value()),
			strings.TrimSpace(m.minPriceInput.Value()),
			strings.TrimSpace(m.maxPriceInput.Value()),
		)
	}
	return path
}

// buildRequest assembles the send action from the editor fields
func (m *Model) buildRequest() (console.Request, error) {
	path := m.requestPath()
	if missing := catalog.Placeholders(path); len(missing) > 0 {
		return console.Request{}, fmt.Errorf("fill in path parameters: %s", strings.Join(missing, ", "))
	}

	req := console.Request{
		Endpoint: m.resolveEndpoint(path),
		Method:   m.method,
		Path:     path,
	}
	if builder.CarriesPayload(m.method) {
		body := m.bodyInput.Value()
		req.Body = &body
	}
	return req, nil
}

// resolveEndpoint finds the catalog entry matching the edited request
func (m *Model) resolveEndpoint(path string) types.Endpoint {
	if m.catalog == nil {
		return types.Endpoint{Name: "custom", Method: m.method, Path: path}
	}
	return m.catalog.Match(m.method, path)
}

// sendRequest runs one exchange in the background. Sends already in
// flight are left running; whichever response arrives last is displayed.
func (m *Model) sendRequest() tea.Cmd {
	req, err := m.buildRequest()
	if err != nil {
		return func() tea.Msg { return errorMsg(err.Error()) }
	}

	token := strings.TrimSpace(m.tokenInput.Value())
	tokenEdited := token != m.storedToken

	m.inFlight++
	m.payload = render.Pending()
	m.hasPayload = true
	m.filterActive = false
	m.updateResponseView()

	c, ctx, logger := m.console, m.ctx, m.logger
	return func() tea.Msg {
		if tokenEdited {
			if err := c.SetToken(ctx, token); err != nil {
				logger.Warn("failed to save edited token", zap.Error(err))
			}
		}
		return responseMsg{result: c.Send(ctx, req)}
	}
}

// quickLogin fills the login body with preset credentials and sends it
func (m *Model) quickLogin(creds catalog.Credentials) tea.Cmd {
	for i, ep := range m.endpoints {
		if ep.Name == catalog.LoginEndpointName {
			m.selectEndpoint(i)
			break
		}
	}
	if m.currentEndpoint().Name != catalog.LoginEndpointName {
		m.method = "POST"
		m.pathInput.SetValue("/auth/login")
	}
	m.bodyInput.SetValue(catalog.LoginBody(creds))
	return m.sendRequest()
}

// autoSetToken stores the token found in the displayed response
func (m *Model) autoSetToken() tea.Cmd {
	text := m.displayedBody()
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		token, result := c.AutoSetToken(ctx, text)
		if result != render.CaptureFound {
			return nil
		}
		return tokenMsg(token)
	}
}

// saveToken persists the token field as typed
func (m *Model) saveToken() tea.Cmd {
	token := strings.TrimSpace(m.tokenInput.Value())
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		if err := c.SetToken(ctx, token); err != nil {
			return errorMsg(fmt.Sprintf("Failed to save token: %v", err))
		}
		if token == "" {
			return tokenMsg("")
		}
		c.Notifier().Notify("Token saved", types.SeveritySuccess)
		return tokenMsg(token)
	}
}

// applyBaseURL replaces the base URL and re-probes
func (m *Model) applyBaseURL() tea.Cmd {
	raw := m.baseURLInput.Value()
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		cfg, status := c.SetBaseURL(ctx, raw)
		return probeMsg{cfg: cfg, status: status}
	}
}

// applyFilter runs the filter prompt expression over the response body
func (m *Model) applyFilter() {
	expr := strings.TrimSpace(m.filterInput.Value())
	if expr == "" || !m.hasPayload {
		m.filterActive = false
		m.filteredBody = ""
		m.filterError = ""
		m.updateResponseView()
		return
	}

	out, err := m.filters.Apply(m.ctx, m.payload.Body, "", expr)
	if err != nil {
		m.filterError = err.Error()
		m.errorMsg = "Filter error: " + err.Error()
		return
	}
	m.filterActive = true
	m.filteredBody = out
	m.filterError = ""
	m.statusMsg = "Filter: " + expr
	m.updateResponseView()
}

// loadBookmarks fetches the saved filter expressions
func (m *Model) loadBookmarks() tea.Cmd {
	if m.bookmarks == nil {
		return nil
	}
	b, ctx := m.bookmarks, m.ctx
	return func() tea.Msg {
		list, err := b.List(ctx)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load saved filters: %v", err))
		}
		return bookmarksMsg(list)
	}
}

// saveBookmark stores the expression in the filter prompt
func (m *Model) saveBookmark() tea.Cmd {
	expr := strings.TrimSpace(m.filterInput.Value())
	if m.bookmarks == nil || expr == "" {
		return nil
	}
	if !filter.IsValidJMESPath(expr) && !filter.IsShellCommand(expr) {
		return func() tea.Msg { return errorMsg("Invalid filter expression") }
	}
	b, ctx, notifier := m.bookmarks, m.ctx, m.console.Notifier()
	return func() tea.Msg {
		added, err := b.Save(ctx, expr)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to save filter: %v", err))
		}
		if added {
			notifier.Notify("Filter saved", types.SeveritySuccess)
		} else {
			notifier.Notify("Filter already saved", types.SeverityInfo)
		}
		list, err := b.List(ctx)
		if err != nil {
			return nil
		}
		return bookmarksMsg(list)
	}
}

// cycleBookmark fills the filter prompt with the next saved expression;
// delta 1 moves to older entries
func (m *Model) cycleBookmark(delta int) {
	if len(m.savedFilters) == 0 {
		return
	}
	next := m.savedIndex + delta
	if next < 0 || next >= len(m.savedFilters) {
		return
	}
	m.savedIndex = next
	m.filterInput.SetValue(m.savedFilters[next].Expression)
	m.filterInput.CursorEnd()
}

// displayedBody is the response text currently shown
func (m *Model) displayedBody() string {
	if m.filterActive {
		return m.filteredBody
	}
	if !m.hasPayload {
		return ""
	}
	return m.payload.Body
}

// copyToClipboard copies the displayed response to the clipboard
func (m *Model) copyToClipboard() tea.Cmd {
	body := m.displayedBody()
	notifier := m.console.Notifier()
	return func() tea.Msg {
		if body == "" {
			return errorMsg("No response to copy")
		}
		if err := clipboard.WriteAll(body); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
		notifier.Notify("Response copied to clipboard", types.SeveritySuccess)
		return nil
	}
}
