package tui

import (
	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/catalog"
	tea "github.com/charmbracelet/bubbletea"
)

var methodCycle = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// handleKeyPress routes key presses based on mode and focus
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		switch msg.String() {
		case "esc", "q", "?", "enter":
			m.mode = ModeNormal
		}
		return nil
	case ModeBaseURL:
		return m.handleBaseURLKeys(msg)
	case ModeFilter:
		return m.handleFilterKeys(msg)
	}

	// Global shortcuts
	switch msg.String() {
	case "ctrl+s":
		return m.sendRequest()
	case "ctrl+l":
		return m.quickLogin(catalog.AdminLogin)
	case "ctrl+u":
		return m.quickLogin(catalog.UserLogin)
	case "ctrl+t":
		return m.autoSetToken()
	case "ctrl+y":
		return m.copyToClipboard()
	case "ctrl+b":
		m.mode = ModeBaseURL
		m.baseURLInput.SetValue(m.baseURL)
		m.baseURLInput.CursorEnd()
		return m.baseURLInput.Focus()
	case "ctrl+f":
		m.mode = ModeFilter
		m.filterInput.CursorEnd()
		return tea.Batch(m.filterInput.Focus(), m.loadBookmarks())
	case "ctrl+p":
		return m.probeStatus()
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "esc":
		if m.focus != FocusEndpoints {
			return m.setFocus(FocusEndpoints)
		}
		return nil
	}

	switch m.focus {
	case FocusEndpoints:
		return m.handleEndpointKeys(msg)
	case FocusResponse:
		return m.handleResponseKeys(msg)
	case FocusBody:
		// enter inserts a newline in the body
		return m.updateFocused(msg)
	case FocusToken:
		if msg.String() == "enter" {
			return m.saveToken()
		}
		return m.updateFocused(msg)
	default:
		if msg.String() == "enter" {
			return m.sendRequest()
		}
		return m.updateFocused(msg)
	}
}

func (m *Model) handleEndpointKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.sendRequest()
	case "up", "k":
		m.navigateEndpoints(-1)
	case "down", "j":
		m.navigateEndpoints(1)
	case "home", "g":
		m.selectEndpoint(0)
	case "end", "G":
		m.selectEndpoint(len(m.endpoints) - 1)
	case "m":
		m.cycleMethod()
	case "?":
		m.mode = ModeHelp
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) handleResponseKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "g", "home":
		m.responseView.GotoTop()
		return nil
	case "G", "end":
		m.responseView.GotoBottom()
		return nil
	}
	var cmd tea.Cmd
	m.responseView, cmd = m.responseView.Update(msg)
	return cmd
}

func (m *Model) handleBaseURLKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.baseURLInput.Blur()
		m.probed = false
		return m.applyBaseURL()
	case "esc":
		m.mode = ModeNormal
		m.baseURLInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.baseURLInput, cmd = m.baseURLInput.Update(msg)
	return cmd
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.filterInput.Blur()
		m.applyFilter()
		return nil
	case "esc":
		m.mode = ModeNormal
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilter()
		return nil
	case "ctrl+s":
		return m.saveBookmark()
	case "up":
		m.cycleBookmark(1)
		return nil
	case "down":
		m.cycleBookmark(-1)
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}

// cycleMethod switches the request method of the editor
func (m *Model) cycleMethod() {
	for i, method := range methodCycle {
		if method == m.method {
			m.method = methodCycle[(i+1)%len(methodCycle)]
			return
		}
	}
	m.method = methodCycle[0]
}

// focusOrder lists the focusable fields for the current request
func (m *Model) focusOrder() []Focus {
	order := []Focus{FocusEndpoints, FocusPath}
	if builder.CarriesPayload(m.method) {
		order = append(order, FocusBody)
	}
	order = append(order, FocusToken)
	if m.isProductListing() {
		order = append(order, FocusSearch, FocusMinPrice, FocusMaxPrice)
	}
	return append(order, FocusResponse)
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	order := m.focusOrder()
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	return m.setFocus(order[idx])
}

// setFocus moves keyboard focus to f
func (m *Model) setFocus(f Focus) tea.Cmd {
	m.pathInput.Blur()
	m.bodyInput.Blur()
	m.tokenInput.Blur()
	m.searchInput.Blur()
	m.minPriceInput.Blur()
	m.maxPriceInput.Blur()

	m.focus = f
	switch f {
	case FocusPath:
		return m.pathInput.Focus()
	case FocusBody:
		return m.bodyInput.Focus()
	case FocusToken:
		return m.tokenInput.Focus()
	case FocusSearch:
		return m.searchInput.Focus()
	case FocusMinPrice:
		return m.minPriceInput.Focus()
	case FocusMaxPrice:
		return m.maxPriceInput.Focus()
	}
	return nil
}

// updateFocused forwards msg to the focused text field
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case FocusPath:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case FocusBody:
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	case FocusToken:
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	case FocusSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case FocusMinPrice:
		m.minPriceInput, cmd = m.minPriceInput.Update(msg)
	case FocusMaxPrice:
		m.maxPriceInput, cmd = m.maxPriceInput.Update(msg)
	}
	return cmd
}
