package tui

import (
	"context"
	"time"

	"github.com/Iampro1712/apiconsole/internal/catalog"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/filter"
	"github.com/Iampro1712/apiconsole/internal/notify"
	"github.com/Iampro1712/apiconsole/internal/probe"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeBaseURL
	ModeFilter
	ModeHelp
)

// Focus is the panel or field receiving keystrokes
type Focus int

const (
	FocusEndpoints Focus = iota
	FocusPath
	FocusBody
	FocusToken
	FocusSearch
	FocusMinPrice
	FocusMaxPrice
	FocusResponse
)

// Model represents the TUI state
type Model struct {
	// Core state
	ctx     context.Context
	console *console.Console
	catalog *catalog.Catalog
	notices *notify.Center
	logger  *zap.Logger
	mode    Mode
	focus   Focus

	// Endpoint list
	endpoints      []types.Endpoint
	endpointIndex  int
	endpointOffset int

	// Request editor
	method        string
	pathInput     textinput.Model
	bodyInput     textarea.Model
	tokenInput    textinput.Model
	storedToken   string
	searchInput   textinput.Model
	minPriceInput textinput.Model
	maxPriceInput textinput.Model

	// Response
	payload      types.DisplayPayload
	hasPayload   bool
	outcome      types.Outcome
	responseView viewport.Model
	inFlight     int

	// Filter state
	filterInput  textinput.Model
	filteredBody string
	filterError  string
	filterActive bool
	filters      *filter.Runner
	bookmarks    *filter.Bookmarks
	savedFilters []filter.Bookmark
	savedIndex   int

	// Base URL prompt
	baseURLInput textinput.Model
	baseURL      string
	apiStatus    probe.Status
	probed       bool

	// UI state
	width     int
	height    int
	statusMsg string
	errorMsg  string
}

// Messages

type responseMsg struct {
	result console.Result
}

type probeMsg struct {
	cfg    types.Config
	status probe.Status
}

// tokenMsg carries the stored token after load or save
type tokenMsg string

type notificationMsg types.Notification

type notificationExpiredMsg int

type bookmarksMsg []filter.Bookmark

type errorMsg string

type statusMsg string

// Init loads the token and probes the API
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadToken(), m.probeStatus(), textarea.Blink)
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.updateResponseView()

	case responseMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		m.payload = msg.result.Payload
		m.outcome = msg.result.Outcome
		m.hasPayload = true
		m.filterActive = false
		m.filteredBody = ""
		m.filterError = ""
		m.errorMsg = ""
		m.statusMsg = ""
		if msg.result.Outcome.Kind == types.OutcomeTransportError {
			m.errorMsg = transportHint(msg.result.Outcome.Message)
		}
		m.updateResponseView()
		if msg.result.TokenCaptured {
			cmds = append(cmds, m.loadToken())
		}

	case probeMsg:
		m.baseURL = msg.cfg.BaseURL
		m.apiStatus = msg.status
		m.probed = true

	case tokenMsg:
		m.storedToken = string(msg)
		m.tokenInput.SetValue(string(msg))

	case notificationMsg:
		id := msg.ID
		cmds = append(cmds, tea.Tick(m.notices.Duration(), func(_ time.Time) tea.Msg {
			return notificationExpiredMsg(id)
		}))

	case bookmarksMsg:
		m.savedFilters = msg
		m.savedIndex = -1

	case notificationExpiredMsg:
		m.notices.Dismiss(int(msg))

	case errorMsg:
		m.errorMsg = string(msg)
		m.statusMsg = ""

	case statusMsg:
		m.statusMsg = string(msg)
		m.errorMsg = ""
	}

	// Forward non-key messages (cursor blink) to the focused field
	cmds = append(cmds, m.updateFocused(msg))

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	}

	return m.renderMain()
}

// currentEndpoint returns the selected catalog entry
func (m *Model) currentEndpoint() types.Endpoint {
	if len(m.endpoints) == 0 {
		return types.Endpoint{Name: "custom", Method: "GET", Path: "/"}
	}
	return m.endpoints[m.endpointIndex]
}

// isProductListing reports whether the product filter fields apply
func (m *Model) isProductListing() bool {
	return m.method == "GET" && m.pathInput.Value() == catalog.ProductsPath
}
