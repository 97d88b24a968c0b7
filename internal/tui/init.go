package tui

import (
	"context"

	"github.com/Iampro1712/apiconsole/internal/catalog"
	"github.com/Iampro1712/apiconsole/internal/console"
	"github.com/Iampro1712/apiconsole/internal/filter"
	"github.com/Iampro1712/apiconsole/internal/logging"
	"github.com/Iampro1712/apiconsole/internal/notify"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Options holds the collaborators of the TUI
type Options struct {
	Console *console.Console
	Catalog *catalog.Catalog
	Notices *notify.Center
	// Bookmarks stores filter expressions; nil disables saving
	Bookmarks *filter.Bookmarks
	Logger    *zap.Logger
}

// New creates a new TUI model
func New(ctx context.Context, opts Options) Model {
	notices := opts.Notices
	if notices == nil {
		notices = notify.NewCenter()
	}

	m := Model{
		ctx:           ctx,
		console:       opts.Console,
		catalog:       opts.Catalog,
		notices:       notices,
		bookmarks:     opts.Bookmarks,
		logger:        logging.OrNop(opts.Logger),
		mode:          ModeNormal,
		focus:         FocusEndpoints,
		pathInput:     newInput("/path", 0),
		tokenInput:    newInput("paste a bearer token", 0),
		searchInput:   newInput("search", 40),
		minPriceInput: newInput("min", 10),
		maxPriceInput: newInput("max", 10),
		filterInput:   newInput("JMESPath e.g. products[].name", 0),
		baseURLInput:  newInput("http://localhost:5000/api", 0),
		responseView:  viewport.New(80, 20),
		baseURL:       opts.Console.Config().BaseURL,
	}
	m.filters = filter.NewRunner(m.logger)

	m.tokenInput.EchoMode = textinput.EchoPassword
	m.tokenInput.EchoCharacter = '•'

	m.bodyInput = textarea.New()
	m.bodyInput.Placeholder = "{ }"
	m.bodyInput.ShowLineNumbers = false
	m.bodyInput.CharLimit = 0
	m.bodyInput.SetHeight(BodyEditorHeight)

	if opts.Catalog != nil {
		m.endpoints = opts.Catalog.Endpoints()
	}
	m.selectEndpoint(0)

	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	return ti
}

// Run starts the TUI
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)

	// Start TUI (pass pointer since Update uses pointer receiver)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))

	m.notices.SetHook(func(n types.Notification) {
		p.Send(notificationMsg(n))
	})
	defer m.notices.SetHook(nil)

	opts.Console.OnTokenChange(func(token string) {
		p.Send(tokenMsg(token))
	})

	m.logger.Info("tui started", zap.String("baseUrl", m.baseURL), zap.Int("endpoints", len(m.endpoints)))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// selectEndpoint loads catalog entry i into the request editor
func (m *Model) selectEndpoint(i int) {
	if len(m.endpoints) == 0 {
		m.method = "GET"
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.endpoints) {
		i = len(m.endpoints) - 1
	}
	m.endpointIndex = i

	ep := m.endpoints[i]
	m.method = ep.Method
	m.pathInput.SetValue(ep.Path)
	m.bodyInput.SetValue(render.PrettyText(ep.BodyTemplate))
	m.adjustEndpointOffset()
}
