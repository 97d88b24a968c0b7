package tui

import (
	"fmt"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/executor"
	"github.com/Iampro1712/apiconsole/internal/render"
	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/charmbracelet/lipgloss"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleInfo = lipgloss.NewStyle().
			Foreground(colorBlue)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBadge = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)
)

// methodStyle colors an HTTP method label
func methodStyle(method string) lipgloss.Style {
	switch method {
	case "GET":
		return styleSuccess
	case "POST":
		return styleInfo
	case "PUT", "PATCH":
		return styleWarning
	case "DELETE":
		return styleError
	}
	return styleSubtle
}

// severityStyle colors a toast
func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SeveritySuccess:
		return styleSuccess
	case types.SeverityWarning:
		return styleWarning
	case types.SeverityDanger:
		return styleError
	}
	return styleInfo
}

// layout returns the widths of the three panels and the inner panel height
func (m *Model) layout() (sidebar, editor, response, height int) {
	sidebar = max(SidebarMinWidth, m.width*SidebarWidthPercent/100)
	if m.width < NarrowLayoutWidth {
		sidebar = m.width / 3
	}
	editor = m.width * EditorWidthPercent / 100
	response = m.width - sidebar - editor - 3*ViewportBorderWidth
	height = m.height - HeaderHeight - StatusBarHeight - ViewportBorderWidth
	if height < 1 {
		height = 1
	}
	return
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// resize fits the inputs and the response viewport to the window
func (m *Model) resize() {
	_, editor, response, height := m.layout()

	inputWidth := max(10, editor-2)
	m.pathInput.Width = inputWidth - 8
	m.tokenInput.Width = inputWidth
	m.filterInput.Width = max(10, m.width/2)
	m.baseURLInput.Width = max(10, m.width/2)
	m.bodyInput.SetWidth(inputWidth)

	bodyHeight := height - EditorChromeLines
	if bodyHeight > BodyEditorHeight {
		bodyHeight = BodyEditorHeight
	}
	m.bodyInput.SetHeight(max(3, bodyHeight))

	m.responseView.Width = max(10, response)
	m.responseView.Height = max(1, height-2)
	m.adjustEndpointOffset()
}

// endpointListHeight is the number of endpoint rows that fit the sidebar
func (m *Model) endpointListHeight() int {
	_, _, _, height := m.layout()
	return height - 2
}

// updateResponseView refreshes the response viewport content
func (m *Model) updateResponseView() {
	if !m.hasPayload {
		m.responseView.SetContent(styleSubtle.Render("Select an endpoint and press enter to send"))
		return
	}

	body := m.displayedBody()
	content := render.Highlight(body, render.DefaultStyle)
	if m.responseView.Width > 0 {
		content = lipgloss.NewStyle().Width(m.responseView.Width).Render(content)
	}
	m.responseView.SetContent(content)
	m.responseView.GotoTop()
}

// renderMain renders the main TUI view (endpoints + editor + response)
func (m *Model) renderMain() string {
	sidebarWidth, editorWidth, responseWidth, height := m.layout()

	box := func(focused bool, width int, content string) string {
		border := colorGray
		if focused {
			border = colorGreen
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(width).
			Height(height).
			Render(content)
	}

	editorFocused := m.focus != FocusEndpoints && m.focus != FocusResponse
	mainView := lipgloss.JoinHorizontal(
		lipgloss.Top,
		box(m.focus == FocusEndpoints, sidebarWidth, m.renderSidebar(sidebarWidth, height)),
		box(editorFocused, editorWidth, m.renderEditor()),
		box(m.focus == FocusResponse, responseWidth, m.renderResponse()),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		mainView,
		m.renderStatusBar(),
	)
}

// renderHeader shows the API badge, the base URL and active toasts
func (m *Model) renderHeader() string {
	left := styleTitle.Render("API Console") + "  " + m.renderBadge() + "  " + styleSubtle.Render(m.baseURL)

	var toasts []string
	for _, n := range m.notices.Active() {
		toasts = append(toasts, severityStyle(n.Severity).Render("● "+n.Message))
	}
	right := strings.Join(toasts, "  ")

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

// renderBadge renders the API status badge
func (m *Model) renderBadge() string {
	if !m.probed {
		return styleBadge.Foreground(colorGray).Render("… checking")
	}
	label := m.apiStatus.Label()
	if m.apiStatus.OK {
		return styleBadge.Foreground(colorGreen).Render("✓ " + label)
	}
	return styleBadge.Foreground(colorRed).Render("✗ " + label)
}

// renderSidebar renders the scrolled endpoint list
func (m *Model) renderSidebar(width, height int) string {
	var lines []string
	lines = append(lines, styleTitle.Render("Endpoints"))
	lines = append(lines, "")

	visible := height - 2
	end := min(len(m.endpoints), m.endpointOffset+visible)
	for i := m.endpointOffset; i < end; i++ {
		ep := m.endpoints[i]
		name := ep.Name
		if ep.RequiresAuth {
			name += " *"
		}
		if maxName := width - 7; maxName > 1 && len(name) > maxName {
			name = name[:maxName-1] + "…"
		}

		var line string
		if i == m.endpointIndex {
			line = styleSelected.Width(width).Render(fmt.Sprintf("%-6s %s", ep.Method, name))
		} else {
			line = methodStyle(ep.Method).Render(fmt.Sprintf("%-6s", ep.Method)) + " " + name
		}
		lines = append(lines, line)
	}

	if len(m.endpoints) == 0 {
		lines = append(lines, styleSubtle.Render("No endpoints"))
	}

	return strings.Join(lines, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// renderEditor renders method/path, body, token and product filters
func (m *Model) renderEditor() string {
	var sb strings.Builder

	ep := m.currentEndpoint()
	sb.WriteString(styleTitle.Render("Request"))
	if ep.Description != "" {
		sb.WriteString(styleSubtle.Render("  " + ep.Description))
	}
	sb.WriteString("\n\n")

	sb.WriteString(methodStyle(m.method).Bold(true).Render(fmt.Sprintf("%-7s", m.method)))
	sb.WriteString(m.pathInput.View())
	sb.WriteString("\n\n")

	if builder.CarriesPayload(m.method) {
		sb.WriteString(m.label("Body", FocusBody))
		sb.WriteString("\n")
		sb.WriteString(m.bodyInput.View())
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.label("Token", FocusToken))
	sb.WriteString(" ")
	sb.WriteString(m.tokenInput.View())
	sb.WriteString("\n")

	if m.isProductListing() {
		sb.WriteString("\n")
		sb.WriteString(m.label("Search", FocusSearch) + " " + m.searchInput.View() + "\n")
		sb.WriteString(m.label("Min", FocusMinPrice) + " " + m.minPriceInput.View() + "  ")
		sb.WriteString(m.label("Max", FocusMaxPrice) + " " + m.maxPriceInput.View() + "\n")
	}

	return sb.String()
}

// label renders a field label, highlighted when focused
func (m *Model) label(text string, f Focus) string {
	if m.focus == f {
		return styleSuccess.Bold(true).Render(text + ":")
	}
	return styleSubtle.Render(text + ":")
}

// renderResponse renders the title line and the response viewport
func (m *Model) renderResponse() string {
	title := styleTitle.Render("Response")
	if m.hasPayload {
		switch {
		case m.loading():
			title = styleWarning.Render("Sending...")
		case m.payload.Success:
			title = styleSuccess.Render("✓ " + m.payload.Title)
		default:
			title = styleError.Render("✗ " + m.payload.Title)
		}
		if !m.loading() && m.outcome.Kind == types.OutcomeOK {
			title += styleSubtle.Render(fmt.Sprintf("  %s  %s  %s",
				m.outcome.StatusText,
				executor.FormatDuration(m.outcome.Duration),
				executor.FormatSize(m.outcome.ResponseSize)))
		}
		if m.filterActive {
			title += styleWarning.Render("  [filtered]")
		}
	}
	return title + "\n\n" + m.responseView.View()
}

// renderStatusBar renders prompts, messages and key hints
func (m *Model) renderStatusBar() string {
	switch m.mode {
	case ModeBaseURL:
		return "Base URL: " + m.baseURLInput.View()
	case ModeFilter:
		hint := ""
		if m.bookmarks != nil {
			hint = styleSubtle.Render(fmt.Sprintf("  ctrl+s save | up/down saved (%d)", len(m.savedFilters)))
		}
		return "Filter: " + m.filterInput.View() + hint
	}

	var right string
	switch {
	case m.errorMsg != "":
		right = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		right = m.statusMsg
	default:
		right = styleSubtle.Render("enter/ctrl+s send | ctrl+l admin | ctrl+u user | ctrl+t token | ctrl+b url | ctrl+y copy | ? help")
	}

	left := fmt.Sprintf("%d endpoints", len(m.endpoints))
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

// renderHelp renders the key binding reference
func (m *Model) renderHelp() string {
	help := `API Console - Keyboard Shortcuts

Requests
  enter        Send (from endpoint list or single-line fields)
  ctrl+s       Send from anywhere, including the body editor
  ctrl+l       Quick login as admin
  ctrl+u       Quick login as user
  m            Cycle method (endpoint list)
  *            Endpoint requires a token

Token
  ctrl+t       Store the token found in the displayed response
  enter        Save the token field (token field)

Response
  ctrl+y       Copy response to clipboard
  ctrl+f       JMESPath filter (esc clears)
               ctrl+s saves it, up/down recalls saved filters
  g / G        Top / bottom (response panel)

Other
  tab          Next field
  shift+tab    Previous field
  ctrl+b       Change base URL
  ctrl+p       Re-check API status
  esc          Back to endpoint list
  ?            Toggle help
  q / ctrl+c   Quit

Press esc or ? to close`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		Render(help)
}
