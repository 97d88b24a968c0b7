package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Iampro1712/apiconsole/internal/types"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type item struct {
	endpoint types.Endpoint
}

func (i item) FilterValue() string {
	return i.endpoint.Name + " " + i.endpoint.Path
}

func (i item) Title() string {
	return fmt.Sprintf("%-24s %-6s %s", i.endpoint.Name, i.endpoint.Method, i.endpoint.Path)
}

func (i item) Description() string { return i.endpoint.Description }

type selectorModel struct {
	list     list.Model
	choice   *types.Endpoint
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Let the list own keys while the filter prompt is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.choice = nil
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(item); ok {
				ep := i.endpoint
				m.choice = &ep
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q/ctrl+c: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// newSelector builds the endpoint list model
func newSelector(title string, endpoints []types.Endpoint) selectorModel {
	items := make([]list.Item, 0, len(endpoints))
	for _, ep := range endpoints {
		items = append(items, item{endpoint: ep})
	}

	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return selectorModel{list: l}
}

// SelectEndpoint shows an interactive list to pick one of endpoints
func SelectEndpoint(title string, endpoints []types.Endpoint) (types.Endpoint, error) {
	if len(endpoints) == 0 {
		return types.Endpoint{}, fmt.Errorf("no endpoints to choose from")
	}
	if len(endpoints) == 1 {
		return endpoints[0], nil
	}

	p := tea.NewProgram(newSelector(title, endpoints))
	finalModel, err := p.Run()
	if err != nil {
		return types.Endpoint{}, fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice == nil {
		return types.Endpoint{}, fmt.Errorf("selection cancelled")
	}
	return *result.choice, nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// PromptParams asks for each missing path parameter on out, reading
// answers line by line from in
func PromptParams(names []string, in io.Reader, out io.Writer) (map[string]string, error) {
	reader := bufio.NewReader(in)
	values := make(map[string]string, len(names))
	for _, name := range names {
		fmt.Fprintf(out, "Enter value for '%s': ", name)
		value, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || value == "") {
			return nil, fmt.Errorf("failed to read value for %s: %w", name, err)
		}
		values[name] = strings.TrimSpace(value)
	}
	return values, nil
}
