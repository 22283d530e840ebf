package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/stockhelper/tui/styles"
)

const maxHistory = 20

// SearchPanel is the ticker entry box with a dropdown of previous searches.
type SearchPanel struct {
	input textinput.Model

	// Dropdown state
	history       []string
	filtered      []string
	dropdownIndex int // -1 means the typed text is used as is
	showDropdown  bool

	focused bool
	width   int
	height  int
}

// NewSearchPanel creates a new search panel.
func NewSearchPanel() *SearchPanel {
	input := textinput.New()
	input.Placeholder = "Ticker code, e.g. 005930"
	input.Width = 24
	input.CharLimit = 32

	return &SearchPanel{
		input:         input,
		dropdownIndex: -1,
	}
}

// Init initializes the panel.
func (p *SearchPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *SearchPanel) Update(msg tea.Msg) (*SearchPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			return p, p.submit()

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			p.showDropdown = false
			p.dropdownIndex = -1
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			if p.showDropdown && p.dropdownIndex < len(p.filtered)-1 {
				p.dropdownIndex++
			}
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			if p.showDropdown && p.dropdownIndex > -1 {
				p.dropdownIndex--
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.filterDropdown(p.input.Value())
	return p, cmd
}

// View renders the panel.
func (p *SearchPanel) View() string {
	var content strings.Builder

	inputStyle := styles.InputStyle
	if p.focused {
		inputStyle = styles.FocusedInputStyle
		p.input.Focus()
	} else {
		p.input.Blur()
	}

	labelStyle := styles.LabelStyle
	if p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		labelStyle.Render("Code  "),
		inputStyle.Render(p.input.View()),
	))

	if p.showDropdown && len(p.filtered) > 0 {
		maxShow := min(len(p.filtered), max(p.height-5, 1))
		for i := 0; i < maxShow; i++ {
			style := styles.RowStyle
			if i == p.dropdownIndex {
				style = styles.SelectedRowStyle
			}
			content.WriteString("\n      ")
			content.WriteString(style.Render(p.highlightMatch(p.filtered[i], p.input.Value())))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🔎 Search", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *SearchPanel) submit() tea.Cmd {
	query := strings.TrimSpace(p.input.Value())
	if p.showDropdown && p.dropdownIndex >= 0 && p.dropdownIndex < len(p.filtered) {
		query = p.filtered[p.dropdownIndex]
		p.input.SetValue(query)
	}
	p.showDropdown = false
	p.dropdownIndex = -1
	if query == "" {
		return nil
	}

	p.remember(query)
	return func() tea.Msg {
		return SearchSubmitMsg{Query: query}
	}
}

func (p *SearchPanel) remember(query string) {
	out := []string{query}
	for _, h := range p.history {
		if h != query {
			out = append(out, h)
		}
	}
	if len(out) > maxHistory {
		out = out[:maxHistory]
	}
	p.history = out
}

func (p *SearchPanel) filterDropdown(query string) {
	query = strings.ToUpper(strings.TrimSpace(query))
	p.filtered = nil
	p.dropdownIndex = -1
	p.showDropdown = query != ""
	if !p.showDropdown {
		return
	}

	for _, item := range p.history {
		if strings.Contains(strings.ToUpper(item), query) {
			p.filtered = append(p.filtered, item)
		}
	}
}

func (p *SearchPanel) highlightMatch(item, query string) string {
	if query == "" {
		return item
	}

	upper := strings.ToUpper(item)
	queryUpper := strings.ToUpper(query)
	idx := strings.Index(upper, queryUpper)
	if idx == -1 || idx+len(queryUpper) > len(item) {
		return item
	}

	before := item[:idx]
	match := item[idx : idx+len(queryUpper)]
	after := item[idx+len(queryUpper):]

	return before + styles.TitleStyle.UnsetPadding().Render(match) + after
}

// SetFocus sets the focus state of the panel.
func (p *SearchPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

// Focused reports whether keystrokes go to the text box.
func (p *SearchPanel) Focused() bool {
	return p.focused
}

// SetSize sets the panel dimensions.
func (p *SearchPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Value returns the text currently in the box.
func (p *SearchPanel) Value() string {
	return p.input.Value()
}

// History returns previous searches, most recent first.
func (p *SearchPanel) History() []string {
	return p.history
}

// SearchSubmitMsg is sent when the user submits a query.
type SearchSubmitMsg struct {
	Query string
}
