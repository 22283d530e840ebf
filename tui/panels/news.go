package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/zappabad/stockhelper/internal/news"
	"github.com/zappabad/stockhelper/tui/styles"
)

// NewsPanel lists headlines; the selected one can be opened or copied.
type NewsPanel struct {
	news          []news.NewsItem
	query         string
	loading       bool
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{}
}

// Init initializes the panel.
func (p *NewsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				// Adjust scroll to keep selection in view
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.news)-1 {
				p.selectedIndex++
				// Adjust scroll to keep selection in view
				visibleItems := p.visibleItems()
				if p.selectedIndex >= p.scrollOffset+visibleItems {
					p.scrollOffset = p.selectedIndex - visibleItems + 1
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter", "o"))):
			if item := p.SelectedNews(); item != nil {
				url := item.URL
				return p, func() tea.Msg { return OpenURLMsg{URL: url} }
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("c"))):
			if item := p.SelectedNews(); item != nil {
				url := item.URL
				return p, func() tea.Msg { return CopyURLMsg{URL: url} }
			}
		}
	}
	return p, nil
}

func (p *NewsPanel) visibleItems() int {
	// title, border, scroll indicator and the URL footer
	if v := p.height - 6; v > 1 {
		return v
	}
	return 1
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	switch {
	case p.loading:
		content.WriteString(styles.MutedStyle.Render("Searching news..."))
	case len(p.news) == 0:
		content.WriteString(styles.MutedStyle.Render("No news available"))
	default:
		visibleItems := p.visibleItems()
		start := p.scrollOffset
		end := min(start+visibleItems, len(p.news))

		titleWidth := max(p.width-10, 10)
		for i := start; i < end; i++ {
			item := p.news[i]
			headline := runewidth.Truncate(item.Title, titleWidth, "...")
			line := fmt.Sprintf("%s %s", styles.TimeStyle.Render(fmt.Sprintf("%3d", i+1)), styles.RowStyle.Render(headline))

			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}

			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.news) > visibleItems {
			content.WriteString("\n")
			content.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.news))))
		}

		if item := p.SelectedNews(); item != nil {
			content.WriteString("\n")
			content.WriteString(styles.LinkStyle.Render(runewidth.Truncate(item.URL, titleWidth+4, "...")))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	name := "📰 News"
	if p.query != "" {
		name = fmt.Sprintf("📰 News - %s", p.query)
	}
	title := styles.RenderTitle(name, p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *NewsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetLoading clears the list while a search for query runs.
func (p *NewsPanel) SetLoading(query string) {
	p.query = query
	p.loading = true
	p.news = nil
	p.selectedIndex = 0
	p.scrollOffset = 0
}

// SetNews replaces the headlines.
func (p *NewsPanel) SetNews(items []news.NewsItem) {
	p.news = items
	p.loading = false
	p.selectedIndex = 0
	p.scrollOffset = 0
}

// News returns the headlines shown.
func (p *NewsPanel) News() []news.NewsItem {
	return p.news
}

// SelectedNews returns the currently selected news item.
func (p *NewsPanel) SelectedNews() *news.NewsItem {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.news) {
		return &p.news[p.selectedIndex]
	}
	return nil
}

// OpenURLMsg asks for a headline to be opened in the browser.
type OpenURLMsg struct {
	URL string
}

// CopyURLMsg asks for a headline URL to be copied to the clipboard.
type CopyURLMsg struct {
	URL string
}
