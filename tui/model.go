package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/stockhelper/internal/session"
	"github.com/zappabad/stockhelper/tui/panels"
	"github.com/zappabad/stockhelper/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusSearch PanelFocus = 0
	FocusQuote  PanelFocus = 1
	FocusNews   PanelFocus = 2
	FocusChart  PanelFocus = 3

	panelCount = 4
)

const searchRowHeight = 9

// Options lets callers swap the side effects of the news panel.
type Options struct {
	OpenURL  func(url string) error
	CopyText func(text string) error
}

// Model is the main TUI application model.
type Model struct {
	ctx     context.Context
	session *session.Session
	opts    Options

	// Panels
	searchPanel *panels.SearchPanel
	quotePanel  *panels.QuotePanel
	newsPanel   *panels.NewsPanel
	chartPanel  *panels.ChartPanel

	// Focus management
	focusedPanel PanelFocus

	// Window dimensions
	width  int
	height int

	// Status
	query     string
	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model. ctx bounds every background search.
func NewModel(ctx context.Context, sess *session.Session, opts Options) *Model {
	cfg := sess.Config()
	if opts.OpenURL == nil {
		opts.OpenURL = func(string) error { return fmt.Errorf("no browser configured") }
	}
	if opts.CopyText == nil {
		opts.CopyText = func(string) error { return fmt.Errorf("no clipboard configured") }
	}

	return &Model{
		ctx:          ctx,
		session:      sess,
		opts:         opts,
		searchPanel:  panels.NewSearchPanel(),
		quotePanel:   panels.NewQuotePanel(cfg.Display.Currency, cfg.Interval()),
		newsPanel:    panels.NewNewsPanel(),
		chartPanel:   panels.NewChartPanel(0),
		focusedPanel: FocusSearch,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.searchPanel.SetFocus(true)
	return tea.Batch(
		m.searchPanel.Init(),
		m.quotePanel.Init(),
		m.newsPanel.Init(),
		m.chartPanel.Init(),
		m.listenQuoteEvents(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// q is a regular character while typing a query
			if m.focusedPanel != FocusSearch {
				return m, tea.Quit
			}

		// Cycle focus with tab
		case "tab":
			m.setFocus((m.focusedPanel + 1) % panelCount)
			return m, nil

		// Reverse cycle focus with shift+tab
		case "shift+tab":
			m.setFocus((m.focusedPanel + panelCount - 1) % panelCount)
			return m, nil

		// Direct panel focus with F1-F4
		case "f1":
			m.setFocus(FocusSearch)
			return m, nil
		case "f2":
			m.setFocus(FocusQuote)
			return m, nil
		case "f3":
			m.setFocus(FocusNews)
			return m, nil
		case "f4":
			m.setFocus(FocusChart)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case panels.SearchSubmitMsg:
		cmds = append(cmds, m.startSearch(msg.Query))

	case searchResultMsg:
		m.handleSearchResult(msg)

	case panels.QuoteUpdateMsg:
		m.quotePanel.SetQuote(msg.Quote)
		m.chartPanel.SetQuotes(m.session.Quotes.Latest(m.session.Config().Quote.TapeSize))
		cmds = append(cmds, m.listenQuoteEvents())

	case panels.OpenURLMsg:
		cmds = append(cmds, m.openURL(msg.URL))

	case panels.CopyURLMsg:
		cmds = append(cmds, m.copyURL(msg.URL))

	case statusUpdateMsg:
		m.statusMsg = string(msg)
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusSearch:
		m.searchPanel, cmd = m.searchPanel.Update(msg)
	case FocusQuote:
		m.quotePanel, cmd = m.quotePanel.Update(msg)
	case FocusNews:
		m.newsPanel, cmd = m.newsPanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.searchPanel.SetFocus(m.focusedPanel == FocusSearch)
	m.quotePanel.SetFocus(m.focusedPanel == FocusQuote)
	m.newsPanel.SetFocus(m.focusedPanel == FocusNews)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)

	// Layout:
	// ┌──────────────┬──────────────────────────────┐
	// │    Search    │            Price             │
	// ├──────────────┴───────┬──────────────────────┤
	// │         News         │        Chart         │
	// └──────────────────────┴──────────────────────┘

	leftWidth := m.width / 3
	halfWidth := m.width / 2

	topHeight := searchRowHeight
	bottomHeight := m.height - topHeight - 1

	m.searchPanel.SetSize(leftWidth, topHeight)
	m.quotePanel.SetSize(m.width-leftWidth, topHeight)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.searchPanel.View(),
		m.quotePanel.View(),
	)

	m.newsPanel.SetSize(halfWidth, bottomHeight)
	m.chartPanel.SetSize(m.width-halfWidth, bottomHeight)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.newsPanel.View(),
		m.chartPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	help := []string{
		styles.StatusBarKeyStyle.Render("F1-F4") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("Enter") + styles.StatusBarDescStyle.Render(" search/open"),
		styles.StatusBarKeyStyle.Render("c") + styles.StatusBarDescStyle.Render(" copy link"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	helpStr := lipgloss.JoinHorizontal(lipgloss.Center, help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3])

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + status)
}

func (m *Model) setFocus(panel PanelFocus) {
	m.focusedPanel = panel
	m.searchPanel.SetFocus(panel == FocusSearch)
}

func (m *Model) startSearch(query string) tea.Cmd {
	m.query = query
	m.statusMsg = "Searching " + query + "..."
	m.quotePanel.SetQuery(query)
	m.chartPanel.SetQuery(query)
	m.newsPanel.SetLoading(query)
	m.session.Quotes.Watch(query)

	ctx := m.ctx
	sess := m.session
	return func() tea.Msg {
		return searchResultMsg{query: query, result: sess.Search(ctx, query)}
	}
}

func (m *Model) handleSearchResult(msg searchResultMsg) {
	// A newer search has started since this one was issued.
	if msg.query != m.query {
		return
	}

	res := msg.result
	m.quotePanel.SetQuote(res.Quote)
	m.newsPanel.SetNews(res.News)

	switch {
	case !res.Quote.Found:
		m.statusMsg = fmt.Sprintf("Could not retrieve the price for %s", msg.query)
	case len(res.News) == 0:
		m.statusMsg = "No related news found"
	case res.ExportErr != nil:
		m.statusMsg = "Export failed: " + res.ExportErr.Error()
	default:
		m.statusMsg = fmt.Sprintf("Saved %d headlines to %s", len(res.News), res.ExportPath)
	}

	if len(res.News) > 0 && m.focusedPanel == FocusSearch {
		m.setFocus(FocusNews)
	}
}

func (m *Model) listenQuoteEvents() tea.Cmd {
	events := m.session.Quotes.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return panels.QuoteUpdateMsg{Quote: ev.Quote}
	}
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.opts.OpenURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return statusUpdateMsg("Could not open browser: " + err.Error())
		}
		return statusUpdateMsg("Opened " + url)
	}
}

func (m *Model) copyURL(url string) tea.Cmd {
	copyText := m.opts.CopyText
	return func() tea.Msg {
		if err := copyText(url); err != nil {
			return statusUpdateMsg("Could not copy link: " + err.Error())
		}
		return statusUpdateMsg("Copied " + url)
	}
}

// searchResultMsg carries a finished search back to the UI goroutine.
type searchResultMsg struct {
	query  string
	result session.Result
}

// statusUpdateMsg replaces the status bar text.
type statusUpdateMsg string
