package panels

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/stockhelper/internal/quote"
	"github.com/zappabad/stockhelper/tui/styles"
)

// QuotePanel displays the latest price of the watched ticker.
type QuotePanel struct {
	currency string
	interval time.Duration

	query   string
	last    quote.Quote
	hasLast bool
	// previous found price, for the change indicator
	prev    float64
	hasPrev bool
	loading bool

	focused bool
	width   int
	height  int
}

// NewQuotePanel creates a new quote panel.
func NewQuotePanel(currency string, interval time.Duration) *QuotePanel {
	return &QuotePanel{
		currency: currency,
		interval: interval,
	}
}

// Init initializes the panel.
func (p *QuotePanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *QuotePanel) Update(msg tea.Msg) (*QuotePanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *QuotePanel) View() string {
	var content strings.Builder

	switch {
	case p.query == "":
		content.WriteString(styles.MutedStyle.Render("Enter a ticker code to start"))
	case !p.hasLast:
		content.WriteString(styles.LabelStyle.Render(p.query))
		content.WriteString("\n\n")
		content.WriteString(styles.MutedStyle.Render("Fetching price..."))
	default:
		content.WriteString(styles.LabelStyle.Render(p.query))
		content.WriteString("\n\n")
		content.WriteString(p.renderPrice())
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Price", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *QuotePanel) renderPrice() string {
	var b strings.Builder

	if p.last.Found {
		b.WriteString(styles.BigPriceStyle.Render(fmt.Sprintf("%s %s", styles.FormatPrice(p.last.Price), p.currency)))
		if p.hasPrev {
			change := p.last.Price - p.prev
			b.WriteString("  ")
			b.WriteString(styles.ChangeStyle(change).Render(styles.FormatChange(change, p.prev)))
		}
	} else {
		b.WriteString(styles.ErrorStyle.Render("Price unavailable"))
		b.WriteString(" ")
		b.WriteString(styles.MutedStyle.Render(describeReason(p.last.Reason)))
	}

	b.WriteString("\n\n")
	updated := "-"
	if !p.last.FetchedAt.IsZero() {
		updated = p.last.FetchedAt.Format("15:04:05")
	}
	b.WriteString(styles.TimeStyle.Render(fmt.Sprintf("Updated %s · every %s", updated, p.interval)))
	if p.loading {
		b.WriteString(styles.MutedStyle.Render(" · refreshing"))
	}
	return b.String()
}

func describeReason(r quote.Reason) string {
	switch r {
	case quote.ReasonTransport:
		return "(network error)"
	case quote.ReasonStatus:
		return "(page returned an error)"
	case quote.ReasonMissing:
		return "(no price on the page)"
	case quote.ReasonParse:
		return "(unreadable price)"
	default:
		return ""
	}
}

// SetFocus sets the focus state of the panel.
func (p *QuotePanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *QuotePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetQuery starts showing a new ticker and forgets the previous one.
func (p *QuotePanel) SetQuery(query string) {
	p.query = query
	p.last = quote.Quote{}
	p.hasLast = false
	p.hasPrev = false
	p.loading = true
}

// SetQuote records a poll result. Results for other tickers are ignored.
func (p *QuotePanel) SetQuote(q quote.Quote) {
	if q.Query != p.query {
		return
	}
	if p.hasLast && p.last.Found && q.Found {
		p.prev = p.last.Price
		p.hasPrev = true
	}
	p.last = q
	p.hasLast = true
	p.loading = false
}

// Quote returns the latest result shown.
func (p *QuotePanel) Quote() (quote.Quote, bool) {
	return p.last, p.hasLast
}

// QuoteUpdateMsg is sent when the background poller reports a price.
type QuoteUpdateMsg struct {
	Quote quote.Quote
}
