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

// Candle aggregates the quotes polled within one period.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Time  int64
}

// ChartPanel draws polled prices as a candlestick chart.
type ChartPanel struct {
	query   string
	candles []Candle

	// Current candle being built
	currentCandle *Candle
	candleStart   int64
	candlePeriod  int64 // in nanoseconds

	focused bool
	width   int
	height  int

	maxCandles int
}

// NewChartPanel creates a new chart panel with one candle per period.
func NewChartPanel(period time.Duration) *ChartPanel {
	if period <= 0 {
		period = time.Minute
	}
	return &ChartPanel{
		candlePeriod: int64(period),
		maxCandles:   120,
	}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *ChartPanel) View() string {
	name := "No ticker"
	if p.query != "" {
		name = p.query
	}

	var content strings.Builder

	chartWidth := p.width - 12
	chartHeight := p.height - 6
	if chartHeight < 5 {
		chartHeight = 5
	}

	allCandles := p.Candles()
	if len(allCandles) == 0 {
		content.WriteString(styles.MutedStyle.Render("Waiting for prices..."))
	} else {
		content.WriteString(p.renderChart(chartWidth, chartHeight, allCandles))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 Chart - %s", name), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// Candles returns all candles including the one being built.
func (p *ChartPanel) Candles() []Candle {
	if p.currentCandle == nil {
		return p.candles
	}
	out := make([]Candle, 0, len(p.candles)+1)
	out = append(out, p.candles...)
	return append(out, *p.currentCandle)
}

func (p *ChartPanel) renderChart(width, height int, candles []Candle) string {
	// Reserve space: 11 chars for price axis, 1 for separator
	chartWidth := width - 12
	if chartWidth < 10 {
		chartWidth = 10
	}

	// Each candle needs 2 chars: candle, space
	candlesToShow := chartWidth / 2
	if candlesToShow < 1 {
		candlesToShow = 1
	}
	displayCandles := candles
	if len(candles) > candlesToShow {
		displayCandles = candles[len(candles)-candlesToShow:]
	}

	minPrice := displayCandles[0].Low
	maxPrice := displayCandles[0].High
	for _, c := range displayCandles {
		if c.Low < minPrice {
			minPrice = c.Low
		}
		if c.High > maxPrice {
			maxPrice = c.High
		}
	}

	// Pad the range by 10% so a flat line sits mid-chart
	padding := (maxPrice - minPrice) * 0.1
	if padding == 0 {
		padding = maxPrice * 0.001
		if padding == 0 {
			padding = 1
		}
	}
	minPrice -= padding
	maxPrice += padding

	// Reserve 2 rows for time axis
	rows := height - 3
	if rows < 5 {
		rows = 5
	}

	var result strings.Builder

	// top to bottom = high to low price
	for row := 0; row < rows; row++ {
		price := yToPrice(row, minPrice, maxPrice, rows)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%10s │", styles.FormatPrice(float64(int64(price))))))

		for _, candle := range displayCandles {
			style := styles.CandleUpStyle
			if candle.Close < candle.Open {
				style = styles.CandleDownStyle
			}
			result.WriteString(style.Render(string(candleChar(candle, row, minPrice, maxPrice, rows))))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("───────────┴"))
	for range displayCandles {
		result.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	result.WriteString("\n")

	// Time axis - minute labels every few candles
	result.WriteString(styles.ChartAxisStyle.Render("            "))
	for i, candle := range displayCandles {
		if i == 0 || i == len(displayCandles)-1 || i%5 == 0 {
			result.WriteString(styles.ChartLabelStyle.Render(time.Unix(0, candle.Time).Format("04")))
		} else {
			result.WriteString("  ")
		}
	}

	return result.String()
}

// candleChar returns the character to draw for a candle at a given row.
func candleChar(candle Candle, row int, minPrice, maxPrice float64, height int) rune {
	rowPrice := yToPrice(row, minPrice, maxPrice, height)

	bodyTop, bodyBottom := candle.Open, candle.Close
	if candle.Close > candle.Open {
		bodyTop, bodyBottom = candle.Close, candle.Open
	}

	// Continuous prices map onto discrete rows
	tolerance := (maxPrice - minPrice) / float64(height*2)

	if rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance {
		return '┃'
	}
	if rowPrice <= candle.High+tolerance && rowPrice > bodyTop {
		return '│'
	}
	if rowPrice >= candle.Low-tolerance && rowPrice < bodyBottom {
		return '│'
	}
	return ' '
}

func yToPrice(y int, minPrice, maxPrice float64, height int) float64 {
	if height <= 1 {
		return minPrice
	}
	ratio := float64(y) / float64(height-1)
	return maxPrice - ratio*(maxPrice-minPrice)
}

// SetFocus sets the focus state of the panel.
func (p *ChartPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetQuery clears the chart for a new ticker.
func (p *ChartPanel) SetQuery(query string) {
	p.query = query
	p.candles = nil
	p.currentCandle = nil
}

// SetQuotes rebuilds the chart from a history of quotes.
func (p *ChartPanel) SetQuotes(quotes []quote.Quote) {
	p.candles = nil
	p.currentCandle = nil
	for _, q := range quotes {
		p.AddQuote(q)
	}
}

// AddQuote folds a found quote for the charted ticker into the current candle.
func (p *ChartPanel) AddQuote(q quote.Quote) {
	if !q.Found || q.Query != p.query {
		return
	}
	ts := q.FetchedAt.UnixNano()
	candleStart := (ts / p.candlePeriod) * p.candlePeriod

	if p.currentCandle == nil || candleStart != p.candleStart {
		if p.currentCandle != nil {
			p.candles = append(p.candles, *p.currentCandle)
			if len(p.candles) > p.maxCandles {
				p.candles = p.candles[len(p.candles)-p.maxCandles:]
			}
		}

		p.currentCandle = &Candle{
			Open:  q.Price,
			High:  q.Price,
			Low:   q.Price,
			Close: q.Price,
			Time:  candleStart,
		}
		p.candleStart = candleStart
		return
	}

	if q.Price > p.currentCandle.High {
		p.currentCandle.High = q.Price
	}
	if q.Price < p.currentCandle.Low {
		p.currentCandle.Low = q.Price
	}
	p.currentCandle.Close = q.Price
}

// Query returns the charted ticker.
func (p *ChartPanel) Query() string {
	return p.query
}
