package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/zappabad/stockhelper/internal/logger"
	"github.com/zappabad/stockhelper/internal/quote"
)

// The current price on a Naver finance item page:
// <p class="no_today"> ... <span class="blind">72,300</span> ... </p>
const (
	priceContainer = "p.no_today"
	priceText      = "span.blind"
)

// NaverFetcher scrapes the current price from the Naver finance item page.
type NaverFetcher struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewNaverFetcher creates a fetcher for the item page at baseURL. The ticker
// code is passed as the "code" query parameter.
func NewNaverFetcher(baseURL string, timeout time.Duration) *NaverFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NaverFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// FetchPrice never fails: every fault is logged and reported as a NotFound
// quote carrying the reason.
func (f *NaverFetcher) FetchPrice(ctx context.Context, query string) quote.Quote {
	log := logger.For("price").WithField("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.pageURL(query), nil)
	if err != nil {
		log.Errorf("Failed to build price request: %v", err)
		return quote.NotFound(query, quote.ReasonTransport, f.now())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Errorf("Failed to fetch stock page: %v", err)
		return quote.NotFound(query, quote.ReasonTransport, f.now())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("Error fetching stock page: status %d", resp.StatusCode)
		return quote.NotFound(query, quote.ReasonStatus, f.now())
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		log.Errorf("Failed to decode stock page: %v", err)
		return quote.NotFound(query, quote.ReasonTransport, f.now())
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		log.Errorf("Failed to parse stock page: %v", err)
		return quote.NotFound(query, quote.ReasonTransport, f.now())
	}

	price, reason := extractPrice(doc)
	if reason != quote.ReasonNone {
		log.WithField("reason", reason).Warn("Could not find price on the page")
		return quote.NotFound(query, reason, f.now())
	}

	log.WithField("price", price).Debug("Price fetched")
	return quote.NewQuote(query, price, f.now())
}

func (f *NaverFetcher) pageURL(query string) string {
	return f.baseURL + "?" + url.Values{"code": {query}}.Encode()
}

func extractPrice(doc *goquery.Document) (float64, quote.Reason) {
	container := doc.Find(priceContainer).First()
	if container.Length() == 0 {
		return 0, quote.ReasonMissing
	}
	text := container.Find(priceText).First()
	if text.Length() == 0 {
		return 0, quote.ReasonMissing
	}
	price, err := ParsePrice(text.Text())
	if err != nil {
		return 0, quote.ReasonParse
	}
	return price, quote.ReasonNone
}

// ParsePrice parses comma-grouped digits such as "72,300".
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	return strconv.ParseFloat(s, 64)
}
