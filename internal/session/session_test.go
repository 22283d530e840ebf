package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/stockhelper/internal/config"
	"github.com/zappabad/stockhelper/internal/export"
	"github.com/zappabad/stockhelper/internal/news"
	"github.com/zappabad/stockhelper/internal/quote"
)

type stubPrices struct {
	q quote.Quote
}

func (s stubPrices) FetchPrice(ctx context.Context, query string) quote.Quote {
	q := s.q
	q.Query = query
	return q
}

type stubNews struct {
	items []news.NewsItem
	calls int
	count int
}

func (s *stubNews) FetchNews(ctx context.Context, query string, minCount int) []news.NewsItem {
	s.calls++
	s.count = minCount
	return s.items
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Export.Path = filepath.Join(t.TempDir(), "stock_news.csv")
	cfg.Quote.UpdateInterval = 3600
	return cfg
}

func TestSearchStopsWhenPriceMissing(t *testing.T) {
	cfg := testConfig(t)
	ns := &stubNews{items: []news.NewsItem{{Title: "t", URL: "u"}}}
	s := newSession(cfg, stubPrices{q: quote.NotFound("", quote.ReasonMissing, time.Now())}, ns)
	defer s.Close()

	res := s.Search(context.Background(), "BOGUS")

	assert.False(t, res.Quote.Found)
	assert.Equal(t, quote.ReasonMissing, res.Quote.Reason)
	assert.Equal(t, 0, ns.calls)
	assert.Empty(t, res.ExportPath)
	assert.NoFileExists(t, cfg.Export.Path)
}

func TestSearchNoNewsSkipsExport(t *testing.T) {
	cfg := testConfig(t)
	ns := &stubNews{}
	s := newSession(cfg, stubPrices{q: quote.NewQuote("", 72300, time.Now())}, ns)
	defer s.Close()

	res := s.Search(context.Background(), "005930")

	assert.True(t, res.Quote.Found)
	assert.Equal(t, 1, ns.calls)
	assert.Equal(t, news.DefaultCount, ns.count)
	assert.Empty(t, res.News)
	assert.NoFileExists(t, cfg.Export.Path)
}

func TestSearchExportsHeadlines(t *testing.T) {
	cfg := testConfig(t)
	items := []news.NewsItem{
		{Title: "삼성전자 신고가", URL: "https://news.example.com/1"},
		{Title: "반도체 수출 증가", URL: "https://news.example.com/2"},
	}
	s := newSession(cfg, stubPrices{q: quote.NewQuote("", 72300, time.Now())}, &stubNews{items: items})
	defer s.Close()

	res := s.Search(context.Background(), "005930")

	require.NoError(t, res.ExportErr)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 72300.0, res.Quote.Price)
	assert.Equal(t, items, res.News)
	assert.Equal(t, cfg.Export.Path, res.ExportPath)

	saved, err := export.ReadCSV(cfg.Export.Path)
	require.NoError(t, err)
	assert.Equal(t, items, saved)
}

func TestSearchIDsAreUnique(t *testing.T) {
	cfg := testConfig(t)
	s := newSession(cfg, stubPrices{q: quote.NotFound("", quote.ReasonMissing, time.Now())}, &stubNews{})
	defer s.Close()

	first := s.Search(context.Background(), "005930")
	second := s.Search(context.Background(), "005930")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSearchExportFailureKeepsResult(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Path = filepath.Join(t.TempDir(), "missing", "stock_news.csv")
	items := []news.NewsItem{{Title: "t", URL: "u"}}
	s := newSession(cfg, stubPrices{q: quote.NewQuote("", 1, time.Now())}, &stubNews{items: items})
	defer s.Close()

	res := s.Search(context.Background(), "005930")

	assert.Error(t, res.ExportErr)
	assert.Empty(t, res.ExportPath)
	assert.Equal(t, items, res.News)
}

func TestNewWiresNaverEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/item":
			fmt.Fprint(w, `<p class="no_today"><span class="blind">72,300</span></p>`)
		case "/news":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[{"title":"<b>삼성</b> 소식","link":"https://news.example.com/1"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Naver.PriceURL = srv.URL + "/item"
	cfg.Naver.NewsURL = srv.URL + "/news"
	cfg.Naver.ClientID = "id"
	cfg.Naver.ClientSecret = "secret"

	s := New(cfg)
	defer s.Close()

	res := s.Search(context.Background(), "005930")

	require.True(t, res.Quote.Found)
	assert.Equal(t, 72300.0, res.Quote.Price)
	assert.Equal(t, []news.NewsItem{{Title: "삼성 소식", URL: "https://news.example.com/1"}}, res.News)
	assert.Equal(t, cfg.Export.Path, res.ExportPath)
}
