package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/zappabad/stockhelper/internal/config"
	"github.com/zappabad/stockhelper/internal/export"
	"github.com/zappabad/stockhelper/internal/logger"
	"github.com/zappabad/stockhelper/internal/news"
	newsservice "github.com/zappabad/stockhelper/internal/news/service"
	"github.com/zappabad/stockhelper/internal/quote"
	quoteservice "github.com/zappabad/stockhelper/internal/quote/service"
)

// Result is the outcome of a single search.
type Result struct {
	// ID tags the log lines of this search.
	ID    string
	Quote quote.Quote
	News  []news.NewsItem
	// ExportPath is set when the headlines were written to disk.
	ExportPath string
	ExportErr  error
}

// Session owns the fetchers and the background quote poller.
type Session struct {
	Quotes *quoteservice.QuoteService

	cfg    config.Config
	prices quote.PriceFetcher
	news   news.NewsFetcher

	mu sync.Mutex
}

// New wires the Naver price scraper and news search client from cfg.
func New(cfg config.Config) *Session {
	prices := quoteservice.NewNaverFetcher(cfg.Naver.PriceURL, cfg.Timeout())
	search := newsservice.NewSearchClient(newsservice.Config{
		URL:          cfg.Naver.NewsURL,
		ClientID:     cfg.Naver.ClientID,
		ClientSecret: cfg.Naver.ClientSecret,
		PageSize:     cfg.News.PageSize,
		Timeout:      cfg.Timeout(),
	})
	return newSession(cfg, prices, search)
}

func newSession(cfg config.Config, prices quote.PriceFetcher, search news.NewsFetcher) *Session {
	if !cfg.HasCredentials() {
		logger.For("session").Warn("Naver client credentials are not set; news search will fail")
	}

	qcfg := quoteservice.DefaultConfig()
	qcfg.Interval = cfg.Interval()
	qcfg.TapeSize = cfg.Quote.TapeSize

	return &Session{
		Quotes: quoteservice.NewQuoteService(prices, qcfg),
		cfg:    cfg,
		prices: prices,
		news:   search,
	}
}

// Config returns the configuration the session was built with.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Search looks up the price for query and, when it is found, collects related
// headlines and exports them. Searches are serialized so two exports never race
// for the same file.
func (s *Session) Search(ctx context.Context, query string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{ID: uuid.NewString()}
	log := logger.For("session").WithField("query", query).WithField("search_id", res.ID)

	res.Quote = s.prices.FetchPrice(ctx, query)
	if !res.Quote.Found {
		log.WithField("reason", res.Quote.Reason).Info("Could not retrieve the stock price")
		return res
	}

	res.News = s.news.FetchNews(ctx, query, s.cfg.News.Count)
	if len(res.News) == 0 {
		log.Info("No related news found")
		return res
	}

	if err := export.WriteCSV(s.cfg.Export.Path, res.News); err != nil {
		log.Errorf("Failed to save news: %v", err)
		res.ExportErr = err
		return res
	}
	res.ExportPath = s.cfg.Export.Path
	log.WithField("path", res.ExportPath).Info("Data saved")
	return res
}

// Close shuts down the background poller.
func (s *Session) Close() {
	s.Quotes.Close()
}
