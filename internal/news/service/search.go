package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zappabad/stockhelper/internal/logger"
	"github.com/zappabad/stockhelper/internal/news"
)

// SearchClient pages through the Naver news search API.
type SearchClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewSearchClient creates a new SearchClient.
func NewSearchClient(cfg Config) *SearchClient {
	def := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &SearchClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchNews collects up to minCount headlines for query, in source order.
// A failed page ends the search early; whatever was collected so far is returned.
func (c *SearchClient) FetchNews(ctx context.Context, query string, minCount int) []news.NewsItem {
	items := make([]news.NewsItem, 0, max(minCount, 0))
	if minCount <= 0 {
		return items
	}

	log := logger.For("news").WithField("query", query)

	start := 1
	for len(items) < minCount {
		page, err := c.fetchPage(ctx, query, start)
		if err != nil {
			log.WithField("start", start).Errorf("Error fetching news: %v", err)
			break
		}

		for _, it := range page.Items {
			if len(items) >= minCount {
				break
			}
			items = append(items, news.NewsItem{
				Title: news.StripEmphasis(it.Title),
				URL:   it.Link,
			})
		}

		start += c.cfg.PageSize
		// A short page means the source has nothing past it.
		if len(page.Items) < c.cfg.PageSize {
			break
		}
	}

	log.WithField("count", len(items)).Debug("News fetched")
	return items
}

func (c *SearchClient) fetchPage(ctx context.Context, query string, start int) (*searchResponse, error) {
	params := url.Values{
		"query":   {query},
		"display": {strconv.Itoa(c.cfg.PageSize)},
		"start":   {strconv.Itoa(start)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.cfg.ClientID)
	req.Header.Set("X-Naver-Client-Secret", c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news search: status %d", resp.StatusCode)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("news decode: %w", err)
	}
	return &page, nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
