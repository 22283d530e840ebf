package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchServer serves pages keyed by start offset and records every request.
type searchServer struct {
	*httptest.Server

	mu       sync.Mutex
	starts   []int
	requests []*http.Request
}

func newSearchServer(t *testing.T, pages map[int][]searchItem, status int) *searchServer {
	t.Helper()
	s := &searchServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))

		s.mu.Lock()
		s.starts = append(s.starts, start)
		s.requests = append(s.requests, r)
		s.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"errorMessage":"Authentication failed"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"items": pages[start]})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *searchServer) Starts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.starts...)
}

func makeItems(prefix string, n int) []searchItem {
	items := make([]searchItem, n)
	for i := range items {
		items[i] = searchItem{
			Title: fmt.Sprintf("<b>%s</b> headline %d", prefix, i),
			Link:  fmt.Sprintf("https://news.example.com/%s/%d", prefix, i),
		}
	}
	return items
}

func newTestClient(url string) *SearchClient {
	return NewSearchClient(Config{
		URL:          url,
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		PageSize:     100,
	})
}

func TestFetchNews_ZeroCountSkipsRequest(t *testing.T) {
	srv := newSearchServer(t, nil, http.StatusOK)

	items := newTestClient(srv.URL).FetchNews(context.Background(), "삼성전자", 0)

	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, srv.Starts())
}

func TestFetchNews_TruncatesMidPage(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{1: makeItems("p1", 8)}, http.StatusOK)

	items := newTestClient(srv.URL).FetchNews(context.Background(), "삼성전자", 5)

	require.Len(t, items, 5)
	for i, it := range items {
		assert.Equal(t, fmt.Sprintf("p1 headline %d", i), it.Title)
		assert.Equal(t, fmt.Sprintf("https://news.example.com/p1/%d", i), it.URL)
	}
	assert.Equal(t, []int{1}, srv.Starts())
}

func TestFetchNews_PaginatesUntilExhausted(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{
		1:   makeItems("p1", 100),
		101: makeItems("p2", 30),
	}, http.StatusOK)

	items := newTestClient(srv.URL).FetchNews(context.Background(), "삼성전자", 150)

	require.Len(t, items, 130)
	assert.Equal(t, []int{1, 101}, srv.Starts())
	assert.Equal(t, "p1 headline 0", items[0].Title)
	assert.Equal(t, "p2 headline 29", items[129].Title)
}

func TestFetchNews_EmptyFirstPage(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{}, http.StatusOK)

	items := newTestClient(srv.URL).FetchNews(context.Background(), "nothing", 20)

	assert.Empty(t, items)
	assert.Equal(t, []int{1}, srv.Starts())
}

func TestFetchNews_ErrorStatusReturnsPartial(t *testing.T) {
	srv := newSearchServer(t, nil, http.StatusUnauthorized)

	items := newTestClient(srv.URL).FetchNews(context.Background(), "삼성전자", 20)

	assert.Empty(t, items)
	assert.Equal(t, []int{1}, srv.Starts())
}

func TestFetchNews_SendsQueryAndCredentials(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{1: makeItems("p1", 3)}, http.StatusOK)

	newTestClient(srv.URL).FetchNews(context.Background(), "삼성 전자", 3)

	require.Len(t, srv.requests, 1)
	r := srv.requests[0]
	assert.Equal(t, "삼성 전자", r.URL.Query().Get("query"))
	assert.Equal(t, "100", r.URL.Query().Get("display"))
	assert.Equal(t, "1", r.URL.Query().Get("start"))
	assert.Equal(t, "test-id", r.Header.Get("X-Naver-Client-Id"))
	assert.Equal(t, "test-secret", r.Header.Get("X-Naver-Client-Secret"))
}

func TestFetchNews_ConfiguredPageSize(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{
		1:  makeItems("p1", 10),
		11: makeItems("p2", 10),
	}, http.StatusOK)

	client := NewSearchClient(Config{URL: srv.URL, PageSize: 10})
	items := client.FetchNews(context.Background(), "q", 15)

	require.Len(t, items, 15)
	assert.Equal(t, []int{1, 11}, srv.Starts())
}

func TestFetchNews_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [`)
	}))
	defer srv.Close()

	items := newTestClient(srv.URL).FetchNews(context.Background(), "q", 5)
	assert.Empty(t, items)
}

func TestFetchNews_CanceledContext(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{1: makeItems("p1", 3)}, http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := newTestClient(srv.URL).FetchNews(ctx, "q", 3)
	assert.Empty(t, items)
}

func TestNewSearchClientDefaults(t *testing.T) {
	c := NewSearchClient(Config{})
	assert.Equal(t, DefaultConfig().URL, c.cfg.URL)
	assert.Equal(t, MaxPageSize, c.cfg.PageSize)
	assert.Equal(t, DefaultConfig().Timeout, c.cfg.Timeout)
}

func TestFetchNews_StopsOnEmptyPageAfterFullPages(t *testing.T) {
	srv := newSearchServer(t, map[int][]searchItem{
		1: makeItems("p1", 2),
		3: makeItems("p2", 2),
	}, http.StatusOK)

	client := NewSearchClient(Config{URL: srv.URL, PageSize: 2})
	items := client.FetchNews(context.Background(), "q", 10)

	require.Len(t, items, 4)
	assert.Equal(t, []int{1, 3, 5}, srv.Starts())
}
