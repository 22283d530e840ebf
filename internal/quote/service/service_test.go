package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/stockhelper/internal/quote"
	quoteview "github.com/zappabad/stockhelper/internal/quote/view"
)

// fakeFetcher returns an increasing price per call and tracks overlap.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	price    float64
	found    bool
	delay    time.Duration
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (f *fakeFetcher) FetchPrice(ctx context.Context, query string) quote.Quote {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return quote.NotFound(query, quote.ReasonTransport, time.Now())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	if !f.found {
		return quote.NotFound(query, quote.ReasonMissing, time.Now())
	}
	f.price++
	return quote.NewQuote(query, f.price, time.Now())
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func nextEvent(t *testing.T, events <-chan quoteview.QuoteEvent) quoteview.QuoteEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for quote event")
	}
	return quoteview.QuoteEvent{}
}

func TestQuoteServiceIdleWithoutQuery(t *testing.T) {
	f := &fakeFetcher{found: true}
	svc := NewQuoteService(f, Config{Interval: 10 * time.Millisecond})
	defer svc.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.Calls())
	assert.Equal(t, "", svc.Query())
}

func TestQuoteServiceWatchTriggersImmediatePoll(t *testing.T) {
	f := &fakeFetcher{found: true}
	svc := NewQuoteService(f, Config{Interval: time.Hour})
	defer svc.Close()

	svc.Watch("005930")

	ev := nextEvent(t, svc.Events())
	assert.True(t, ev.Quote.Found)
	assert.Equal(t, "005930", ev.Quote.Query)
	assert.Equal(t, 1.0, ev.Quote.Price)

	latest := svc.Latest(10)
	require.Len(t, latest, 1)
	assert.Equal(t, 1.0, latest[0].Price)
}

func TestQuoteServicePollsAtInterval(t *testing.T) {
	f := &fakeFetcher{found: true, delay: 5 * time.Millisecond}
	svc := NewQuoteService(f, Config{Interval: 10 * time.Millisecond, DropEvents: false})
	defer svc.Close()

	svc.Watch("005930")
	for i := 1; i <= 3; i++ {
		ev := nextEvent(t, svc.Events())
		assert.Equal(t, float64(i), ev.Quote.Price)
	}

	assert.False(t, f.overlap.Load(), "polls must not overlap")
	assert.GreaterOrEqual(t, len(svc.Latest(10)), 3)
}

func TestQuoteServiceWatchResetsTape(t *testing.T) {
	f := &fakeFetcher{found: true}
	svc := NewQuoteService(f, Config{Interval: time.Hour})
	defer svc.Close()

	svc.Watch("005930")
	nextEvent(t, svc.Events())
	require.Len(t, svc.Latest(10), 1)

	svc.Watch("000660")
	ev := nextEvent(t, svc.Events())
	assert.Equal(t, "000660", ev.Quote.Query)

	latest := svc.Latest(10)
	require.Len(t, latest, 1)
	assert.Equal(t, "000660", latest[0].Query)
}

func TestQuoteServiceNotFoundSkipsTape(t *testing.T) {
	f := &fakeFetcher{found: false}
	svc := NewQuoteService(f, Config{Interval: time.Hour})
	defer svc.Close()

	svc.Watch("BOGUS")
	ev := nextEvent(t, svc.Events())

	assert.False(t, ev.Quote.Found)
	assert.Equal(t, quote.ReasonMissing, ev.Quote.Reason)
	assert.Empty(t, svc.Latest(10))
}

func TestQuoteServiceCloseClosesEvents(t *testing.T) {
	f := &fakeFetcher{found: true, delay: time.Hour}
	svc := NewQuoteService(f, Config{Interval: time.Hour})

	svc.Watch("005930")
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		svc.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight fetch")
	}

	_, ok := <-svc.Events()
	assert.False(t, ok)

	// second Close is a no-op
	svc.Close()
}

func TestQuoteServiceDropsWhenNobodyListens(t *testing.T) {
	f := &fakeFetcher{found: true}
	svc := NewQuoteService(f, Config{Interval: time.Millisecond, EventBuffer: 1, DropEvents: true})
	defer svc.Close()

	svc.Watch("005930")
	require.Eventually(t, func() bool {
		return svc.DroppedEvents() > 0
	}, 2*time.Second, 5*time.Millisecond)
}
