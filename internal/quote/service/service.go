package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/stockhelper/internal/logger"
	"github.com/zappabad/stockhelper/internal/quote"
	quoteview "github.com/zappabad/stockhelper/internal/quote/view"
)

// QuoteService polls the price of the watched query in the background.
// Polls run one at a time: the delay starts only after a fetch completes.
type QuoteService struct {
	cfg     Config
	fetcher quote.PriceFetcher
	tape    *quoteview.QuoteTape

	mu    sync.RWMutex
	query string

	wake           chan struct{}
	externalEvents chan quoteview.QuoteEvent
	droppedEvents  atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewQuoteService creates a new QuoteService and starts its poll loop.
func NewQuoteService(fetcher quote.PriceFetcher, cfg Config) *QuoteService {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.TapeSize <= 0 {
		cfg.TapeSize = DefaultConfig().TapeSize
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &QuoteService{
		cfg:            cfg,
		fetcher:        fetcher,
		tape:           quoteview.NewQuoteTape(cfg.TapeSize),
		wake:           make(chan struct{}, 1),
		externalEvents: make(chan quoteview.QuoteEvent, cfg.EventBuffer),
		ctx:            ctx,
		cancel:         cancel,
	}

	s.wg.Add(1)
	go s.runPoller()

	return s
}

func (s *QuoteService) runPoller() {
	defer s.wg.Done()
	defer close(s.externalEvents)

	log := logger.For("quote").WithField("interval", s.cfg.Interval.String())

	for {
		if q := s.Query(); q != "" {
			s.poll(q)
		}

		timer := time.NewTimer(s.cfg.Interval)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			log.Info("Stopping quote poller")
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *QuoteService) poll(query string) {
	q := s.fetcher.FetchPrice(s.ctx, query)
	if s.ctx.Err() != nil {
		return
	}

	// The query may have changed while the fetch was in flight.
	if q.Found && q.Query == s.Query() {
		s.tape.Append(q)
	}

	ev := quoteview.QuoteEvent{Quote: q}
	if s.cfg.DropEvents {
		select {
		case s.externalEvents <- ev:
		default:
			s.droppedEvents.Add(1)
		}
		return
	}
	select {
	case s.externalEvents <- ev:
	case <-s.ctx.Done():
	}
}

// Watch switches polling to query and triggers an immediate fetch.
// An empty query pauses polling.
func (s *QuoteService) Watch(query string) {
	s.mu.Lock()
	changed := s.query != query
	s.query = query
	s.mu.Unlock()

	if changed {
		s.tape.Reset()
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Query returns the currently watched query.
func (s *QuoteService) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Latest returns the last n found quotes for the watched query.
func (s *QuoteService) Latest(n int) []quote.Quote {
	return s.tape.Last(n)
}

// Events returns the external events channel for subscribers.
func (s *QuoteService) Events() <-chan quoteview.QuoteEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *QuoteService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops polling, cancels an in-flight fetch and closes the events channel.
func (s *QuoteService) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
	})
	s.wg.Wait()
}
