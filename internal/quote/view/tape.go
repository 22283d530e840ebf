package view

import (
	"sync"

	"github.com/zappabad/stockhelper/internal/quote"
)

// QuoteTape is a ring buffer of recent quotes (bounded memory).
type QuoteTape struct {
	mu    sync.RWMutex
	buf   []quote.Quote
	size  int
	start int
	count int
}

// NewQuoteTape creates a new QuoteTape with the given capacity.
func NewQuoteTape(capacity int) *QuoteTape {
	if capacity <= 0 {
		capacity = 1
	}
	return &QuoteTape{
		buf:  make([]quote.Quote, capacity),
		size: capacity,
	}
}

// Append adds a quote to the tape.
func (t *QuoteTape) Append(q quote.Quote) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count < t.size {
		t.buf[(t.start+t.count)%t.size] = q
		t.count++
		return
	}
	// overwrite oldest
	t.buf[t.start] = q
	t.start = (t.start + 1) % t.size
}

// Last returns the last n quotes in chronological order.
// Returns a copy (not internal references).
func (t *QuoteTape) Last(n int) []quote.Quote {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || t.count == 0 {
		return nil
	}
	if n > t.count {
		n = t.count
	}
	out := make([]quote.Quote, n)
	first := (t.start + (t.count - n)) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(first+i)%t.size]
	}
	return out
}

// Reset drops all quotes.
func (t *QuoteTape) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = 0
	t.count = 0
}

// Count returns the number of quotes in the tape.
func (t *QuoteTape) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}
