package view

import "github.com/zappabad/stockhelper/internal/quote"

// QuoteEvent is emitted after every completed poll.
type QuoteEvent struct {
	Quote quote.Quote
}
