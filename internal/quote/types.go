package quote

import (
	"context"
	"time"
)

// Reason explains why a price could not be determined.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonTransport Reason = "transport"
	ReasonStatus    Reason = "status"
	ReasonMissing   Reason = "missing"
	ReasonParse     Reason = "parse"
)

// Quote is the result of a single price lookup. Found is false when the price
// is unavailable; Price is meaningless in that case.
type Quote struct {
	Query     string
	Price     float64
	Found     bool
	Reason    Reason
	FetchedAt time.Time
}

// NewQuote returns a found quote.
func NewQuote(query string, price float64, at time.Time) Quote {
	return Quote{Query: query, Price: price, Found: true, FetchedAt: at}
}

// NotFound returns a quote marking the price as unavailable.
func NotFound(query string, reason Reason, at time.Time) Quote {
	return Quote{Query: query, Reason: reason, FetchedAt: at}
}

// PriceFetcher looks up the current price for a ticker or query string.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, query string) Quote
}
