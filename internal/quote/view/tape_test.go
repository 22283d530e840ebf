package view

import (
	"testing"

	"github.com/zappabad/stockhelper/internal/quote"
)

func quoteAt(price float64) quote.Quote {
	return quote.Quote{Query: "005930", Price: price, Found: true}
}

func TestQuoteTapeWraps(t *testing.T) {
	tape := NewQuoteTape(3)
	for i := 1; i <= 5; i++ {
		tape.Append(quoteAt(float64(i)))
	}

	if tape.Count() != 3 {
		t.Fatalf("expected count 3, got %d", tape.Count())
	}

	last := tape.Last(10)
	if len(last) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(last))
	}
	for i, want := range []float64{3, 4, 5} {
		if last[i].Price != want {
			t.Errorf("quote %d: expected %v, got %v", i, want, last[i].Price)
		}
	}

	two := tape.Last(2)
	if two[0].Price != 4 || two[1].Price != 5 {
		t.Errorf("expected [4 5], got [%v %v]", two[0].Price, two[1].Price)
	}
}

func TestQuoteTapeEmptyAndReset(t *testing.T) {
	tape := NewQuoteTape(0)
	if got := tape.Last(1); got != nil {
		t.Fatalf("expected nil from empty tape, got %v", got)
	}

	tape.Append(quoteAt(1))
	tape.Append(quoteAt(2))
	if tape.Count() != 1 {
		t.Fatalf("capacity clamps to 1, got count %d", tape.Count())
	}

	tape.Reset()
	if tape.Count() != 0 {
		t.Fatalf("expected empty tape after reset, got %d", tape.Count())
	}
	if got := tape.Last(0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}
