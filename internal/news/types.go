package news

import (
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// DefaultCount is how many headlines a search collects unless configured.
const DefaultCount = 20

// NewsItem is a single headline with the page it links to.
type NewsItem struct {
	Title string
	URL   string
}

// NewsFetcher collects up to minCount headlines for query.
type NewsFetcher interface {
	FetchNews(ctx context.Context, query string, minCount int) []NewsItem
}

// StripEmphasis removes inline markup such as <b>...</b> from a search result
// title and resolves HTML entities (&quot;, &amp;, ...).
func StripEmphasis(title string) string {
	z := html.NewTokenizer(strings.NewReader(title))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			return title
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
