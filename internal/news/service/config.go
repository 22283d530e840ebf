package service

import "time"

// MaxPageSize is the largest page the search API serves.
const MaxPageSize = 100

// Config holds configuration for the news search client.
type Config struct {
	// URL is the JSON search endpoint.
	URL string
	// ClientID and ClientSecret are sent as request headers.
	ClientID     string
	ClientSecret string
	// PageSize is the number of results requested per call.
	PageSize int
	// Timeout bounds each page request.
	Timeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		URL:      "https://openapi.naver.com/v1/search/news.json",
		PageSize: MaxPageSize,
		Timeout:  10 * time.Second,
	}
}
