package web_search

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mohammad-safakhou/regfaq/config"
	"github.com/mohammad-safakhou/regfaq/tools/web_search/brave"
	"github.com/mohammad-safakhou/regfaq/tools/web_search/models"
	"github.com/mohammad-safakhou/regfaq/tools/web_search/serper"
)

// WebSearcher is implemented by every search backend.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

// Client wraps a backend so that search never fails loudly: backend
// errors are logged and an empty result set is returned. Augmentation
// is optional everywhere it is used, so callers stay on the happy
// path.
type Client struct {
	backend WebSearcher
	k       int
	timeout time.Duration
	logger  *log.Logger
}

// New builds a search client from configuration. It returns nil (and
// no error) when search is disabled or no API key is set; a nil
// *Client is safe to call.
func New(cfg config.WebSearchConfig, logger *log.Logger) (*Client, error) {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil, nil
	}

	var backend WebSearcher
	switch cfg.Provider {
	case "serper", "":
		backend = serper.Search{APIKey: cfg.APIKey}
	case "brave":
		backend = brave.Search{APIKey: cfg.APIKey}
	default:
		return nil, errors.New("unsupported web search provider: " + cfg.Provider)
	}

	k := cfg.MaxResults
	if k <= 0 {
		k = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{backend: backend, k: k, timeout: timeout, logger: logger}, nil
}

// NewWithBackend wraps an explicit backend, bypassing configuration.
func NewWithBackend(backend WebSearcher, k int, timeout time.Duration, logger *log.Logger) *Client {
	if k <= 0 {
		k = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{backend: backend, k: k, timeout: timeout, logger: logger}
}

// Search returns up to the configured number of results. Any failure
// yields an empty slice.
func (c *Client) Search(ctx context.Context, q string) []models.Result {
	if c == nil || c.backend == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := c.backend.Discover(ctx, q, c.k)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("web search failed, continuing without results: %v", err)
		}
		return nil
	}
	return results
}
