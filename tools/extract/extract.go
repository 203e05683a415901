// Package extract turns uploaded regulatory documents into plain
// text. Strategies share one signature and are tried in order by the
// ingestion pipeline: PDF text extraction first, then a readability
// pass for HTML-ish payloads with a raw UTF-8 fallback.
package extract

import "context"

// Strategy extracts plain text from a binary document.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, data []byte) (string, error)
}

// Strategies returns the default extraction order.
func Strategies() []Strategy {
	return []Strategy{PDF{}, Readability{}}
}
