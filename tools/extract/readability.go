package extract

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

// Readability extracts readable text from HTML documents and accepts
// plain UTF-8 text as-is. It is the fallback when the PDF strategy
// cannot handle the payload.
type Readability struct{}

func (Readability) Name() string { return "readability" }

func (Readability) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if looksLikeHTML(data) {
		u, _ := url.Parse("https://localhost/upload")
		article, err := readability.FromReader(bytes.NewReader(data), u)
		if err == nil {
			if text := strings.TrimSpace(article.TextContent); text != "" {
				return text, nil
			}
		}
	}

	if utf8.Valid(data) {
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
	}
	return "", errors.New("document is neither readable HTML nor UTF-8 text")
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<body")
}
