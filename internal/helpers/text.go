package helpers

import (
	"regexp"
	"strings"
)

var (
	mdHeader     = regexp.MustCompile(`(?m)^#+\s+`)
	mdBold       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	mdItalic     = regexp.MustCompile(`\*(.*?)\*`)
	mdLink       = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	mdCodeBlock  = regexp.MustCompile("(?s)```[^\n]*\n(.*?)\n```")
	mdInlineCode = regexp.MustCompile("`([^`]+)`")
	mdRule       = regexp.MustCompile(`(?m)^[-*_]{3,}$`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown strips markdown decoration from model output so
// answers read as plain prose. Numbered lists and paragraph structure
// survive.
func CleanMarkdown(text string) string {
	text = mdHeader.ReplaceAllString(text, "")
	text = mdBold.ReplaceAllString(text, "$1")
	text = mdItalic.ReplaceAllString(text, "$1")
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdCodeBlock.ReplaceAllString(text, "$1")
	text = mdInlineCode.ReplaceAllString(text, "$1")
	text = mdRule.ReplaceAllString(text, "")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
