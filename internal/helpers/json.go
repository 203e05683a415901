package helpers

import (
	"errors"
	"strings"
)

// ExtractJSON returns the first JSON object or array embedded in an
// LLM response. Markdown code fences around the payload are stripped,
// then the first balanced {...} or [...] is located while ignoring
// braces inside string literals.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
	if inner, ok := stripCodeFence(s); ok {
		s = strings.TrimSpace(inner)
	}

	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			if out, ok := balancedFrom(s, i); ok {
				return out, nil
			}
		}
	}
	return "", errors.New("no balanced JSON object or array found")
}

// stripCodeFence unwraps a leading ``` or ~~~ fenced block, tolerating
// a language tag such as ```json.
func stripCodeFence(s string) (string, bool) {
	trimmed := strings.TrimLeft(s, "\n\r\t ")
	var fence string
	switch {
	case strings.HasPrefix(trimmed, "```"):
		fence = "```"
	case strings.HasPrefix(trimmed, "~~~"):
		fence = "~~~"
	default:
		return "", false
	}

	rest := trimmed[len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, fence)
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}

func balancedFrom(s string, start int) (string, bool) {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			top := stack[len(stack)-1]
			if (top == '{' && c != '}') || (top == '[' && c != ']') {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
