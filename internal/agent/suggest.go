package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/regfaq/internal/helpers"
	"github.com/mohammad-safakhou/regfaq/provider"
)

// SuggestionContext carries everything a suggestion strategy may use.
type SuggestionContext struct {
	Query    string
	Response string
	Context  string
}

// Suggester produces follow-up questions for a finished answer. A nil
// or short result means the strategy declined and the next one in the
// chain runs.
type Suggester interface {
	Suggest(ctx context.Context, sc SuggestionContext) []string
}

const (
	minSuggestions      = 2
	maxSuggestions      = 3
	suggestionMaxTokens = 300
	suggestionCtxLimit  = 1000
)

// DefaultSuggesters returns the fallback chain: model-generated
// follow-ups, then topic-keyword matches, then the generic pool. The
// last tier always succeeds.
func DefaultSuggesters(llm provider.Provider) []Suggester {
	return []Suggester{
		llmSuggester{llm: llm},
		topicSuggester{},
		staticSuggester{},
	}
}

// RunSuggesters walks the chain and returns the first acceptable
// result, deduplicated and capped, preserving the winning tier's
// order. With the static tier present it never returns an empty list.
func RunSuggesters(ctx context.Context, chain []Suggester, sc SuggestionContext) []string {
	for _, s := range chain {
		candidates := dedupe(s.Suggest(ctx, sc))
		if len(candidates) >= minSuggestions {
			if len(candidates) > maxSuggestions {
				candidates = candidates[:maxSuggestions]
			}
			return candidates
		}
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

const suggestionPrompt = `Based on the user's query and your response, generate 2-3 relevant follow-up questions that the user might find helpful.

USER QUERY: %s

YOUR RESPONSE: %s

AVAILABLE CONTEXT:
%s

The questions should be directly related to the current topic, build on the conversation, and reflect what banking customers commonly ask next.

Format your response as a simple JSON array of strings:
["Question 1?", "Question 2?", "Question 3?"]`

// llmSuggester asks the completion service for follow-ups. Any
// failure, including an unparseable response, declines silently.
type llmSuggester struct {
	llm provider.Provider
}

func (s llmSuggester) Suggest(ctx context.Context, sc SuggestionContext) []string {
	if s.llm == nil {
		return nil
	}

	prompt := fmt.Sprintf(suggestionPrompt, sc.Query, sc.Response, helpers.Truncate(sc.Context, suggestionCtxLimit))
	raw, err := s.llm.Complete(ctx, prompt, suggestionMaxTokens)
	if err != nil {
		return nil
	}

	payload, err := helpers.ExtractJSON(raw)
	if err != nil {
		return nil
	}
	var suggestions []string
	if err := json.Unmarshal([]byte(payload), &suggestions); err != nil {
		return nil
	}
	return suggestions
}

// topicSuggester matches the query and response against a fixed table
// of banking topics.
type topicSuggester struct{}

var topicSuggestions = []struct {
	keyword     string
	suggestions []string
}{
	{"kyc", []string{
		"What documents do I need for KYC verification?",
		"How long does KYC verification usually take?",
		"What happens if my KYC verification is delayed?",
	}},
	{"compliance", []string{
		"What are the main compliance requirements for my account?",
		"How can I ensure I'm meeting all compliance standards?",
		"Who can I contact for compliance-related questions?",
	}},
	{"account", []string{
		"What types of accounts are affected by these changes?",
		"How do these changes affect my existing account?",
		"Are there any fees associated with account updates?",
	}},
	{"deadline", []string{
		"What is the exact deadline for compliance?",
		"What happens if I miss the deadline?",
		"Are there any extensions available?",
	}},
}

func (topicSuggester) Suggest(_ context.Context, sc SuggestionContext) []string {
	haystack := strings.ToLower(sc.Query + " " + sc.Response)
	for _, t := range topicSuggestions {
		if strings.Contains(haystack, t.keyword) {
			return t.suggestions
		}
	}
	return nil
}

// staticSuggester is the terminal tier; it always succeeds.
type staticSuggester struct{}

func (staticSuggester) Suggest(context.Context, SuggestionContext) []string {
	return []string{
		"Can you explain this in simpler terms?",
		"What should I do next?",
		"Who can I contact for more specific guidance?",
	}
}
