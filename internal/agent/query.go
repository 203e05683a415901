package agent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/regfaq/internal/helpers"
	"github.com/mohammad-safakhou/regfaq/internal/knowledge"
	"github.com/mohammad-safakhou/regfaq/internal/session"
	"github.com/mohammad-safakhou/regfaq/provider"
	"github.com/mohammad-safakhou/regfaq/tools/web_search"
)

// ResponderConfig tunes retrieval and augmentation.
type ResponderConfig struct {
	TopK                int
	ConfidenceThreshold float64
	HistoryWindow       int
	MaxAnswerTokens     int
}

func (c ResponderConfig) withDefaults() ResponderConfig {
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.35
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 6
	}
	if c.MaxAnswerTokens <= 0 {
		c.MaxAnswerTokens = 1500
	}
	return c
}

// Answer is the result of one query.
type Answer struct {
	Text               string
	Suggestions        []string
	UsedRealtimeSearch bool
	ContextSources     int
}

// Responder answers live customer queries from knowledge-base
// retrieval, optional web-search augmentation, and the completion
// service.
type Responder struct {
	llm        provider.Provider
	kb         *knowledge.Store
	search     *web_search.Client
	suggesters []Suggester
	cfg        ResponderConfig
	logger     *log.Logger
}

func NewResponder(llm provider.Provider, kb *knowledge.Store, search *web_search.Client, cfg ResponderConfig, logger *log.Logger) *Responder {
	return &Responder{
		llm:        llm,
		kb:         kb,
		search:     search,
		suggesters: DefaultSuggesters(llm),
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

const answerPrompt = `You are a knowledgeable banking regulatory assistant. Answer customer queries about regulatory changes, compliance requirements, and banking regulations based on the available information.

USER QUERY: %s

AVAILABLE CONTEXT:
%s

CONVERSATION HISTORY:
%s

REAL-TIME SEARCH RESULTS:
%s

Guidelines for your response:
1. Be accurate: base your answers on verified regulatory information
2. Be clear: use simple, understandable language for banking customers
3. Be compliant: avoid giving specific legal advice; direct to professionals when needed
4. Be helpful: provide actionable information and next steps
5. Be contextual: consider the conversation history

Start with a direct answer, then relevant regulatory details, any important deadlines or requirements, and suggested next steps. Reference the source of information when possible. Maintain a professional, helpful tone appropriate for banking customers.

Response:`

// Respond answers one query. Completion failure is fatal for the call
// and surfaces as a wrapped provider.ErrService; search failure only
// disables augmentation.
func (r *Responder) Respond(ctx context.Context, query string, history []session.Message) (Answer, error) {
	cfg := r.cfg

	hits, err := r.kb.Search(ctx, query, cfg.TopK)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("knowledge search failed, answering without context: %v", err)
		}
		hits = nil
	}

	confidence := 0.0
	if len(hits) > 0 {
		confidence = hits[0].Score
	}

	var (
		searchBlock  string
		usedRealtime bool
	)
	if confidence < cfg.ConfidenceThreshold || wantsRecentInfo(query) {
		results := r.search.Search(ctx, "banking regulatory "+query)
		if len(results) > 0 {
			usedRealtime = true
			var b strings.Builder
			for i, res := range results {
				fmt.Fprintf(&b, "%d. %s\n   Source: %s\n   Summary: %s\n\n", i+1, res.Title, res.URL, helpers.Truncate(res.Snippet, 200))
			}
			searchBlock = b.String()
		}
	}
	if searchBlock == "" {
		searchBlock = "No real-time results available."
	}

	contextBlock := formatContext(hits)
	prompt := fmt.Sprintf(answerPrompt, query, contextBlock, formatHistory(history, cfg.HistoryWindow), searchBlock)

	raw, err := r.llm.Complete(ctx, prompt, cfg.MaxAnswerTokens)
	if err != nil {
		return Answer{}, fmt.Errorf("answering query: %w", err)
	}
	text := helpers.CleanMarkdown(raw)

	suggestions := RunSuggesters(ctx, r.suggesters, SuggestionContext{
		Query:    query,
		Response: text,
		Context:  contextBlock,
	})

	return Answer{
		Text:               text,
		Suggestions:        suggestions,
		UsedRealtimeSearch: usedRealtime,
		ContextSources:     len(hits),
	}, nil
}

// FallbackSuggestions skips the model tier; used when the completion
// service is already known to be down.
func (r *Responder) FallbackSuggestions(query string) []string {
	return RunSuggesters(context.Background(), []Suggester{topicSuggester{}, staticSuggester{}}, SuggestionContext{Query: query})
}

func formatContext(hits []knowledge.Hit) string {
	if len(hits) == 0 {
		return "No stored regulatory knowledge matched this query."
	}
	var b strings.Builder
	b.WriteString("RELEVANT FAQs:\n")
	for _, h := range hits {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", h.Unit.Question, h.Unit.Answer)
	}
	return strings.TrimSpace(b.String())
}

func formatHistory(history []session.Message, window int) string {
	if len(history) == 0 {
		return "No previous conversation."
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	var b strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case session.RoleUser:
			fmt.Fprintf(&b, "User: %s\n", msg.Content)
		case session.RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n", msg.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

var (
	temporalKeywords = []string{
		"recent", "latest", "current", "new", "update", "change",
		"today", "this week", "this month", "breaking", "news",
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
		regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
	}
)

// wantsRecentInfo reports whether the query asks for timely
// information and should trigger augmentation regardless of retrieval
// confidence.
func wantsRecentInfo(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range temporalKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	for _, p := range datePatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}
