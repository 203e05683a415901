// Package agent contains the stateless LLM-facing services: drafting
// candidate FAQs from regulatory text, reviewing them for compliance
// accuracy, and answering live customer queries. Each agent takes its
// full context as explicit input and holds only gateway references,
// so tests substitute fakes freely.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mohammad-safakhou/regfaq/internal/helpers"
	"github.com/mohammad-safakhou/regfaq/provider"
)

// CandidateFAQ is a draft question/answer pair. It only becomes part
// of the knowledge base after review.
type CandidateFAQ struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	Reference string `json:"regulatory_reference"`
}

const (
	maxCandidates    = 5
	faqPromptMaxToks = 2000
)

// FAQGenerator drafts candidate FAQs from a regulatory document.
type FAQGenerator struct {
	llm        provider.Provider
	charBudget int
	logger     *log.Logger
}

func NewFAQGenerator(llm provider.Provider, charBudget int, logger *log.Logger) *FAQGenerator {
	if charBudget <= 0 {
		charBudget = 12000
	}
	return &FAQGenerator{llm: llm, charBudget: charBudget, logger: logger}
}

const faqPrompt = `You are an expert regulatory compliance specialist tasked with generating clear, accurate FAQs for banking customers regarding regulatory changes.

REGULATORY TEXT:
%s

ADDITIONAL CONTEXT:
%s

Based on the regulatory text above, generate 3-5 frequently asked questions (FAQs) that customers might have about these changes. Each FAQ should include:

1. A clear, concise question that a customer would actually ask
2. A comprehensive but easy-to-understand answer
3. The specific regulatory impact or requirement
4. Any actions the customer might need to take

Format your response as a valid JSON array with the following structure:
[
    {
        "question": "Customer's question here?",
        "answer": "Detailed answer explaining the regulatory requirement and customer impact.",
        "category": "compliance/banking/accounts/etc",
        "priority": "high/medium/low",
        "regulatory_reference": "Brief reference to the specific regulation"
    }
]

Focus on what changes are happening, how they affect customers, required actions, deadlines, and consequences of non-compliance.

Generate exactly 3-5 FAQs and return only the JSON array, no additional text.`

// Generate drafts candidate FAQs for the given document. A response
// that cannot be parsed into at least one well-formed pair yields
// zero candidates without an error; only a gateway failure is an
// error. The document is truncated to the configured character budget
// before prompting.
func (g *FAQGenerator) Generate(ctx context.Context, documentText, notes string) ([]CandidateFAQ, error) {
	prompt := fmt.Sprintf(faqPrompt, truncateDocument(documentText, g.charBudget), notes)

	raw, err := g.llm.Complete(ctx, prompt, faqPromptMaxToks)
	if err != nil {
		return nil, err
	}

	payload, err := helpers.ExtractJSON(raw)
	if err != nil {
		if g.logger != nil {
			g.logger.Printf("faq response had no JSON payload: %v", err)
		}
		return nil, nil
	}

	var drafts []CandidateFAQ
	if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
		if g.logger != nil {
			g.logger.Printf("faq response did not parse as a JSON array: %v", err)
		}
		return nil, nil
	}

	out := make([]CandidateFAQ, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Question) == "" || strings.TrimSpace(d.Answer) == "" {
			continue
		}
		if d.Category == "" {
			d.Category = "regulatory"
		}
		if d.Priority == "" {
			d.Priority = "medium"
		}
		if d.Reference == "" {
			d.Reference = "Regulatory Update"
		}
		out = append(out, d)
		if len(out) == maxCandidates {
			break
		}
	}
	return out, nil
}

// truncateDocument cuts text at the budget, preferring a paragraph
// boundary near the end so the prompt does not stop mid-sentence.
func truncateDocument(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	cut := text[:budget]
	if idx := strings.LastIndex(cut, "\n\n"); idx > budget/2 {
		cut = cut[:idx]
	}
	return cut + "\n\n[document truncated]"
}
