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

// Verdict is the review outcome for one candidate.
type Verdict struct {
	FAQ      CandidateFAQ
	Approved bool
	Reason   string
}

const (
	reasonUnverified     = "unverified"
	validatePromptMaxTok = 1500
)

// Validator reviews candidate FAQs against the source text. It is
// conservative: anything the reviewer does not explicitly approve is
// rejected.
type Validator struct {
	llm    provider.Provider
	logger *log.Logger
}

func NewValidator(llm provider.Provider, logger *log.Logger) *Validator {
	return &Validator{llm: llm, logger: logger}
}

const validationPrompt = `You are a senior regulatory compliance expert with extensive experience in banking regulations and risk management. Review the FAQs below against the regulatory text and decide for each whether it is accurate, complete, clear, and free of unauthorized legal advice.

REGULATORY TEXT:
%s

GENERATED FAQs TO VALIDATE:
%s

For each FAQ, provide a verdict in the following JSON format:

{
    "faq_0": {"approved": true, "reason": ""},
    "faq_1": {"approved": false, "reason": "specific issue found"}
}

Mark a FAQ as not approved when it has critical errors: incorrect legal interpretation, missing compliance requirements, or misleading guidance. Approve FAQs with only minor wording issues, noting the issue in the reason.

Return only the JSON verdicts, no additional text.`

type rawVerdict struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Validate reviews each candidate. A candidate without an explicit
// verdict in the response is rejected as unverified, and a review
// call that fails or does not parse rejects every candidate the same
// way; validation never default-approves.
func (v *Validator) Validate(ctx context.Context, candidates []CandidateFAQ, sourceText string) []Verdict {
	if len(candidates) == 0 {
		return nil
	}

	verdicts := v.review(ctx, candidates, sourceText)

	out := make([]Verdict, len(candidates))
	for i, c := range candidates {
		if raw, ok := verdicts[fmt.Sprintf("faq_%d", i)]; ok {
			out[i] = Verdict{FAQ: c, Approved: raw.Approved, Reason: raw.Reason}
			if !raw.Approved && strings.TrimSpace(raw.Reason) == "" {
				out[i].Reason = "rejected by reviewer"
			}
			continue
		}
		out[i] = Verdict{FAQ: c, Approved: false, Reason: reasonUnverified}
	}
	return out
}

func (v *Validator) review(ctx context.Context, candidates []CandidateFAQ, sourceText string) map[string]rawVerdict {
	encoded, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil
	}

	raw, err := v.llm.Complete(ctx, fmt.Sprintf(validationPrompt, sourceText, string(encoded)), validatePromptMaxTok)
	if err != nil {
		if v.logger != nil {
			v.logger.Printf("validation call failed, rejecting all candidates: %v", err)
		}
		return nil
	}

	payload, err := helpers.ExtractJSON(raw)
	if err != nil {
		if v.logger != nil {
			v.logger.Printf("validation response had no JSON payload: %v", err)
		}
		return nil
	}

	var verdicts map[string]rawVerdict
	if err := json.Unmarshal([]byte(payload), &verdicts); err != nil {
		if v.logger != nil {
			v.logger.Printf("validation response did not parse: %v", err)
		}
		return nil
	}
	return verdicts
}
