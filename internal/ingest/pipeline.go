// Package ingest turns raw regulatory submissions into validated
// knowledge units. Each document either commits all of its approved
// units in one atomic add or leaves the knowledge base untouched.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/regfaq/internal/agent"
	"github.com/mohammad-safakhou/regfaq/internal/knowledge"
	"github.com/mohammad-safakhou/regfaq/tools/extract"
)

var (
	// ErrInvalidInput means the caller supplied neither text nor a
	// document.
	ErrInvalidInput = errors.New("no regulatory content provided")
	// ErrExtraction means every extraction strategy failed on the
	// uploaded document.
	ErrExtraction = errors.New("document extraction failed")
	// ErrGeneration means the drafting agent produced no candidates
	// even after a retry.
	ErrGeneration = errors.New("faq generation failed")
)

// Input is one ingestion request. At least one of Text and Document
// must be non-empty.
type Input struct {
	Text     string
	Document []byte
	Context  string
}

// Rejection records why a candidate was dropped during review.
type Rejection struct {
	Question string `json:"question"`
	Reason   string `json:"reason"`
}

// Result summarizes one ingestion. AcceptedCount plus the rejections
// always accounts for every generated candidate.
type Result struct {
	SourceDocumentID string      `json:"source_document_id"`
	AcceptedCount    int         `json:"accepted_count"`
	Rejected         []Rejection `json:"rejected"`
}

// Embedder adds vectors to accepted units before commit. Optional;
// units without vectors are still searchable lexically.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline wires extraction, drafting, review, and commit.
type Pipeline struct {
	generator  *agent.FAQGenerator
	validator  *agent.Validator
	kb         *knowledge.Store
	extractors []extract.Strategy
	embedder   Embedder
	timeout    time.Duration
	logger     *log.Logger
}

func NewPipeline(generator *agent.FAQGenerator, validator *agent.Validator, kb *knowledge.Store, extractors []extract.Strategy, embedder Embedder, timeout time.Duration, logger *log.Logger) *Pipeline {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Pipeline{
		generator:  generator,
		validator:  validator,
		kb:         kb,
		extractors: extractors,
		embedder:   embedder,
		timeout:    timeout,
		logger:     logger,
	}
}

// Process runs one submission through the pipeline. Rejected
// candidates are reported in the result, not as errors; only a fully
// failed stage aborts the ingestion.
func (p *Pipeline) Process(ctx context.Context, in Input) (Result, error) {
	manual := strings.TrimSpace(in.Text)
	if manual == "" && len(in.Document) == 0 {
		return Result{}, ErrInvalidInput
	}

	var parts []string
	if len(in.Document) > 0 {
		extracted, err := p.extractText(ctx, in.Document)
		if err != nil {
			return Result{}, err
		}
		parts = append(parts, extracted)
	}
	if manual != "" {
		parts = append(parts, manual)
	}
	documentText := strings.Join(parts, "\n\n")

	candidates, err := p.generate(ctx, documentText, in.Context)
	if err != nil {
		return Result{}, err
	}

	verdicts := p.validator.Validate(ctx, candidates, documentText)

	sourceID := uuid.NewString()
	now := time.Now().UTC()
	result := Result{SourceDocumentID: sourceID}
	var units []knowledge.Unit
	for _, v := range verdicts {
		if !v.Approved {
			result.Rejected = append(result.Rejected, Rejection{Question: v.FAQ.Question, Reason: v.Reason})
			continue
		}
		units = append(units, knowledge.Unit{
			ID:               uuid.NewString(),
			Question:         v.FAQ.Question,
			Answer:           v.FAQ.Answer,
			SourceDocumentID: sourceID,
			Tags:             unitTags(v.FAQ),
			CreatedAt:        now,
		})
	}

	p.embed(ctx, units)

	if len(units) > 0 {
		if err := p.kb.Add(ctx, units); err != nil {
			return Result{}, fmt.Errorf("committing knowledge units: %w", err)
		}
	}
	result.AcceptedCount = len(units)

	if p.logger != nil {
		p.logger.Printf("ingested document %s: %d accepted, %d rejected", sourceID, result.AcceptedCount, len(result.Rejected))
	}
	return result, nil
}

// extractText tries each strategy in order with a bounded timeout.
func (p *Pipeline) extractText(ctx context.Context, document []byte) (string, error) {
	var lastErr error
	for _, strategy := range p.extractors {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		text, err := strategy.Extract(attemptCtx, document)
		cancel()
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = errors.New("empty extraction result")
		}
		if p.logger != nil {
			p.logger.Printf("extraction strategy %s failed: %v", strategy.Name(), err)
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no extraction strategies configured")
	}
	return "", fmt.Errorf("%w: %v", ErrExtraction, lastErr)
}

// generate drafts candidates, retrying once before giving up.
func (p *Pipeline) generate(ctx context.Context, documentText, notes string) ([]agent.CandidateFAQ, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		candidates, err := p.generator.Generate(attemptCtx, documentText, notes)
		cancel()
		if err == nil && len(candidates) > 0 {
			return candidates, nil
		}
		lastErr = err
		if p.logger != nil {
			p.logger.Printf("faq generation attempt %d yielded no candidates (err: %v)", attempt+1, err)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, lastErr)
	}
	return nil, fmt.Errorf("%w: model returned no parseable candidates", ErrGeneration)
}

// embed best-effort attaches vectors; a failure leaves units lexical.
func (p *Pipeline) embed(ctx context.Context, units []knowledge.Unit) {
	if p.embedder == nil || len(units) == 0 {
		return
	}
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Question + "\n" + u.Answer
	}
	vecs, err := p.embedder.CreateEmbedding(ctx, texts)
	if err != nil || len(vecs) != len(units) {
		if p.logger != nil {
			p.logger.Printf("embedding skipped for %d units: %v", len(units), err)
		}
		return
	}
	for i := range units {
		units[i].Embedding = vecs[i]
	}
}

func unitTags(faq agent.CandidateFAQ) []string {
	var tags []string
	if faq.Category != "" {
		tags = append(tags, faq.Category)
	}
	if faq.Priority != "" {
		tags = append(tags, faq.Priority)
	}
	return tags
}
