package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/regfaq/internal/agent"
	"github.com/mohammad-safakhou/regfaq/internal/feedback"
	"github.com/mohammad-safakhou/regfaq/internal/ingest"
	"github.com/mohammad-safakhou/regfaq/internal/knowledge"
	"github.com/mohammad-safakhou/regfaq/internal/session"
	"github.com/mohammad-safakhou/regfaq/provider"
)

type scriptedProvider struct {
	responses []string
	err       error
}

func (s *scriptedProvider) Complete(context.Context, string, int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedProvider) CreateEmbedding(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embeddings not scripted")
}

func newTestAssistant(t *testing.T, llm *scriptedProvider) *Assistant {
	t.Helper()
	kb, err := knowledge.NewStore(nil, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	responder := agent.NewResponder(llm, kb, nil, agent.ResponderConfig{}, nil)
	pipeline := ingest.NewPipeline(agent.NewFAQGenerator(llm, 0, nil), agent.NewValidator(llm, nil), kb, nil, nil, 0, nil)
	return New(session.NewStore(), feedback.NewStore(10), kb, responder, pipeline, nil)
}

func TestSubmitQueryCreatesSession(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"The deadline is March 1st.",
		`["What documents do I need?", "Who can help me?"]`,
	}}
	a := newTestAssistant(t, llm)

	resp, err := a.SubmitQuery(context.Background(), "When is the deadline?", "")
	if err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a new session id")
	}
	if !strings.HasPrefix(resp.MessageID, "msg_") {
		t.Errorf("unexpected message id %q", resp.MessageID)
	}
	if resp.Response != "The deadline is March 1st." {
		t.Errorf("unexpected response %q", resp.Response)
	}
	if len(resp.Suggestions) < 2 {
		t.Errorf("expected suggestions, got %v", resp.Suggestions)
	}

	sess, err := a.GetSession(resp.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected user and assistant messages, got %d", len(sess.Messages))
	}
	if sess.Messages[0].Role != session.RoleUser || sess.Messages[1].Role != session.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", sess.Messages[0].Role, sess.Messages[1].Role)
	}
	if sess.Title != "When is the deadline?" {
		t.Errorf("unexpected title %q", sess.Title)
	}
}

func TestSubmitQueryUnknownSession(t *testing.T) {
	a := newTestAssistant(t, &scriptedProvider{})

	_, err := a.SubmitQuery(context.Background(), "hello", "does-not-exist")
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitQueryEmptyMessage(t *testing.T) {
	a := newTestAssistant(t, &scriptedProvider{})

	if _, err := a.SubmitQuery(context.Background(), "   ", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestSubmitQueryApologizesOnServiceFailure(t *testing.T) {
	llm := &scriptedProvider{err: fmt.Errorf("%w: upstream 500", provider.ErrService)}
	a := newTestAssistant(t, llm)

	resp, err := a.SubmitQuery(context.Background(), "What about my compliance deadline?", "")
	if err != nil {
		t.Fatalf("expected a degraded answer, got error %v", err)
	}
	if resp.Response != apologyAnswer {
		t.Errorf("expected the apology answer, got %q", resp.Response)
	}
	if len(resp.Suggestions) < 2 {
		t.Errorf("expected fallback suggestions, got %v", resp.Suggestions)
	}

	sess, err := a.GetSession(resp.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Errorf("expected the apology recorded in the session, got %d messages", len(sess.Messages))
	}
}

func TestSubmitFeedbackBackfillsQuery(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Answer text.",
		`["Next question?", "Another question?"]`,
	}}
	a := newTestAssistant(t, llm)

	resp, err := a.SubmitQuery(context.Background(), "What changed for savings accounts?", "")
	if err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}

	rec := a.SubmitFeedback(resp.MessageID, resp.SessionID, feedback.TypePositive)
	if rec.Query != "What changed for savings accounts?" {
		t.Errorf("expected query backfilled from session, got %q", rec.Query)
	}

	summary := a.FeedbackSummary()
	if summary.Total != 1 || summary.PositiveCount != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestSubmitFeedbackUnknownSessionStillRecorded(t *testing.T) {
	a := newTestAssistant(t, &scriptedProvider{})

	rec := a.SubmitFeedback("some-message", "unknown-session", feedback.TypeNegative)
	if rec.Query != "" {
		t.Errorf("expected no backfilled query, got %q", rec.Query)
	}
	if a.FeedbackSummary().Total != 1 {
		t.Error("expected the record stored")
	}
}

func TestSystemStatusCounts(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Answer.",
		`["One?", "Two?"]`,
	}}
	a := newTestAssistant(t, llm)

	if _, err := a.SubmitQuery(context.Background(), "question", ""); err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}
	a.SubmitFeedback("m", "s", feedback.TypePositive)

	status := a.SystemStatus()
	if status.Sessions != 1 || status.FeedbackCount != 1 || status.KnowledgeUnits != 0 {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestDeleteSession(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Answer.",
		`["One?", "Two?"]`,
	}}
	a := newTestAssistant(t, llm)

	resp, err := a.SubmitQuery(context.Background(), "question", "")
	if err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}
	if err := a.DeleteSession(resp.SessionID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := a.DeleteSession(resp.SessionID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
