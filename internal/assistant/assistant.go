// Package assistant exposes the operations the transport layer calls:
// chat queries, document ingestion, session listing, and feedback. It
// owns the wiring between stores and agents but no business logic of
// its own beyond error-to-answer conversion.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/regfaq/internal/agent"
	"github.com/mohammad-safakhou/regfaq/internal/feedback"
	"github.com/mohammad-safakhou/regfaq/internal/ingest"
	"github.com/mohammad-safakhou/regfaq/internal/knowledge"
	"github.com/mohammad-safakhou/regfaq/internal/session"
)

// ErrEmptyMessage is returned for a chat request without text.
var ErrEmptyMessage = errors.New("message text is empty")

// apologyAnswer is shown when the completion service fails; the
// conversation continues and the failure is only logged.
const apologyAnswer = "I apologize, but I'm experiencing technical difficulties. Please try again or contact our customer service team for assistance with your regulatory inquiry."

// QueryResponse is the answer payload for one chat message.
type QueryResponse struct {
	SessionID   string            `json:"session_id"`
	MessageID   string            `json:"message_id"`
	Response    string            `json:"response"`
	Suggestions []string          `json:"suggestions"`
	Metadata    *session.Metadata `json:"metadata"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Status reports store sizes for monitoring.
type Status struct {
	KnowledgeUnits int `json:"knowledge_units"`
	Sessions       int `json:"sessions"`
	FeedbackCount  int `json:"feedback_count"`
}

// Assistant wires stores, agents, and the pipeline behind the
// caller-facing operations.
type Assistant struct {
	sessions  *session.Store
	feedback  *feedback.Store
	kb        *knowledge.Store
	responder *agent.Responder
	pipeline  *ingest.Pipeline
	logger    *log.Logger
}

func New(sessions *session.Store, fb *feedback.Store, kb *knowledge.Store, responder *agent.Responder, pipeline *ingest.Pipeline, logger *log.Logger) *Assistant {
	return &Assistant{
		sessions:  sessions,
		feedback:  fb,
		kb:        kb,
		responder: responder,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// SubmitQuery answers one user message inside a session. An empty
// session id starts a new session; an unknown one is surfaced as
// session.ErrNotFound. A completion-service failure still produces a
// response: the apology answer with fallback suggestions.
func (a *Assistant) SubmitQuery(ctx context.Context, text, sessionID string) (QueryResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return QueryResponse{}, ErrEmptyMessage
	}

	if sessionID == "" {
		sessionID = a.sessions.Create()
	}
	current, err := a.sessions.Get(sessionID)
	if err != nil {
		return QueryResponse{}, err
	}

	if err := a.sessions.Append(sessionID, session.Message{
		ID:      newMessageID(),
		Role:    session.RoleUser,
		Content: text,
	}); err != nil {
		return QueryResponse{}, err
	}

	answer, err := a.responder.Respond(ctx, text, current.Messages)
	if err != nil {
		if a.logger != nil {
			a.logger.Printf("query failed for session %s: %v", sessionID, err)
		}
		answer = agent.Answer{
			Text:        apologyAnswer,
			Suggestions: a.responder.FallbackSuggestions(text),
		}
	}

	reply := session.Message{
		ID:          newMessageID(),
		Role:        session.RoleAssistant,
		Content:     answer.Text,
		Suggestions: answer.Suggestions,
		Metadata: &session.Metadata{
			UsedRealtimeSearch: answer.UsedRealtimeSearch,
			ContextSources:     answer.ContextSources,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := a.sessions.Append(sessionID, reply); err != nil {
		return QueryResponse{}, err
	}

	return QueryResponse{
		SessionID:   sessionID,
		MessageID:   reply.ID,
		Response:    reply.Content,
		Suggestions: reply.Suggestions,
		Metadata:    reply.Metadata,
		Timestamp:   reply.CreatedAt,
	}, nil
}

// IngestDocument runs one submission through the ingestion pipeline.
func (a *Assistant) IngestDocument(ctx context.Context, in ingest.Input) (ingest.Result, error) {
	return a.pipeline.Process(ctx, in)
}

// ListSessions returns session summaries, most recently active first.
func (a *Assistant) ListSessions() []session.Summary {
	return a.sessions.List()
}

// GetSession returns one full session.
func (a *Assistant) GetSession(id string) (session.Session, error) {
	return a.sessions.Get(id)
}

// DeleteSession removes a session.
func (a *Assistant) DeleteSession(id string) error {
	return a.sessions.Delete(id)
}

// SubmitFeedback records a rating for an assistant message. The user
// query that led to the rated answer is backfilled from the session
// when it can be found; feedback for messages outside the session
// store is still accepted.
func (a *Assistant) SubmitFeedback(messageID, sessionID string, ftype feedback.Type) feedback.Record {
	rec := feedback.Record{
		MessageID: messageID,
		SessionID: sessionID,
		Type:      ftype,
		Query:     a.findQueryFor(messageID, sessionID),
		Timestamp: time.Now().UTC(),
	}
	a.feedback.Record(rec)
	return rec
}

// FeedbackSummary aggregates collected feedback.
func (a *Assistant) FeedbackSummary() feedback.Summary {
	return a.feedback.Aggregate()
}

// SystemStatus reports store sizes.
func (a *Assistant) SystemStatus() Status {
	return Status{
		KnowledgeUnits: a.kb.Len(),
		Sessions:       a.sessions.Len(),
		FeedbackCount:  a.feedback.Len(),
	}
}

// findQueryFor walks a session backwards from the rated message to
// the user message that preceded it.
func (a *Assistant) findQueryFor(messageID, sessionID string) string {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return ""
	}
	for i, msg := range sess.Messages {
		if msg.ID != messageID {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if sess.Messages[j].Role == session.RoleUser {
				return sess.Messages[j].Content
			}
		}
		break
	}
	return ""
}

func newMessageID() string {
	return fmt.Sprintf("msg_%s_%s", time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
}
