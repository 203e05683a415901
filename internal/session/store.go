// Package session tracks per-conversation message history. Sessions
// are created on demand, mutated only by appending messages, and kept
// for the lifetime of the process; cleanup policy belongs to the
// caller.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/regfaq/internal/helpers"
)

// ErrNotFound is returned for an unknown session id. It is distinct
// from a successful lookup of an empty session.
var ErrNotFound = errors.New("session not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	titleLimit   = 50
	previewLimit = 100
)

// Metadata carries per-answer details shown next to an assistant
// message.
type Metadata struct {
	UsedRealtimeSearch bool `json:"used_realtime_search"`
	ContextSources     int  `json:"context_sources"`
}

// Message is immutable after creation.
type Message struct {
	ID          string    `json:"message_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is one conversation. Message order is append order.
type Session struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the listing view of a session.
type Summary struct {
	ID           string    `json:"session_id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	LastMessage  string    `json:"last_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store holds all sessions in memory. Appends serialize on the write
// lock so concurrent conversations never interleave partially.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create starts an empty session and returns its id. The title is
// derived later, from the first user message.
func (s *Store) Create() string {
	now := time.Now().UTC()
	sess := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess.ID
}

// Append adds a message to an existing session. The message id is
// assigned here when the caller did not set one.
func (s *Store) Append(id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if sess.Title == "" && msg.Role == RoleUser {
		sess.Title = helpers.Truncate(msg.Content, titleLimit)
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Get returns a copy of the session so callers can iterate without
// holding the store lock.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}

	out := *sess
	out.Messages = make([]Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out, nil
}

// List returns session summaries ordered by most recent activity.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		summary := Summary{
			ID:           sess.ID,
			Title:        sess.Title,
			MessageCount: len(sess.Messages),
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
		}
		if n := len(sess.Messages); n > 0 {
			summary.LastMessage = helpers.Truncate(sess.Messages[n-1].Content, previewLimit)
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
