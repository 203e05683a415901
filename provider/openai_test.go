package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mohammad-safakhou/regfaq/config"
)

func newTestClient(serverURL string) *openaiClient {
	return newOpenAIClient(config.LLMConfig{
		APIKey:          "test-key",
		BaseURL:         serverURL,
		CompletionModel: "gpt-4o-mini",
		EmbeddingModel:  "text-embedding-3-small",
	})
}

func TestCompleteReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "hello"}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), "hi", 100)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestCompleteRetriesOn500(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "recovered"}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), "hi", 100)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "recovered" {
		t.Errorf("got %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestCompleteDoesNotRetryOn400(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "hi", 100)
	if !errors.Is(err, ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestCreateEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2], "index": 0}, {"embedding": [0.3, 0.4], "index": 1}]}`))
	}))
	defer srv.Close()

	vecs, err := newTestClient(srv.URL).CreateEmbedding(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("CreateEmbedding: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 2 {
		t.Fatalf("unexpected vectors: %+v", vecs)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(config.LLMConfig{Provider: "openai"}); err == nil {
		t.Fatal("expected an error without an api key")
	}
	if _, err := New(config.LLMConfig{Provider: "other", APIKey: "k"}); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}
