// Package knowledge holds the reviewed FAQ knowledge base. Units are
// immutable once committed; supersession is remove-then-add under the
// store's write lock so concurrent searches always see a consistent
// unit set.
package knowledge

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"
)

// Unit is a single validated question/answer pair with provenance.
type Unit struct {
	ID               string    `json:"id"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	SourceDocumentID string    `json:"source_document_id"`
	Tags             []string  `json:"tags,omitempty"`
	Embedding        []float32 `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// Hit is a search result with its similarity score.
type Hit struct {
	Unit  Unit
	Score float64
}

// Embedder produces query embeddings for semantic search. The store
// works without one; it then scores lexically.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type indexedUnit struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// Store is the in-memory knowledge base. Mutations serialize on the
// write lock; readers never block each other.
type Store struct {
	mu       sync.RWMutex
	units    []Unit
	byID     map[string]int
	index    bleve.Index
	vectored int // units carrying an embedding

	embedder Embedder
	logger   *log.Logger
}

// NewStore creates an empty knowledge base backed by a memory-only
// bleve index. embedder may be nil.
func NewStore(embedder Embedder, logger *log.Logger) (*Store, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Store{
		byID:     make(map[string]int),
		index:    index,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Add commits a batch of units atomically: no concurrent Search can
// observe a partially added set.
func (s *Store) Add(ctx context.Context, units []Unit) error {
	if len(units) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	prepared := make([]Unit, 0, len(units))
	for _, u := range units {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		if err := batch.Index(u.ID, indexedUnit{Question: u.Question, Answer: u.Answer, Tags: u.Tags}); err != nil {
			return err
		}
		prepared = append(prepared, u)
	}
	if err := s.index.Batch(batch); err != nil {
		return err
	}

	for _, u := range prepared {
		s.byID[u.ID] = len(s.units)
		s.units = append(s.units, u)
		if len(u.Embedding) > 0 {
			s.vectored++
		}
	}
	return nil
}

// Len reports the number of stored units.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units)
}

// Search returns up to k units ordered by descending similarity to
// the query; ties are broken by most-recent CreatedAt. An empty store
// yields an empty result, never an error. Semantic scoring is used
// when embeddings are available, falling back to the lexical index
// otherwise.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	empty := len(s.units) == 0
	semantic := s.embedder != nil && s.vectored > 0
	s.mu.RUnlock()

	if empty {
		return nil, nil
	}

	if semantic {
		hits, err := s.semanticSearch(ctx, query, k)
		if err == nil {
			return hits, nil
		}
		if s.logger != nil {
			s.logger.Printf("semantic search unavailable, using lexical fallback: %v", err)
		}
	}
	return s.lexicalSearch(query, k)
}

func (s *Store) semanticSearch(ctx context.Context, query string, k int) ([]Hit, error) {
	vecs, err := s.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errors.New("empty query embedding")
	}
	qv := vecs[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]Hit, 0, len(s.units))
	for _, u := range s.units {
		if len(u.Embedding) == 0 {
			continue
		}
		hits = append(hits, Hit{Unit: u, Score: cosine(qv, u.Embedding)})
	}
	return topK(hits, k), nil
}

func (s *Store) lexicalSearch(query string, k int) ([]Hit, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), k*2, 0, false)

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		idx, ok := s.byID[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Unit: s.units[idx], Score: h.Score})
	}
	return topK(hits, k), nil
}

func topK(hits []Hit, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Unit.CreatedAt.After(hits[j].Unit.CreatedAt)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
