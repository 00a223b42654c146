// Package memory implements the semantic memory service behind
// core.MemoryStore. The in-memory store ranks by cosine similarity over
// gateway embeddings when an embedder is configured, falling back to lexical
// token overlap when embedding is unavailable. The sqlite subpackage persists
// the same model across restarts.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/logging"
)

// Options configure an InMemoryStore.
type Options struct {
	// Embedder produces vectors for semantic ranking. Optional; without it
	// retrieval ranks lexically.
	Embedder gateway.Gateway
	Logger   logging.Logger
}

// InMemoryStore keeps importance-scored records per agent, guarded by a
// read/write mutex. Records are append-only.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    []core.MemoryRecord
	embeddings map[string][]float64
	opts       Options
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &InMemoryStore{embeddings: map[string][]float64{}, opts: opts}
}

// Store appends a record and returns its ID. Embedding failures degrade the
// record to lexical ranking instead of failing the write; memory writes must
// never abort the caller's primary operation.
func (s *InMemoryStore) Store(ctx context.Context, agent, category, content, contextText string, importance float64, metadata map[string]string) (string, error) {
	rec := core.MemoryRecord{
		ID:         core.NewID(),
		Agent:      agent,
		Category:   category,
		Content:    content,
		Context:    contextText,
		Importance: clamp01(importance),
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	var vec []float64
	if s.opts.Embedder != nil {
		v, err := s.opts.Embedder.Embed(ctx, content)
		if err != nil {
			s.opts.Logger.Warn("memory embedding failed, record degrades to lexical ranking", "agent", agent, "error", err)
		} else {
			vec = v
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if vec != nil {
		s.embeddings[rec.ID] = vec
	}
	return rec.ID, nil
}

// RetrieveRelevant returns up to limit records for one agent, importance at or
// above minImportance, ranked by relevance to the query. Ties break toward
// more recent records.
func (s *InMemoryStore) RetrieveRelevant(ctx context.Context, agent, query string, limit int, minImportance float64) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var queryVec []float64
	if s.opts.Embedder != nil {
		if v, err := s.opts.Embedder.Embed(ctx, query); err == nil {
			queryVec = v
		}
	}
	queryTokens := tokenize(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []core.MemoryRecord
	for _, rec := range s.records {
		if rec.Agent != agent || rec.Importance < minImportance {
			continue
		}
		score := 0.0
		if vec, ok := s.embeddings[rec.ID]; ok && queryVec != nil {
			score = Cosine(queryVec, vec)
		} else {
			score = lexicalScore(queryTokens, rec.Content+" "+rec.Context)
		}
		rec.Score = score
		matches = append(matches, rec)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Len reports the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Cosine returns the cosine similarity of two vectors, 0 when either has no
// magnitude or the dimensions differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// LexicalScore is the embedding-free fallback ranking: the fraction of query
// tokens present in the text.
func LexicalScore(query, text string) float64 {
	return lexicalScore(tokenize(query), text)
}

func tokenize(s string) map[string]bool {
	tokens := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?:;\"'()")
		if len(w) > 2 {
			tokens[w] = true
		}
	}
	return tokens
}

func lexicalScore(queryTokens map[string]bool, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	hits := 0
	for tok := range tokenize(text) {
		if queryTokens[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
