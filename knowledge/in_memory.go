package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/haggle/core"
)

// InMemoryStoreOptions configures an InMemoryStore.
type InMemoryStoreOptions struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int
	// ChunkOverlap is the rune overlap between adjacent chunks.
	ChunkOverlap int
}

// InMemoryStore is a process-local KnowledgeStore. Documents are split
// into overlapping chunks on ingest and searched with a linear scan
// scoring query term overlap. Suitable for tests and single-node
// deployments.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs []storedChunk
	opts InMemoryStoreOptions
}

type storedChunk struct {
	id       string
	content  string
	metadata map[string]any
}

var _ core.KnowledgeStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store with 500 rune chunks and 50
// rune overlap.
func NewInMemoryStore(optFns ...func(o *InMemoryStoreOptions)) *InMemoryStore {
	opts := InMemoryStoreOptions{
		ChunkSize:    500,
		ChunkOverlap: 50,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{opts: opts}
}

// Store implements core.KnowledgeStore. The content is chunked and each
// chunk shares a copy of the metadata.
func (s *InMemoryStore) Store(ctx context.Context, content string, metadata map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chunks := ChunkText(content, s.opts.ChunkSize, s.opts.ChunkOverlap)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		md := make(map[string]any, len(metadata))

		for k, v := range metadata {
			md[k] = v
		}

		s.docs = append(s.docs, storedChunk{
			id:       core.NewID(),
			content:  chunk,
			metadata: md,
		})
	}

	return nil
}

// Search implements core.KnowledgeStore. Chunks are scored by the
// fraction of distinct query terms they contain, case-insensitively;
// zero-score chunks are dropped. An empty query matches every chunk
// with a score of 1. Ties keep insertion order.
func (s *InMemoryStore) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := queryTerms(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.SearchResult, 0, limit)

	for _, doc := range s.docs {
		score := overlapScore(doc.content, terms)
		if score <= 0 {
			continue
		}

		md := make(map[string]any, len(doc.metadata))

		for k, v := range doc.metadata {
			md[k] = v
		}

		results = append(results, core.SearchResult{
			ID:       doc.id,
			Content:  doc.content,
			Score:    score,
			Metadata: md,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Len returns the number of stored chunks.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}

// Clear removes every stored chunk and returns how many were dropped.
func (s *InMemoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.docs)

	s.docs = nil

	return n
}

// ChunkText splits text into overlapping rune chunks. Text within the
// chunk size is returned as a single chunk.
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)

	if size <= 0 || len(runes) <= size {
		return []string{text}
	}

	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string

	start := 0

	for start < len(runes) {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, string(runes[start:end]))

		start = end - overlap

		if start >= len(runes) || end == len(runes) {
			break
		}
	}

	return chunks
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	seen := make(map[string]struct{}, len(fields))

	terms := make([]string, 0, len(fields))

	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}

		seen[f] = struct{}{}

		terms = append(terms, f)
	}

	return terms
}

func overlapScore(content string, terms []string) float64 {
	if len(terms) == 0 {
		return 1
	}

	lower := strings.ToLower(content)

	matched := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}

	return float64(matched) / float64(len(terms))
}
