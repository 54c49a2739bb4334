// Package vectorstore provides in-memory semantic storage for conversation
// context and menu search. Embeddings are deterministic word-hash vectors,
// good enough for relative similarity without an external embedding model.
package vectorstore

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
)

const embeddingDim = 100

// Document is one stored entry with its metadata.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// Store holds one collection of embedded documents.
type Store struct {
	mu         sync.RWMutex
	embeddings map[string][]float32
	documents  map[string]Document
	order      []string
}

// New creates an empty collection.
func New() *Store {
	return &Store{
		embeddings: make(map[string][]float32),
		documents:  make(map[string]Document),
	}
}

// Add embeds and stores a document, replacing any existing entry with the
// same ID.
func (s *Store) Add(doc Document) {
	embedding := embed(doc.Content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.embeddings[doc.ID] = embedding
	s.documents[doc.ID] = doc
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Query returns the top k documents most similar to the query text. A nil
// filter matches everything.
func (s *Store) Query(query string, k int, filter func(Document) bool) []Document {
	queryEmbedding := embed(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		id    string
		score float32
	}
	matches := make([]scored, 0, len(s.embeddings))

	for id, embedding := range s.embeddings {
		if filter != nil && !filter(s.documents[id]) {
			continue
		}
		matches = append(matches, scored{id, cosineSimilarity(queryEmbedding, embedding)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if k > len(matches) {
		k = len(matches)
	}
	results := make([]Document, k)
	for i := 0; i < k; i++ {
		results[i] = s.documents[matches[i].id]
	}
	return results
}

// Recent returns the last k documents matching the filter, in insertion
// order (oldest first among the returned slice).
func (s *Store) Recent(k int, filter func(Document) bool) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Document, 0, k)
	for i := len(s.order) - 1; i >= 0 && len(matched) < k; i-- {
		doc := s.documents[s.order[i]]
		if filter == nil || filter(doc) {
			matched = append(matched, doc)
		}
	}

	// Reverse back into chronological order.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}

// embed converts text into a deterministic pseudo-random embedding: each
// word seeds a PRNG that contributes to every dimension, so texts sharing
// words land near each other.
func embed(text string) []float32 {
	words := strings.Fields(strings.ToLower(text))
	embedding := make([]float32, embeddingDim)

	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		rng := rand.New(rand.NewSource(int64(h.Sum32())))

		for i := range embedding {
			embedding[i] += rng.Float32()*2 - 1
		}
	}

	normalize(embedding)
	return embedding
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / float32(math.Sqrt(float64(normA)*float64(normB)))
}

func normalize(v []float32) {
	var norm float32
	for _, x := range v {
		norm += x * x
	}
	norm = float32(math.Sqrt(float64(norm)))

	if norm != 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}
