package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a brute-force in-memory VectorStore using exact cosine
// similarity. It backs tests and local development where no Qdrant instance
// is available, and ranks identically to the cosine index.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string]Point
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]Point)}
}

// Upsert inserts or replaces points keyed by ID.
func (s *MemoryStore) Upsert(ctx context.Context, points []Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if p.ID == "" {
			return fmt.Errorf("point ID must not be empty")
		}
		s.points[p.ID] = p
	}
	return nil
}

// Search scans all points, scoping to propertyID when non-empty, and returns
// the top matches by cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, propertyID string, limit int) ([]ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ScoredChunk, 0, len(s.points))
	for _, p := range s.points {
		if propertyID != "" && p.Payload.PropertyID != propertyID {
			continue
		}
		results = append(results, ScoredChunk{
			ID:         p.ID,
			Similarity: cosineSimilarity(vector, p.Vector),
			Payload:    p.Payload,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteByProperty removes every point under the property.
func (s *MemoryStore) DeleteByProperty(ctx context.Context, propertyID string) (int, error) {
	return s.deleteWhere(ctx, func(p Point) bool {
		return p.Payload.PropertyID == propertyID
	})
}

// DeleteByDocument removes every point for one document under a property.
func (s *MemoryStore) DeleteByDocument(ctx context.Context, propertyID, documentName string) (int, error) {
	return s.deleteWhere(ctx, func(p Point) bool {
		return p.Payload.PropertyID == propertyID && p.Payload.DocumentName == documentName
	})
}

func (s *MemoryStore) deleteWhere(ctx context.Context, match func(Point) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, p := range s.points {
		if match(p) {
			delete(s.points, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of stored points.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
