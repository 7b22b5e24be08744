package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks property-agent/internal/vectorstore VectorStore

import "context"

// Payload is the chunk metadata stored alongside each vector.
type Payload struct {
	PropertyID   string
	DocumentName string
	ChunkIndex   int
	Text         string
}

// Point is a vector point with its payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredChunk is a search hit. Similarity is the raw cosine similarity
// reported by the index, in [-1, 1]; score normalization happens in the
// retrieval engine.
type ScoredChunk struct {
	ID         string
	Similarity float32
	Payload    Payload
}

// VectorStore stores chunk vectors partitioned by property and supports
// scoped nearest-neighbor search. Implementations must be safe for concurrent
// use; filtering and ranking are combined in a single operation, never a
// post-filter of an unscoped top-k.
type VectorStore interface {
	// Upsert inserts or replaces points. Points are searchable once the call
	// returns.
	Upsert(ctx context.Context, points []Point) error

	// Search returns up to limit hits ordered by decreasing similarity. When
	// propertyID is non-empty only points with a matching property are
	// candidates.
	Search(ctx context.Context, vector []float32, propertyID string, limit int) ([]ScoredChunk, error)

	// DeleteByProperty removes every point under the property and returns the
	// removed count. Deleting an unknown property returns 0, not an error.
	DeleteByProperty(ctx context.Context, propertyID string) (int, error)

	// DeleteByDocument removes every point for one document under a property
	// and returns the removed count.
	DeleteByDocument(ctx context.Context, propertyID, documentName string) (int, error)
}
