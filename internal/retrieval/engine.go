// Package retrieval implements the document retrieval engine: chunking,
// embedding and scoped vector search over property documents.
package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks property-agent/internal/retrieval Engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"property-agent/internal/chunker"
	"property-agent/internal/contextutil"
	"property-agent/internal/vectorstore"
)

const (
	// DefaultLimit is the result count used when a search request does not
	// specify one.
	DefaultLimit = 5
	// MaxLimit caps a single search to keep scans bounded.
	MaxLimit = 1000
)

// Embedder converts texts into fixed-length vectors, one per input, in input
// order. The engine depends only on this contract, never on the model behind
// it.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Engine is the retrieval engine. It is stateless between calls; all chunk
// state lives in the vector store, so concurrent calls against different
// properties need no coordination.
type Engine interface {
	// IngestDocument chunks, embeds and indexes one document. Prior chunks
	// for the same (property, document) pair are replaced.
	IngestDocument(ctx context.Context, req IngestRequest) (IngestResult, error)

	// Search embeds the query and returns ranked chunks, scoped to a
	// property when requested. Zero hits is a valid outcome, not an error.
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)

	// DeleteProperty removes every indexed chunk under a property.
	// Idempotent: deleting an unknown property reports zero.
	DeleteProperty(ctx context.Context, propertyID string) (DeleteResult, error)
}

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	Chunking chunker.Config
	MaxLimit int
}

type engine struct {
	embedder Embedder
	store    vectorstore.VectorStore
	chunking chunker.Config
	maxLimit int
}

// NewEngine creates a retrieval engine around the given embedder and store.
func NewEngine(embedder Embedder, store vectorstore.VectorStore, cfg Config) Engine {
	chunking := cfg.Chunking
	if chunking.ChunkSize == 0 {
		chunking = chunker.DefaultConfig()
	}
	maxLimit := cfg.MaxLimit
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return &engine{
		embedder: embedder,
		store:    store,
		chunking: chunking,
		maxLimit: maxLimit,
	}
}

// IngestDocument chunks the text, embeds all chunks in one batch, then
// replaces the document's points in the index. Embedding happens before any
// index write, so a failed embed leaves the index untouched. The replace is
// delete-then-upsert; a crash between the two can briefly leave the document
// missing, never duplicated.
func (e *engine) IngestDocument(ctx context.Context, req IngestRequest) (IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.PropertyID == "" {
		return IngestResult{}, fmt.Errorf("%w: property ID is required", ErrInvalidRequest)
	}
	if req.DocumentName == "" {
		return IngestResult{}, fmt.Errorf("%w: document name is required", ErrInvalidRequest)
	}

	text := req.Text
	if req.Markdown {
		text = chunker.NormalizeMarkdown(text)
	}

	// Split validates the chunking configuration before anything else runs,
	// so a bad overlap fails here, ahead of any embedding call.
	chunks, err := chunker.Split(text, e.chunking)
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{
		PropertyID:   req.PropertyID,
		DocumentName: req.DocumentName,
	}

	if len(chunks) == 0 {
		// Nothing to embed, but a re-ingest of an emptied document still
		// clears its stale chunks.
		replaced, err := e.store.DeleteByDocument(ctx, req.PropertyID, req.DocumentName)
		if err != nil {
			return IngestResult{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
		result.ChunksReplaced = replaced
		logger.InfoContext(ctx, "document produced no chunks",
			"property_id", req.PropertyID, "document", req.DocumentName, "replaced", replaced)
		return result, nil
	}

	vectors, err := e.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return IngestResult{}, fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingUnavailable, len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: vectorstore.Payload{
				PropertyID:   req.PropertyID,
				DocumentName: req.DocumentName,
				ChunkIndex:   i,
				Text:         chunk,
			},
		}
	}

	replaced, err := e.store.DeleteByDocument(ctx, req.PropertyID, req.DocumentName)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if err := e.store.Upsert(ctx, points); err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	result.ChunksInserted = len(points)
	result.ChunksReplaced = replaced

	logger.InfoContext(ctx, "document ingested",
		"property_id", req.PropertyID,
		"document", req.DocumentName,
		"chunks", len(points),
		"replaced", replaced,
	)
	return result, nil
}

// Search embeds the query text and runs a scoped similarity search.
func (e *engine) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}

	vectors, err := e.embedder.EmbedTexts(ctx, []string{req.Query})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) == 0 {
		return SearchResponse{}, fmt.Errorf("%w: no vector returned for query", ErrEmbeddingUnavailable)
	}

	hits, err := e.store.Search(ctx, vectors[0], req.PropertyID, limit)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	if len(hits) == 0 {
		logger.InfoContext(ctx, "search returned no results",
			"property_id", req.PropertyID, "limit", limit)
		return SearchResponse{Results: []SearchResult{}, Status: StatusNoResults}, nil
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Text:         hit.Payload.Text,
			DocumentName: hit.Payload.DocumentName,
			ChunkIndex:   hit.Payload.ChunkIndex,
			Similarity:   hit.Similarity,
			Score:        normalizeScore(hit.Similarity),
		}
	}

	logger.InfoContext(ctx, "search completed",
		"property_id", req.PropertyID,
		"limit", limit,
		"results", len(results),
		"top_score", results[0].Score,
	)
	return SearchResponse{Results: results, Status: StatusOK}, nil
}

// DeleteProperty removes all chunks for every document under the property.
func (e *engine) DeleteProperty(ctx context.Context, propertyID string) (DeleteResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if propertyID == "" {
		return DeleteResult{}, fmt.Errorf("%w: property ID is required", ErrInvalidRequest)
	}

	deleted, err := e.store.DeleteByProperty(ctx, propertyID)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	logger.InfoContext(ctx, "property documents deleted", "property_id", propertyID, "deleted", deleted)
	return DeleteResult{PropertyID: propertyID, Deleted: deleted}, nil
}

// normalizeScore maps a cosine similarity in [-1, 1] onto [0, 1]. The clamp
// guards against backends that report slightly out-of-range values.
func normalizeScore(similarity float32) float64 {
	score := (float64(similarity) + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
