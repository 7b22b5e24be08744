package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"property-agent/internal/contextutil"
)

const (
	payloadPropertyID   = "property_id"
	payloadDocumentName = "document_name"
	payloadChunkIndex   = "chunk_index"
	payloadText         = "text"
)

// QdrantStore implements VectorStore on a Qdrant collection.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore creates a Qdrant-backed store. urlStr is the HTTP URL of the
// Qdrant instance (e.g. "http://localhost:6333"); the gRPC port is derived
// from the HTTP port.
func NewQdrantStore(urlStr, collection string) (*QdrantStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsed.Port() != "" {
		if httpPort, err := strconv.Atoi(parsed.Port()); err == nil {
			// gRPC listens one above the HTTP port.
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client, collection: collection}, nil
}

// EnsureCollection creates the collection with a cosine index if it does not
// exist, and validates the vector size when it does.
func (s *QdrantStore) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", s.collection, "vector_size", vectorSize)
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.GetConfig()
	if config == nil || config.GetParams() == nil {
		return fmt.Errorf("collection config is invalid")
	}
	params := config.GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", s.collection, "vector_size", vectorSize)
	return nil
}

// CollectionExists reports whether the store's collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// Upsert inserts or replaces points in the collection.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadPropertyID:   point.Payload.PropertyID,
				payloadDocumentName: point.Payload.DocumentName,
				payloadChunkIndex:   int64(point.Payload.ChunkIndex),
				payloadText:         point.Payload.Text,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", s.collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", s.collection, "count", len(points))
	return nil
}

// Search performs a cosine similarity search, scoped to a property when
// propertyID is non-empty.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, propertyID string, limit int) ([]ScoredChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	queryLimit := uint64(limit)
	queryReq := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &queryLimit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if propertyID != "" {
		queryReq.Filter = propertyFilter(propertyID, "")
	}

	scored, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", s.collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]ScoredChunk, 0, len(scored))
	for _, hit := range scored {
		id := ""
		if hit.Id != nil {
			id = hit.Id.GetUuid()
		}
		results = append(results, ScoredChunk{
			ID:         id,
			Similarity: hit.Score,
			Payload:    payloadFromQdrant(hit.Payload),
		})
	}

	logger.InfoContext(ctx, "search completed", "collection", s.collection, "limit", limit, "results", len(results))
	return results, nil
}

// DeleteByProperty removes all points for a property and returns the count.
func (s *QdrantStore) DeleteByProperty(ctx context.Context, propertyID string) (int, error) {
	return s.deleteByFilter(ctx, propertyFilter(propertyID, ""))
}

// DeleteByDocument removes all points for one document under a property and
// returns the count.
func (s *QdrantStore) DeleteByDocument(ctx context.Context, propertyID, documentName string) (int, error) {
	return s.deleteByFilter(ctx, propertyFilter(propertyID, documentName))
}

// deleteByFilter counts the matching points, then deletes them. The count and
// the delete are two calls, so points inserted in between may be missed from
// the reported count; the delete itself always covers the full filter.
func (s *QdrantStore) deleteByFilter(ctx context.Context, filter *qdrant.Filter) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	if count == 0 {
		return 0, nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", s.collection, "error", err)
		return 0, fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", s.collection, "count", count)
	return int(count), nil
}

func propertyFilter(propertyID, documentName string) *qdrant.Filter {
	must := []*qdrant.Condition{
		qdrant.NewMatch(payloadPropertyID, propertyID),
	}
	if documentName != "" {
		must = append(must, qdrant.NewMatch(payloadDocumentName, documentName))
	}
	return &qdrant.Filter{Must: must}
}

func payloadFromQdrant(values map[string]*qdrant.Value) Payload {
	var p Payload
	if v, ok := values[payloadPropertyID]; ok {
		p.PropertyID = v.GetStringValue()
	}
	if v, ok := values[payloadDocumentName]; ok {
		p.DocumentName = v.GetStringValue()
	}
	if v, ok := values[payloadChunkIndex]; ok {
		p.ChunkIndex = int(v.GetIntegerValue())
	}
	if v, ok := values[payloadText]; ok {
		p.Text = v.GetStringValue()
	}
	return p
}
