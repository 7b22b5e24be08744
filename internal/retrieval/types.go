package retrieval

// IngestRequest describes one document to index for a property.
type IngestRequest struct {
	// PropertyID partitions the index; search never crosses properties.
	PropertyID string `json:"property_id"`
	// DocumentName identifies the document within the property.
	DocumentName string `json:"document_name"`
	// Text is the raw document content.
	Text string `json:"text"`
	// Markdown marks the text as markdown; it is flattened to plain text
	// before chunking.
	Markdown bool `json:"markdown,omitempty"`
}

// IngestResult reports what an ingest call changed.
type IngestResult struct {
	PropertyID     string `json:"property_id"`
	DocumentName   string `json:"document_name"`
	ChunksInserted int    `json:"chunks_inserted"`
	// ChunksReplaced is the number of chunks from a previous ingest of the
	// same document that were removed before inserting.
	ChunksReplaced int `json:"chunks_replaced"`
}

// SearchRequest describes a retrieval query.
type SearchRequest struct {
	// Query is the search text. It may be empty; the embedder decides what an
	// empty query means.
	Query string `json:"query"`
	// PropertyID optionally scopes the search to one property.
	PropertyID string `json:"property_id,omitempty"`
	// Limit caps the result count. Zero means the default; values above the
	// engine maximum are clamped.
	Limit int `json:"limit,omitempty"`
}

// SearchResult is one ranked chunk.
type SearchResult struct {
	Text         string `json:"text"`
	DocumentName string `json:"document_name"`
	ChunkIndex   int    `json:"chunk_index"`
	// Similarity is the raw cosine similarity from the index, in [-1, 1].
	Similarity float32 `json:"similarity"`
	// Score maps Similarity to [0, 1] via (s+1)/2, clamped; 1 is a perfect
	// match.
	Score float64 `json:"score"`
}

// Search statuses. An empty result set is not an error; the status lets
// callers tell "nothing indexed" apart from a degraded backend, which is
// reported as an error instead.
const (
	StatusOK        = "ok"
	StatusNoResults = "no_results"
)

// SearchResponse is an ordered result list, most relevant first.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Status  string         `json:"status"`
}

// DeleteResult reports how many chunks a property deletion removed.
type DeleteResult struct {
	PropertyID string `json:"property_id"`
	Deleted    int    `json:"deleted"`
}
