package retrieval

import (
	"errors"

	"property-agent/internal/chunker"
)

var (
	// ErrInvalidConfiguration reports malformed chunking parameters. The call
	// fails before any embedding or index operation.
	ErrInvalidConfiguration = chunker.ErrInvalidConfig

	// ErrInvalidRequest reports a request missing required fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmbeddingUnavailable reports that the embedding backend is
	// unreachable or erroring. The engine does not retry; retry policy
	// belongs to the caller.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")

	// ErrIndexUnavailable reports that the vector index is unreachable.
	// Availability is re-checked on every call; nothing is cached.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
