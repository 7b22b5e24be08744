package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestPropertyFilter(t *testing.T) {
	f := propertyFilter("prop-1", "")
	if len(f.Must) != 1 {
		t.Fatalf("expected 1 condition for property-only filter, got %d", len(f.Must))
	}

	f = propertyFilter("prop-1", "brochure.md")
	if len(f.Must) != 2 {
		t.Fatalf("expected 2 conditions for property+document filter, got %d", len(f.Must))
	}
}

func TestPayloadFromQdrant(t *testing.T) {
	values := qdrant.NewValueMap(map[string]any{
		payloadPropertyID:   "prop-9",
		payloadDocumentName: "amenities",
		payloadChunkIndex:   int64(3),
		payloadText:         "rooftop pool and gym",
	})

	p := payloadFromQdrant(values)
	if p.PropertyID != "prop-9" {
		t.Errorf("PropertyID = %q", p.PropertyID)
	}
	if p.DocumentName != "amenities" {
		t.Errorf("DocumentName = %q", p.DocumentName)
	}
	if p.ChunkIndex != 3 {
		t.Errorf("ChunkIndex = %d", p.ChunkIndex)
	}
	if p.Text != "rooftop pool and gym" {
		t.Errorf("Text = %q", p.Text)
	}
}

func TestPayloadFromQdrantMissingFields(t *testing.T) {
	p := payloadFromQdrant(map[string]*qdrant.Value{})
	if p.PropertyID != "" || p.ChunkIndex != 0 {
		t.Errorf("expected zero payload, got %+v", p)
	}
}
