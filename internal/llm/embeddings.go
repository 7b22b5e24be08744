package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// EmbeddingsClient talks to an OpenAI-compatible /v1/embeddings endpoint.
// The vector dimensionality is fixed per model; every response is validated
// against Dimension so a misconfigured model fails loudly instead of filling
// the index with vectors the collection cannot hold.
type EmbeddingsClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	client    *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. dimension is the vector
// size the collection was created with.
func NewEmbeddingsClient(baseURL, apiKey, model string, dimension int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		Dimension: dimension,
		client:    http.DefaultClient,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
}

type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbedTexts returns one vector per input text, in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	body, err := json.Marshal(embeddingsRequest{Model: c.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	vectors := make([][]float32, len(parsed.Data))
	for i, data := range parsed.Data {
		if len(data.Embedding) != c.Dimension {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.Dimension)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}

	return vectors, nil
}
