// Package chunker splits document text into overlapping, boundary-snapped
// segments sized for the embedding model.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the maximum number of characters per chunk.
	DefaultChunkSize = 512
	// DefaultOverlap is the number of characters shared between adjacent chunks.
	DefaultOverlap = 50
)

// ErrInvalidConfig is returned when the chunking parameters cannot make progress.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Config holds chunking parameters.
type Config struct {
	// ChunkSize is the maximum chunk length in characters. Must be positive.
	ChunkSize int
	// Overlap is the number of trailing characters repeated at the start of the
	// next chunk. Must be non-negative and strictly less than ChunkSize,
	// otherwise the start cursor cannot advance.
	Overlap int
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Validate checks that the configuration allows the splitter to terminate.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be less than chunk size %d", ErrInvalidConfig, c.Overlap, c.ChunkSize)
	}
	return nil
}

// Split divides text into overlapping chunks of at most cfg.ChunkSize runes.
// When a window does not reach the end of the text, the cut is snapped back to
// the last sentence terminator or newline, provided that boundary lies past the
// window's midpoint. Chunks are whitespace-trimmed and empty results are
// dropped. Split is a pure function of its inputs.
func Split(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		} else if end < len(runes) {
			// Snap to a sentence or line boundary past the midpoint, as long
			// as the shortened window still advances the cursor past the
			// overlap region.
			if bp := lastBoundary(runes[start:end]); bp > cfg.ChunkSize/2 && bp+1 > cfg.Overlap {
				end = start + bp + 1
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		start = end - cfg.Overlap
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// lastBoundary returns the index of the last sentence terminator or newline in
// window, or -1 when none is present.
func lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}
