package chunker

import (
	"strings"
	"testing"
)

func TestNormalizeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "headings stripped",
			input:    "# Floor Plan\n\nThree bedrooms upstairs.",
			contains: []string{"Floor Plan", "Three bedrooms upstairs."},
			excludes: []string{"#"},
		},
		{
			name:     "list items on own lines",
			input:    "Amenities:\n\n- Pool\n- Gym\n- Parking",
			contains: []string{"Pool", "Gym", "Parking"},
			excludes: []string{"- "},
		},
		{
			name:     "table flattened",
			input:    "| Room | Size |\n|---|---|\n| Kitchen | 12x14 |",
			contains: []string{"Room | Size", "Kitchen | 12x14"},
		},
		{
			name:     "emphasis removed",
			input:    "The unit is **fully furnished** and *available now*.",
			contains: []string{"fully furnished", "available now"},
			excludes: []string{"*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMarkdown(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("NormalizeMarkdown() = %q, missing %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("NormalizeMarkdown() = %q, should not contain %q", got, bad)
				}
			}
		})
	}
}

func TestNormalizeMarkdownEmpty(t *testing.T) {
	if got := NormalizeMarkdown(""); got != "" {
		t.Errorf("NormalizeMarkdown(\"\") = %q, want empty", got)
	}
}

func TestNormalizeMarkdownPlainTextPassthrough(t *testing.T) {
	input := "Just a plain sentence. And another one."
	got := NormalizeMarkdown(input)
	if !strings.Contains(got, "Just a plain sentence.") || !strings.Contains(got, "And another one.") {
		t.Errorf("NormalizeMarkdown() = %q, plain text should survive", got)
	}
}
