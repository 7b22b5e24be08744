package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// NormalizeMarkdown strips markdown structure from content and returns plain
// text suitable for chunking. Headings, list items, paragraphs and table rows
// each end up on their own line so sentence boundaries survive for Split.
func NormalizeMarkdown(content string) string {
	source := []byte(content)
	doc := markdownParser.Parser().Parse(text.NewReader(source))

	var b strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			ensureNewline(&b)
			return ast.WalkContinue, nil
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			return ast.WalkContinue, nil
		case *ast.String:
			b.Write(node.Value)
			return ast.WalkContinue, nil
		case *ast.CodeBlock:
			ensureNewline(&b)
			writeLines(&b, node, source)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			ensureNewline(&b)
			writeLines(&b, node, source)
			return ast.WalkSkipChildren, nil
		}

		// Table rows from the table extension are flattened to "a | b | c"
		// lines; cells are visited through the generic text cases above.
		kind := n.Kind().String()
		if kind == "TableRow" || kind == "TableHeader" {
			ensureNewline(&b)
			writeTableRow(&b, n, source)
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func ensureNewline(b *strings.Builder) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
}

func writeLines(b *strings.Builder, n ast.Node, source []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
}

func writeTableRow(b *strings.Builder, row ast.Node, source []byte) {
	cells := 0
	_ = ast.Walk(row, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind().String() == "TableCell" {
			if cells > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(plainText(n, source))
			cells++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	b.WriteByte('\n')
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
