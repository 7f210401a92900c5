package indexer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table))

// MarkdownText flattens a markdown document to plain text.
// Each block becomes one paragraph; list items and table rows stay on
// consecutive lines so the splitter keeps them together where it can.
func MarkdownText(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	doc := markdownParser.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	lastWasLine := false
	emit := func(block string, line bool) {
		block = strings.TrimSpace(block)
		if block == "" {
			return
		}
		if b.Len() > 0 {
			if line && lastWasLine {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(block)
		lastWasLine = line
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Heading:
			emit(extractTextFromNode(v, content), false)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			if _, inList := n.Parent().(*ast.ListItem); inList {
				emit("- "+extractTextFromNode(n, content), true)
			} else {
				emit(extractTextFromNode(n, content), false)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			emit(blockLines(n, content), false)
			return ast.WalkSkipChildren, nil
		case *east.TableHeader, *east.TableRow:
			emit(extractTableRowText(n, content), true)
			return ast.WalkSkipChildren, nil
		case *east.Table:
			// Rows of a new table should not run into a preceding list.
			lastWasLine = false
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

// extractTextFromNode extracts text content from a node and its children.
func extractTextFromNode(n ast.Node, content []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			textBuilder.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				textBuilder.WriteByte(' ')
			}
		case *ast.String:
			textBuilder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(textBuilder.String())
}

// extractTableRowText extracts text from a table row, formatting cells with pipe separators.
func extractTableRowText(row ast.Node, content []byte) string {
	cells := make([]string, 0, row.ChildCount())
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); ok {
			cells = append(cells, extractTextFromNode(c, content))
		}
	}
	return strings.Join(cells, " | ")
}

func blockLines(n ast.Node, content []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(content))
	}
	return b.String()
}
