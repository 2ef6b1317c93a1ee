// Package doc wraps the parsed markdown tree: mention extraction, citation
// replacement, and serialization back to markdown.
//
// Replacement works on typed AST nodes, never on raw character scanning:
// link nodes are identified by the parser, and only the byte spans of
// replaced links are touched when the document is rendered, so all
// non-citation content round-trips exactly.
package doc

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is a parsed markdown document plus its source bytes. The tree
// references spans of the source; the source is never mutated.
type Document struct {
	root   ast.Node
	source []byte

	// Byte spans of replaced links, recorded by ReplaceLinks and consumed
	// by Render.
	replacements []span
}

type span struct {
	start int
	stop  int
	key   string
}

// Parse parses markdown source into a document tree.
func Parse(source []byte) *Document {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))
	return &Document{root: root, source: source}
}

// Root exposes the underlying tree, mainly for tests and tree inspection.
func (d *Document) Root() ast.Node {
	return d.root
}

// nodeText concatenates the plain text content under a node.
func (d *Document) nodeText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(d.source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// textNodes collects the *ast.Text descendants of a node in document order.
func textNodes(n ast.Node) []*ast.Text {
	var texts []*ast.Text
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			texts = append(texts, t)
		}
		return ast.WalkContinue, nil
	})
	return texts
}
