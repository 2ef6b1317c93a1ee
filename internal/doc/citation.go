package doc

import (
	"github.com/yuin/goldmark/ast"
)

// KindCitationRef is the node kind of a structured citation reference.
var KindCitationRef = ast.NewNodeKind("CitationRef")

// CitationRef is the inline node a resolved link is replaced with. It
// carries only the final citation key; the bibliography owns the rest.
type CitationRef struct {
	ast.BaseInline
	Key string
}

// NewCitationRef creates a citation reference node for a key.
func NewCitationRef(key string) *CitationRef {
	return &CitationRef{Key: key}
}

// Kind implements ast.Node.
func (n *CitationRef) Kind() ast.NodeKind {
	return KindCitationRef
}

// Dump implements ast.Node.
func (n *CitationRef) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Key": n.Key}, nil)
}

// Marker renders the key in citation marker syntax.
func (n *CitationRef) Marker() string {
	return "[@" + n.Key + "]"
}
