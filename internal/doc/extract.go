package doc

import (
	"github.com/yuin/goldmark/ast"

	"github.com/matsen/refmark/internal/mention"
)

// ExtractMentions walks the tree and returns one candidate mention per
// inline link, in document order. Bare autolinks are not mentions: a
// mention needs display text to parse an author/year from, and an autolink
// left alone is just an ordinary hyperlink.
func (d *Document) ExtractMentions() []mention.Mention {
	var mentions []mention.Mention
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		mentions = append(mentions, mention.New(d.nodeText(link), string(link.Destination)))
		return ast.WalkSkipChildren, nil
	})
	return mentions
}
