package doc

import (
	"sort"

	"github.com/yuin/goldmark/ast"

	"github.com/matsen/refmark/internal/ident"
)

// ReplaceResult accounts for every substitution the engine performed.
// CountByURL is keyed by normalized link target, so the caller can detect a
// ReplacementMiss: a resolved URL with a zero count was never found as a
// link node in the tree.
type ReplaceResult struct {
	Replaced   int
	CountByURL map[string]int
}

// Misses returns the normalized URLs that resolved to a key but were never
// replaced, sorted for stable reporting.
func (r *ReplaceResult) Misses() []string {
	var misses []string
	for url, count := range r.CountByURL {
		if count == 0 {
			misses = append(misses, url)
		}
	}
	sort.Strings(misses)
	return misses
}

// ReplaceLinks walks the tree once, depth-first, and replaces every link
// node whose normalized target has an entry in keyByURL with a single
// CitationRef node carrying the final key. Link targets are normalized with
// the same function the matcher's plain-URL strategy uses, so the two can
// never disagree about what counts as the same URL.
//
// Links without a map entry are not citations and are left untouched. A
// link whose byte span cannot be recovered from the source is skipped (and
// therefore shows up in the caller's miss accounting) rather than being
// replaced inconsistently.
func (d *Document) ReplaceLinks(keyByURL map[string]string) *ReplaceResult {
	result := &ReplaceResult{CountByURL: make(map[string]int)}
	for url := range keyByURL {
		result.CountByURL[url] = 0
	}

	// Collect first, replace after: mutating the tree mid-walk would skip
	// siblings.
	type candidate struct {
		link *ast.Link
		url  string
		key  string
	}
	var candidates []candidate

	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		url := ident.NormalizeURL(string(link.Destination))
		key, resolved := keyByURL[url]
		if !resolved {
			return ast.WalkContinue, nil
		}
		candidates = append(candidates, candidate{link: link, url: url, key: key})
		return ast.WalkSkipChildren, nil
	})

	for _, c := range candidates {
		start, stop, ok := d.linkSpan(c.link)
		if !ok {
			continue
		}

		parent := c.link.Parent()
		if parent == nil {
			continue
		}
		parent.ReplaceChild(parent, c.link, NewCitationRef(c.key))

		d.replacements = append(d.replacements, span{start: start, stop: stop, key: c.key})
		result.Replaced++
		result.CountByURL[c.url]++
	}

	return result
}

// linkSpan recovers the full byte span of a link's markup, `[text](dest)`,
// from the segments of its text descendants. The display text may span
// multiple adjacent inline nodes (emphasis, code); the span covers the whole
// contiguous run. Returns ok=false when the markup cannot be located.
func (d *Document) linkSpan(link *ast.Link) (int, int, bool) {
	texts := textNodes(link)
	if len(texts) == 0 {
		return 0, 0, false
	}
	first := texts[0].Segment.Start
	last := texts[len(texts)-1].Segment.Stop

	// Walk back over inline formatting markers to the opening bracket.
	i := first - 1
	for i >= 0 && isInlineMarker(d.source[i]) {
		i--
	}
	if i < 0 || d.source[i] != '[' {
		return 0, 0, false
	}

	// Walk forward over formatting markers to the closing bracket.
	j := last
	for j < len(d.source) && isInlineMarker(d.source[j]) {
		j++
	}
	if j >= len(d.source) || d.source[j] != ']' {
		return 0, 0, false
	}
	j++
	if j >= len(d.source) || d.source[j] != '(' {
		return 0, 0, false
	}
	for k := j + 1; k < len(d.source); k++ {
		if d.source[k] == ')' {
			return i, k + 1, true
		}
	}
	return 0, 0, false
}

func isInlineMarker(b byte) bool {
	return b == '*' || b == '_' || b == '`' || b == '~'
}

// Render serializes the document back to markdown. Unreplaced content is
// emitted byte-for-byte from the original source; each replaced link span
// becomes its citation marker.
func (d *Document) Render() []byte {
	if len(d.replacements) == 0 {
		out := make([]byte, len(d.source))
		copy(out, d.source)
		return out
	}

	spans := make([]span, len(d.replacements))
	copy(spans, d.replacements)
	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })

	var out []byte
	prev := 0
	for _, s := range spans {
		out = append(out, d.source[prev:s.start]...)
		out = append(out, []byte("[@"+s.key+"]")...)
		prev = s.stop
	}
	out = append(out, d.source[prev:]...)
	return out
}

// CitationKeys returns the keys of all citation nodes in the tree, in
// document order.
func (d *Document) CitationKeys() []string {
	var keys []string
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if c, ok := n.(*CitationRef); ok {
			keys = append(keys, c.Key)
		}
		return ast.WalkContinue, nil
	})
	return keys
}

// LinkTargets returns the normalized targets of all remaining link nodes.
func (d *Document) LinkTargets() []string {
	var targets []string
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			targets = append(targets, ident.NormalizeURL(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
	return targets
}
