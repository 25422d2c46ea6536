package parser

import (
	"regexp"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// refSyntax matches the inline cross-reference form [label](#identifier).
var refSyntax = regexp.MustCompile(`\[([^\]]*)\]\(#([^)\s]+)\)`)

// splitInline breaks s into text leaves and crossReference nodes. A
// reference with an empty label gets no children so the resolver can
// fill one in.
func splitInline(s string) []*mdast.Node {
	if s == "" {
		return nil
	}
	var out []*mdast.Node
	last := 0
	for _, m := range refSyntax.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			out = append(out, mdast.Text(s[last:m[0]]))
		}
		out = append(out, newReference(s[m[4]:m[5]], s[m[2]:m[3]]))
		last = m[1]
	}
	if last < len(s) {
		out = append(out, mdast.Text(s[last:]))
	}
	return out
}

func newReference(identifier, label string) *mdast.Node {
	ref := mdast.Parent(mdast.TypeCrossReference)
	ref.Identifier = identifier
	ref.Label = identifier
	if label != "" {
		ref.Children = append(ref.Children, mdast.Text(label))
	}
	return ref
}

// paragraph builds a paragraph from raw text, splitting inline references.
func paragraph(s string) *mdast.Node {
	return mdast.Parent(mdast.TypeParagraph, splitInline(s)...)
}

// appendText adds a text leaf to nodes, merging with a trailing text leaf.
func appendText(nodes []*mdast.Node, s string) []*mdast.Node {
	if s == "" {
		return nodes
	}
	if n := len(nodes); n > 0 && nodes[n-1].Type == mdast.TypeText {
		nodes[n-1].Value += s
		return nodes
	}
	return append(nodes, mdast.Text(s))
}
