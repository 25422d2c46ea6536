package xref

import (
	"fmt"
	"unicode/utf8"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/mdast"
	"github.com/dgallion1/xrefmend/internal/plugin"
)

// Rule ids attached to the diagnostics of each edit.
const (
	RuleTrim   = "xref-prefix-trim"
	RuleInject = "xref-prefix-inject"
)

const (
	source = "xref-prefix"

	// Trailing characters of the edited text shown in a diagnostic.
	contextWidth = 30
)

// Transform removes prose words that duplicate the word rendered by the
// following cross-reference, e.g. "see Figure [Figure 1]" becomes
// "see [Figure 1]". When the reference renders a bare number the word is
// moved into the reference instead. Each edit is reported to file.
//
// Matching never crosses a paragraph and never looks inside code.
func Transform(tree *mdast.Node, file *diag.File) {
	for _, para := range mdast.SelectAll(tree, mdast.TypeParagraph) {
		for _, ref := range mdast.SelectAll(para, mdast.TypeCrossReference) {
			reconcile(para, ref, file)
		}
	}
	mdast.Remove(tree, mdast.Tombstone)
}

// Plugin registers Transform for the project stage.
func Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name:    "Cross-Reference Prefix Plugin",
		License: "MIT",
		Transforms: []plugin.TransformSpec{
			{Name: "Cross-Reference Prefix Transform", Stage: plugin.StageProject, Run: Transform},
		},
	}
}

func reconcile(para, ref *mdast.Node, file *diag.File) {
	p, ok := Lookup(ref.Kind)
	if !ok {
		return
	}
	action := p.decide(mdast.ToText(ref))
	if action == Skip {
		return
	}

	leaf, bridge, ok := Candidate(para, ref)
	if !ok {
		return
	}
	loc := p.Trailing.FindStringIndex(leaf.Value)
	if loc == nil {
		return
	}
	if loc[0] == 0 && continuesWord(para, leaf) || midWord(leaf.Value, loc[0]) {
		return
	}

	original := leaf.Value
	start := contextStart(original)
	gap := ""
	if bridge != nil {
		gap = " "
	}
	before := original[start:] + gap + refMarkup(ref)

	if action == Inject {
		word := mdast.Text(original[loc[0]:loc[1]] + gap)
		ref.Children = append([]*mdast.Node{word}, ref.Children...)
	}
	leaf.Value = original[:loc[0]] + original[loc[1]:]

	after := refMarkup(ref)
	if start < len(leaf.Value) {
		after = leaf.Value[start:] + after
	}

	rule := RuleTrim
	if action == Inject {
		rule = RuleInject
	}
	if file != nil {
		file.Info(rule, source, fmt.Sprintf("Rewrote cross-reference prefix:\n    Before: ...%s\n    After:  ...%s", before, after))
	}

	if bridge != nil {
		bridge.Type = mdast.Tombstone
	}
	if leaf.Value == "" {
		leaf.Type = mdast.Tombstone
	}
}

// contextStart returns the byte offset of the last contextWidth bytes of s,
// moved forward to a rune boundary.
func contextStart(s string) int {
	if len(s) < contextWidth {
		return 0
	}
	i := len(s) - contextWidth
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

func refMarkup(ref *mdast.Node) string {
	s := "[" + mdast.ToText(ref) + "]"
	if ref.Identifier != "" {
		s += "(" + ref.Identifier + ")"
	}
	return s
}
