package xref

import (
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// Candidate finds the text leaf holding the prose right before ref inside
// paragraph. A single-space leaf in between is returned as bridge and
// skipped over. ok is false when there is no usable text leaf.
func Candidate(paragraph, ref *mdast.Node) (leaf, bridge *mdast.Node, ok bool) {
	leaf = precedingText(paragraph, ref)
	if leaf == nil {
		return nil, nil, false
	}
	if leaf.Value == " " {
		bridge = leaf
		leaf = precedingText(paragraph, bridge)
		if leaf == nil {
			return nil, nil, false
		}
	}
	return leaf, bridge, true
}

// precedingText returns the last leaf before anchor if it is non-empty text.
// Code and tombstoned leaves are rejected by their type.
func precedingText(paragraph, anchor *mdast.Node) *mdast.Node {
	prev := mdast.FindBefore(paragraph, anchor)
	if prev.IsParent() {
		prev = mdast.LastLeaf(prev)
	}
	if prev == nil || prev.Type != mdast.TypeText || prev.Value == "" {
		return nil
	}
	return prev
}

// continuesWord reports whether the prose before leaf ends mid-word, i.e.
// leaf's first word is the tail of a word split across leaves.
func continuesWord(paragraph, leaf *mdast.Node) bool {
	prev := mdast.FindBefore(paragraph, leaf)
	if prev.IsParent() {
		prev = mdast.LastLeaf(prev)
	}
	if prev == nil || prev.Type != mdast.TypeText || prev.Value == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(prev.Value)
	return isWordRune(r)
}

// midWord reports whether s[i:] starts inside a word, i.e. both the rune
// before i and the rune at i are letters or digits.
func midWord(s string, i int) bool {
	if i <= 0 || i >= len(s) {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(s[:i])
	at, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(before) && isWordRune(at)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
