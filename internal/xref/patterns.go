package xref

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Words that may precede a reference of each kind and duplicate its label.
// fig, figs, figure, figures, fig., figs. for figures; eq, eqs, eqn, eqns,
// equation, equations, eq., eqs., eqn., eqns. for equations.
var prefixWords = map[string]string{
	"figure":      `fig(?:s|ures?|s?\.)?`,
	"equation":    `eq(?:s|ns?|uations?|n?s?\.)?`,
	"subequation": `eq(?:s|ns?|uations?|n?s?\.)?`,
	"heading":     `sections?`,
}

// Label starts accepted besides the kind's first two letters. Equation
// labels render as "(1)"; headings always qualify.
var altStarts = map[string]string{
	"equation":    "(",
	"subequation": "(",
	"heading":     "",
}

// Pattern describes what counts as a redundant prefix for one kind.
type Pattern struct {
	Kind          string
	Trailing      *regexp.Regexp // Matches the prefix at the end of prose text
	ExpectedStart string         // Lower-cased start of a label that already names the kind
	AltStart      string
	HasAlt        bool
}

var (
	builtin = compileBuiltin()
	generic sync.Map // kind -> Pattern
)

func compileBuiltin() map[string]Pattern {
	out := make(map[string]Pattern, len(prefixWords))
	for kind, words := range prefixWords {
		out[kind] = newPattern(kind, words)
	}
	return out
}

// newPattern compiles the trailing pattern for kind. RE2's \b only knows
// ASCII word characters, so it is used only when kind starts with one;
// other kinds rely on the mid-word check in the mutator.
func newPattern(kind, words string) Pattern {
	alt, hasAlt := altStarts[kind]
	boundary := ""
	if kind != "" && isASCIIWord(kind[0]) {
		boundary = `\b`
	}
	return Pattern{
		Kind:          kind,
		Trailing:      regexp.MustCompile(`(?i)` + boundary + words + ` {0,2}$`),
		ExpectedStart: expectedStart(kind),
		AltStart:      alt,
		HasAlt:        hasAlt,
	}
}

func isASCIIWord(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func expectedStart(kind string) string {
	if kind == "subequation" {
		return "eq"
	}
	r := []rune(strings.ToLower(kind))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// Lookup returns the pattern for kind. Kinds without a built-in entry get
// the generic rule: the kind word itself, optionally plural.
func Lookup(kind string) (Pattern, bool) {
	if kind == "" {
		return Pattern{}, false
	}
	if p, ok := builtin[kind]; ok {
		return p, true
	}
	if p, ok := generic.Load(kind); ok {
		return p.(Pattern), true
	}
	p := newPattern(kind, regexp.QuoteMeta(kind)+`s?`)
	generic.Store(kind, p)
	return p, true
}

// Kinds lists the kinds with built-in prefix words.
func Kinds() []string {
	kinds := make([]string, 0, len(builtin))
	for k := range builtin {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
