package xref

import (
	"regexp"
	"strings"
)

// Action is the edit chosen for a reference.
type Action int

const (
	Skip   Action = iota
	Trim          // Label already names the kind; drop the prose word.
	Inject        // Label is a bare number; move the prose word into it.
)

func (a Action) String() string {
	switch a {
	case Trim:
		return "trim"
	case Inject:
		return "inject"
	}
	return "skip"
}

var bareEnumerator = regexp.MustCompile(`^[0-9]+[a-z0-9.]*$`)

// Decide picks the action for a reference of kind rendering label.
func Decide(kind, label string) Action {
	p, ok := Lookup(kind)
	if !ok {
		return Skip
	}
	return p.decide(label)
}

func (p Pattern) decide(label string) Action {
	if p.Trailing == nil || p.ExpectedStart == "" || label == "" {
		return Skip
	}
	lower := strings.ToLower(label)
	if strings.HasPrefix(lower, p.ExpectedStart) || (p.HasAlt && strings.HasPrefix(lower, p.AltStart)) {
		return Trim
	}
	if bareEnumerator.MatchString(lower) {
		return Inject
	}
	return Skip
}
