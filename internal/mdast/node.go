package mdast

import (
	"errors"
	"fmt"
)

// Node types produced by the parsers and consumed by the transforms.
const (
	TypeRoot           = "root"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeText           = "text"
	TypeEmphasis       = "emphasis"
	TypeStrong         = "strong"
	TypeInlineCode     = "inlineCode"
	TypeCode           = "code"
	TypeLink           = "link"
	TypeImage          = "image"
	TypeCrossReference = "crossReference"
	TypeContainer      = "container"
	TypeBreak          = "break"
	TypeList           = "list"
	TypeListItem       = "listItem"
	TypeBlockquote     = "blockquote"
	TypeThematicBreak  = "thematicBreak"
	TypeHTML           = "html"
	TypeMath           = "math"
	TypeTable          = "table"

	// Tombstone marks a node for removal by Remove at the end of a pass.
	Tombstone = "__delete__"
)

// Node is a single element of a parsed document tree. Leaves carry Value,
// parents carry Children. Cross-reference fields are only set on
// crossReference nodes and on reference targets.
type Node struct {
	Type     string  `json:"type"`
	Value    string  `json:"value,omitempty"`
	Children []*Node `json:"children,omitempty"`

	Kind       string `json:"kind,omitempty"`       // figure, equation, heading, table, ...
	Identifier string `json:"identifier,omitempty"` // Target key
	Label      string `json:"label,omitempty"`      // Display key as written by the author
	Enumerator string `json:"enumerator,omitempty"` // Assigned number, e.g. "2.1"
	Resolved   bool   `json:"resolved,omitempty"`

	Depth      int  `json:"depth,omitempty"`      // Heading level
	ExplicitID bool `json:"explicitId,omitempty"` // Identifier was written as a {#id} attribute

	Ordered bool `json:"ordered,omitempty"` // Lists
	Start   int  `json:"start,omitempty"`   // First number of an ordered list
	Spread  bool `json:"spread,omitempty"`  // Items separated by blank lines

	Lang string `json:"lang,omitempty"` // Fenced code info string, split at the first space
	Meta string `json:"meta,omitempty"`

	URL   string `json:"url,omitempty"` // Links and images
	Title string `json:"title,omitempty"`
}

// Validate reports the first node under n, n included, that has no type or
// holds a nil child.
func Validate(n *Node) error {
	if n == nil {
		return errors.New("nil node")
	}
	if n.Type == "" {
		return errors.New("node without type")
	}
	for i, c := range n.Children {
		if c == nil {
			return fmt.Errorf("%s: child %d is null", n.Type, i)
		}
		if err := Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// IsParent reports whether n can hold children.
func (n *Node) IsParent() bool {
	return n != nil && n.Children != nil
}

// Text returns a text leaf.
func Text(value string) *Node {
	return &Node{Type: TypeText, Value: value}
}

// Parent returns a parent node of the given type. Children is never nil,
// even when no children are passed.
func Parent(typ string, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{Type: typ, Children: children}
}

// CrossReference returns a resolved crossReference node rendering children.
func CrossReference(kind, identifier, enumerator string, children ...*Node) *Node {
	n := Parent(TypeCrossReference, children...)
	n.Kind = kind
	n.Identifier = identifier
	n.Label = identifier
	n.Enumerator = enumerator
	n.Resolved = true
	return n
}
