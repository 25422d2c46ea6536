package resolve

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/mdast"
	"github.com/dgallion1/xrefmend/internal/plugin"
)

// RuleUnresolved tags the warning emitted for a reference without target.
const RuleUnresolved = "xref-unresolved"

// NumberPlaceholder is replaced by the enumerator in a label template.
const NumberPlaceholder = "{number}"

// DefaultTemplates are the label templates used for kinds not overridden.
var DefaultTemplates = map[string]string{
	"figure":      "Figure {number}",
	"equation":    "({number})",
	"subequation": "({number})",
	"heading":     "Section {number}",
	"table":       "Table {number}",
}

// Identifier prefixes that imply a kind, e.g. "fig-results" or "eq:energy".
var prefixKinds = map[string]string{
	"fig": "figure",
	"eq":  "equation",
	"tbl": "table",
	"tab": "table",
	"sec": "heading",
}

type target struct {
	kind       string
	enumerator string
}

// Resolver numbers reference targets and fills in cross-reference labels.
type Resolver struct {
	templates map[string]string
}

// New returns a Resolver whose templates override DefaultTemplates.
func New(templates map[string]string) *Resolver {
	t := make(map[string]string, len(DefaultTemplates)+len(templates))
	for k, v := range DefaultTemplates {
		t[k] = v
	}
	for k, v := range templates {
		t[k] = v
	}
	return &Resolver{templates: t}
}

// LoadTemplates reads a YAML mapping of kind to label template.
func LoadTemplates(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label templates: %w", err)
	}
	var doc struct {
		Labels map[string]string `yaml:"labels"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse label templates %s: %w", path, err)
	}
	return doc.Labels, nil
}

// Template returns the label template for kind.
func (r *Resolver) Template(kind string) string {
	if t, ok := r.templates[kind]; ok {
		return t
	}
	return NumberPlaceholder
}

// Plugin registers the resolver for the document stage.
func (r *Resolver) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "Reference Resolver",
		Transforms: []plugin.TransformSpec{
			{Name: "Reference Resolver", Stage: plugin.StageDocument, Run: r.Transform},
		},
	}
}

// Transform numbers headings and labelled targets, then resolves every
// cross-reference against them. References that already carry a kind and
// enumerator are left alone. Unknown targets whose identifier implies a
// kind are numbered in order of first reference.
func (r *Resolver) Transform(tree *mdast.Node, file *diag.File) {
	targets := collectTargets(tree)
	counts := make(map[string]int)
	for _, t := range targets {
		counts[t.kind]++
	}

	for _, ref := range mdast.SelectAll(tree, mdast.TypeCrossReference) {
		if ref.Resolved && ref.Kind != "" && ref.Enumerator != "" {
			continue
		}
		t, ok := targets[ref.Identifier]
		if !ok {
			kind := ref.Kind
			if kind == "" {
				kind = kindFromIdentifier(ref.Identifier)
			}
			if kind == "" || ref.Identifier == "" {
				ref.Resolved = false
				if file != nil {
					file.Warn(RuleUnresolved, "resolve", fmt.Sprintf("Cross-reference target not found: %q", ref.Identifier))
				}
				continue
			}
			counts[kind]++
			t = target{kind: kind, enumerator: strconv.Itoa(counts[kind])}
			targets[ref.Identifier] = t
		}

		if ref.Kind == "" {
			ref.Kind = t.kind
		}
		if ref.Label == "" {
			ref.Label = ref.Identifier
		}
		ref.Enumerator = t.enumerator
		ref.Resolved = true
		if len(ref.Children) == 0 {
			ref.Children = r.render(t.kind, t.enumerator)
		}
	}
}

// render builds label leaves from the template: text before the number,
// the number, text after it. Empty parts are omitted.
func (r *Resolver) render(kind, enumerator string) []*mdast.Node {
	tmpl := r.Template(kind)
	before, after, found := strings.Cut(tmpl, NumberPlaceholder)
	if !found {
		return []*mdast.Node{mdast.Text(tmpl)}
	}
	var out []*mdast.Node
	if before != "" {
		out = append(out, mdast.Text(before))
	}
	out = append(out, mdast.Text(enumerator))
	if after != "" {
		out = append(out, mdast.Text(after))
	}
	return out
}

// collectTargets numbers headings hierarchically and other labelled nodes
// per kind, in document order.
func collectTargets(tree *mdast.Node) map[string]target {
	targets := make(map[string]target)
	var levels [6]int
	perKind := make(map[string]int)

	var walk func(n *mdast.Node)
	walk = func(n *mdast.Node) {
		for _, c := range n.Children {
			switch c.Type {
			case mdast.TypeHeading:
				enum := headingNumber(&levels, c.Depth)
				if c.Identifier != "" {
					c.Enumerator = enum
					targets[c.Identifier] = target{kind: "heading", enumerator: enum}
				}
			case mdast.TypeContainer, mdast.TypeMath, mdast.TypeTable:
				if c.Identifier != "" && c.Kind != "" {
					perKind[c.Kind]++
					c.Enumerator = strconv.Itoa(perKind[c.Kind])
					targets[c.Identifier] = target{kind: c.Kind, enumerator: c.Enumerator}
				}
			}
			walk(c)
		}
	}
	if tree != nil {
		walk(tree)
	}
	return targets
}

func headingNumber(levels *[6]int, depth int) string {
	if depth < 1 {
		depth = 1
	}
	if depth > len(levels) {
		depth = len(levels)
	}
	levels[depth-1]++
	for i := depth; i < len(levels); i++ {
		levels[i] = 0
	}
	first := 0
	for first < depth-1 && levels[first] == 0 {
		first++
	}
	parts := make([]string, 0, depth-first)
	for i := first; i < depth; i++ {
		parts = append(parts, strconv.Itoa(levels[i]))
	}
	return strings.Join(parts, ".")
}

func kindFromIdentifier(id string) string {
	i := strings.IndexAny(id, "-:")
	if i <= 0 {
		return ""
	}
	return prefixKinds[strings.ToLower(id[:i])]
}
