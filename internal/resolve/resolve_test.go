package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/mdast"
)

func heading(depth int, id, text string) *mdast.Node {
	h := mdast.Parent(mdast.TypeHeading, mdast.Text(text))
	h.Depth = depth
	h.Identifier = id
	return h
}

func container(kind, id string) *mdast.Node {
	c := mdast.Parent(mdast.TypeContainer)
	c.Kind = kind
	c.Identifier = id
	return c
}

func ref(id string, children ...*mdast.Node) *mdast.Node {
	r := mdast.Parent(mdast.TypeCrossReference, children...)
	r.Identifier = id
	return r
}

func TestTransform_NumbersHeadings(t *testing.T) {
	a := ref("intro")
	b := ref("details")
	c := ref("later")
	tree := mdast.Parent(mdast.TypeRoot,
		heading(1, "intro", "Intro"),
		heading(2, "details", "Details"),
		heading(1, "later", "Later"),
		mdast.Parent(mdast.TypeParagraph, a, b, c),
	)

	New(nil).Transform(tree, diag.NewFile("doc.md", nil))

	for _, tt := range []struct {
		ref  *mdast.Node
		enum string
		text string
	}{
		{a, "1", "Section 1"},
		{b, "1.1", "Section 1.1"},
		{c, "2", "Section 2"},
	} {
		if !tt.ref.Resolved || tt.ref.Kind != "heading" {
			t.Errorf("%s: expected resolved heading, got resolved=%v kind=%q", tt.ref.Identifier, tt.ref.Resolved, tt.ref.Kind)
		}
		if tt.ref.Enumerator != tt.enum {
			t.Errorf("%s: expected enumerator %q, got %q", tt.ref.Identifier, tt.enum, tt.ref.Enumerator)
		}
		if got := mdast.ToText(tt.ref); got != tt.text {
			t.Errorf("%s: expected text %q, got %q", tt.ref.Identifier, tt.text, got)
		}
	}
}

func TestTransform_NumbersContainersPerKind(t *testing.T) {
	f2 := ref("fig-b")
	tb := ref("tbl-a")
	tree := mdast.Parent(mdast.TypeRoot,
		container("figure", "fig-a"),
		container("table", "tbl-a"),
		container("figure", "fig-b"),
		mdast.Parent(mdast.TypeParagraph, f2, tb),
	)

	New(nil).Transform(tree, nil)

	if got := mdast.ToText(f2); got != "Figure 2" {
		t.Errorf("expected %q, got %q", "Figure 2", got)
	}
	if got := mdast.ToText(tb); got != "Table 1" {
		t.Errorf("expected %q, got %q", "Table 1", got)
	}
}

func TestTransform_EquationTemplateSplitsNumber(t *testing.T) {
	r := ref("eq-energy")
	m := mdast.Parent(mdast.TypeMath)
	m.Kind = "equation"
	m.Identifier = "eq-energy"
	tree := mdast.Parent(mdast.TypeRoot, m, mdast.Parent(mdast.TypeParagraph, r))

	New(nil).Transform(tree, nil)

	if len(r.Children) != 3 {
		t.Fatalf("expected 3 label leaves, got %d", len(r.Children))
	}
	if r.Children[1].Value != "1" {
		t.Errorf("expected number leaf %q, got %q", "1", r.Children[1].Value)
	}
	if got := mdast.ToText(r); got != "(1)" {
		t.Errorf("expected %q, got %q", "(1)", got)
	}
}

func TestTransform_InfersKindFromIdentifier(t *testing.T) {
	a := ref("fig-one")
	b := ref("fig:two")
	again := ref("fig-one")
	tree := mdast.Parent(mdast.TypeRoot, mdast.Parent(mdast.TypeParagraph, a, b, again))

	New(nil).Transform(tree, nil)

	if a.Kind != "figure" || a.Enumerator != "1" {
		t.Errorf("expected figure 1, got %q %q", a.Kind, a.Enumerator)
	}
	if b.Kind != "figure" || b.Enumerator != "2" {
		t.Errorf("expected figure 2, got %q %q", b.Kind, b.Enumerator)
	}
	if again.Enumerator != "1" {
		t.Errorf("expected repeated reference to reuse enumerator 1, got %q", again.Enumerator)
	}
}

func TestTransform_KeepsAuthoredChildren(t *testing.T) {
	r := ref("fig-a", mdast.Text("the plot"))
	tree := mdast.Parent(mdast.TypeRoot,
		container("figure", "fig-a"),
		mdast.Parent(mdast.TypeParagraph, r),
	)

	New(nil).Transform(tree, nil)

	if got := mdast.ToText(r); got != "the plot" {
		t.Errorf("expected authored text kept, got %q", got)
	}
	if r.Enumerator != "1" || !r.Resolved {
		t.Errorf("expected enumerator 1 and resolved, got %q %v", r.Enumerator, r.Resolved)
	}
}

func TestTransform_SkipsAlreadyResolved(t *testing.T) {
	r := mdast.CrossReference("figure", "fig-x", "7", mdast.Text("Figure 7"))
	tree := mdast.Parent(mdast.TypeRoot,
		container("figure", "fig-x"),
		mdast.Parent(mdast.TypeParagraph, r),
	)

	New(nil).Transform(tree, nil)

	if r.Enumerator != "7" {
		t.Errorf("expected enumerator untouched, got %q", r.Enumerator)
	}
}

func TestTransform_Unresolved(t *testing.T) {
	r := ref("nowhere")
	tree := mdast.Parent(mdast.TypeRoot, mdast.Parent(mdast.TypeParagraph, r))
	file := diag.NewFile("doc.md", nil)

	New(nil).Transform(tree, file)

	if r.Resolved {
		t.Error("expected reference to stay unresolved")
	}
	if len(r.Children) != 0 {
		t.Errorf("expected no label, got %d children", len(r.Children))
	}
	if file.Count(RuleUnresolved) != 1 {
		t.Errorf("expected 1 unresolved warning, got %d", file.Count(RuleUnresolved))
	}
}

func TestNew_OverridesTemplates(t *testing.T) {
	r := New(map[string]string{"figure": "Fig. {number}", "proof": "Proof {number}"})
	if got := r.Template("figure"); got != "Fig. {number}" {
		t.Errorf("expected override, got %q", got)
	}
	if got := r.Template("equation"); got != "({number})" {
		t.Errorf("expected default kept, got %q", got)
	}
	if got := r.Template("unknown"); got != NumberPlaceholder {
		t.Errorf("expected bare placeholder, got %q", got)
	}
	if DefaultTemplates["figure"] != "Figure {number}" {
		t.Error("expected defaults unchanged")
	}
}

func TestLoadTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	data := "labels:\n  figure: \"Fig. {number}\"\n  table: \"Tab. {number}\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["figure"] != "Fig. {number}" || got["table"] != "Tab. {number}" {
		t.Errorf("unexpected templates: %v", got)
	}
}

func TestLoadTemplates_Errors(t *testing.T) {
	if _, err := LoadTemplates(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("labels: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplates(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestHeadingNumber_SkippedLevels(t *testing.T) {
	var levels [6]int
	if got := headingNumber(&levels, 2); got != "1" {
		t.Errorf("expected leading empty levels dropped, got %q", got)
	}
	if got := headingNumber(&levels, 3); got != "1.1" {
		t.Errorf("expected %q, got %q", "1.1", got)
	}
	if got := headingNumber(&levels, 1); got != "1" {
		t.Errorf("expected %q, got %q", "1", got)
	}
	if got := headingNumber(&levels, 2); got != "1.1" {
		t.Errorf("expected %q, got %q", "1.1", got)
	}
}
