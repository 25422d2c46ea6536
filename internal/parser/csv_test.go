package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

func TestCSVParser_Rows(t *testing.T) {
	input := "name,note\nalpha,see fig [](#fig-a)\nbeta,plain\n"
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader(input), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(tree.Children))
	}
	if got := mdast.ToText(tree.Children[1]); got != "name: beta, note: plain" {
		t.Errorf("expected %q, got %q", "name: beta, note: plain", got)
	}
	refs := mdast.SelectAll(tree, mdast.TypeCrossReference)
	if len(refs) != 1 || refs[0].Identifier != "fig-a" {
		t.Errorf("expected reference fig-a, got %+v", refs)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children, got %d", len(tree.Children))
	}
}
