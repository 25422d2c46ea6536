package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// DOCXParser handles .docx files. Every run becomes its own text leaf so
// run boundaries survive into the tree; bold and italic runs are wrapped
// in strong and emphasis nodes.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*mdast.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	root := mdast.Parent(mdast.TypeRoot)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		children := docxInlines(para)
		if len(children) == 0 {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			h := mdast.Parent(mdast.TypeHeading, children...)
			h.Depth = level
			h.Identifier = slugify(mdast.ToText(h))
			root.Children = append(root.Children, h)
			continue
		}
		root.Children = append(root.Children, mdast.Parent(mdast.TypeParagraph, children...))
	}
	return root, nil
}

func docxInlines(para *docx.Paragraph) []*mdast.Node {
	var out []*mdast.Node
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			out = append(out, docxRun(c)...)
		case *docx.Hyperlink:
			out = append(out, docxRun(&c.Run)...)
		}
	}
	return out
}

// docxRun converts a run without merging it into its neighbours.
func docxRun(run *docx.Run) []*mdast.Node {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	nodes := splitInline(buf.String())
	if len(nodes) == 0 || run.RunProperties == nil {
		return nodes
	}
	if run.RunProperties.Italic != nil {
		nodes = []*mdast.Node{mdast.Parent(mdast.TypeEmphasis, nodes...)}
	}
	if run.RunProperties.Bold != nil {
		nodes = []*mdast.Node{mdast.Parent(mdast.TypeStrong, nodes...)}
	}
	return nodes
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") || len(style) != len("heading")+1 {
		return 0
	}
	level := int(style[len(style)-1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}

// slugify derives a heading identifier the way Markdown auto ids do.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == ' ' || r == '-' || r == '_':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
