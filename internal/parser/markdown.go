package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// MarkdownParser handles Markdown files using goldmark. Links to a local
// fragment become cross-references; a paragraph holding only a titled
// image becomes a figure target keyed by the title.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*mdast.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithParserOptions(
		gmparser.WithAutoHeadingID(),
		gmparser.WithAttribute(),
	))
	doc := md.Parser().Parse(text.NewReader(src))

	c := &mdConverter{src: src}
	root := mdast.Parent(mdast.TypeRoot)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			root.Children = append(root.Children, b)
		}
	}
	return root, nil
}

type mdConverter struct {
	src []byte
}

func (c *mdConverter) block(n ast.Node) *mdast.Node {
	switch node := n.(type) {
	case *ast.Heading:
		h := mdast.Parent(mdast.TypeHeading, c.inlines(node)...)
		h.Depth = node.Level
		if id, ok := node.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				h.Identifier = string(b)
				h.ExplicitID = c.explicitID(node, b)
			}
		}
		return h

	case *ast.Paragraph, *ast.TextBlock:
		if fig := c.figure(node); fig != nil {
			return fig
		}
		return mdast.Parent(mdast.TypeParagraph, c.inlines(node)...)

	case *ast.FencedCodeBlock:
		code := &mdast.Node{Type: mdast.TypeCode, Value: strings.TrimSuffix(c.lines(node), "\n")}
		if node.Info != nil {
			info := strings.TrimSpace(string(node.Info.Segment.Value(c.src)))
			code.Lang, code.Meta, _ = strings.Cut(info, " ")
			code.Meta = strings.TrimSpace(code.Meta)
		}
		return code

	case *ast.CodeBlock:
		return &mdast.Node{Type: mdast.TypeCode, Value: strings.TrimSuffix(c.lines(node), "\n")}

	case *ast.HTMLBlock:
		return &mdast.Node{Type: mdast.TypeHTML, Value: strings.TrimSuffix(c.lines(node), "\n")}

	case *ast.ThematicBreak:
		return &mdast.Node{Type: mdast.TypeThematicBreak}

	case *ast.Blockquote:
		return mdast.Parent(mdast.TypeBlockquote, c.blocks(node)...)

	case *ast.List:
		list := mdast.Parent(mdast.TypeList, c.blocks(node)...)
		list.Ordered = node.IsOrdered()
		list.Start = node.Start
		list.Spread = !node.IsTight
		return list

	case *ast.ListItem:
		return mdast.Parent(mdast.TypeListItem, c.blocks(node)...)
	}

	// Unknown blocks keep their children when they have any.
	if n.HasChildren() {
		return mdast.Parent(mdast.TypeParagraph, c.inlines(n)...)
	}
	return nil
}

// explicitID reports whether id was written as a {#id} attribute after the
// heading text rather than generated from it.
func (c *mdConverter) explicitID(h *ast.Heading, id []byte) bool {
	lines := h.Lines()
	if lines.Len() == 0 {
		return false
	}
	rest := c.src[lines.At(lines.Len()-1).Stop:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return bytes.Contains(rest, []byte("{")) && bytes.Contains(rest, append([]byte("#"), id...))
}

func (c *mdConverter) blocks(n ast.Node) []*mdast.Node {
	var out []*mdast.Node
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if b := c.block(ch); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// figure returns a container when the paragraph is a single titled image.
func (c *mdConverter) figure(n ast.Node) *mdast.Node {
	if n.ChildCount() != 1 {
		return nil
	}
	img, ok := n.FirstChild().(*ast.Image)
	if !ok || len(img.Title) == 0 {
		return nil
	}
	fig := mdast.Parent(mdast.TypeContainer, c.inline(img)...)
	fig.Kind = "figure"
	fig.Identifier = string(img.Title)
	return fig
}

func (c *mdConverter) inlines(n ast.Node) []*mdast.Node {
	var out []*mdast.Node
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		for _, conv := range c.inline(ch) {
			if conv.Type == mdast.TypeText {
				out = appendText(out, conv.Value)
			} else {
				out = append(out, conv)
			}
		}
	}
	return out
}

func (c *mdConverter) inline(n ast.Node) []*mdast.Node {
	switch node := n.(type) {
	case *ast.Text:
		v := string(node.Value(c.src))
		if node.SoftLineBreak() {
			v += "\n"
		}
		out := []*mdast.Node{mdast.Text(v)}
		if node.HardLineBreak() {
			out = append(out, &mdast.Node{Type: mdast.TypeBreak})
		}
		return out

	case *ast.String:
		return []*mdast.Node{mdast.Text(string(node.Value))}

	case *ast.Emphasis:
		typ := mdast.TypeEmphasis
		if node.Level >= 2 {
			typ = mdast.TypeStrong
		}
		return []*mdast.Node{mdast.Parent(typ, c.inlines(node)...)}

	case *ast.CodeSpan:
		return []*mdast.Node{{Type: mdast.TypeInlineCode, Value: c.plain(node)}}

	case *ast.Link:
		dest := string(node.Destination)
		if strings.HasPrefix(dest, "#") && len(dest) > 1 {
			ref := newReference(dest[1:], "")
			ref.Children = append(ref.Children, c.inlines(node)...)
			return []*mdast.Node{ref}
		}
		l := mdast.Parent(mdast.TypeLink, c.inlines(node)...)
		l.URL = dest
		l.Title = string(node.Title)
		return []*mdast.Node{l}

	case *ast.Image:
		return []*mdast.Node{{
			Type:  mdast.TypeImage,
			Value: c.plain(node),
			URL:   string(node.Destination),
			Title: string(node.Title),
		}}

	case *ast.AutoLink:
		url := string(node.URL(c.src))
		l := mdast.Parent(mdast.TypeLink, mdast.Text(string(node.Label(c.src))))
		l.URL = url
		return []*mdast.Node{l}

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		return []*mdast.Node{{Type: mdast.TypeHTML, Value: buf.String()}}
	}
	return c.inlines(n)
}

// plain concatenates the text of all descendants of n.
func (c *mdConverter) plain(n ast.Node) string {
	var buf bytes.Buffer
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch t := ch.(type) {
		case *ast.Text:
			buf.Write(t.Value(c.src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(c.plain(ch))
		}
	}
	return buf.String()
}

func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return buf.String()
}
