package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// HTMLParser handles HTML files. Anchors pointing at a local fragment
// become cross-references; figures and tables with an id become targets.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*mdast.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	start := findBody(doc)
	if start == nil {
		start = doc
	}
	return mdast.Parent(mdast.TypeRoot, htmlBlocks(start)...), nil
}

// htmlBlocks converts the children of n. Runs of inline content between
// block elements are wrapped in a paragraph.
func htmlBlocks(n *html.Node) []*mdast.Node {
	var out, pending []*mdast.Node
	flush := func() {
		if p := htmlParagraph(pending); p != nil {
			out = append(out, p)
		}
		pending = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockElement(c.Data) {
			flush()
			out = append(out, htmlBlock(c)...)
			continue
		}
		pending = appendInlines(pending, htmlInline(c))
	}
	flush()
	return out
}

func htmlBlock(n *html.Node) []*mdast.Node {
	if level := headingLevel(n.Data); level > 0 {
		h := mdast.Parent(mdast.TypeHeading, trimInlines(htmlInlines(n))...)
		h.Depth = level
		h.Identifier = attr(n, "id")
		return []*mdast.Node{h}
	}

	switch n.Data {
	case "script", "style", "nav", "footer", "header", "head":
		return nil
	case "p":
		if p := htmlParagraph(htmlInlines(n)); p != nil {
			return []*mdast.Node{p}
		}
		return nil
	case "pre":
		return []*mdast.Node{{Type: mdast.TypeCode, Value: strings.TrimSuffix(textContent(n), "\n")}}
	case "hr":
		return []*mdast.Node{{Type: mdast.TypeThematicBreak}}
	case "blockquote":
		return []*mdast.Node{mdast.Parent(mdast.TypeBlockquote, htmlBlocks(n)...)}
	case "ul", "ol":
		list := mdast.Parent(mdast.TypeList)
		if n.Data == "ol" {
			list.Ordered = true
			list.Start = 1
			if v, err := strconv.Atoi(attr(n, "start")); err == nil {
				list.Start = v
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				list.Children = append(list.Children, mdast.Parent(mdast.TypeListItem, htmlBlocks(c)...))
			}
		}
		return []*mdast.Node{list}
	case "figure":
		fig := mdast.Parent(mdast.TypeContainer, htmlBlocks(n)...)
		if id := attr(n, "id"); id != "" {
			fig.Kind = "figure"
			fig.Identifier = id
		}
		return []*mdast.Node{fig}
	case "table":
		return []*mdast.Node{htmlTable(n)}
	}
	return htmlBlocks(n)
}

// htmlTable flattens each row into a paragraph of cells separated by " | ".
func htmlTable(n *html.Node) *mdast.Node {
	tbl := mdast.Parent(mdast.TypeTable)
	if id := attr(n, "id"); id != "" {
		tbl.Kind = "table"
		tbl.Identifier = id
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data != "tr" {
				walk(c)
				continue
			}
			var row []*mdast.Node
			first := true
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != html.ElementNode || (cell.Data != "td" && cell.Data != "th") {
					continue
				}
				if !first {
					row = appendText(row, " | ")
				}
				first = false
				row = appendInlines(row, trimInlines(htmlInlines(cell)))
			}
			if len(row) > 0 {
				tbl.Children = append(tbl.Children, mdast.Parent(mdast.TypeParagraph, row...))
			}
		}
	}
	walk(n)
	return tbl
}

func htmlInlines(n *html.Node) []*mdast.Node {
	var out []*mdast.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInlines(out, htmlInline(c))
	}
	return out
}

func htmlInline(n *html.Node) []*mdast.Node {
	switch n.Type {
	case html.TextNode:
		return []*mdast.Node{mdast.Text(collapseSpace(n.Data))}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style":
		return nil
	case "em", "i":
		return []*mdast.Node{mdast.Parent(mdast.TypeEmphasis, htmlInlines(n)...)}
	case "strong", "b":
		return []*mdast.Node{mdast.Parent(mdast.TypeStrong, htmlInlines(n)...)}
	case "code":
		return []*mdast.Node{{Type: mdast.TypeInlineCode, Value: textContent(n)}}
	case "br":
		return []*mdast.Node{{Type: mdast.TypeBreak}}
	case "img":
		return []*mdast.Node{{Type: mdast.TypeImage, Value: attr(n, "alt"), URL: attr(n, "src"), Title: attr(n, "title")}}
	case "a":
		href := attr(n, "href")
		if strings.HasPrefix(href, "#") && len(href) > 1 {
			ref := newReference(href[1:], "")
			ref.Children = append(ref.Children, htmlInlines(n)...)
			return []*mdast.Node{ref}
		}
		l := mdast.Parent(mdast.TypeLink, htmlInlines(n)...)
		l.URL = href
		l.Title = attr(n, "title")
		return []*mdast.Node{l}
	}
	return htmlInlines(n)
}

// htmlParagraph trims the run and returns nil when nothing but
// whitespace remains.
func htmlParagraph(nodes []*mdast.Node) *mdast.Node {
	nodes = trimInlines(nodes)
	if len(nodes) == 0 {
		return nil
	}
	return mdast.Parent(mdast.TypeParagraph, nodes...)
}

func appendInlines(dst, src []*mdast.Node) []*mdast.Node {
	for _, n := range src {
		if n.Type == mdast.TypeText {
			dst = appendText(dst, n.Value)
			continue
		}
		dst = append(dst, n)
	}
	return dst
}

// trimInlines strips leading and trailing whitespace from the outer text
// leaves of a run and drops leaves left empty.
func trimInlines(nodes []*mdast.Node) []*mdast.Node {
	if len(nodes) > 0 && nodes[0].Type == mdast.TypeText {
		nodes[0].Value = strings.TrimLeft(nodes[0].Value, " ")
		if nodes[0].Value == "" {
			nodes = nodes[1:]
		}
	}
	if n := len(nodes); n > 0 && nodes[n-1].Type == mdast.TypeText {
		nodes[n-1].Value = strings.TrimRight(nodes[n-1].Value, " ")
		if nodes[n-1].Value == "" {
			nodes = nodes[:n-1]
		}
	}
	return nodes
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func isBlockElement(tag string) bool {
	if headingLevel(tag) > 0 {
		return true
	}
	switch tag {
	case "p", "div", "section", "article", "main", "aside", "pre", "hr",
		"blockquote", "ul", "ol", "figure", "figcaption", "table",
		"script", "style", "nav", "footer", "header", "head", "body":
		return true
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
