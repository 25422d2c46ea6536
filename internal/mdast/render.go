package mdast

import (
	"strconv"
	"strings"
)

// Render converts a tree back into Markdown. Block nodes are separated by
// blank lines; cross-references render as [label](#identifier).
func Render(n *Node) string {
	if n == nil {
		return ""
	}
	var blocks []string
	if n.Type == TypeRoot {
		for _, c := range n.Children {
			if b := renderBlock(c); b != "" {
				blocks = append(blocks, b)
			}
		}
	} else if b := renderBlock(n); b != "" {
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func renderBlock(n *Node) string {
	switch n.Type {
	case TypeParagraph:
		return renderInline(n.Children)
	case TypeHeading:
		depth := n.Depth
		if depth < 1 {
			depth = 1
		}
		h := strings.Repeat("#", depth) + " " + renderInline(n.Children)
		if n.ExplicitID && n.Identifier != "" {
			h += " {#" + n.Identifier + "}"
		}
		return h
	case TypeCode:
		info := n.Lang
		if n.Meta != "" {
			info += " " + n.Meta
		}
		return "```" + info + "\n" + n.Value + "\n```"
	case TypeMath:
		return "$$\n" + n.Value + "\n$$"
	case TypeThematicBreak:
		return "---"
	case TypeHTML:
		return n.Value
	case TypeBlockquote:
		inner := renderChildren(n.Children)
		lines := strings.Split(inner, "\n")
		for i, l := range lines {
			if l == "" {
				lines[i] = ">"
			} else {
				lines[i] = "> " + l
			}
		}
		return strings.Join(lines, "\n")
	case TypeList:
		var items []string
		for i, item := range n.Children {
			marker := "- "
			if n.Ordered {
				marker = strconv.Itoa(n.Start+i) + ". "
			}
			lines := strings.Split(renderChildren(item.Children), "\n")
			for j := 1; j < len(lines); j++ {
				if lines[j] != "" {
					lines[j] = strings.Repeat(" ", len(marker)) + lines[j]
				}
			}
			items = append(items, marker+strings.Join(lines, "\n"))
		}
		if n.Spread {
			return strings.Join(items, "\n\n")
		}
		return strings.Join(items, "\n")
	case TypeListItem:
		return "- " + renderChildren(n.Children)
	case TypeContainer, TypeTable:
		return renderChildren(n.Children)
	}
	if n.IsParent() {
		return renderInline(n.Children)
	}
	return renderInline([]*Node{n})
}

func renderChildren(children []*Node) string {
	var blocks []string
	for _, c := range children {
		if b := renderBlock(c); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderInline(nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case TypeText:
			sb.WriteString(n.Value)
		case TypeEmphasis:
			sb.WriteString("*" + renderInline(n.Children) + "*")
		case TypeStrong:
			sb.WriteString("**" + renderInline(n.Children) + "**")
		case TypeInlineCode:
			sb.WriteString("`" + n.Value + "`")
		case TypeBreak:
			sb.WriteString("  \n")
		case TypeCrossReference:
			sb.WriteString("[" + renderInline(n.Children) + "](#" + n.Identifier + ")")
		case TypeLink:
			sb.WriteString("[" + renderInline(n.Children) + "](" + n.URL + ")")
		case TypeImage:
			sb.WriteString("![" + n.Value + "](" + n.URL)
			if n.Title != "" {
				sb.WriteString(` "` + n.Title + `"`)
			}
			sb.WriteString(")")
		case TypeHTML:
			sb.WriteString(n.Value)
		default:
			if n.IsParent() {
				sb.WriteString(renderInline(n.Children))
			} else {
				sb.WriteString(n.Value)
			}
		}
	}
	return sb.String()
}
