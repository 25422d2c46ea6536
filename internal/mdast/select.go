package mdast

import "strings"

// SelectAll returns every descendant of root with the given type in
// document order. Root itself is not included.
func SelectAll(root *Node, typ string) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.Type == typ {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// FindBefore returns the node immediately preceding target in document
// order without leaving within: the previous sibling of target, or of the
// nearest ancestor that has one. It returns nil when target is the first
// node of within or is not inside it.
func FindBefore(within, target *Node) *Node {
	path := pathTo(within, target)
	if path == nil {
		return nil
	}
	// path[0] is within, path[len-1] is target.
	for i := len(path) - 1; i > 0; i-- {
		parent, child := path[i-1], path[i]
		idx := indexOf(parent.Children, child)
		if idx > 0 {
			return parent.Children[idx-1]
		}
	}
	return nil
}

// LastLeaf descends through last children until it reaches a node that is
// not a parent. A parent with no children yields nil.
func LastLeaf(n *Node) *Node {
	for n != nil && n.IsParent() {
		if len(n.Children) == 0 {
			return nil
		}
		n = n.Children[len(n.Children)-1]
	}
	return n
}

// ToText concatenates the values of all leaves under n in document order.
func ToText(n *Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.IsParent() {
			sb.WriteString(n.Value)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Remove deletes every node of the given type below root. A parent left
// without children by the removal is deleted too. Root is never removed.
func Remove(root *Node, typ string) {
	if root == nil {
		return
	}
	removeFrom(root, typ)
}

// removeFrom filters n's children and reports whether n itself should go.
func removeFrom(n *Node, typ string) bool {
	if n.Type == typ {
		return true
	}
	if !n.IsParent() || len(n.Children) == 0 {
		return false
	}
	kept := n.Children[:0]
	for _, c := range n.Children {
		if !removeFrom(c, typ) {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	emptied := len(kept) == 0
	n.Children = kept
	return emptied
}

func pathTo(root, target *Node) []*Node {
	if root == nil || target == nil {
		return nil
	}
	if root == target {
		return []*Node{root}
	}
	for _, c := range root.Children {
		if p := pathTo(c, target); p != nil {
			return append([]*Node{root}, p...)
		}
	}
	return nil
}

func indexOf(nodes []*Node, n *Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}
