package corpus

import (
	"github.com/antchfx/xpath"
	"github.com/npillmayer/fontdiff/core"
)

// NodeNavigator implements xpath.NodeNavigator for an XML document tree.
//
// For a description of the various methods of interface xpath.NodeNavigator
// please refer to the documentation of antchfx/xpath. It is not replicated here.
type NodeNavigator struct {
	root, current *Node
	attr          int // attributes index, -1 if positioned on a node
}

// NewNavigator creates a new xpath.NodeNavigator for a document tree.
func NewNavigator(node *Node) *NodeNavigator {
	return &NodeNavigator{
		current: node,
		root:    node,
		attr:    -1,
	}
}

// Current returns the node the navigator is positioned on.
func (nav *NodeNavigator) Current() *Node {
	return nav.current
}

func (nav *NodeNavigator) NodeType() xpath.NodeType {
	switch nav.current.Type {
	case CommentNode:
		return xpath.CommentNode
	case TextNode:
		return xpath.TextNode
	case ElementNode:
		if nav.attr != -1 {
			return xpath.AttributeNode
		}
		return xpath.ElementNode
	}
	return xpath.RootNode
}

func (nav *NodeNavigator) LocalName() string {
	if nav.attr != -1 {
		return nav.current.Attr[nav.attr].Name.Local
	}
	return nav.current.Name.Local
}

// Prefix is always empty: names are matched by their local part, which
// makes queries independent of the namespace of the dump format version.
func (*NodeNavigator) Prefix() string {
	return ""
}

func (nav *NodeNavigator) Value() string {
	switch nav.current.Type {
	case CommentNode, TextNode:
		return nav.current.Data
	case ElementNode:
		if nav.attr != -1 {
			return nav.current.Attr[nav.attr].Value
		}
	}
	return nav.current.Text()
}

func (nav *NodeNavigator) Copy() xpath.NodeNavigator {
	n := *nav
	return &n
}

func (nav *NodeNavigator) MoveToRoot() {
	nav.current = nav.root
	nav.attr = -1
}

func (nav *NodeNavigator) MoveToParent() bool {
	if nav.attr != -1 {
		nav.attr = -1 // move from attributes to element
		return true
	}
	if nav.current == nav.root || nav.current.Parent == nil {
		return false
	}
	nav.current = nav.current.Parent
	return true
}

func (nav *NodeNavigator) MoveToNextAttribute() bool {
	if nav.attr >= len(nav.current.Attr)-1 {
		return false
	}
	nav.attr++
	return true
}

func (nav *NodeNavigator) MoveToChild() bool {
	if nav.attr != -1 || len(nav.current.Children) == 0 {
		return false
	}
	nav.current = nav.current.Children[0]
	return true
}

func (nav *NodeNavigator) MoveToFirst() bool {
	if nav.attr != -1 || nav.current.Parent == nil || nav.current == nav.root {
		return false
	}
	first := nav.current.Parent.Children[0]
	if first == nav.current {
		return false
	}
	nav.current = first
	return true
}

func (nav *NodeNavigator) MoveToNext() bool {
	if nav.attr != -1 {
		return false
	}
	if i := nav.siblingIndex(); i >= 0 && i+1 < len(nav.current.Parent.Children) {
		nav.current = nav.current.Parent.Children[i+1]
		return true
	}
	return false
}

func (nav *NodeNavigator) MoveToPrevious() bool {
	if nav.attr != -1 {
		return false
	}
	if i := nav.siblingIndex(); i > 0 {
		nav.current = nav.current.Parent.Children[i-1]
		return true
	}
	return false
}

func (nav *NodeNavigator) MoveTo(other xpath.NodeNavigator) bool {
	node, ok := other.(*NodeNavigator)
	if !ok || node.root != nav.root {
		return false
	}
	nav.current = node.current
	nav.attr = node.attr
	return true
}

func (nav *NodeNavigator) String() string {
	return nav.Value()
}

// siblingIndex returns the position of the current node among its siblings,
// or -1 for the root.
func (nav *NodeNavigator) siblingIndex() int {
	if nav.current == nav.root || nav.current.Parent == nil {
		return -1
	}
	return nav.current.index
}

// Select evaluates an XPath expression on a document tree and returns the
// selected nodes in document order.
func Select(doc *Node, expr string) ([]*Node, error) {
	query, err := xpath.Compile(expr)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "illegal XPath expression %q", expr)
	}
	var nodes []*Node
	iter := query.Select(NewNavigator(doc))
	for iter.MoveNext() {
		if nav, ok := iter.Current().(*NodeNavigator); ok {
			nodes = append(nodes, nav.current)
		}
	}
	return nodes, nil
}
