package corpus

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/npillmayer/fontdiff/core"
)

// NodeType classifies the nodes of an XML document tree.
type NodeType int8

// Node types of an XML document tree.
const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

// Node is a node of an XML document tree. The tree holds what is needed to
// select and read text content: elements with their attributes, character
// data and comments. Processing instructions and directives are dropped.
type Node struct {
	Type     NodeType
	Name     xml.Name   // element name
	Attr     []xml.Attr // element attributes
	Data     string     // character data of text and comment nodes
	Parent   *Node
	Children []*Node
	index    int // position within Parent.Children
}

func (n *Node) appendChild(ch *Node) {
	ch.Parent = n
	ch.index = len(n.Children)
	n.Children = append(n.Children, ch)
}

// Text returns the concatenated character data of n and all its descendants.
func (n *Node) Text() string {
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	switch n.Type {
	case TextNode:
		sb.WriteString(n.Data)
	case CommentNode:
	default:
		for _, ch := range n.Children {
			ch.collectText(sb)
		}
	}
}

// ParseXML reads a complete XML document into a tree. Malformed documents
// result in an error with code EPARSE.
func ParseXML(r io.Reader) (*Node, error) {
	doc := &Node{Type: DocumentNode}
	dec := xml.NewDecoder(r)
	dec.Strict = true
	current := doc
	elements := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.WrapError(err, core.EPARSE, "malformed XML corpus")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{Type: ElementNode, Name: t.Name, Attr: t.Copy().Attr}
			current.appendChild(el)
			current = el
			elements++
		case xml.EndElement:
			current = current.Parent
		case xml.CharData:
			if current == doc { // whitespace between prolog and root
				continue
			}
			if last := lastChild(current); last != nil && last.Type == TextNode {
				last.Data += string(t)
				continue
			}
			current.appendChild(&Node{Type: TextNode, Data: string(t)})
		case xml.Comment:
			current.appendChild(&Node{Type: CommentNode, Data: string(t)})
		}
	}
	if current != doc {
		return nil, core.Error(core.EPARSE, "malformed XML corpus: unclosed element <%s>", current.Name.Local)
	}
	if elements == 0 {
		return nil, core.Error(core.EPARSE, "malformed XML corpus: no root element")
	}
	return doc, nil
}

func lastChild(n *Node) *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}
