package doc

import "strings"

// Node is a document tree node: either an *Element or a *Leaf.
// Nodes are addressed by pointer identity; two distinct nodes are never
// equal even when their content matches.
type Node interface {
	isNode()
}

// Element is an interior node with a block type, an optional alignment,
// and an ordered, non-empty child sequence.
type Element struct {
	Type     BlockType
	Align    Align // AlignNone when unset
	Children []Node
}

func (*Element) isNode() {}

// Leaf is a text run with a set of active marks. Leaves have no children
// and always sit below the innermost element.
type Leaf struct {
	Text  string
	Marks MarkSet
}

func (*Leaf) isNode() {}

// NewElement creates an element of the given type with the given children.
func NewElement(t BlockType, children ...Node) *Element {
	return &Element{Type: t, Children: children}
}

// NewParagraph creates a paragraph element.
func NewParagraph(children ...Node) *Element {
	return NewElement(Paragraph, children...)
}

// NewLeaf creates a leaf with the given text and marks.
func NewLeaf(text string, marks ...Mark) *Leaf {
	var set MarkSet
	for _, m := range marks {
		set = set.With(m)
	}
	return &Leaf{Text: text, Marks: set}
}

// IsLeaf reports whether n is a leaf node.
func IsLeaf(n Node) bool {
	_, ok := n.(*Leaf)
	return ok
}

// IsElement reports whether n is an element node.
func IsElement(n Node) bool {
	_, ok := n.(*Element)
	return ok
}

// IsBlock reports whether e is an innermost block: an element whose
// children are all leaves. Marks live on the leaves of blocks; block
// properties (type, align) live on the blocks themselves.
func (e *Element) IsBlock() bool {
	for _, c := range e.Children {
		if !IsLeaf(c) {
			return false
		}
	}
	return len(e.Children) > 0
}

// Text returns the concatenated text of all leaves under e.
func (e *Element) Text() string {
	var b strings.Builder
	e.appendText(&b)
	return b.String()
}

func (e *Element) appendText(b *strings.Builder) {
	for _, c := range e.Children {
		switch n := c.(type) {
		case *Leaf:
			b.WriteString(n.Text)
		case *Element:
			n.appendText(b)
		}
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Leaf:
		leaf := *v
		return &leaf
	case *Element:
		children := make([]Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = Clone(c)
		}
		return &Element{Type: v.Type, Align: v.Align, Children: children}
	default:
		return nil
	}
}
