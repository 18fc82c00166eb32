// Package doc provides the document tree model for the richdoc engine.
//
// A document is a tree of nodes: the root element contains block elements
// (paragraphs, headings, quotes, list containers) which contain further
// blocks or leaf text runs. Leaves carry the text and a set of boolean
// marks (bold, italic, underline, code).
//
// The package provides:
//
//   - Element and Leaf node types with pointer identity
//   - Closed enumerations for block types, alignment, and marks
//   - Format, a tagged union over the togglable block formats
//   - Path-based node addressing (transient, stale after mutation)
//   - Structural invariant validation
//   - Revision tracking for change management
//
// Structural invariants:
//
//   - Every element has at least one child
//   - A list-item element appears only as a direct child of a list container
//   - A list container holds only list-item children
//   - Alignment is independent of block type
//
// Paths are structural addresses, not handles. Any mutation that shifts
// sibling order invalidates previously computed paths; callers must
// re-resolve with FindPath or NodeAt before reuse. The document revision
// changes on every mutating command, which lets hosts detect staleness.
package doc

import (
	"github.com/google/uuid"
)

// RevisionID uniquely identifies a document revision.
type RevisionID string

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(uuid.NewString())
}

// Document owns a node tree for the lifetime of an editing session.
// The root element represents the editor itself; its children are the
// top-level blocks.
type Document struct {
	root     *Element
	revision RevisionID
}

// New creates a document with the given top-level blocks.
// With no blocks, the document gets a single empty paragraph so the
// root element invariant holds.
func New(blocks ...Node) *Document {
	if len(blocks) == 0 {
		blocks = []Node{NewParagraph(NewLeaf(""))}
	}
	return &Document{
		root:     &Element{Type: Editor, Children: blocks},
		revision: NewRevisionID(),
	}
}

// Root returns the root element.
func (d *Document) Root() *Element {
	return d.root
}

// Revision returns the current revision ID.
func (d *Document) Revision() RevisionID {
	return d.revision
}

// Bump assigns a new revision ID. Mutating commands call this after
// every successful edit so hosts can invalidate cached paths.
func (d *Document) Bump() RevisionID {
	d.revision = NewRevisionID()
	return d.revision
}
