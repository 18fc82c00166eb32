// Package command implements the toggle commands that mutate a document
// based on the current selection.
//
// The engine composes the read-only queries in package query with the
// mutation primitives in package transform. Every command is internally
// atomic: the unwrap, apply, and wrap phases of a block toggle run as
// one logical step, and no collaborator observes an intermediate state.
// After every command the tree satisfies all structural invariants.
//
// Commands assume the host guarantees a live selection before invoking
// them; with a nil selection they are defined no-ops. There is no
// recoverable error path for normal operation: errors reported here
// indicate internal-consistency faults the host should respond to with
// a full-document re-validation.
package command

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/query"
	"github.com/dshills/richdoc/internal/engine/selection"
	"github.com/dshills/richdoc/internal/engine/transform"
	"github.com/dshills/richdoc/internal/event"
)

// TopicDocumentChanged is published after every mutating command.
const TopicDocumentChanged event.Topic = "document.changed"

// DocumentChanged is the payload for TopicDocumentChanged.
type DocumentChanged struct {
	// Revision is the document revision after the mutation. Paths
	// computed before this revision are stale.
	Revision doc.RevisionID
}

// Engine applies toggle commands to a document. The host editor owns
// the document and the selection and serializes invocations; the engine
// never retains copies of either.
type Engine struct {
	doc *doc.Document
	bus *event.Bus
}

// Option configures an Engine.
type Option func(*Engine)

// WithBus attaches an event bus; mutating commands publish
// TopicDocumentChanged on it.
func WithBus(b *event.Bus) Option {
	return func(e *Engine) {
		e.bus = b
	}
}

// New creates an engine over the given document.
func New(d *doc.Document, opts ...Option) *Engine {
	e := &Engine{doc: d}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the document the engine operates on.
func (e *Engine) Document() *doc.Document {
	return e.doc
}

// IsMarkActive reports whether the mark is active for the selection.
func (e *Engine) IsMarkActive(sel *selection.Range, m doc.Mark) bool {
	return query.MarkActive(e.doc, sel, m)
}

// IsBlockActive reports whether the block format is active for the
// selection.
func (e *Engine) IsBlockActive(sel *selection.Range, f doc.Format) bool {
	return query.BlockActive(e.doc, sel, f)
}

// ToggleMark toggles a mark over the selection: removes it if active,
// adds it otherwise. Exactly the leaf text covered by the selection is
// affected; leaves outside keep their marks. A nil selection is a
// no-op.
func (e *Engine) ToggleMark(sel *selection.Range, m doc.Mark) error {
	if sel == nil {
		return nil
	}

	var err error
	if query.MarkActive(e.doc, sel, m) {
		err = transform.RemoveMark(e.doc, *sel, m)
	} else {
		err = transform.AddMark(e.doc, *sel, m)
	}
	if err != nil {
		return err
	}
	return e.changed()
}

// ToggleBlock toggles a block-level format over the selection.
//
// For an alignment format, the alignment of every block touched by the
// selection is set (or cleared when already active); list structure is
// never disturbed. For a type format, list containers in the selection
// are unwrapped first and the blocks are retyped: back to paragraph
// when the format was active, to list-item when entering a list, to
// the format itself otherwise. Finally, when entering a list, the
// retyped blocks are wrapped in a new container of the requested type.
// A nil selection is a no-op.
func (e *Engine) ToggleBlock(sel *selection.Range, f doc.Format) error {
	if sel == nil {
		return nil
	}

	wasActive := query.BlockActive(e.doc, sel, f)
	targetIsList := f.IsList()

	// Targets are collected by pointer before any phase mutates the
	// tree; the pointers stay valid while paths go stale.
	blocks := query.BlocksInRange(e.doc, *sel)

	if !f.IsAlign() {
		if err := transform.UnwrapLists(e.doc, *sel); err != nil {
			return err
		}
	}

	var props transform.Props
	switch {
	case f.IsAlign() && wasActive:
		props = transform.AlignProp(doc.AlignNone)
	case f.IsAlign():
		props = transform.AlignProp(f.Align())
	case wasActive:
		props = transform.TypeProp(doc.Paragraph)
	case targetIsList:
		props = transform.TypeProp(doc.ListItem)
	default:
		props = transform.TypeProp(f.Block())
	}
	transform.SetBlockProps(blocks, props)

	if !f.IsAlign() && !wasActive && targetIsList {
		if err := transform.WrapBlocks(e.doc, blocks, f.Block()); err != nil {
			return err
		}
	}
	return e.changed()
}

// changed bumps the revision and notifies subscribers.
func (e *Engine) changed() error {
	rev := e.doc.Bump()
	if e.bus == nil {
		return nil
	}
	return e.bus.Publish(TopicDocumentChanged, DocumentChanged{Revision: rev})
}
