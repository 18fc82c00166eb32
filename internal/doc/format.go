package doc

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when a format token is not in any of the
// closed format sets.
var ErrUnknownFormat = errors.New("unknown format")

// BlockType identifies the kind of an element. The set is closed; values
// outside it fail validation.
type BlockType string

const (
	// Editor is the root element type. It never appears below the root.
	Editor BlockType = "editor"
	// Paragraph is the default block type.
	Paragraph BlockType = "paragraph"
	// HeadingOne is a top-level heading.
	HeadingOne BlockType = "heading-one"
	// HeadingTwo is a second-level heading.
	HeadingTwo BlockType = "heading-two"
	// BlockQuote is a quotation block.
	BlockQuote BlockType = "block-quote"
	// ListItem is a single list entry. Valid only as a direct child of a
	// list container.
	ListItem BlockType = "list-item"
	// BulletedList is an unordered list container.
	BulletedList BlockType = "bulleted-list"
	// NumberedList is an ordered list container.
	NumberedList BlockType = "numbered-list"
)

// Valid reports whether t is a member of the closed block type set.
func (t BlockType) Valid() bool {
	switch t {
	case Editor, Paragraph, HeadingOne, HeadingTwo, BlockQuote,
		ListItem, BulletedList, NumberedList:
		return true
	}
	return false
}

// IsList reports whether t is a list container type. This is the single
// source of truth for list classification; no other code duplicates the
// membership check.
func (t BlockType) IsList() bool {
	return t == BulletedList || t == NumberedList
}

// Align is a block alignment. Alignment is independent of block type:
// any element may carry any alignment, and toggling one never touches
// the other.
type Align string

const (
	// AlignNone means no explicit alignment (host default applies).
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Valid reports whether a is a member of the closed alignment set.
// AlignNone is not a togglable alignment and reports false.
func (a Align) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// Mark is a boolean text-run attribute. Marks form a set on each leaf;
// adding a present mark or removing an absent one is a no-op.
type Mark uint8

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkUnderline
	MarkCode
)

// String returns the canonical token for the mark.
func (m Mark) String() string {
	switch m {
	case MarkBold:
		return "bold"
	case MarkItalic:
		return "italic"
	case MarkUnderline:
		return "underline"
	case MarkCode:
		return "code"
	default:
		return "unknown"
	}
}

// ParseMark parses a mark token.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "bold":
		return MarkBold, nil
	case "italic":
		return MarkItalic, nil
	case "underline":
		return MarkUnderline, nil
	case "code":
		return MarkCode, nil
	default:
		return 0, fmt.Errorf("%w: mark %q", ErrUnknownFormat, s)
	}
}

// Marks lists all marks in definition order.
func Marks() []Mark {
	return []Mark{MarkBold, MarkItalic, MarkUnderline, MarkCode}
}

// MarkSet is a set of marks.
type MarkSet uint8

// Has reports whether m is in the set.
func (s MarkSet) Has(m Mark) bool {
	return s&MarkSet(m) != 0
}

// With returns the set with m added. Idempotent.
func (s MarkSet) With(m Mark) MarkSet {
	return s | MarkSet(m)
}

// Without returns the set with m removed. Idempotent.
func (s MarkSet) Without(m Mark) MarkSet {
	return s &^ MarkSet(m)
}

// IsEmpty reports whether the set holds no marks.
func (s MarkSet) IsEmpty() bool {
	return s == 0
}

// FormatKind discriminates the Format union.
type FormatKind int

const (
	// FormatBlock is a non-list block type toggle (paragraph, headings, quote).
	FormatBlock FormatKind = iota
	// FormatListContainer is a list container toggle (bulleted or numbered).
	FormatListContainer
	// FormatAlign is an alignment toggle.
	FormatAlign
)

// Format is a tagged union over the block-level formats a command can
// toggle: a block type or an alignment. The kind is fixed at
// construction, so dispatch in the query and command engines is
// exhaustive without runtime string checks.
type Format struct {
	kind  FormatKind
	block BlockType
	align Align
}

// BlockFormat creates a block type format. List container types yield
// FormatListContainer, everything else FormatBlock.
func BlockFormat(t BlockType) Format {
	kind := FormatBlock
	if t.IsList() {
		kind = FormatListContainer
	}
	return Format{kind: kind, block: t}
}

// AlignFormat creates an alignment format.
func AlignFormat(a Align) Format {
	return Format{kind: FormatAlign, align: a}
}

// ParseFormat classifies a format token into the union. Alignment
// tokens win over block type tokens; the two sets do not overlap.
func ParseFormat(s string) (Format, error) {
	if a := Align(s); a.Valid() {
		return AlignFormat(a), nil
	}
	if t := BlockType(s); t.Valid() && t != Editor {
		return BlockFormat(t), nil
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Kind returns the format's discriminant.
func (f Format) Kind() FormatKind {
	return f.kind
}

// IsAlign reports whether f toggles alignment.
func (f Format) IsAlign() bool {
	return f.kind == FormatAlign
}

// IsList reports whether f toggles a list container type.
func (f Format) IsList() bool {
	return f.kind == FormatListContainer
}

// Block returns the block type for block and list formats, and the zero
// value for alignment formats.
func (f Format) Block() BlockType {
	return f.block
}

// Align returns the alignment for alignment formats, and AlignNone
// otherwise.
func (f Format) Align() Align {
	return f.align
}

// String returns the canonical token for the format.
func (f Format) String() string {
	if f.kind == FormatAlign {
		return string(f.align)
	}
	return string(f.block)
}
