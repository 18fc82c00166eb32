// Package docjson serializes document trees to and from JSON.
//
// The wire shape is the conventional rich-text editor interchange
// format: a document is an array of block nodes, an element is an
// object with "type", optional "align", and "children", and a leaf is
// an object with "text" and a boolean field per active mark:
//
//	[
//	  {"type": "paragraph", "align": "center", "children": [
//	    {"text": "plain "},
//	    {"text": "loud", "bold": true}
//	  ]}
//	]
//
// Decoding walks gjson results; encoding builds the array with sjson
// index paths. Decoded documents are validated before being returned,
// so a caller never receives a tree that violates the structural
// invariants.
package docjson

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/richdoc/internal/doc"
)

// Errors returned by the codec.
var (
	ErrInvalidDocument = errors.New("invalid document JSON")
	ErrEmptyDocument   = errors.New("document has no blocks")
)

// DecodeError reports a malformed node with its JSON path.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at %s: %s", e.Path, e.Message)
}

// Decode parses a JSON document into a tree. The input must be an
// array of block nodes.
func Decode(data []byte) (*doc.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: top level must be an array of blocks", ErrInvalidDocument)
	}

	var blocks []doc.Node
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		n, err := decodeNode(value, key.String())
		if err != nil {
			decodeErr = err
			return false
		}
		blocks = append(blocks, n)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if len(blocks) == 0 {
		return nil, ErrEmptyDocument
	}

	d := doc.New(blocks...)
	if err := doc.Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeNode(value gjson.Result, path string) (doc.Node, error) {
	if !value.IsObject() {
		return nil, &DecodeError{Path: path, Message: "node must be an object"}
	}

	if text := value.Get("text"); text.Exists() {
		return decodeLeaf(value, text, path)
	}
	return decodeElement(value, path)
}

func decodeLeaf(value, text gjson.Result, path string) (doc.Node, error) {
	if text.Type != gjson.String {
		return nil, &DecodeError{Path: path + ".text", Message: "text must be a string"}
	}
	leaf := &doc.Leaf{Text: text.String()}
	for _, m := range doc.Marks() {
		if value.Get(m.String()).Bool() {
			leaf.Marks = leaf.Marks.With(m)
		}
	}
	return leaf, nil
}

func decodeElement(value gjson.Result, path string) (doc.Node, error) {
	typ := value.Get("type")
	if !typ.Exists() {
		return nil, &DecodeError{Path: path, Message: "node needs either text or type"}
	}
	blockType := doc.BlockType(typ.String())
	if !blockType.Valid() || blockType == doc.Editor {
		return nil, &DecodeError{Path: path + ".type", Message: fmt.Sprintf("unknown block type %q", typ.String())}
	}

	el := &doc.Element{Type: blockType}
	if align := value.Get("align"); align.Exists() {
		a := doc.Align(align.String())
		if !a.Valid() {
			return nil, &DecodeError{Path: path + ".align", Message: fmt.Sprintf("unknown alignment %q", align.String())}
		}
		el.Align = a
	}

	children := value.Get("children")
	if !children.IsArray() {
		return nil, &DecodeError{Path: path + ".children", Message: "element needs a children array"}
	}
	var childErr error
	children.ForEach(func(key, child gjson.Result) bool {
		n, err := decodeNode(child, path+".children."+key.String())
		if err != nil {
			childErr = err
			return false
		}
		el.Children = append(el.Children, n)
		return true
	})
	if childErr != nil {
		return nil, childErr
	}
	if len(el.Children) == 0 {
		return nil, &DecodeError{Path: path + ".children", Message: "element needs at least one child"}
	}
	return el, nil
}

// Encode serializes a document to JSON, as an array of its top-level
// blocks.
func Encode(d *doc.Document) ([]byte, error) {
	out := []byte("[]")
	var err error
	for i, n := range d.Root().Children {
		out, err = encodeNode(out, fmt.Sprintf("%d", i), n)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeNode(out []byte, path string, n doc.Node) ([]byte, error) {
	var err error
	switch v := n.(type) {
	case *doc.Leaf:
		out, err = sjson.SetBytes(out, path+".text", v.Text)
		if err != nil {
			return nil, err
		}
		for _, m := range doc.Marks() {
			if !v.Marks.Has(m) {
				continue
			}
			out, err = sjson.SetBytes(out, path+"."+m.String(), true)
			if err != nil {
				return nil, err
			}
		}
	case *doc.Element:
		out, err = sjson.SetBytes(out, path+".type", string(v.Type))
		if err != nil {
			return nil, err
		}
		if v.Align != doc.AlignNone {
			out, err = sjson.SetBytes(out, path+".align", string(v.Align))
			if err != nil {
				return nil, err
			}
		}
		// Materialize the children array so empty is distinguishable
		// from absent while encoding.
		out, err = sjson.SetRawBytes(out, path+".children", []byte("[]"))
		if err != nil {
			return nil, err
		}
		for i, c := range v.Children {
			out, err = encodeNode(out, fmt.Sprintf("%s.children.%d", path, i), c)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown node kind", ErrInvalidDocument)
	}
	return out, nil
}
