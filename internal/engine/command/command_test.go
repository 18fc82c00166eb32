package command

import (
	"testing"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/selection"
	"github.com/dshills/richdoc/internal/event"
)

func rangeOf(sp, ep doc.Path, so, eo int) *selection.Range {
	r := selection.NewRange(selection.NewPoint(sp, so), selection.NewPoint(ep, eo))
	return &r
}

func mustValidate(t *testing.T, d *doc.Document) {
	t.Helper()
	if err := doc.Validate(d); err != nil {
		t.Fatalf("tree invalid after command: %v", err)
	}
}

// assertListInvariants checks that every list-item has a list container
// parent and every list container holds only list-items.
func assertListInvariants(t *testing.T, d *doc.Document) {
	t.Helper()
	if err := doc.Validate(d); err != nil {
		t.Errorf("list invariants broken: %v", err)
	}
}

func TestToggleBlockEntersList(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("hello")))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 5)

	if err := e.ToggleBlock(sel, doc.BlockFormat(doc.BulletedList)); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}

	container, err := d.ElementAt(doc.Path{0})
	if err != nil {
		t.Fatalf("ElementAt: %v", err)
	}
	if container.Type != doc.BulletedList {
		t.Errorf("top node = %q, want bulleted-list", container.Type)
	}
	item := container.Children[0].(*doc.Element)
	if item.Type != doc.ListItem {
		t.Errorf("wrapped node = %q, want list-item", item.Type)
	}
	if item.Text() != "hello" {
		t.Errorf("item text = %q", item.Text())
	}
	mustValidate(t, d)
}

func TestToggleBlockExitsList(t *testing.T) {
	d := doc.New(doc.NewElement(doc.BulletedList,
		doc.NewElement(doc.ListItem, doc.NewLeaf("hello")),
	))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0, 0}, doc.Path{0, 0, 0}, 0, 5)

	if err := e.ToggleBlock(sel, doc.BlockFormat(doc.BulletedList)); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}

	para, err := d.ElementAt(doc.Path{0})
	if err != nil {
		t.Fatalf("ElementAt: %v", err)
	}
	if para.Type != doc.Paragraph {
		t.Errorf("top node = %q, want paragraph after exiting the list", para.Type)
	}
	if para.Text() != "hello" {
		t.Errorf("text = %q", para.Text())
	}
	mustValidate(t, d)
}

func TestToggleBlockRoundTrip(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("hi")))
	e := New(d)
	f := doc.BlockFormat(doc.NumberedList)

	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 2)
	if e.IsBlockActive(sel, f) {
		t.Fatal("format should start inactive")
	}

	if err := e.ToggleBlock(sel, f); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	sel = rangeOf(doc.Path{0, 0, 0}, doc.Path{0, 0, 0}, 0, 2)
	if !e.IsBlockActive(sel, f) {
		t.Error("format should be active after toggling on")
	}

	if err := e.ToggleBlock(sel, f); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	sel = rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 2)
	if e.IsBlockActive(sel, f) {
		t.Error("format should be inactive after toggling off")
	}
	mustValidate(t, d)
}

func TestToggleBlockHeading(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("title")))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 5)

	if err := e.ToggleBlock(sel, doc.BlockFormat(doc.HeadingOne)); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	block, _ := d.ElementAt(doc.Path{0})
	if block.Type != doc.HeadingOne {
		t.Errorf("type = %q, want heading-one", block.Type)
	}

	if err := e.ToggleBlock(sel, doc.BlockFormat(doc.HeadingOne)); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	block, _ = d.ElementAt(doc.Path{0})
	if block.Type != doc.Paragraph {
		t.Errorf("type = %q, want paragraph after toggling off", block.Type)
	}
}

func TestAlignmentIndependence(t *testing.T) {
	d := doc.New(doc.NewElement(doc.BulletedList,
		doc.NewElement(doc.ListItem, doc.NewLeaf("entry")),
	))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0, 0}, doc.Path{0, 0, 0}, 0, 5)

	if err := e.ToggleBlock(sel, doc.AlignFormat(doc.AlignCenter)); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}

	container, err := d.ElementAt(doc.Path{0})
	if err != nil {
		t.Fatalf("ElementAt: %v", err)
	}
	if container.Type != doc.BulletedList {
		t.Error("alignment toggle must not unwrap the list container")
	}
	if len(container.Children) != 1 {
		t.Errorf("container child count changed: %d", len(container.Children))
	}

	item := container.Children[0].(*doc.Element)
	if item.Type != doc.ListItem {
		t.Errorf("item type = %q, alignment must not change type", item.Type)
	}
	if item.Align != doc.AlignCenter {
		t.Errorf("item align = %q, want center", item.Align)
	}
	assertListInvariants(t, d)
}

func TestAlignmentToggleOff(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("text")))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 4)
	f := doc.AlignFormat(doc.AlignRight)

	if err := e.ToggleBlock(sel, f); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	block, _ := d.ElementAt(doc.Path{0})
	if block.Align != doc.AlignRight {
		t.Fatalf("align = %q, want right", block.Align)
	}

	if err := e.ToggleBlock(sel, f); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	block, _ = d.ElementAt(doc.Path{0})
	if block.Align != doc.AlignNone {
		t.Errorf("align = %q, want unset after toggling off", block.Align)
	}
	if block.Type != doc.Paragraph {
		t.Error("alignment toggle must not change the type")
	}
}

func TestListInvariantAcrossSequences(t *testing.T) {
	d := doc.New(
		doc.NewParagraph(doc.NewLeaf("one")),
		doc.NewParagraph(doc.NewLeaf("two")),
	)
	e := New(d)

	steps := []struct {
		sel *selection.Range
		f   doc.Format
	}{
		{rangeOf(doc.Path{0, 0}, doc.Path{1, 0}, 0, 3), doc.BlockFormat(doc.BulletedList)},
		{rangeOf(doc.Path{0, 0, 0}, doc.Path{0, 0, 0}, 0, 3), doc.AlignFormat(doc.AlignJustify)},
		{rangeOf(doc.Path{0, 0, 0}, doc.Path{0, 1, 0}, 0, 3), doc.BlockFormat(doc.NumberedList)},
		{rangeOf(doc.Path{0, 0, 0}, doc.Path{0, 0, 0}, 0, 3), doc.BlockFormat(doc.NumberedList)},
	}
	for i, step := range steps {
		if err := e.ToggleBlock(step.sel, step.f); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertListInvariants(t, d)
	}
}

func TestToggleMarkAddRemove(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("hello world")))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 5)

	if e.IsMarkActive(sel, doc.MarkBold) {
		t.Fatal("bold should start inactive")
	}
	if err := e.ToggleMark(sel, doc.MarkBold); err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}
	if !e.IsMarkActive(sel, doc.MarkBold) {
		t.Error("bold should be active after toggling on")
	}

	// The uncovered tail must be untouched.
	para, _ := d.ElementAt(doc.Path{0})
	tail := para.Children[len(para.Children)-1].(*doc.Leaf)
	if tail.Marks.Has(doc.MarkBold) {
		t.Error("leaves outside the selection must keep their marks")
	}

	if err := e.ToggleMark(sel, doc.MarkBold); err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}
	if e.IsMarkActive(sel, doc.MarkBold) {
		t.Error("bold should be inactive after toggling off")
	}
}

func TestToggleMarkHeterogeneousSelection(t *testing.T) {
	d := doc.New(doc.NewParagraph(
		doc.NewLeaf("bold", doc.MarkBold),
		doc.NewLeaf("plain"),
	))
	e := New(d)
	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 1}, 0, 5)

	// Not uniformly bold, so the toggle adds bold everywhere.
	if err := e.ToggleMark(sel, doc.MarkBold); err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}
	if !e.IsMarkActive(sel, doc.MarkBold) {
		t.Error("selection should be uniformly bold after the toggle")
	}
}

func TestNilSelectionIsNoop(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("x")))
	e := New(d)
	before := d.Revision()

	if err := e.ToggleMark(nil, doc.MarkBold); err != nil {
		t.Fatalf("ToggleMark(nil): %v", err)
	}
	if err := e.ToggleBlock(nil, doc.BlockFormat(doc.HeadingOne)); err != nil {
		t.Fatalf("ToggleBlock(nil): %v", err)
	}

	if d.Revision() != before {
		t.Error("nil selection must not mutate the document")
	}
	if e.IsMarkActive(nil, doc.MarkBold) || e.IsBlockActive(nil, doc.BlockFormat(doc.Paragraph)) {
		t.Error("nil selection queries must report false")
	}
}

func TestCommandPublishesChange(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("x")))
	bus := event.NewBus()
	e := New(d, WithBus(bus))

	var got []DocumentChanged
	_, _ = bus.SubscribeFunc(TopicDocumentChanged, func(_ event.Topic, payload any) error {
		got = append(got, payload.(DocumentChanged))
		return nil
	})

	sel := rangeOf(doc.Path{0, 0}, doc.Path{0, 0}, 0, 1)
	if err := e.ToggleMark(sel, doc.MarkItalic); err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 change event, got %d", len(got))
	}
	if got[0].Revision != d.Revision() {
		t.Error("event revision should match the document revision")
	}
}

func TestToggleBlockPartialListSelection(t *testing.T) {
	d := doc.New(doc.NewElement(doc.BulletedList,
		doc.NewElement(doc.ListItem, doc.NewLeaf("a")),
		doc.NewElement(doc.ListItem, doc.NewLeaf("b")),
		doc.NewElement(doc.ListItem, doc.NewLeaf("c")),
	))
	e := New(d)

	// Toggle only "b" out of the list.
	sel := rangeOf(doc.Path{0, 1, 0}, doc.Path{0, 1, 0}, 0, 1)
	if err := e.ToggleBlock(sel, doc.BlockFormat(doc.BulletedList)); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}

	root := d.Root()
	if len(root.Children) != 3 {
		t.Fatalf("expected list + paragraph + list, got %d children", len(root.Children))
	}
	middle := root.Children[1].(*doc.Element)
	if middle.Type != doc.Paragraph || middle.Text() != "b" {
		t.Errorf("middle = %q %q, want paragraph %q", middle.Type, middle.Text(), "b")
	}
	assertListInvariants(t, d)
}
