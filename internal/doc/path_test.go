package doc

import "testing"

// testDoc builds a small document:
//
//	[0] paragraph: "hello " + bold "world"
//	[1] bulleted-list
//	      [1 0] list-item: "first"
//	      [1 1] list-item: "second"
//	[2] paragraph: "tail"
func testDoc() *Document {
	return New(
		NewParagraph(NewLeaf("hello "), NewLeaf("world", MarkBold)),
		NewElement(BulletedList,
			NewElement(ListItem, NewLeaf("first")),
			NewElement(ListItem, NewLeaf("second")),
		),
		NewParagraph(NewLeaf("tail")),
	)
}

func TestPathCompare(t *testing.T) {
	tests := []struct {
		a, b Path
		want int
	}{
		{Path{0}, Path{1}, -1},
		{Path{1}, Path{0}, 1},
		{Path{1, 1}, Path{1, 1}, 0},
		{Path{1}, Path{1, 0}, -1}, // ancestor precedes descendant
		{Path{1, 0}, Path{1}, 1},
		{Path{0, 5}, Path{1}, -1},
		{Path{}, Path{0}, -1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPathIsAncestorOf(t *testing.T) {
	if !(Path{1}).IsAncestorOf(Path{1, 0}) {
		t.Error("[1] should be an ancestor of [1 0]")
	}
	if (Path{1}).IsAncestorOf(Path{1}) {
		t.Error("a path is not its own ancestor")
	}
	if (Path{1, 0}).IsAncestorOf(Path{1}) {
		t.Error("descendant is not an ancestor")
	}
	if !(Path{}).IsAncestorOf(Path{2, 1}) {
		t.Error("root is an ancestor of everything")
	}
}

func TestNodeAt(t *testing.T) {
	d := testDoc()

	el, err := d.ElementAt(Path{1, 0})
	if err != nil {
		t.Fatalf("ElementAt: %v", err)
	}
	if el.Type != ListItem {
		t.Errorf("expected list-item, got %q", el.Type)
	}

	leaf, err := d.LeafAt(Path{0, 1})
	if err != nil {
		t.Fatalf("LeafAt: %v", err)
	}
	if leaf.Text != "world" || !leaf.Marks.Has(MarkBold) {
		t.Errorf("unexpected leaf %q marks=%v", leaf.Text, leaf.Marks)
	}

	if _, err := d.NodeAt(Path{0, 9}); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if _, err := d.NodeAt(Path{0, 0, 0}); err == nil {
		t.Error("expected error for path descending through a leaf")
	}
}

func TestFindPath(t *testing.T) {
	d := testDoc()

	leaf, err := d.LeafAt(Path{1, 1, 0})
	if err != nil {
		t.Fatalf("LeafAt: %v", err)
	}

	p, ok := d.FindPath(leaf)
	if !ok {
		t.Fatal("FindPath should locate the leaf")
	}
	if !p.Equals(Path{1, 1, 0}) {
		t.Errorf("FindPath = %v, want [1 1 0]", p)
	}

	if _, ok := d.FindPath(NewLeaf("stranger")); ok {
		t.Error("FindPath should not locate a foreign node")
	}
}

func TestPreviousLeaf(t *testing.T) {
	d := testDoc()

	p, leaf, ok := d.PreviousLeaf(Path{1, 0, 0})
	if !ok {
		t.Fatal("expected a previous leaf")
	}
	if leaf.Text != "world" {
		t.Errorf("previous leaf = %q, want %q", leaf.Text, "world")
	}
	if !p.Equals(Path{0, 1}) {
		t.Errorf("previous leaf path = %v, want [0 1]", p)
	}

	if _, _, ok := d.PreviousLeaf(Path{0, 0}); ok {
		t.Error("first leaf has no predecessor")
	}
}

func TestRevisionBump(t *testing.T) {
	d := testDoc()
	r1 := d.Revision()
	r2 := d.Bump()
	if r1 == r2 {
		t.Error("Bump should change the revision")
	}
	if d.Revision() != r2 {
		t.Error("Revision should return the bumped value")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(testDoc()); err != nil {
		t.Errorf("test document should be valid: %v", err)
	}

	// list-item outside a container
	d := New(NewElement(ListItem, NewLeaf("stray")))
	if err := Validate(d); err == nil {
		t.Error("expected violation for stray list-item")
	}

	// non-list-item child of a container
	d = New(NewElement(BulletedList, NewParagraph(NewLeaf("x"))))
	if err := Validate(d); err == nil {
		t.Error("expected violation for paragraph inside a list container")
	}

	// childless element
	d = New(&Element{Type: Paragraph})
	if err := Validate(d); err == nil {
		t.Error("expected violation for childless element")
	}

	// unknown block type
	d = New(NewElement(BlockType("callout"), NewLeaf("x")))
	if err := Validate(d); err == nil {
		t.Error("expected violation for unknown block type")
	}
}

func TestElementText(t *testing.T) {
	d := testDoc()
	if got := d.Root().Text(); got != "hello worldfirstsecondtail" {
		t.Errorf("Text() = %q", got)
	}
}

func TestClone(t *testing.T) {
	d := testDoc()
	cp := Clone(d.Root()).(*Element)

	leaf := cp.Children[0].(*Element).Children[0].(*Leaf)
	leaf.Text = "changed"

	orig, _ := d.LeafAt(Path{0, 0})
	if orig.Text != "hello " {
		t.Error("mutating a clone should not affect the original")
	}
}
