// Package style maps document structure to terminal styles.
//
// A Theme assigns a Style to each block type and each mark. Themes are
// loaded from YAML files with hex colors:
//
//	blocks:
//	  heading-one: {fg: "#ffd75f", bold: true}
//	  block-quote: {fg: "#8a8a8a", italic: true}
//	marks:
//	  code: {fg: "#5fd7af"}
//
// Unlisted block types and marks fall back to the built-in defaults.
package style

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/dshills/richdoc/internal/doc"
)

// Style describes how a run of text is painted.
type Style struct {
	FG        tcell.Color
	BG        tcell.Color
	Bold      bool
	Italic    bool
	Underline bool
}

// Tcell converts the style to a tcell.Style.
func (s Style) Tcell() tcell.Style {
	st := tcell.StyleDefault
	if s.FG != tcell.ColorDefault {
		st = st.Foreground(s.FG)
	}
	if s.BG != tcell.ColorDefault {
		st = st.Background(s.BG)
	}
	return st.Bold(s.Bold).Italic(s.Italic).Underline(s.Underline)
}

// Merge overlays the mark style onto the block style. Colors from the
// overlay win when set; attribute flags accumulate.
func (s Style) Merge(over Style) Style {
	out := s
	if over.FG != tcell.ColorDefault {
		out.FG = over.FG
	}
	if over.BG != tcell.ColorDefault {
		out.BG = over.BG
	}
	out.Bold = out.Bold || over.Bold
	out.Italic = out.Italic || over.Italic
	out.Underline = out.Underline || over.Underline
	return out
}

// Theme holds the styles for every block type and mark.
type Theme struct {
	blocks map[doc.BlockType]Style
	marks  map[doc.Mark]Style
}

// Default returns the built-in theme.
func Default() *Theme {
	return &Theme{
		blocks: map[doc.BlockType]Style{
			doc.HeadingOne: {FG: tcell.ColorYellow, Bold: true},
			doc.HeadingTwo: {FG: tcell.ColorOlive, Bold: true},
			doc.BlockQuote: {FG: tcell.ColorGray, Italic: true},
		},
		marks: map[doc.Mark]Style{
			doc.MarkBold:      {Bold: true},
			doc.MarkItalic:    {Italic: true},
			doc.MarkUnderline: {Underline: true},
			doc.MarkCode:      {FG: tcell.ColorTeal},
		},
	}
}

// Block returns the style for a block type.
func (t *Theme) Block(bt doc.BlockType) Style {
	return t.blocks[bt]
}

// Mark returns the style for a mark.
func (t *Theme) Mark(m doc.Mark) Style {
	return t.marks[m]
}

// LeafStyle resolves the effective style for a leaf inside a block:
// the block style with every active mark style merged on top.
func (t *Theme) LeafStyle(bt doc.BlockType, marks doc.MarkSet) Style {
	s := t.Block(bt)
	for _, m := range doc.Marks() {
		if marks.Has(m) {
			s = s.Merge(t.Mark(m))
		}
	}
	return s
}

// themeFile is the YAML shape of a theme.
type themeFile struct {
	Blocks map[string]styleSpec `yaml:"blocks"`
	Marks  map[string]styleSpec `yaml:"marks"`
}

type styleSpec struct {
	FG        string `yaml:"fg"`
	BG        string `yaml:"bg"`
	Bold      bool   `yaml:"bold"`
	Italic    bool   `yaml:"italic"`
	Underline bool   `yaml:"underline"`
}

// LoadFile reads a YAML theme, layered over the defaults.
func LoadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load parses YAML theme data, layered over the defaults.
func Load(data []byte) (*Theme, error) {
	var file themeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing theme: %w", err)
	}

	t := Default()
	for name, spec := range file.Blocks {
		bt := doc.BlockType(name)
		if !bt.Valid() || bt == doc.Editor {
			return nil, fmt.Errorf("theme names unknown block type %q", name)
		}
		s, err := spec.style()
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", name, err)
		}
		t.blocks[bt] = s
	}
	for name, spec := range file.Marks {
		m, err := doc.ParseMark(name)
		if err != nil {
			return nil, fmt.Errorf("theme names unknown mark %q", name)
		}
		s, err := spec.style()
		if err != nil {
			return nil, fmt.Errorf("mark %q: %w", name, err)
		}
		t.marks[m] = s
	}
	return t, nil
}

func (s styleSpec) style() (Style, error) {
	out := Style{
		FG:        tcell.ColorDefault,
		BG:        tcell.ColorDefault,
		Bold:      s.Bold,
		Italic:    s.Italic,
		Underline: s.Underline,
	}
	var err error
	if s.FG != "" {
		if out.FG, err = parseColor(s.FG); err != nil {
			return out, err
		}
	}
	if s.BG != "" {
		if out.BG, err = parseColor(s.BG); err != nil {
			return out, err
		}
	}
	return out, nil
}

// parseColor converts a hex color such as "#ffd75f" to a tcell color.
func parseColor(hex string) (tcell.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}
