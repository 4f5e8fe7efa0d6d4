// Package glyph exports the outlines of an OpenType or TrueType font as
// individual SVG icons.
package glyph

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/tooltl/tooltl/geom"
	"github.com/tooltl/tooltl/svgdoc"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyGlyph is returned for glyphs without outline, like the space.
var ErrEmptyGlyph = errors.New("glyph has no outline")

// Font is a parsed scalable font.
type Font struct {
	// Name is the full font name, when the font provides one.
	Name string
	SFNT *sfnt.Font
}

// Load loads an OpenType font (TTF or OTF) from a file.
func Load(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse loads an OpenType font (TTF or OTF) from memory.
func Parse(data []byte) (*Font, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	name, _ := sf.Name(nil, sfnt.NameIDFull)
	return &Font{Name: name, SFNT: sf}, nil
}

// Outline returns the outline of the glyph in font units, with the y axis pointing down.
func (f *Font) Outline(buf *sfnt.Buffer, gid sfnt.GlyphIndex) (geom.Path, error) {
	upem := int(f.SFNT.UnitsPerEm())
	if upem <= 0 {
		return nil, errors.New("invalid units-per-em")
	}
	segs, err := f.SFNT.LoadGlyph(buf, gid, fixed.I(upem), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot load glyph %d: %w", gid, err)
	}

	pt := func(p fixed.Point26_6) geom.Point {
		return geom.Point{X: float64(p.X) / 64, Y: float64(p.Y) / 64}
	}
	var p geom.Path
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			p.MoveTo(pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			p.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p.QuadTo(pt(seg.Args[0]), pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			p.CubicTo(pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
	}
	if open {
		p.Close()
	}
	return p, nil
}

// Document builds the SVG icon of a glyph. The viewBox is the square
// centered on the glyph bounding box.
func (f *Font) Document(buf *sfnt.Buffer, gid sfnt.GlyphIndex, precision int) (*svgdoc.Document, error) {
	p, err := f.Outline(buf, gid)
	if err != nil {
		return nil, err
	}
	bounds := p.Bounds()
	if bounds.IsEmpty() {
		return nil, ErrEmptyGlyph
	}

	root := &svgdoc.Element{Name: xml.Name{Local: "svg"}}
	root.Set("xmlns", svgdoc.SVGNamespace)
	root.Set("viewBox", svgdoc.ViewBoxFromRect(bounds.Square()).Format(precision))

	path := svgdoc.NewElement(root, "path")
	path.Set("d", p.Format(precision))
	root.Children = []svgdoc.Node{path}

	return &svgdoc.Document{Root: root}, nil
}
