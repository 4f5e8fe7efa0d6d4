package tooltl

import (
	"fmt"
	"io"

	"github.com/tooltl/tooltl/geom"
	"github.com/tooltl/tooltl/svgdoc"
	"go.uber.org/zap"
)

// DefaultPrecision is the number of decimals used for rewritten coordinates.
const DefaultPrecision = 3

// Normalizer options
type Normalizer struct {
	// Standardize derives a missing viewBox from the width and height attributes
	// and removes width, height, overflow and xml:space from the root element.
	Standardize bool
	// BakeTransforms pushes the transforms into the geometry of the shapes.
	BakeTransforms bool
	// Recenter sets the viewBox to the bounds of the drawable content.
	Recenter bool
	// Square makes the re-centered viewBox a square around the content center.
	Square bool
	// Padding grows the re-centered viewBox on every side, in user units.
	Padding float64
	// Accessibility adds role, focusable and preserveAspectRatio to the root element.
	Accessibility bool
	// PrefixIDs prefixes every id, and the references to it, with "<PrefixIDs>_".
	PrefixIDs string
	// AutoPrefix uses the sanitized file name as the id prefix when processing files.
	AutoPrefix bool
	// StripMetadata removes the <metadata> elements.
	StripMetadata bool
	// Precision is the number of decimals of rewritten numbers. Zero means DefaultPrecision.
	Precision int
	Logger    *zap.Logger
}

// Report describes the changes applied to a document.
type Report struct {
	// Bounds is the drawable content bounding box, when it was computed.
	Bounds   geom.Rect
	ViewBox  string
	Baked    int
	Prefixed int
	Warnings []string
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (n *Normalizer) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

func (n *Normalizer) precision() int {
	if n.Precision <= 0 {
		return DefaultPrecision
	}
	return n.Precision
}

// Process reads an SVG document from r, normalizes it and writes it to w.
// We are using the io package, since we can provide different input and output types,
// as long as they implement the io.Reader and io.Writer interface.
func (n *Normalizer) Process(r io.Reader, w io.Writer) (Report, error) {
	doc, err := svgdoc.Parse(r)
	if err != nil {
		return Report{}, err
	}
	rep, err := n.Normalize(doc)
	if err != nil {
		return rep, err
	}
	return rep, doc.Encode(w)
}

// Normalize applies the enabled steps to the document in place.
func (n *Normalizer) Normalize(doc *svgdoc.Document) (Report, error) {
	rep := Report{Bounds: geom.EmptyRect()}
	root := doc.Root

	if root.Name.Space == "" && !root.Has("xmlns") {
		root.Set("xmlns", svgdoc.SVGNamespace)
	}

	if n.StripMetadata {
		root.Walk(func(el, _ *svgdoc.Element) bool {
			el.RemoveChildren(func(c *svgdoc.Element) bool { return c.Tag() == "metadata" })
			return true
		})
	}

	if n.Standardize {
		n.ensureViewBox(root, &rep)
	}

	if n.BakeTransforms {
		baked, err := bakeTransforms(doc, n.precision())
		if err != nil {
			return rep, fmt.Errorf("baking transforms: %w", err)
		}
		rep.Baked = baked
	}

	if n.Recenter {
		if err := n.recenter(doc, &rep); err != nil {
			return rep, err
		}
	}

	if n.Standardize {
		for _, attr := range []string{"width", "height", "overflow", "xml:space"} {
			root.Remove(attr)
		}
	}

	if n.Accessibility {
		for _, a := range [][2]string{
			{"role", "img"},
			{"focusable", "false"},
			{"preserveAspectRatio", "xMidYMid meet"},
		} {
			if !root.Has(a[0]) {
				root.Set(a[0], a[1])
			}
		}
	}

	if n.PrefixIDs != "" {
		rep.Prefixed = PrefixIDs(root, n.PrefixIDs)
	}

	rep.ViewBox = root.Get("viewBox")
	for _, w := range rep.Warnings {
		n.logger().Warn("normalize", zap.String("warning", w))
	}
	return rep, nil
}

// ensureViewBox derives the viewBox from the width and height, stripping their units.
func (n *Normalizer) ensureViewBox(root *svgdoc.Element, rep *Report) {
	if v, ok := root.Lookup("viewBox"); ok {
		if _, err := svgdoc.ParseViewBox(v); err != nil {
			rep.warn("invalid viewBox: %v", err)
		}
		return
	}

	width, hasW := root.Lookup("width")
	height, hasH := root.Lookup("height")
	if !hasW || !hasH {
		rep.warn("no viewBox and no width/height found")
		return
	}
	w, err := svgdoc.ParseLength(width)
	if err != nil {
		rep.warn("cannot derive viewBox: width: %v", err)
		return
	}
	h, err := svgdoc.ParseLength(height)
	if err != nil {
		rep.warn("cannot derive viewBox: height: %v", err)
		return
	}
	root.Set("viewBox", svgdoc.ViewBox{W: w, H: h}.Format(n.precision()))
}

// recenter sets the viewBox to the padded content bounds.
func (n *Normalizer) recenter(doc *svgdoc.Document, rep *Report) error {
	bounds, err := ContentBounds(doc)
	if err != nil {
		return fmt.Errorf("computing content bounds: %w", err)
	}
	rep.Bounds = bounds
	if bounds.IsEmpty() {
		rep.warn("no drawable content, viewBox left unchanged")
		return nil
	}

	if n.Square {
		bounds = bounds.Square()
	}
	bounds = bounds.Inset(-n.Padding)
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		rep.warn("degenerate content bounds, viewBox left unchanged")
		return nil
	}
	doc.Root.Set("viewBox", svgdoc.ViewBoxFromRect(bounds).Format(n.precision()))
	return nil
}
