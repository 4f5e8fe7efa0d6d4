package tooltl

import (
	"fmt"
	"strings"

	"github.com/tooltl/tooltl/geom"
	"github.com/tooltl/tooltl/svgdoc"
)

// maxUseDepth bounds the resolution of nested <use> references.
const maxUseDepth = 8

// nonRendering lists the elements whose content is never drawn in place.
var nonRendering = map[string]bool{
	"defs":           true,
	"clipPath":       true,
	"mask":           true,
	"symbol":         true,
	"metadata":       true,
	"title":          true,
	"desc":           true,
	"pattern":        true,
	"marker":         true,
	"linearGradient": true,
	"radialGradient": true,
	"filter":         true,
	"style":          true,
	"script":         true,
}

var shapeTags = map[string]bool{
	"path":     true,
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polyline": true,
	"polygon":  true,
}

// geometryAttrs are the attributes replaced by "d" when a shape becomes a path.
var geometryAttrs = map[string]bool{
	"d": true, "x": true, "y": true, "width": true, "height": true,
	"rx": true, "ry": true, "r": true, "cx": true, "cy": true,
	"x1": true, "y1": true, "x2": true, "y2": true, "points": true,
	"transform": true,
}

// ShapePath returns the outline of a basic shape or path element in its own
// user space. It reports false for elements drawing nothing.
func ShapePath(el *svgdoc.Element) (geom.Path, bool, error) {
	num := func(name string) (float64, error) { return el.Number(name) }

	var (
		p   geom.Path
		err error
	)
	switch el.Tag() {
	case "path":
		p, err = geom.ParsePath(el.Get("d"))
		if err != nil {
			return nil, false, fmt.Errorf("<path d>: %w", err)
		}
	case "rect":
		var x, y, w, h float64
		if x, err = num("x"); err != nil {
			return nil, false, err
		}
		if y, err = num("y"); err != nil {
			return nil, false, err
		}
		if w, err = num("width"); err != nil {
			return nil, false, err
		}
		if h, err = num("height"); err != nil {
			return nil, false, err
		}
		// "auto" and other keywords fall back to the automatic radius.
		rx, _ := num("rx")
		ry, _ := num("ry")
		p = geom.RectPath(x, y, w, h, rx, ry)
	case "circle", "ellipse":
		var cx, cy, rx, ry float64
		if cx, err = num("cx"); err != nil {
			return nil, false, err
		}
		if cy, err = num("cy"); err != nil {
			return nil, false, err
		}
		if el.Tag() == "circle" {
			if rx, err = num("r"); err != nil {
				return nil, false, err
			}
			ry = rx
		} else {
			if rx, err = num("rx"); err != nil {
				return nil, false, err
			}
			if ry, err = num("ry"); err != nil {
				return nil, false, err
			}
		}
		p = geom.EllipsePath(cx, cy, rx, ry)
	case "line":
		var c [4]float64
		for i, name := range []string{"x1", "y1", "x2", "y2"} {
			if c[i], err = num(name); err != nil {
				return nil, false, err
			}
		}
		p = geom.LinePath(c[0], c[1], c[2], c[3])
	case "polyline", "polygon":
		pts, err := geom.ParsePoints(el.Get("points"))
		if err != nil {
			return nil, false, fmt.Errorf("<%s>: %w", el.Tag(), err)
		}
		p = geom.PolyPath(pts, el.Tag() == "polygon")
	default:
		return nil, false, nil
	}
	return p, len(p) > 0, nil
}

// ownTransform parses the transform attribute of the element.
func ownTransform(el *svgdoc.Element) (geom.Matrix, error) {
	v, ok := el.Lookup("transform")
	if !ok {
		return geom.Identity(), nil
	}
	m, err := geom.ParseTransform(v)
	if err != nil {
		return m, fmt.Errorf("<%s transform>: %w", el.Tag(), err)
	}
	return m, nil
}

// parseStyle splits a style attribute into its declarations.
func parseStyle(s string) map[string]string {
	decl := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		decl[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return decl
}

// presentation returns a presentation property, the style attribute taking precedence.
func presentation(el *svgdoc.Element, name string) (string, bool) {
	if style, ok := el.Lookup("style"); ok {
		if v, ok := parseStyle(style)[name]; ok {
			return v, true
		}
	}
	v, ok := el.Lookup(name)
	return strings.TrimSpace(v), ok
}

// setPresentation updates a presentation property where it is declared.
func setPresentation(el *svgdoc.Element, name, value string) {
	if style, ok := el.Lookup("style"); ok {
		if _, ok := parseStyle(style)[name]; ok {
			parts := strings.Split(style, ";")
			for i, part := range parts {
				k, _, ok := strings.Cut(part, ":")
				if ok && strings.TrimSpace(k) == name {
					parts[i] = name + ":" + value
				}
			}
			el.Set("style", strings.Join(parts, ";"))
			return
		}
	}
	el.Set(name, value)
}

func hidden(el *svgdoc.Element) bool {
	v, _ := presentation(el, "display")
	return v == "none"
}

// paint is the inherited stroke state of an element.
type paint struct {
	stroked bool
	width   float64
}

func defaultPaint() paint {
	return paint{width: 1}
}

func (p paint) inherit(el *svgdoc.Element) paint {
	if v, ok := presentation(el, "stroke"); ok {
		p.stroked = v != "" && v != "none" && v != "transparent"
	}
	if v, ok := presentation(el, "stroke-width"); ok {
		if w, err := svgdoc.ParseLength(v); err == nil {
			p.width = w
		}
	}
	return p
}

// usesURL reports whether the element references a paint server, clip path, mask or filter.
func usesURL(el *svgdoc.Element) bool {
	for _, a := range el.Attrs {
		if strings.Contains(a.Value, "url(") {
			return true
		}
	}
	return false
}

// useTarget resolves the element referenced by a <use>.
func useTarget(doc *svgdoc.Document, use *svgdoc.Element) *svgdoc.Element {
	id, ok := hrefID(use)
	if !ok {
		return nil
	}
	return doc.ElementByID(id)
}

// hrefID returns the local id referenced by the href or xlink:href attribute.
func hrefID(el *svgdoc.Element) (string, bool) {
	href, ok := el.Lookup("href")
	if !ok {
		href = el.Get("xlink:href")
	}
	id, ok := strings.CutPrefix(strings.TrimSpace(href), "#")
	return id, ok && id != ""
}

// ContentBounds returns the bounding box of the drawable content in the root
// user space, including half of the stroke width of stroked shapes.
// Text is not measured.
func ContentBounds(doc *svgdoc.Document) (geom.Rect, error) {
	b := &boundsWalker{doc: doc, bounds: geom.EmptyRect()}
	st := defaultPaint().inherit(doc.Root)
	for _, child := range doc.Root.Elements() {
		if err := b.element(child, geom.Identity(), st, 0); err != nil {
			return b.bounds, err
		}
	}
	return b.bounds, nil
}

type boundsWalker struct {
	doc    *svgdoc.Document
	bounds geom.Rect
}

func (b *boundsWalker) element(el *svgdoc.Element, ctm geom.Matrix, st paint, depth int) error {
	tag := el.Tag()
	if nonRendering[tag] || hidden(el) {
		return nil
	}
	m, err := ownTransform(el)
	if err != nil {
		return err
	}
	ctm = ctm.Multiply(m)
	st = st.inherit(el)

	switch {
	case shapeTags[tag]:
		p, ok, err := ShapePath(el)
		if err != nil || !ok {
			return err
		}
		r := p.Transform(ctm).Bounds()
		if st.stroked && st.width > 0 {
			r = r.Inset(-st.width / 2 * ctm.ScaleFactor())
		}
		b.bounds = b.bounds.Union(r)
	case tag == "image" || tag == "foreignObject":
		r, err := boxOf(el)
		if err != nil || r.IsEmpty() {
			return err
		}
		b.bounds = b.bounds.Union(r.Transform(ctm))
	case tag == "use":
		if depth >= maxUseDepth {
			return nil
		}
		ref := useTarget(b.doc, el)
		if ref == nil {
			return nil
		}
		x, err := el.Number("x")
		if err != nil {
			return err
		}
		y, err := el.Number("y")
		if err != nil {
			return err
		}
		ctm = ctm.Multiply(geom.Translate(x, y))
		if ref.Tag() == "symbol" {
			st = st.inherit(ref)
			for _, child := range ref.Elements() {
				if err := b.element(child, ctm, st, depth+1); err != nil {
					return err
				}
			}
			return nil
		}
		return b.element(ref, ctm, st, depth+1)
	case tag == "svg":
		x, err := el.Number("x")
		if err != nil {
			return err
		}
		y, err := el.Number("y")
		if err != nil {
			return err
		}
		ctm = ctm.Multiply(geom.Translate(x, y))
		fallthrough
	default:
		for _, child := range el.Elements() {
			if err := b.element(child, ctm, st, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func boxOf(el *svgdoc.Element) (geom.Rect, error) {
	var v [4]float64
	for i, name := range []string{"x", "y", "width", "height"} {
		n, err := el.Number(name)
		if err != nil {
			return geom.EmptyRect(), err
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return geom.EmptyRect(), nil
	}
	return geom.RectFromXYWH(v[0], v[1], v[2], v[3]), nil
}
