package tooltl

import (
	"encoding/xml"

	"github.com/tooltl/tooltl/geom"
	"github.com/tooltl/tooltl/svgdoc"
)

type baker struct {
	precision int
	count     int
	// refs holds the ids cloned by <use> elements.
	refs map[string]bool
}

// bakeTransforms pushes the transform attributes down the tree and into the
// shape geometry. Shapes are rewritten as paths and returned in count. Elements
// which cannot absorb a transform (use, text, image, groups with a clip path,
// mask or filter, shapes painted with a url reference, groups holding the
// target of a <use>) keep the composed transform as their own attribute.
func bakeTransforms(doc *svgdoc.Document, precision int) (int, error) {
	bk := &baker{precision: precision, refs: make(map[string]bool)}
	doc.Root.Walk(func(el, _ *svgdoc.Element) bool {
		if el.Tag() == "use" {
			if id, ok := hrefID(el); ok {
				bk.refs[id] = true
			}
		}
		return true
	})
	st := defaultPaint().inherit(doc.Root)
	if err := bk.children(doc.Root, geom.Identity(), st); err != nil {
		return bk.count, err
	}
	return bk.count, nil
}

func (bk *baker) children(parent *svgdoc.Element, ctm geom.Matrix, st paint) error {
	for _, el := range parent.Elements() {
		if err := bk.element(parent, el, ctm, st); err != nil {
			return err
		}
	}
	return nil
}

func (bk *baker) element(parent, el *svgdoc.Element, ctm geom.Matrix, st paint) error {
	tag := el.Tag()
	// Referenced content is positioned by the referencing element.
	if nonRendering[tag] {
		return nil
	}
	m, err := ownTransform(el)
	if err != nil {
		return err
	}
	full := ctm.Multiply(m)
	st = st.inherit(el)

	switch {
	case (tag == "g" || tag == "a" || tag == "switch") && !usesURL(el) && !bk.holdsRef(el):
		el.Remove("transform")
		return bk.children(el, full, st)
	case shapeTags[tag] && !usesURL(el):
		if full.IsIdentity() {
			el.Remove("transform")
			return nil
		}
		p, ok, err := ShapePath(el)
		if err != nil {
			return err
		}
		if !ok {
			el.Remove("transform")
			return nil
		}
		parent.Replace(el, bk.bakedPath(el, p.Transform(full), full, st))
		bk.count++
	case tag == "svg":
		el.Remove("transform")
		if full.IsIdentity() {
			return nil
		}
		g := svgdoc.NewElement(el, "g")
		g.Set("transform", full.Format(bk.precision))
		g.Children = []svgdoc.Node{el}
		parent.Replace(el, g)
	default:
		if full.IsIdentity() {
			el.Remove("transform")
			return nil
		}
		el.Set("transform", full.Format(bk.precision))
	}
	return nil
}

// holdsRef reports whether a descendant of el is the target of a <use>.
// A clone is rendered without the transforms of its ancestors, so these must
// not be pushed into it.
func (bk *baker) holdsRef(el *svgdoc.Element) bool {
	if len(bk.refs) == 0 {
		return false
	}
	found := false
	el.Walk(func(d, _ *svgdoc.Element) bool {
		if found {
			return false
		}
		if d != el {
			if id, ok := d.Lookup("id"); ok && bk.refs[id] {
				found = true
			}
		}
		return true
	})
	return found
}

// bakedPath builds the <path> replacing a shape, keeping its other attributes in order.
func (bk *baker) bakedPath(el *svgdoc.Element, p geom.Path, m geom.Matrix, st paint) *svgdoc.Element {
	out := svgdoc.NewElement(el, "path")
	out.Children = el.Children
	for _, a := range el.Attrs {
		if a.Name.Space == "" && geometryAttrs[a.Name.Local] {
			continue
		}
		out.Attrs = append(out.Attrs, xml.Attr{Name: a.Name, Value: a.Value})
	}
	out.Set("d", p.Format(bk.precision))

	if scale := m.ScaleFactor(); st.stroked && scale != 1 {
		setPresentation(out, "stroke-width", geom.FormatFloat(st.width*scale, bk.precision))
	}
	return out
}
