package svgdoc

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tooltl/tooltl/geom"
)

// Element is an XML element with its attributes in source order.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []Node
}

// NewElement creates an element named like the given one, so that the
// namespace prefix of the source document is kept.
func NewElement(like *Element, local string) *Element {
	return &Element{Name: xml.Name{Space: like.Name.Space, Local: local}}
}

// Tag returns the local name of the element.
func (e *Element) Tag() string {
	return e.Name.Local
}

// Lookup returns the value of the attribute with the given qualified name, e.g. "xlink:href".
func (e *Element) Lookup(name string) (string, bool) {
	n := splitName(name)
	for _, a := range e.Attrs {
		if a.Name == n {
			return a.Value, true
		}
	}
	return "", false
}

// Get returns the attribute value or an empty string.
func (e *Element) Get(name string) string {
	v, _ := e.Lookup(name)
	return v
}

// Has reports whether the attribute is present.
func (e *Element) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Set replaces the attribute value, appending the attribute if missing.
func (e *Element) Set(name, value string) {
	n := splitName(name)
	for i, a := range e.Attrs {
		if a.Name == n {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: n, Value: value})
}

// Remove deletes the attribute and reports whether it was present.
func (e *Element) Remove(name string) bool {
	n := splitName(name)
	for i, a := range e.Attrs {
		if a.Name == n {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Elements returns the child elements.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Walk visits e and its descendants depth first. The parent of e is nil.
// Returning false from fn skips the children of the visited element.
func (e *Element) Walk(fn func(el, parent *Element) bool) {
	e.walk(nil, fn)
}

func (e *Element) walk(parent *Element, fn func(el, parent *Element) bool) {
	if !fn(e, parent) {
		return
	}
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			el.walk(e, fn)
		}
	}
}

// RemoveChildren removes the direct child elements matching pred, along with
// the white space which preceded them, and returns how many were removed.
func (e *Element) RemoveChildren(pred func(*Element) bool) int {
	removed := 0
	kept := e.Children[:0]
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && pred(el) {
			removed++
			if n := len(kept); n > 0 {
				if cd, ok := kept[n-1].(CharData); ok && strings.TrimSpace(string(cd)) == "" {
					kept = kept[:n-1]
				}
			}
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(e.Children); i++ {
		e.Children[i] = nil
	}
	e.Children = kept
	return removed
}

// Replace swaps the child old for n and reports whether old was found.
func (e *Element) Replace(old *Element, n Node) bool {
	for i, c := range e.Children {
		if c == Node(old) {
			e.Children[i] = n
			return true
		}
	}
	return false
}

var lengthRe = regexp.MustCompile(`^\s*([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseLength parses an SVG length, ignoring its unit: "24px" yields 24.
func ParseLength(s string) (float64, error) {
	m := lengthRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return strconv.ParseFloat(m[1], 64)
}

// Number parses a numeric attribute of the element. Missing attributes yield 0.
func (e *Element) Number(name string) (float64, error) {
	v, ok := e.Lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, nil
	}
	f, err := ParseLength(v)
	if err != nil {
		return 0, fmt.Errorf("<%s %s>: %w", e.Tag(), name, err)
	}
	return f, nil
}

// ViewBox is the value of the viewBox attribute.
type ViewBox struct {
	X, Y, W, H float64
}

// ParseViewBox parses "min-x min-y width height".
func ParseViewBox(s string) (ViewBox, error) {
	nums, err := geom.ParseNumbers(s)
	if err != nil {
		return ViewBox{}, fmt.Errorf("viewBox: %w", err)
	}
	if len(nums) != 4 {
		return ViewBox{}, fmt.Errorf("viewBox: expected 4 numbers, got %d", len(nums))
	}
	if nums[2] < 0 || nums[3] < 0 {
		return ViewBox{}, fmt.Errorf("viewBox: negative size in %q", s)
	}
	return ViewBox{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, nil
}

// ViewBoxFromRect converts a bounding box into a view box.
func ViewBoxFromRect(r geom.Rect) ViewBox {
	return ViewBox{X: r.MinX, Y: r.MinY, W: r.Width(), H: r.Height()}
}

// Rect returns the view box as a rectangle.
func (v ViewBox) Rect() geom.Rect {
	return geom.RectFromXYWH(v.X, v.Y, v.W, v.H)
}

// Format formats the view box with the given precision.
func (v ViewBox) Format(precision int) string {
	return strings.Join([]string{
		geom.FormatFloat(v.X, precision),
		geom.FormatFloat(v.Y, precision),
		geom.FormatFloat(v.W, precision),
		geom.FormatFloat(v.H, precision),
	}, " ")
}

func (v ViewBox) String() string {
	return v.Format(3)
}
