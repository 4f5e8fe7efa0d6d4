package geom

import (
	"fmt"
	"math"
)

// kappa is the control point distance used to approximate a quarter ellipse with a cubic curve.
const kappa = 0.5522847498307936

// RectPath returns the outline of a (possibly rounded) rectangle.
// The corner radii are resolved like the SVG rect element does: a missing radius
// takes the value of the other one and both are clamped to half of the side.
func RectPath(x, y, w, h, rx, ry float64) Path {
	var p Path
	if w <= 0 || h <= 0 {
		return p
	}
	if rx <= 0 && ry > 0 {
		rx = ry
	}
	if ry <= 0 && rx > 0 {
		ry = rx
	}
	rx = math.Min(math.Max(rx, 0), w/2)
	ry = math.Min(math.Max(ry, 0), h/2)

	if rx == 0 || ry == 0 {
		p.MoveTo(Point{x, y})
		p.LineTo(Point{x + w, y})
		p.LineTo(Point{x + w, y + h})
		p.LineTo(Point{x, y + h})
		p.Close()
		return p
	}

	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(Point{x + rx, y})
	p.LineTo(Point{x + w - rx, y})
	p.CubicTo(Point{x + w - rx + kx, y}, Point{x + w, y + ry - ky}, Point{x + w, y + ry})
	p.LineTo(Point{x + w, y + h - ry})
	p.CubicTo(Point{x + w, y + h - ry + ky}, Point{x + w - rx + kx, y + h}, Point{x + w - rx, y + h})
	p.LineTo(Point{x + rx, y + h})
	p.CubicTo(Point{x + rx - kx, y + h}, Point{x, y + h - ry + ky}, Point{x, y + h - ry})
	p.LineTo(Point{x, y + ry})
	p.CubicTo(Point{x, y + ry - ky}, Point{x + rx - kx, y}, Point{x + rx, y})
	p.Close()
	return p
}

// EllipsePath returns the outline of an ellipse as four cubic curves.
func EllipsePath(cx, cy, rx, ry float64) Path {
	var p Path
	if rx <= 0 || ry <= 0 {
		return p
	}
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(Point{cx + rx, cy})
	p.CubicTo(Point{cx + rx, cy + ky}, Point{cx + kx, cy + ry}, Point{cx, cy + ry})
	p.CubicTo(Point{cx - kx, cy + ry}, Point{cx - rx, cy + ky}, Point{cx - rx, cy})
	p.CubicTo(Point{cx - rx, cy - ky}, Point{cx - kx, cy - ry}, Point{cx, cy - ry})
	p.CubicTo(Point{cx + kx, cy - ry}, Point{cx + rx, cy - ky}, Point{cx + rx, cy})
	p.Close()
	return p
}

// LinePath returns a single line segment.
func LinePath(x1, y1, x2, y2 float64) Path {
	var p Path
	p.MoveTo(Point{x1, y1})
	p.LineTo(Point{x2, y2})
	return p
}

// PolyPath returns the outline joining the points, closed for polygons.
func PolyPath(points []Point, closed bool) Path {
	var p Path
	for i, pt := range points {
		if i == 0 {
			p.MoveTo(pt)
			continue
		}
		p.LineTo(pt)
	}
	if closed && len(points) > 0 {
		p.Close()
	}
	return p
}

// ParsePoints parses the points attribute of polyline and polygon elements.
// A trailing odd coordinate is an error.
func ParsePoints(s string) ([]Point, error) {
	nums, err := ParseNumbers(s)
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	if len(nums)%2 != 0 {
		return nil, fmt.Errorf("points: odd number of coordinates (%d)", len(nums))
	}
	pts := make([]Point, 0, len(nums)/2)
	for i := 0; i < len(nums); i += 2 {
		pts = append(pts, Point{nums[i], nums[i+1]})
	}
	return pts, nil
}
