package geom

import (
	"fmt"
	"math"
	"strings"
)

// Op is a path segment operation.
type Op uint8

const (
	MoveTo Op = iota
	LineTo
	QuadTo
	CubicTo
	Close
)

// Segment is a single absolute path segment.
// MoveTo and LineTo store their end point in Pts[0], QuadTo stores the control
// point followed by the end point and CubicTo the two control points followed by the end point.
type Segment struct {
	Op  Op
	Pts [3]Point
}

// End returns the end point of the segment. It is undefined for Close.
func (s Segment) End() Point {
	switch s.Op {
	case QuadTo:
		return s.Pts[1]
	case CubicTo:
		return s.Pts[2]
	}
	return s.Pts[0]
}

// Path is a list of absolute segments.
type Path []Segment

// MoveTo appends a move segment.
func (p *Path) MoveTo(pt Point) { *p = append(*p, Segment{Op: MoveTo, Pts: [3]Point{pt}}) }

// LineTo appends a line segment.
func (p *Path) LineTo(pt Point) { *p = append(*p, Segment{Op: LineTo, Pts: [3]Point{pt}}) }

// QuadTo appends a quadratic Bézier segment.
func (p *Path) QuadTo(c, pt Point) { *p = append(*p, Segment{Op: QuadTo, Pts: [3]Point{c, pt}}) }

// CubicTo appends a cubic Bézier segment.
func (p *Path) CubicTo(c1, c2, pt Point) {
	*p = append(*p, Segment{Op: CubicTo, Pts: [3]Point{c1, c2, pt}})
}

// Close appends a close path segment.
func (p *Path) Close() { *p = append(*p, Segment{Op: Close}) }

// Transform returns a copy of p with every point transformed by m.
func (p Path) Transform(m Matrix) Path {
	out := make(Path, len(p))
	for i, seg := range p {
		out[i] = seg
		n := 0
		switch seg.Op {
		case MoveTo, LineTo:
			n = 1
		case QuadTo:
			n = 2
		case CubicTo:
			n = 3
		}
		for j := 0; j < n; j++ {
			out[i].Pts[j] = m.Apply(seg.Pts[j])
		}
	}
	return out
}

// Bounds returns the tight bounding box of the path geometry.
// Curve extrema are included, control points are not.
// Sub-paths consisting of a single move are ignored.
func (p Path) Bounds() Rect {
	r := EmptyRect()
	var cur, start Point

	for _, seg := range p {
		switch seg.Op {
		case MoveTo:
			cur = seg.Pts[0]
			start = cur
			continue
		case LineTo:
			r.AddPoint(cur)
			r.AddPoint(seg.Pts[0])
		case QuadTo:
			r.AddPoint(cur)
			r.AddPoint(seg.Pts[1])
			for _, t := range quadExtrema(cur, seg.Pts[0], seg.Pts[1]) {
				r.AddPoint(quadAt(cur, seg.Pts[0], seg.Pts[1], t))
			}
		case CubicTo:
			r.AddPoint(cur)
			r.AddPoint(seg.Pts[2])
			for _, t := range cubicExtrema(cur, seg.Pts[0], seg.Pts[1], seg.Pts[2]) {
				r.AddPoint(cubicAt(cur, seg.Pts[0], seg.Pts[1], seg.Pts[2], t))
			}
		case Close:
			cur = start
			continue
		}
		cur = seg.End()
	}
	return r
}

// String serializes the path using absolute commands and 3 decimals.
func (p Path) String() string {
	return p.Format(3)
}

// Format serializes the path using absolute commands and the given precision.
func (p Path) Format(precision int) string {
	var sb strings.Builder
	pt := func(q Point) {
		sb.WriteString(FormatFloat(q.X, precision))
		sb.WriteByte(' ')
		sb.WriteString(FormatFloat(q.Y, precision))
	}
	for _, seg := range p {
		switch seg.Op {
		case MoveTo:
			sb.WriteByte('M')
			pt(seg.Pts[0])
		case LineTo:
			sb.WriteByte('L')
			pt(seg.Pts[0])
		case QuadTo:
			sb.WriteByte('Q')
			pt(seg.Pts[0])
			sb.WriteByte(' ')
			pt(seg.Pts[1])
		case CubicTo:
			sb.WriteByte('C')
			pt(seg.Pts[0])
			sb.WriteByte(' ')
			pt(seg.Pts[1])
			sb.WriteByte(' ')
			pt(seg.Pts[2])
		case Close:
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}

// ParsePath parses SVG path data into absolute segments.
// Smooth curves are expanded, H and V become lines and elliptical arcs are
// approximated with cubic Bézier curves.
func ParsePath(d string) (Path, error) {
	var (
		path      Path
		sc        = &scanner{s: d}
		cmd       byte
		cur       Point
		start     Point
		lastCubic *Point // second control point of the previous C/S segment
		lastQuad  *Point // control point of the previous Q/T segment
	)

	num := func() (float64, error) {
		sc.skipSep()
		return sc.number()
	}
	point := func(rel bool) (Point, error) {
		x, err := num()
		if err != nil {
			return Point{}, err
		}
		y, err := num()
		if err != nil {
			return Point{}, err
		}
		if rel {
			return Point{cur.X + x, cur.Y + y}, nil
		}
		return Point{x, y}, nil
	}

	for {
		sc.skipSep()
		if sc.done() {
			break
		}
		offset := sc.pos
		if c := sc.peek(); isCommand(c) {
			cmd = c
			sc.pos++
		} else if cmd == 0 {
			return nil, fmt.Errorf("path: data must start with a command, found %q at offset %d", c, offset)
		} else if cmd == 'Z' || cmd == 'z' {
			return nil, fmt.Errorf("path: expected command after %c at offset %d", cmd, offset)
		}

		rel := cmd >= 'a' && cmd <= 'z'
		var (
			nextCubic *Point
			nextQuad  *Point
			err       error
		)

		switch cmd {
		case 'M', 'm':
			var p Point
			if p, err = point(rel); err != nil {
				break
			}
			path.MoveTo(p)
			cur, start = p, p
			// Coordinate pairs following a move are implicit lines.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			var p Point
			if p, err = point(rel); err != nil {
				break
			}
			path.LineTo(p)
			cur = p
		case 'H', 'h':
			var x float64
			if x, err = num(); err != nil {
				break
			}
			if rel {
				x += cur.X
			}
			cur = Point{x, cur.Y}
			path.LineTo(cur)
		case 'V', 'v':
			var y float64
			if y, err = num(); err != nil {
				break
			}
			if rel {
				y += cur.Y
			}
			cur = Point{cur.X, y}
			path.LineTo(cur)
		case 'C', 'c':
			var c1, c2, p Point
			if c1, err = point(rel); err != nil {
				break
			}
			if c2, err = point(rel); err != nil {
				break
			}
			if p, err = point(rel); err != nil {
				break
			}
			path.CubicTo(c1, c2, p)
			cur, nextCubic = p, &c2
		case 'S', 's':
			c1 := cur
			if lastCubic != nil {
				c1 = cur.Mul(2).Sub(*lastCubic)
			}
			var c2, p Point
			if c2, err = point(rel); err != nil {
				break
			}
			if p, err = point(rel); err != nil {
				break
			}
			path.CubicTo(c1, c2, p)
			cur, nextCubic = p, &c2
		case 'Q', 'q':
			var c, p Point
			if c, err = point(rel); err != nil {
				break
			}
			if p, err = point(rel); err != nil {
				break
			}
			path.QuadTo(c, p)
			cur, nextQuad = p, &c
		case 'T', 't':
			c := cur
			if lastQuad != nil {
				c = cur.Mul(2).Sub(*lastQuad)
			}
			var p Point
			if p, err = point(rel); err != nil {
				break
			}
			path.QuadTo(c, p)
			cur, nextQuad = p, &c
		case 'A', 'a':
			var rx, ry, rot float64
			var large, sweep bool
			var p Point
			if rx, err = num(); err != nil {
				break
			}
			if ry, err = num(); err != nil {
				break
			}
			if rot, err = num(); err != nil {
				break
			}
			sc.skipSep()
			if large, err = sc.flag(); err != nil {
				break
			}
			sc.skipSep()
			if sweep, err = sc.flag(); err != nil {
				break
			}
			if p, err = point(rel); err != nil {
				break
			}
			path = append(path, ArcToCubics(cur, rx, ry, rot, large, sweep, p)...)
			cur = p
		case 'Z', 'z':
			path.Close()
			cur = start
		}
		if err != nil {
			return nil, fmt.Errorf("path: command %c at offset %d: %w", cmd, offset, err)
		}
		lastCubic, lastQuad = nextCubic, nextQuad
	}
	return path, nil
}

func isCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", c) >= 0
}

// ArcToCubics converts an SVG elliptical arc from p0 to p into cubic segments,
// following the endpoint to center conversion of the SVG implementation notes.
func ArcToCubics(p0 Point, rx, ry, rotation float64, large, sweep bool, p Point) []Segment {
	if p0 == p {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []Segment{{Op: LineTo, Pts: [3]Point{p}}}
	}

	sin, cos := math.Sincos(rotation * math.Pi / 180)
	dx2 := (p0.X - p.X) / 2
	dy2 := (p0.Y - p.Y) / 2
	x1 := cos*dx2 + sin*dy2
	y1 := -sin*dx2 + cos*dy2

	// Scale up radii which are too small to span the end points.
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if num > 0 && den > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	cx := cos*cx1 - sin*cy1 + (p0.X+p.X)/2
	cy := sin*cx1 + cos*cy1 + (p0.Y+p.Y)/2

	theta := vecAngle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	delta := vecAngle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	n := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := delta / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)

	toUser := func(ux, uy float64) Point {
		return Point{
			X: cx + rx*cos*ux - ry*sin*uy,
			Y: cy + rx*sin*ux + ry*cos*uy,
		}
	}

	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		t1 := theta + float64(i)*step
		t2 := t1 + step
		s1, c1 := math.Sincos(t1)
		s2, c2 := math.Sincos(t2)

		end := toUser(c2, s2)
		if i == n-1 {
			end = p
		}
		segs = append(segs, Segment{
			Op: CubicTo,
			Pts: [3]Point{
				toUser(c1-k*s1, s1+k*c1),
				toUser(c2+k*s2, s2-k*c2),
				end,
			},
		})
	}
	return segs
}

func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

func quadAt(p0, p1, p2 Point, t float64) Point {
	mt := 1 - t
	return p0.Mul(mt * mt).Add(p1.Mul(2 * mt * t)).Add(p2.Mul(t * t))
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	return p0.Mul(mt * mt * mt).
		Add(p1.Mul(3 * mt * mt * t)).
		Add(p2.Mul(3 * mt * t * t)).
		Add(p3.Mul(t * t * t))
}

// quadExtrema returns the curve parameters in (0, 1) where the derivative of
// either coordinate vanishes.
func quadExtrema(p0, p1, p2 Point) []float64 {
	var ts []float64
	for _, c := range [][3]float64{{p0.X, p1.X, p2.X}, {p0.Y, p1.Y, p2.Y}} {
		den := c[0] - 2*c[1] + c[2]
		if den == 0 {
			continue
		}
		if t := (c[0] - c[1]) / den; t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	return ts
}

func cubicExtrema(p0, p1, p2, p3 Point) []float64 {
	var ts []float64
	for _, c := range [][4]float64{{p0.X, p1.X, p2.X, p3.X}, {p0.Y, p1.Y, p2.Y, p3.Y}} {
		a := -c[0] + 3*c[1] - 3*c[2] + c[3]
		b := 2 * (c[0] - 2*c[1] + c[2])
		k := c[1] - c[0]
		for _, t := range solveQuadratic(a, b, k) {
			if t > 0 && t < 1 {
				ts = append(ts, t)
			}
		}
	}
	return ts
}

func solveQuadratic(a, b, c float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}
