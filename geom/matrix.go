// Package geom implements the 2D affine geometry used by the SVG pipeline:
// transformation matrices, SVG transform lists, path data and bounding boxes.
package geom

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is an SVG affine transformation matrix:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation matrix. The angle is expressed in degrees.
func Rotate(deg float64) Matrix {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// RotateAround returns a rotation around the (cx, cy) point.
func RotateAround(deg, cx, cy float64) Matrix {
	return Translate(cx, cy).Multiply(Rotate(deg)).Multiply(Translate(-cx, -cy))
}

// SkewX returns a skew transformation along the x axis.
func SkewX(deg float64) Matrix {
	return Matrix{A: 1, C: math.Tan(deg * math.Pi / 180), D: 1}
}

// SkewY returns a skew transformation along the y axis.
func SkewY(deg float64) Matrix {
	return Matrix{A: 1, B: math.Tan(deg * math.Pi / 180), D: 1}
}

// Multiply returns m·n, the transformation which applies n first and m afterwards.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms the point p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVector transforms p ignoring the translation part.
func (m Matrix) ApplyVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// IsIdentity reports whether m is the identity within a small tolerance.
func (m Matrix) IsIdentity() bool {
	return nearly(m.A, 1) && nearly(m.B, 0) && nearly(m.C, 0) &&
		nearly(m.D, 1) && nearly(m.E, 0) && nearly(m.F, 0)
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// ScaleFactor returns the mean scaling applied by m to lengths,
// used for rescaling stroke widths once a transform is baked.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

// String formats the matrix as an SVG transform function.
func (m Matrix) String() string {
	return m.Format(6)
}

// Format formats the matrix as an SVG transform function using the given precision.
func (m Matrix) Format(precision int) string {
	parts := []string{
		FormatFloat(m.A, precision),
		FormatFloat(m.B, precision),
		FormatFloat(m.C, precision),
		FormatFloat(m.D, precision),
		FormatFloat(m.E, precision),
		FormatFloat(m.F, precision),
	}
	return "matrix(" + strings.Join(parts, " ") + ")"
}

// ParseTransform parses an SVG transform list, e.g. "translate(10 5) rotate(45)".
// The functions are composed from left to right. An empty list yields the identity.
func ParseTransform(s string) (Matrix, error) {
	m := Identity()
	sc := &scanner{s: s}

	for {
		sc.skipSep()
		if sc.done() {
			return m, nil
		}
		start := sc.pos
		name := sc.ident()
		if name == "" {
			return Identity(), fmt.Errorf("transform: unexpected %q at offset %d", sc.s[sc.pos], sc.pos)
		}
		sc.skipSpace()
		if !sc.consume('(') {
			return Identity(), fmt.Errorf("transform: missing '(' after %s at offset %d", name, start)
		}

		var args []float64
		for {
			sc.skipSep()
			if sc.consume(')') {
				break
			}
			if sc.done() {
				return Identity(), fmt.Errorf("transform: unterminated %s at offset %d", name, start)
			}
			v, err := sc.number()
			if err != nil {
				return Identity(), fmt.Errorf("transform: %s: %w", name, err)
			}
			args = append(args, v)
		}

		fn, err := transformFunc(name, args)
		if err != nil {
			return Identity(), err
		}
		m = m.Multiply(fn)
	}
}

func transformFunc(name string, args []float64) (Matrix, error) {
	argc := len(args)
	invalid := func() (Matrix, error) {
		return Identity(), fmt.Errorf("transform: %s does not accept %d arguments", name, argc)
	}

	switch name {
	case "matrix":
		if argc != 6 {
			return invalid()
		}
		return Matrix{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}, nil
	case "translate":
		switch argc {
		case 1:
			return Translate(args[0], 0), nil
		case 2:
			return Translate(args[0], args[1]), nil
		}
		return invalid()
	case "scale":
		switch argc {
		case 1:
			return Scale(args[0], args[0]), nil
		case 2:
			return Scale(args[0], args[1]), nil
		}
		return invalid()
	case "rotate":
		switch argc {
		case 1:
			return Rotate(args[0]), nil
		case 3:
			return RotateAround(args[0], args[1], args[2]), nil
		}
		return invalid()
	case "skewX":
		if argc != 1 {
			return invalid()
		}
		return SkewX(args[0]), nil
	case "skewY":
		if argc != 1 {
			return invalid()
		}
		return SkewY(args[0]), nil
	}
	return Identity(), fmt.Errorf("transform: unknown function %q", name)
}

func nearly(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
