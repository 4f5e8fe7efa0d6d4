package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func assertPoint(t *testing.T, want, got Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
}

func assertRect(t *testing.T, want, got Rect) {
	t.Helper()
	assert.InDelta(t, want.MinX, got.MinX, delta, "min x")
	assert.InDelta(t, want.MinY, got.MinY, delta, "min y")
	assert.InDelta(t, want.MaxX, got.MaxX, delta, "max x")
	assert.InDelta(t, want.MaxY, got.MaxY, delta, "max y")
}

func TestMatrix_ParseTransform(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		in    Point
		want  Point
	}{
		{"empty", "", Point{3, 4}, Point{3, 4}},
		{"translate", "translate(10 20)", Point{1, 1}, Point{11, 21}},
		{"translate single", "translate(5)", Point{1, 1}, Point{6, 1}},
		{"composition order", "translate(10,20) scale(2)", Point{1, 1}, Point{12, 22}},
		{"rotate", "rotate(90)", Point{1, 0}, Point{0, 1}},
		{"rotate around", "rotate(90 10 10)", Point{20, 10}, Point{10, 20}},
		{"matrix", "matrix(1,0,0,1,5,5)", Point{0, 0}, Point{5, 5}},
		{"skewX", "skewX(45)", Point{0, 1}, Point{1, 1}},
		{"compact", "scale(2,3)translate(1-1)", Point{0, 0}, Point{2, -3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ParseTransform(tc.input)
			require.NoError(t, err)
			assertPoint(t, tc.want, m.Apply(tc.in))
		})
	}
}

func TestMatrix_ParseTransformErrors(t *testing.T) {
	for _, input := range []string{
		"foo(1)",
		"translate(1 2 3)",
		"scale(1",
		"rotate(1 2)",
		"matrix(1 2 3)",
		"translate 1 2",
		"(1 2)",
	} {
		_, err := ParseTransform(input)
		assert.Error(t, err, input)
	}
}

func TestMatrix_Properties(t *testing.T) {
	assert := assert.New(t)

	assert.True(Identity().IsIdentity())
	assert.False(Translate(1, 0).IsIdentity())
	assert.InDelta(4.0, Scale(2, 8).Det(), delta)
	assert.InDelta(3.0, Scale(3, -3).ScaleFactor(), delta)
	assert.InDelta(1.0, Rotate(33).ScaleFactor(), delta)
	assert.Equal("matrix(2 0 0 2 10 -5)", Translate(10, -5).Multiply(Scale(2, 2)).String())
	assert.True(RotateAround(45, 3, 3).Multiply(RotateAround(-45, 3, 3)).IsIdentity())

	v := Translate(100, 100).Multiply(Scale(2, 2)).ApplyVector(Point{1, 1})
	assertPoint(t, Point{2, 2}, v)
}

func TestPath_Parse(t *testing.T) {
	testCases := []struct {
		name string
		d    string
		want Path
	}{
		{
			name: "absolute lines",
			d:    "M10 10 H20 V20 Z",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{10, 10}}},
				{Op: LineTo, Pts: [3]Point{{20, 10}}},
				{Op: LineTo, Pts: [3]Point{{20, 20}}},
				{Op: Close},
			},
		},
		{
			name: "implicit relative lineto",
			d:    "m1 1 2 2",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{1, 1}}},
				{Op: LineTo, Pts: [3]Point{{3, 3}}},
			},
		},
		{
			name: "compact numbers",
			d:    "M0,0L1.5.5-2-2",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{0, 0}}},
				{Op: LineTo, Pts: [3]Point{{1.5, 0.5}}},
				{Op: LineTo, Pts: [3]Point{{-2, -2}}},
			},
		},
		{
			name: "smooth cubic reflects control point",
			d:    "M0 0C0 10 10 10 10 0S20-10 20 0",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{0, 0}}},
				{Op: CubicTo, Pts: [3]Point{{0, 10}, {10, 10}, {10, 0}}},
				{Op: CubicTo, Pts: [3]Point{{10, -10}, {20, -10}, {20, 0}}},
			},
		},
		{
			name: "smooth quadratic",
			d:    "M0 0Q5 10 10 0T20 0",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{0, 0}}},
				{Op: QuadTo, Pts: [3]Point{{5, 10}, {10, 0}}},
				{Op: QuadTo, Pts: [3]Point{{15, -10}, {20, 0}}},
			},
		},
		{
			name: "relative after close restarts at subpath start",
			d:    "M5 5l5 0z l0 5",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{5, 5}}},
				{Op: LineTo, Pts: [3]Point{{10, 5}}},
				{Op: Close},
				{Op: LineTo, Pts: [3]Point{{5, 10}}},
			},
		},
		{
			name: "zero radius arc is a line",
			d:    "M0 0A0 5 0 0 1 10 0",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{0, 0}}},
				{Op: LineTo, Pts: [3]Point{{10, 0}}},
			},
		},
		{
			name: "scientific notation",
			d:    "M1e1 2E-1",
			want: Path{
				{Op: MoveTo, Pts: [3]Point{{10, 0.2}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePath(tc.d)
			require.NoError(t, err)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.Equal(t, tc.want[i].Op, got[i].Op, "segment %d", i)
				for j := range tc.want[i].Pts {
					assertPoint(t, tc.want[i].Pts[j], got[i].Pts[j])
				}
			}
		})
	}
}

func TestPath_ParseErrors(t *testing.T) {
	for _, d := range []string{
		"10 10",
		"M0 0 L1",
		"M0 0 Z 5",
		"M0 0 A5 5 0 2 1 10 10",
		"M0 0 X 1",
	} {
		_, err := ParsePath(d)
		assert.Error(t, err, d)
	}
}

func TestPath_Bounds(t *testing.T) {
	testCases := []struct {
		name string
		d    string
		want Rect
	}{
		{"lines", "M10 10 H20 V20 Z", Rect{10, 10, 20, 20}},
		{"cubic extrema", "M0,0 C0,10 10,10 10,0", Rect{0, 0, 10, 7.5}},
		{"quadratic extrema", "M0 0 Q5 10 10 0", Rect{0, 0, 10, 5}},
		{"half circle arc", "M0 0 A5 5 0 0 1 10 0", Rect{0, -5, 10, 0}},
		{"lone move ignored", "M100 100 M0 0 L1 1", Rect{0, 0, 1, 1}},
		{"single character arc flags", "M0 0a5 5 0 0110 0", Rect{0, -5, 10, 0}},
		{"repeated arc with packed flags", "M0 0a5 5 0 0110 0 5 5 0 0110 0", Rect{0, -5, 20, 0}},
		{"out of range radii are scaled up", "M0 0a1 1 0 0110 0", Rect{0, -5, 10, 0}},
		{"scaled up ellipse keeps its ratio", "M0 0A1 2 0 0 1 10 0", Rect{0, -10, 10, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePath(tc.d)
			require.NoError(t, err)
			assertRect(t, tc.want, p.Bounds())
		})
	}

	assert.True(t, Path{}.Bounds().IsEmpty())
}

func TestPath_PackedArcFlags(t *testing.T) {
	p, err := ParsePath("M0 0a1 1 0 011 1")
	require.NoError(t, err)
	require.Greater(t, len(p), 1)
	last := p[len(p)-1]
	assert.Equal(t, CubicTo, last.Op)
	assertPoint(t, Point{1, 1}, last.Pts[2])
}

func TestPath_TransformKeepsBoundsConsistent(t *testing.T) {
	p, err := ParsePath("M0 0 L10 0 L10 10 L0 10 Z")
	require.NoError(t, err)

	m := Translate(5, 5).Multiply(Scale(2, 3))
	assertRect(t, Rect{5, 5, 25, 35}, p.Transform(m).Bounds())
	assertRect(t, p.Bounds().Transform(m), p.Transform(m).Bounds())
}

func TestPath_Format(t *testing.T) {
	var p Path
	p.MoveTo(Point{0, 0})
	p.LineTo(Point{1.5, 2})
	p.QuadTo(Point{1, 1}, Point{2, 2})
	p.CubicTo(Point{1, 1}, Point{2, 2}, Point{3.33333, -0.00001})
	p.Close()

	assert.Equal(t, "M0 0L1.5 2Q1 1 2 2C1 1 2 2 3.333 0Z", p.Format(3))

	round, err := ParsePath(p.Format(3))
	require.NoError(t, err)
	assert.Len(t, round, len(p))
}

func TestShapes(t *testing.T) {
	assertRect(t, Rect{1, 2, 11, 22}, RectPath(1, 2, 10, 20, 0, 0).Bounds())
	assertRect(t, Rect{1, 2, 11, 22}, RectPath(1, 2, 10, 20, 50, 0).Bounds())
	assertRect(t, Rect{-5, -3, 5, 3}, EllipsePath(0, 0, 5, 3).Bounds())
	assertRect(t, Rect{0, 0, 4, 4}, LinePath(4, 0, 0, 4).Bounds())

	assert.Empty(t, RectPath(0, 0, 0, 10, 0, 0))
	assert.Empty(t, EllipsePath(0, 0, 0, 10))

	pts, err := ParsePoints("0,0 10,0 10 10")
	require.NoError(t, err)
	poly := PolyPath(pts, true)
	assert.Equal(t, Close, poly[len(poly)-1].Op)
	assertRect(t, Rect{0, 0, 10, 10}, poly.Bounds())

	_, err = ParsePoints("0,0 10")
	assert.Error(t, err)
}

func TestRect(t *testing.T) {
	assert := assert.New(t)

	r := EmptyRect()
	assert.True(r.IsEmpty())
	assert.Zero(r.Width())

	r.AddPoint(Point{2, 4})
	r.AddPoint(Point{6, 6})
	assert.False(r.IsEmpty())
	assert.Equal(4.0, r.Width())
	assert.Equal(2.0, r.Height())
	assert.Equal(Point{4, 5}, r.Center())

	assertRect(t, Rect{2, 3, 6, 7}, r.Square())
	assertRect(t, Rect{1, 3, 7, 7}, r.Inset(-1))
	assertRect(t, r, r.Union(EmptyRect()))
	assertRect(t, r, EmptyRect().Union(r))
	assertRect(t, Rect{0, 0, 6, 6}, r.Union(Rect{0, 0, 1, 1}))
}

func TestFormatFloat(t *testing.T) {
	testCases := []struct {
		in        float64
		precision int
		want      string
	}{
		{1.23456, 3, "1.235"},
		{2, 3, "2"},
		{100, 3, "100"},
		{-0.0001, 3, "0"},
		{-1.5, 2, "-1.5"},
		{0.1, 0, "0"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatFloat(tc.in, tc.precision))
	}
}
