package atlas

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="#ff0000"/></svg>`

func pngSource(t *testing.T, name string, w, h int, c color.NRGBA) Source {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return Source{Name: name, Data: buf.Bytes()}
}

func TestPack_Grid(t *testing.T) {
	assert := assert.New(t)
	blue := color.NRGBA{B: 255, A: 255}

	sources := []Source{
		{Name: "c", Data: []byte(redSquare)},
		pngSource(t, "b", 4, 2, blue),
		{Name: "a", Data: []byte(redSquare)},
	}
	a, err := Pack(context.Background(), sources, Options{Cell: 16, Padding: 2, Workers: 2})
	require.NoError(t, err)

	meta := a.Manifest.Meta
	assert.Equal(32, meta.Width)
	assert.Equal(32, meta.Height)
	assert.Equal(2, meta.Columns)
	assert.Equal(2, meta.Rows)
	assert.Equal(3, meta.Count)
	assert.Equal(image.Rect(0, 0, 32, 32), a.Image.Bounds())

	assert.Equal(Frame{X: 2, Y: 2, W: 12, H: 12, U0: 0.0625, V0: 0.0625, U1: 0.4375, V1: 0.4375}, a.Manifest.Frames["a"])
	assert.Equal(18, a.Manifest.Frames["b"].X)
	assert.Equal(2, a.Manifest.Frames["b"].Y)
	assert.Equal(2, a.Manifest.Frames["c"].X)
	assert.Equal(18, a.Manifest.Frames["c"].Y)

	// The svg icon fills its frame.
	px := a.Image.NRGBAAt(8, 8)
	assert.Greater(px.R, uint8(250))
	assert.Greater(px.A, uint8(250))
	assert.Zero(a.Image.NRGBAAt(0, 0).A)

	// The small raster is centered without upscaling.
	assert.Equal(blue, a.Image.NRGBAAt(18+4, 2+5))
	assert.Zero(a.Image.NRGBAAt(18+3, 2+5).A)
	assert.Zero(a.Image.NRGBAAt(18+4, 2+4).A)
}

func TestPack_TintAndPowerOfTwo(t *testing.T) {
	sources := []Source{
		{Name: "a", Data: []byte(redSquare)},
		{Name: "b", Data: []byte(redSquare)},
		{Name: "c", Data: []byte(redSquare)},
	}
	a, err := Pack(context.Background(), sources, Options{Cell: 10, Columns: 3, PowerOfTwo: true, Tint: "#00ff00"})
	require.NoError(t, err)

	assert.Equal(t, 32, a.Manifest.Meta.Width)
	assert.Equal(t, 16, a.Manifest.Meta.Height)
	assert.Equal(t, 1, a.Manifest.Meta.Rows)

	px := a.Image.NRGBAAt(5, 5)
	assert.Equal(t, uint8(0), px.R)
	assert.Equal(t, uint8(255), px.G)
	assert.Greater(t, px.A, uint8(250))
	assert.Zero(t, a.Image.NRGBAAt(31, 15).A)
}

func TestPack_Errors(t *testing.T) {
	ctx := context.Background()
	svg := Source{Name: "a", Data: []byte(redSquare)}

	_, err := Pack(ctx, nil, Options{})
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = Pack(ctx, []Source{svg}, Options{Cell: 4, Padding: 2})
	assert.ErrorIs(t, err, ErrCellTooSmall)

	_, err = Pack(ctx, []Source{svg, svg}, Options{})
	assert.ErrorContains(t, err, "duplicate")

	_, err = Pack(ctx, []Source{svg}, Options{Tint: "#zz"})
	assert.Error(t, err)

	_, err = Pack(ctx, []Source{svg}, Options{Tint: "#fff", Blend: "dodge"})
	assert.ErrorContains(t, err, "unsupported blend mode")

	_, err = Pack(ctx, []Source{{Name: "bad", Data: []byte("not an image")}}, Options{})
	assert.Error(t, err)

	_, err = Pack(ctx, []Source{{Name: "missing", Path: filepath.Join(t.TempDir(), "x.png")}}, Options{})
	assert.Error(t, err)
}

func TestStrip(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	sources := []Source{
		pngSource(t, "b", 6, 3, red),
		pngSource(t, "a", 4, 2, red),
	}

	a, err := Strip(context.Background(), sources, StripOptions{Gap: 1})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 11, 3), a.Image.Bounds())
	assert.Equal(t, 0, a.Manifest.Frames["a"].X)
	assert.Equal(t, 5, a.Manifest.Frames["b"].X)
	assert.Equal(t, 6, a.Manifest.Frames["b"].W)
	assert.Zero(t, a.Image.NRGBAAt(4, 0).A)
	assert.Equal(t, red, a.Image.NRGBAAt(5, 0))

	a, err = Strip(context.Background(), sources, StripOptions{Size: 6, Vertical: false})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 24, 6), a.Image.Bounds())

	a, err = Strip(context.Background(), sources, StripOptions{Vertical: true, Gap: 2})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 7), a.Image.Bounds())
	assert.Equal(t, 4, a.Manifest.Frames["b"].Y)
	assert.Equal(t, 2, a.Manifest.Meta.Rows)
	assert.Equal(t, 1, a.Manifest.Meta.Columns)

	_, err = Strip(context.Background(), nil, StripOptions{})
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestAtlas_WriteFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := Pack(context.Background(), []Source{{Name: "a", Data: []byte(redSquare)}}, Options{Cell: 8})
	require.NoError(t, err)

	pngPath := filepath.Join(dir, "out", "sheet.png")
	jsonPath := filepath.Join(dir, "out", "sheet.json")
	require.NoError(t, a.WriteFiles(pngPath, jsonPath))

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "sheet.png", m.Meta.Image)
	assert.Contains(t, m.Frames, "a")
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"a.svg", "sub/b.PNG", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	sources, err := Collect(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a", sources[0].Name)
	assert.Equal(t, "sub/b", sources[1].Name)
}
