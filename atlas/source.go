// Package atlas packs icons into texture atlases and sprite strips for the
// WebGL renderer, together with a JSON manifest describing every frame.
package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/tooltl/tooltl/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Extensions lists the supported source files.
var Extensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// Source is a named image to place on a sheet.
type Source struct {
	Name string
	// Path is read when Data is nil.
	Path string
	Data []byte
}

// Collect returns the supported files found under dir. The frame names are
// the slash separated paths relative to dir, without extension.
func Collect(dir string) ([]Source, error) {
	var sources []Source
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !utils.HasExtension(path, Extensions) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		sources = append(sources, Source{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting sources: %w", err)
	}
	return sources, nil
}

func (s Source) bytes() ([]byte, error) {
	if s.Data != nil {
		return s.Data, nil
	}
	if s.Path == "" {
		return nil, errors.New("source has neither data nor path")
	}
	return os.ReadFile(s.Path)
}

func (s Source) isSVG(data []byte) bool {
	if strings.EqualFold(filepath.Ext(s.Path), ".svg") {
		return true
	}
	return utils.DetectContentType(data) == "image/svg+xml"
}

// Render decodes the source and scales it to fit a size x size square,
// preserving its aspect ratio. SVG icons are rasterized at the target size,
// raster images are only scaled down. A zero size keeps the natural size.
func Render(s Source, size int) (*image.NRGBA, error) {
	return render(s, size, size)
}

// render fits the source in a w x h box. A zero dimension is unbounded: with
// a single bound the image is scaled, up or down, to match it.
func render(s Source, w, h int) (*image.NRGBA, error) {
	data, err := s.bytes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if s.isSVG(data) {
		img, err := rasterize(data, w, h)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	switch {
	case w <= 0 && h <= 0:
		return imaging.Clone(img), nil
	case w > 0 && h > 0:
		return imaging.Fit(img, w, h, imaging.Lanczos), nil
	default:
		return imaging.Resize(img, utils.Max(w, 0), utils.Max(h, 0), imaging.Lanczos), nil
	}
}

// rasterize draws the SVG icon scaled to fit the bw x bh box.
func rasterize(data []byte, bw, bh int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("reading svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, errors.New("svg has no usable viewBox")
	}

	scale := 1.0
	switch {
	case bw > 0 && bh > 0:
		scale = math.Min(float64(bw)/vw, float64(bh)/vh)
	case bw > 0:
		scale = float64(bw) / vw
	case bh > 0:
		scale = float64(bh) / vh
	}
	w := utils.Max(int(math.Round(vw*scale)), 1)
	h := utils.Max(int(math.Round(vh*scale)), 1)

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	return imaging.Clone(rgba), nil
}
