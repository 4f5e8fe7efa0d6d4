package atlas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sort"

	"github.com/tooltl/tooltl/imop"
	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCell is the cell size used when Options.Cell is not set.
const DefaultCell = 64

var (
	// ErrNoSources is returned when there is nothing to pack.
	ErrNoSources = errors.New("atlas: no sources")
	// ErrCellTooSmall is returned when the padding leaves no room for the icon.
	ErrCellTooSmall = errors.New("atlas: cell size must exceed twice the padding")
)

// Options drive the grid packer.
type Options struct {
	// Cell is the side of the square grid cells, in pixels.
	Cell int
	// Padding is kept empty inside each cell, on every side.
	Padding int
	// Columns of the grid. Zero selects ceil(sqrt(n)).
	Columns int
	// PowerOfTwo rounds both sheet dimensions up to a power of two.
	PowerOfTwo bool
	// Tint recolors every icon, e.g. "#ffffff". Empty keeps the source colors.
	Tint string
	// Blend mixes the tint with the icon colors: normal, darken, lighten,
	// multiply, screen or overlay. Empty replaces the colors.
	Blend string
	// Workers bounds the concurrent rasterization. Zero uses the number of CPUs.
	Workers int
	Logger  *zap.Logger
}

// Pack rasterizes the sources and lays them out on a grid, in name order.
// Each icon is centered in the padded area of its cell; the frame reported in
// the manifest is that padded area.
func Pack(ctx context.Context, sources []Source, opts Options) (*Atlas, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	if opts.Cell == 0 {
		opts.Cell = DefaultCell
	}
	if opts.Padding < 0 || opts.Cell <= 2*opts.Padding {
		return nil, fmt.Errorf("%w: cell %d, padding %d", ErrCellTooSmall, opts.Cell, opts.Padding)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var tint *color.NRGBA
	if opts.Tint != "" {
		c, err := utils.HexToRGBA(opts.Tint)
		if err != nil {
			return nil, fmt.Errorf("atlas: tint: %w", err)
		}
		tint = &c
	}
	blend := imop.NewBlend()
	if opts.Blend != "" {
		if err := blend.Set(opts.Blend); err != nil {
			return nil, fmt.Errorf("atlas: %w", err)
		}
	}

	sorted, err := sortSources(sources)
	if err != nil {
		return nil, err
	}

	n := len(sorted)
	cols := opts.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	cols = utils.Min(cols, n)
	rows := utils.CeilDiv(n, cols)
	inner := opts.Cell - 2*opts.Padding

	tiles, err := renderAll(ctx, sorted, opts.Workers, func(s Source) (*image.NRGBA, error) {
		img, err := Render(s, inner)
		if err != nil || tint == nil {
			return img, err
		}
		return imop.Tint(img, *tint, blend), nil
	})
	if err != nil {
		return nil, err
	}

	w, h := cols*opts.Cell, rows*opts.Cell
	if opts.PowerOfTwo {
		w, h = utils.NextPowerOfTwo(w), utils.NextPowerOfTwo(h)
	}
	sheet := image.NewNRGBA(image.Rect(0, 0, w, h))
	size := sheet.Bounds().Size()

	manifest := Manifest{
		Frames: make(map[string]Frame, n),
		Meta: Meta{
			Width:   w,
			Height:  h,
			Cell:    opts.Cell,
			Padding: opts.Padding,
			Columns: cols,
			Rows:    rows,
			Count:   n,
		},
	}

	op := imop.InitOp()
	for i, tile := range tiles {
		col, row := i%cols, i/cols
		area := image.Rect(0, 0, inner, inner).Add(image.Pt(
			col*opts.Cell+opts.Padding,
			row*opts.Cell+opts.Padding,
		))
		tb := tile.Bounds()
		at := area.Min.Add(image.Pt((inner-tb.Dx())/2, (inner-tb.Dy())/2))
		op.Draw(sheet, tile, at, nil)

		manifest.Frames[sorted[i].Name] = newFrame(area, size)
		logger.Debug("packed",
			zap.String("name", sorted[i].Name),
			zap.Int("x", area.Min.X),
			zap.Int("y", area.Min.Y),
		)
	}

	return &Atlas{Image: sheet, Manifest: manifest}, nil
}

// sortSources orders the sources by name and rejects duplicates.
func sortSources(sources []Source) ([]Source, error) {
	sorted := append([]Source(nil), sources...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return nil, fmt.Errorf("atlas: duplicate source name %q", sorted[i].Name)
		}
	}
	return sorted, nil
}

// renderAll rasterizes the sources concurrently, keeping their order.
func renderAll(
	ctx context.Context,
	sources []Source,
	workers int,
	fn func(Source) (*image.NRGBA, error),
) ([]*image.NRGBA, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	tiles := make([]*image.NRGBA, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := fn(src)
			if err != nil {
				return err
			}
			tiles[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}
