package atlas

import (
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/tooltl/tooltl/utils"
)

// StripOptions drive the sprite strip builder.
type StripOptions struct {
	// Vertical stacks the frames in a column instead of a row.
	Vertical bool
	// Gap separates consecutive frames, in pixels.
	Gap int
	// Size is the common frame height, or width when vertical. Zero keeps the source sizes.
	Size    int
	Workers int
}

// Strip concatenates the sources in name order into a single row or column.
func Strip(ctx context.Context, sources []Source, opts StripOptions) (*Atlas, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	sorted, err := sortSources(sources)
	if err != nil {
		return nil, err
	}

	frames, err := renderAll(ctx, sorted, opts.Workers, func(s Source) (*image.NRGBA, error) {
		if opts.Vertical {
			return render(s, opts.Size, 0)
		}
		return render(s, 0, opts.Size)
	})
	if err != nil {
		return nil, err
	}

	gap := utils.Max(opts.Gap, 0)
	rects := make([]image.Rectangle, len(frames))
	var w, h int
	for i, f := range frames {
		fw, fh := f.Bounds().Dx(), f.Bounds().Dy()
		if opts.Vertical {
			if i > 0 {
				h += gap
			}
			rects[i] = image.Rect(0, h, fw, h+fh)
			h += fh
			w = utils.Max(w, fw)
		} else {
			if i > 0 {
				w += gap
			}
			rects[i] = image.Rect(w, 0, w+fw, fh)
			w += fw
			h = utils.Max(h, fh)
		}
	}

	sheet := imaging.New(w, h, color.NRGBA{})
	manifest := Manifest{
		Frames: make(map[string]Frame, len(frames)),
		Meta: Meta{
			Width:   w,
			Height:  h,
			Columns: len(frames),
			Rows:    1,
			Count:   len(frames),
		},
	}
	if opts.Vertical {
		manifest.Meta.Columns, manifest.Meta.Rows = 1, len(frames)
	}
	for i, f := range frames {
		sheet = imaging.Paste(sheet, f, rects[i].Min)
		manifest.Frames[sorted[i].Name] = newFrame(rects[i], image.Pt(w, h))
	}
	return &Atlas{Image: sheet, Manifest: manifest}, nil
}
