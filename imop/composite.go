package imop

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/tooltl/tooltl/utils"
)

// Porter-Duff operators.
const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Composite holds the currently active composition operator.
type Composite struct {
	current string
	ops     []string
}

// InitOp returns a Composite using the source-over operator.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set changes the active operator.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active operator.
func (op *Composite) Get() string {
	return op.current
}

// factors returns the Porter-Duff source and backdrop fractions for the given alphas.
func (op *Composite) factors(as, ab float64) (fa, fb float64) {
	switch op.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 1, 1 - as
}

// Draw composes src onto dst with the origin of src placed at the at point.
// The operator is applied only inside the area covered by src; the remaining
// dst pixels are left untouched. A non-nil blend mixes the colors of the
// overlapping pixels before composition.
func (op *Composite) Draw(dst *image.NRGBA, src image.Image, at image.Point, blend *Blend) {
	sb := src.Bounds()
	area := dst.Bounds().Intersect(sb.Sub(sb.Min).Add(at))
	if area.Empty() {
		return
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			sc := color.NRGBAModel.Convert(src.At(sb.Min.X+x-at.X, sb.Min.Y+y-at.Y)).(color.NRGBA)
			i := dst.PixOffset(x, y)
			bc := color.NRGBA{R: dst.Pix[i], G: dst.Pix[i+1], B: dst.Pix[i+2], A: dst.Pix[i+3]}

			out := op.mix(sc, bc, blend)
			dst.Pix[i+0] = out.R
			dst.Pix[i+1] = out.G
			dst.Pix[i+2] = out.B
			dst.Pix[i+3] = out.A
		}
	}
}

// mix computes a single composited pixel from the source and backdrop colors.
func (op *Composite) mix(sc, bc color.NRGBA, blend *Blend) color.NRGBA {
	as := float64(sc.A) / 255
	ab := float64(bc.A) / 255
	fa, fb := op.factors(as, ab)

	ao := as*fa + ab*fb
	if ao <= 0 {
		return color.NRGBA{}
	}

	channel := func(s, b uint8) uint8 {
		cs := float64(s) / 255
		cb := float64(b) / 255
		if blend != nil && blend.OpType != "" && blend.OpType != Normal {
			cs = (1-ab)*cs + ab*blend.apply(cb, cs)
		}
		co := (cs*as*fa + cb*ab*fb) / ao
		return uint8(math.Round(utils.Clamp(co, 0, 1) * 255))
	}

	return color.NRGBA{
		R: channel(sc.R, bc.R),
		G: channel(sc.G, bc.G),
		B: channel(sc.B, bc.B),
		A: uint8(math.Round(utils.Clamp(ao, 0, 1) * 255)),
	}
}

// Tint recolors img with c, keeping the alpha coverage of img.
// Without a blend mode it is the source-in composition of a solid color over
// the image. Otherwise the color is blended with the image colors and placed
// with source-atop.
func Tint(img *image.NRGBA, c color.NRGBA, blend *Blend) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)

	op := InitOp()
	op.current = SrcIn
	if blend != nil && blend.OpType != "" && blend.OpType != Normal {
		op.current = SrcAtop
	}
	op.Draw(out, &image.Uniform{C: c}, out.Bounds().Min, blend)
	return out
}
