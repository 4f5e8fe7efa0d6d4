package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tooltl/tooltl/atlas"
	"github.com/tooltl/tooltl/glyph"
	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
)

var (
	glyphRunes     string
	glyphPrecision int

	atlasOpts = atlas.Options{Cell: atlas.DefaultCell}
	stripOpts atlas.StripOptions
	manifest  string
)

var glyphsCmd = &cobra.Command{
	Use:   "glyphs <font> <dst>",
	Short: "Export the glyphs of a font as SVG icons",
	Long: `Exports the glyphs of a TrueType or OpenType font, one SVG file per glyph.

Example:
  tooltl glyphs fonts/icons.ttf icons/ --runes "ABC"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		f, err := glyph.Load(args[0])
		if err != nil {
			return err
		}
		sum, err := glyph.Export(ctx, f, args[1], glyph.Options{
			Runes:     glyphRunes,
			Precision: glyphPrecision,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		status(fmt.Sprintf("%s exported to %s, %d skipped",
			utils.Plural(sum.Exported, "glyph"), args[1], sum.Skipped))
		return sum.Err()
	},
}

var atlasCmd = &cobra.Command{
	Use:   "atlas <src> <image.png>",
	Short: "Pack a directory of icons into a texture atlas",
	Long: `Rasterizes every icon and image of a directory into a fixed size grid,
and writes the atlas together with a JSON manifest of the frames.

Example:
  tooltl atlas icons/ build/icons.png --cell 32 --padding 2 --pot`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sources, err := atlas.Collect(args[0])
		if err != nil {
			return err
		}
		opts := atlasOpts
		opts.Workers = workers
		opts.Logger = logger
		a, err := atlas.Pack(ctx, sources, opts)
		if err != nil {
			return err
		}
		return writeAtlas(a, args[1])
	},
}

var stripCmd = &cobra.Command{
	Use:   "strip <src> <image.png>",
	Short: "Concatenate a directory of images into a sprite strip",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sources, err := atlas.Collect(args[0])
		if err != nil {
			return err
		}
		opts := stripOpts
		opts.Workers = workers
		a, err := atlas.Strip(ctx, sources, opts)
		if err != nil {
			return err
		}
		return writeAtlas(a, args[1])
	},
}

func init() {
	glyphsCmd.Flags().StringVar(&glyphRunes, "runes", "", "Export only the glyphs of these characters")
	glyphsCmd.Flags().IntVar(&glyphPrecision, "precision", 0, "Decimals kept in the path data")

	f := atlasCmd.Flags()
	f.IntVar(&atlasOpts.Cell, "cell", atlasOpts.Cell, "Cell size in pixels")
	f.IntVar(&atlasOpts.Padding, "padding", 0, "Transparent padding inside each cell")
	f.IntVar(&atlasOpts.Columns, "columns", 0, "Number of columns (0 makes the grid square)")
	f.BoolVar(&atlasOpts.PowerOfTwo, "pot", false, "Round the atlas size up to a power of two")
	f.StringVar(&atlasOpts.Tint, "tint", "", "Recolor the frames with a hex color")
	f.StringVar(&atlasOpts.Blend, "blend", "", "Blend mode mixing the tint with the frame colors")
	f.StringVar(&manifest, "manifest", "", "Manifest path (defaults to the image path with a .json extension)")

	f = stripCmd.Flags()
	f.BoolVar(&stripOpts.Vertical, "vertical", false, "Stack the frames vertically")
	f.IntVar(&stripOpts.Gap, "gap", 0, "Gap between the frames in pixels")
	f.IntVar(&stripOpts.Size, "size", 0, "Common frame height, or width when vertical")
	f.StringVar(&manifest, "manifest", "", "Manifest path (defaults to the image path with a .json extension)")
}

func writeAtlas(a *atlas.Atlas, image string) error {
	if !utils.HasExtension(image, []string{".png"}) {
		return fmt.Errorf("%s: the atlas image must be a .png file", image)
	}
	out := manifest
	if out == "" {
		out = strings.TrimSuffix(image, filepath.Ext(image)) + ".json"
	}
	if err := a.WriteFiles(image, out); err != nil {
		return err
	}
	logger.Debug("atlas written", zap.String("image", image), zap.String("manifest", out))
	status(fmt.Sprintf("%s packed into %s (%dx%d)",
		utils.Plural(a.Manifest.Meta.Count, "frame"), image, a.Manifest.Meta.Width, a.Manifest.Meta.Height))
	return nil
}

func status(msg string) {
	if !quiet {
		fmt.Fprintln(os.Stderr, utils.StatusLine(msg, utils.SuccessMessage))
	}
}
