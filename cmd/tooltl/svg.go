package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tooltl/tooltl"
	"github.com/tooltl/tooltl/utils"
)

var norm = tooltl.Normalizer{
	Standardize:    true,
	BakeTransforms: true,
	Recenter:       true,
	Square:         true,
	Accessibility:  true,
	StripMetadata:  true,
	AutoPrefix:     true,
	Precision:      tooltl.DefaultPrecision,
}

var svgCmd = &cobra.Command{
	Use:   "svg <src> [dst]",
	Short: "Normalize SVG icons",
	Long: `Normalizes a single icon, a directory of icons or the standard input.

Without a destination the icons are rewritten in place. Use "-" as source
and destination to read from stdin and write to stdout.

Example:
  tooltl svg icons/ build/icons --padding 1
  cat icon.svg | tooltl svg - - > out.svg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSVG,
}

func init() {
	f := svgCmd.Flags()
	f.BoolVar(&norm.Standardize, "standardize", norm.Standardize, "Derive the viewBox and drop the fixed dimensions")
	f.BoolVar(&norm.BakeTransforms, "bake", norm.BakeTransforms, "Bake the transforms into the path data")
	f.BoolVar(&norm.Recenter, "recenter", norm.Recenter, "Fit the viewBox to the content bounds")
	f.BoolVar(&norm.Square, "square", norm.Square, "Make the viewBox square when recentering")
	f.Float64Var(&norm.Padding, "padding", 0, "Padding added around the content, in user units")
	f.BoolVar(&norm.Accessibility, "a11y", norm.Accessibility, "Add the accessibility attributes")
	f.BoolVar(&norm.StripMetadata, "strip", norm.StripMetadata, "Remove the <metadata> elements")
	f.StringVar(&norm.PrefixIDs, "prefix", "", "Prefix every id with the given string")
	f.BoolVar(&norm.AutoPrefix, "auto-prefix", norm.AutoPrefix, "Prefix the ids with the file name unless --prefix is set")
	f.IntVar(&norm.Precision, "precision", norm.Precision, "Decimals kept in the rewritten coordinates")
}

func runSVG(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	op := &tooltl.Ops{
		Src:      args[0],
		PipeName: pipeName,
		Workers:  workers,
		Quiet:    quiet,
	}
	if len(args) > 1 {
		op.Dst = args[1]
	} else if op.Src == pipeName {
		op.Dst = pipeName
	}

	n := norm
	n.Logger = logger
	sum, err := n.Execute(ctx, op)
	if err != nil {
		return err
	}
	if op.Dst != pipeName {
		printSummary(ctx, sum)
	}
	return sum.Err()
}

func printSummary(ctx context.Context, sum tooltl.Summary) {
	if quiet {
		return
	}
	msgType := utils.SuccessMessage
	if len(sum.Failed) > 0 || ctx.Err() != nil {
		msgType = utils.WarningMessage
	}
	fmt.Fprintln(os.Stderr, utils.StatusLine(fmt.Sprintf("%s normalized, %d failed, %s in %s",
		utils.Plural(sum.Processed, "icon"),
		len(sum.Failed),
		utils.Plural(sum.Warnings, "warning"),
		utils.FormatTime(sum.Elapsed),
	), msgType))
}
