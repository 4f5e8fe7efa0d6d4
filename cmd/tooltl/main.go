package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const helpBanner = `
┌┬┐┌─┐┌─┐┬  ┌┬┐┬
 │ │ ││ ││   │ │
 ┴ └─┘└─┘┴─┘ ┴ ┴─┘

Asset pipeline for SVG icons, fonts, sprites and sheets.
    Version: %s
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version = "dev"

var (
	verbose bool
	quiet   bool
	workers int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "tooltl",
	Short:         "Asset pipeline for SVG icons, fonts, sprites and sheets",
	Long:          fmt.Sprintf(helpBanner, Version),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Disable the progress indicator")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Number of files processed concurrently (0 uses the CPU count)")
	rootCmd.Version = Version

	rootCmd.AddCommand(svgCmd, glyphsCmd, atlasCmd, stripCmd, sheetsCmd, runCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, utils.StatusLine(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}
}
