package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tooltl/tooltl/config"
	"github.com/tooltl/tooltl/pipeline"
	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
)

var (
	configPath string
	only       string
	watch      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobs of the configuration file",
	Long: `Runs the jobs described by tooltl.yaml in order: sheets, glyphs, icons,
atlases and strips. With --watch the affected jobs are run again whenever
their sources change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if workers > 0 {
			cfg.Workers = workers
		}
		sections, err := pipeline.ParseSections(only)
		if err != nil {
			return err
		}

		r := &pipeline.Runner{Logger: logger, Quiet: quiet}
		err = r.RunSections(ctx, cfg, sections)
		if !watch {
			if err == nil {
				status(fmt.Sprintf("%s done", sections))
			}
			return err
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, utils.StatusLine(err.Error(), utils.ErrorMessage))
		}

		w := pipeline.NewWatcher(r, cfg)
		w.OnRun = func(s pipeline.Section, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, utils.StatusLine(err.Error(), utils.ErrorMessage))
				return
			}
			status(fmt.Sprintf("%s rebuilt", s))
		}
		status("watching for changes, press Ctrl+C to stop")
		return w.Watch(ctx)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg := &config.Config{
			Icons: []config.IconJob{{Name: "icons", Src: "icons"}},
			Atlases: []config.AtlasJob{{
				Name:  "atlas",
				Src:   "icons",
				Image: "build/icons.png",
			}},
		}
		cfg.Defaults()
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		logger.Debug("config written", zap.String("path", configPath))
		status(fmt.Sprintf("%s created", configPath))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Configuration file")
	runCmd.Flags().StringVar(&only, "only", "", "Comma separated sections to run (sheets,glyphs,icons,atlases,strips)")
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Run again when the sources change")
}
