// Package pipeline runs the jobs of a configuration in dependency order and
// re-runs them when their sources change.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tooltl/tooltl"
	"github.com/tooltl/tooltl/atlas"
	"github.com/tooltl/tooltl/config"
	"github.com/tooltl/tooltl/glyph"
	"github.com/tooltl/tooltl/sheets"
	"go.uber.org/zap"
)

// Section selects a group of jobs.
type Section uint8

// Sections, in execution order. Sheets come first, glyph export produces
// icons which are normalized, then packed.
const (
	Sheets Section = 1 << iota
	Glyphs
	Icons
	Atlases
	Strips

	All = Sheets | Glyphs | Icons | Atlases | Strips
)

var sectionNames = []struct {
	section Section
	name    string
}{
	{Sheets, "sheets"},
	{Glyphs, "glyphs"},
	{Icons, "icons"},
	{Atlases, "atlases"},
	{Strips, "strips"},
}

func (s Section) String() string {
	var names []string
	for _, sn := range sectionNames {
		if s&sn.section != 0 {
			names = append(names, sn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// ParseSections parses a comma separated list of section names.
func ParseSections(list string) (Section, error) {
	var s Section
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, sn := range sectionNames {
			if sn.name == name {
				s |= sn.section
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown section %q", name)
		}
	}
	if s == 0 {
		return All, nil
	}
	return s, nil
}

// Runner executes the configured jobs.
type Runner struct {
	Logger *zap.Logger
	// Client fetches the sheets. Nil uses http.DefaultClient.
	Client *http.Client
	// Quiet disables the terminal progress output of the icon jobs.
	Quiet bool
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run executes every section of the configuration.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) error {
	return r.RunSections(ctx, cfg, All)
}

// RunSections executes the selected sections in order. A failing job is
// logged and the run continues; the returned error joins every failure.
func (r *Runner) RunSections(ctx context.Context, cfg *config.Config, sections Section) error {
	var errs []error
	fail := func(section Section, name string, err error) {
		r.logger().Error("job failed",
			zap.Stringer("section", section),
			zap.String("job", name),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s %s: %w", section, name, err))
	}

	steps := []struct {
		section Section
		run     func(context.Context, *config.Config, func(Section, string, error))
	}{
		{Sheets, r.runSheets},
		{Glyphs, r.runGlyphs},
		{Icons, r.runIcons},
		{Atlases, r.runAtlases},
		{Strips, r.runStrips},
	}
	for _, step := range steps {
		if sections&step.section == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		start := time.Now()
		step.run(ctx, cfg, fail)
		r.logger().Debug("section done",
			zap.Stringer("section", step.section),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return errors.Join(errs...)
}

func (r *Runner) runSheets(ctx context.Context, cfg *config.Config, fail func(Section, string, error)) {
	e := &sheets.Exporter{Client: r.Client, Logger: r.logger()}
	for _, job := range cfg.Sheets {
		if err := e.Export(ctx, job); err != nil {
			fail(Sheets, job.Name, err)
		}
	}
}

func (r *Runner) runGlyphs(ctx context.Context, cfg *config.Config, fail func(Section, string, error)) {
	for _, job := range cfg.Glyphs {
		f, err := glyph.Load(job.Font)
		if err != nil {
			fail(Glyphs, job.Name, err)
			continue
		}
		sum, err := glyph.Export(ctx, f, job.Dst, glyph.Options{
			Runes:     job.Runes,
			Precision: job.Precision,
			Logger:    r.logger(),
		})
		if err == nil {
			err = sum.Err()
		}
		if err != nil {
			fail(Glyphs, job.Name, err)
		}
		r.logger().Info("glyphs exported",
			zap.String("job", job.Name),
			zap.Int("exported", sum.Exported),
			zap.Int("skipped", sum.Skipped),
			zap.Int("failed", len(sum.Failed)),
		)
	}
}

func (r *Runner) runIcons(ctx context.Context, cfg *config.Config, fail func(Section, string, error)) {
	for _, job := range cfg.Icons {
		n := job.Normalizer()
		n.Logger = r.logger()
		sum, err := n.Execute(ctx, &tooltl.Ops{
			Src:     job.Src,
			Dst:     job.Dst,
			Workers: cfg.Workers,
			Quiet:   r.Quiet,
		})
		if err == nil {
			err = sum.Err()
		}
		if err != nil {
			fail(Icons, job.Name, err)
		}
		r.logger().Info("icons normalized",
			zap.String("job", job.Name),
			zap.Int("processed", sum.Processed),
			zap.Int("failed", len(sum.Failed)),
			zap.Int("warnings", sum.Warnings),
			zap.Duration("elapsed", sum.Elapsed),
		)
	}
}

func (r *Runner) runAtlases(ctx context.Context, cfg *config.Config, fail func(Section, string, error)) {
	for _, job := range cfg.Atlases {
		sources, err := atlas.Collect(job.Src)
		if err != nil {
			fail(Atlases, job.Name, err)
			continue
		}
		a, err := atlas.Pack(ctx, sources, atlas.Options{
			Cell:       job.Cell,
			Padding:    job.Padding,
			Columns:    job.Columns,
			PowerOfTwo: job.PowerOfTwo,
			Tint:       job.Tint,
			Blend:      job.Blend,
			Workers:    cfg.Workers,
			Logger:     r.logger(),
		})
		if err == nil {
			err = a.WriteFiles(job.Image, job.Manifest)
		}
		if err != nil {
			fail(Atlases, job.Name, err)
			continue
		}
		r.logger().Info("atlas packed",
			zap.String("job", job.Name),
			zap.String("image", job.Image),
			zap.Int("frames", a.Manifest.Meta.Count),
		)
	}
}

func (r *Runner) runStrips(ctx context.Context, cfg *config.Config, fail func(Section, string, error)) {
	for _, job := range cfg.Strips {
		sources, err := atlas.Collect(job.Src)
		if err != nil {
			fail(Strips, job.Name, err)
			continue
		}
		a, err := atlas.Strip(ctx, sources, atlas.StripOptions{
			Vertical: job.Vertical,
			Gap:      job.Gap,
			Size:     job.Size,
			Workers:  cfg.Workers,
		})
		if err == nil {
			err = a.WriteFiles(job.Image, job.Manifest)
		}
		if err != nil {
			fail(Strips, job.Name, err)
			continue
		}
		r.logger().Info("strip built",
			zap.String("job", job.Name),
			zap.String("image", job.Image),
			zap.Int("frames", a.Manifest.Meta.Count),
		)
	}
}
