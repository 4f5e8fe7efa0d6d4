package glyph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tooltl/tooltl"
	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
)

// Options of the exporter.
type Options struct {
	// Runes restricts the export to the glyphs mapped from these characters.
	// Empty exports every glyph of the font.
	Runes string
	// Precision of the path data. Zero means tooltl.DefaultPrecision.
	Precision int
	// Normalizer post-processes every icon. Nil applies the accessibility
	// attributes and strips the metadata.
	Normalizer *tooltl.Normalizer
	Logger     *zap.Logger
}

// Summary reports the outcome of an export.
type Summary struct {
	Exported int
	// Skipped counts the glyphs without outline and the unmapped runes.
	Skipped int
	Failed  []tooltl.Failure
}

// Err joins the errors of the failed glyphs.
func (s Summary) Err() error {
	return tooltl.Summary{Failed: s.Failed}.Err()
}

var nameReplacer = strings.NewReplacer("/", "_", `\`, "_", ":", "_")

type job struct {
	gid  sfnt.GlyphIndex
	name string
}

// Export writes one SVG file per glyph into dst. Files are named after the
// PostScript glyph names, falling back to uniXXXX for mapped runes and
// gid<N> otherwise. A failing glyph does not stop the export.
func Export(ctx context.Context, f *Font, dst string, opts Options) (Summary, error) {
	var sum Summary
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	precision := opts.Precision
	if precision <= 0 {
		precision = tooltl.DefaultPrecision
	}

	var buf sfnt.Buffer
	jobs, skipped, err := f.jobs(&buf, opts.Runes)
	if err != nil {
		return sum, err
	}
	sum.Skipped += skipped

	used := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		doc, err := f.Document(&buf, j.gid, precision)
		if errors.Is(err, ErrEmptyGlyph) {
			sum.Skipped++
			continue
		}
		if err != nil {
			sum.Failed = append(sum.Failed, tooltl.Failure{Path: j.name, Err: err})
			continue
		}

		name := j.name
		if used[name] {
			name = fmt.Sprintf("%s_%d", name, j.gid)
		}
		used[name] = true

		n := tooltl.Normalizer{Accessibility: true, StripMetadata: true}
		if opts.Normalizer != nil {
			n = *opts.Normalizer
		}
		n.Precision = precision
		n.PrefixIDs = utils.SanitizeName(name)
		n.Logger = logger.With(zap.String("glyph", name))
		if _, err := n.Normalize(doc); err != nil {
			sum.Failed = append(sum.Failed, tooltl.Failure{Path: name, Err: err})
			continue
		}

		data, err := doc.Bytes()
		if err == nil {
			err = utils.WriteFileAtomic(filepath.Join(dst, name+".svg"), data)
		}
		if err != nil {
			sum.Failed = append(sum.Failed, tooltl.Failure{Path: name, Err: err})
			continue
		}
		sum.Exported++
		logger.Debug("glyph exported", zap.String("name", name), zap.Uint16("gid", uint16(j.gid)))
	}
	return sum, nil
}

// jobs lists the glyphs to export with their file names.
func (f *Font) jobs(buf *sfnt.Buffer, runes string) ([]job, int, error) {
	var (
		jobs    []job
		skipped int
	)
	if runes == "" {
		for i := 0; i < f.SFNT.NumGlyphs(); i++ {
			gid := sfnt.GlyphIndex(i)
			jobs = append(jobs, job{gid: gid, name: f.glyphName(buf, gid, fmt.Sprintf("gid%d", i))})
		}
		return jobs, 0, nil
	}

	seen := make(map[sfnt.GlyphIndex]bool)
	for _, r := range runes {
		gid, err := f.SFNT.GlyphIndex(buf, r)
		if err != nil {
			return nil, 0, fmt.Errorf("mapping %q: %w", r, err)
		}
		if gid == 0 {
			skipped++
			continue
		}
		if seen[gid] {
			continue
		}
		seen[gid] = true
		jobs = append(jobs, job{gid: gid, name: f.glyphName(buf, gid, fmt.Sprintf("uni%04X", r))})
	}
	return jobs, skipped, nil
}

func (f *Font) glyphName(buf *sfnt.Buffer, gid sfnt.GlyphIndex, fallback string) string {
	name, err := f.SFNT.GlyphName(buf, gid)
	if err != nil || name == "" {
		name = fallback
	}
	return nameReplacer.Replace(name)
}
