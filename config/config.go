// Package config loads the tooltl.yaml pipeline description.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tooltl/tooltl"
	"github.com/tooltl/tooltl/atlas"
	"github.com/tooltl/tooltl/imop"
	"github.com/tooltl/tooltl/sheets"
	"github.com/tooltl/tooltl/utils"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "tooltl.yaml"

// Config holds the jobs of the asset pipeline.
type Config struct {
	// Workers bounds the concurrency of every job. Zero uses the number of CPUs.
	Workers int `yaml:"workers"`

	Icons   []IconJob    `yaml:"icons"`
	Glyphs  []GlyphJob   `yaml:"glyphs"`
	Atlases []AtlasJob   `yaml:"atlases"`
	Strips  []StripJob   `yaml:"strips"`
	Sheets  []sheets.Job `yaml:"sheets"`

	// Dir is the directory of the configuration file.
	Dir string `yaml:"-"`
}

// IconJob normalizes a directory of SVG icons. The boolean steps default to true.
type IconJob struct {
	Name string `yaml:"name"`
	Src  string `yaml:"src"`
	// Dst defaults to Src, rewriting the icons in place.
	Dst string `yaml:"dst"`

	Standardize    *bool   `yaml:"standardize"`
	BakeTransforms *bool   `yaml:"bake_transforms"`
	Recenter       *bool   `yaml:"recenter"`
	Square         *bool   `yaml:"square"`
	Accessibility  *bool   `yaml:"accessibility"`
	StripMetadata  *bool   `yaml:"strip_metadata"`
	PrefixIDs      *bool   `yaml:"prefix_ids"`
	Padding        float64 `yaml:"padding"`
	Precision      int     `yaml:"precision"`
}

// GlyphJob exports the glyphs of a font as SVG icons.
type GlyphJob struct {
	Name      string `yaml:"name"`
	Font      string `yaml:"font"`
	Dst       string `yaml:"dst"`
	Runes     string `yaml:"runes"`
	Precision int    `yaml:"precision"`
}

// AtlasJob packs a directory of icons into a texture atlas.
type AtlasJob struct {
	Name  string `yaml:"name"`
	Src   string `yaml:"src"`
	Image string `yaml:"image"`
	// Manifest defaults to Image with a .json extension.
	Manifest   string `yaml:"manifest"`
	Cell       int    `yaml:"cell"`
	Padding    int    `yaml:"padding"`
	Columns    int    `yaml:"columns"`
	PowerOfTwo bool   `yaml:"power_of_two"`
	Tint       string `yaml:"tint"`
	Blend      string `yaml:"blend"`
}

// StripJob concatenates a directory of images into a sprite strip.
type StripJob struct {
	Name     string `yaml:"name"`
	Src      string `yaml:"src"`
	Image    string `yaml:"image"`
	Manifest string `yaml:"manifest"`
	Vertical bool   `yaml:"vertical"`
	Gap      int    `yaml:"gap"`
	Size     int    `yaml:"size"`
}

// Load reads and validates the configuration file. Relative paths are
// resolved against the directory of the file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(f, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration. Unknown fields are rejected.
func Parse(r io.Reader, dir string) (*Config, error) {
	cfg := &Config{Dir: dir}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Defaults()
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults fills the unset options of every job.
func (c *Config) Defaults() {
	for i := range c.Icons {
		j := &c.Icons[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("icons[%d]", i)
		}
		if j.Dst == "" {
			j.Dst = j.Src
		}
		for _, b := range []**bool{
			&j.Standardize, &j.BakeTransforms, &j.Recenter, &j.Square,
			&j.Accessibility, &j.StripMetadata, &j.PrefixIDs,
		} {
			if *b == nil {
				t := true
				*b = &t
			}
		}
	}
	for i := range c.Glyphs {
		if c.Glyphs[i].Name == "" {
			c.Glyphs[i].Name = fmt.Sprintf("glyphs[%d]", i)
		}
	}
	for i := range c.Atlases {
		j := &c.Atlases[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("atlases[%d]", i)
		}
		if j.Cell == 0 {
			j.Cell = atlas.DefaultCell
		}
		if j.Manifest == "" {
			j.Manifest = manifestPath(j.Image)
		}
	}
	for i := range c.Strips {
		j := &c.Strips[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("strips[%d]", i)
		}
		if j.Manifest == "" {
			j.Manifest = manifestPath(j.Image)
		}
	}
	for i := range c.Sheets {
		if c.Sheets[i].Name == "" {
			c.Sheets[i].Name = fmt.Sprintf("sheets[%d]", i)
		}
	}
}

func manifestPath(image string) string {
	if image == "" {
		return ""
	}
	return strings.TrimSuffix(image, filepath.Ext(image)) + ".json"
}

func (c *Config) resolve() {
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.Dir, *p)
		}
	}
	for i := range c.Icons {
		abs(&c.Icons[i].Src)
		abs(&c.Icons[i].Dst)
	}
	for i := range c.Glyphs {
		abs(&c.Glyphs[i].Font)
		abs(&c.Glyphs[i].Dst)
	}
	for i := range c.Atlases {
		abs(&c.Atlases[i].Src)
		abs(&c.Atlases[i].Image)
		abs(&c.Atlases[i].Manifest)
	}
	for i := range c.Strips {
		abs(&c.Strips[i].Src)
		abs(&c.Strips[i].Image)
		abs(&c.Strips[i].Manifest)
	}
	for i := range c.Sheets {
		abs(&c.Sheets[i].Output)
	}
}

// Validate reports every invalid job.
func (c *Config) Validate() error {
	var errs []error
	bad := func(name, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s", name, fmt.Sprintf(format, args...)))
	}

	if c.Workers < 0 {
		bad("workers", "must not be negative")
	}
	for _, j := range c.Icons {
		if j.Src == "" {
			bad(j.Name, "src is required")
		}
		if j.Padding < 0 {
			bad(j.Name, "padding must not be negative")
		}
	}
	for _, j := range c.Glyphs {
		if j.Font == "" {
			bad(j.Name, "font is required")
		}
		if j.Dst == "" {
			bad(j.Name, "dst is required")
		}
	}
	for _, j := range c.Atlases {
		if j.Src == "" {
			bad(j.Name, "src is required")
		}
		if !utils.HasExtension(j.Image, []string{".png"}) {
			bad(j.Name, "image must be a .png file")
		}
		if j.Padding < 0 || j.Cell <= 2*j.Padding {
			bad(j.Name, "cell %d must exceed twice the padding %d", j.Cell, j.Padding)
		}
		if j.Tint != "" {
			if _, err := utils.HexToRGBA(j.Tint); err != nil {
				bad(j.Name, "tint: %v", err)
			}
		}
		if j.Blend != "" {
			if err := imop.NewBlend().Set(j.Blend); err != nil {
				bad(j.Name, "%v", err)
			}
		}
	}
	for _, j := range c.Strips {
		if j.Src == "" {
			bad(j.Name, "src is required")
		}
		if !utils.HasExtension(j.Image, []string{".png"}) {
			bad(j.Name, "image must be a .png file")
		}
		if j.Gap < 0 || j.Size < 0 {
			bad(j.Name, "gap and size must not be negative")
		}
	}
	for _, j := range c.Sheets {
		if !utils.IsValidUrl(j.URL) {
			bad(j.Name, "invalid url %q", j.URL)
		}
		if j.Output == "" {
			bad(j.Name, "output is required")
		}
	}
	return errors.Join(errs...)
}

// Normalizer returns the normalizer configured by the job.
func (j IconJob) Normalizer() *tooltl.Normalizer {
	on := func(b *bool) bool { return b == nil || *b }
	return &tooltl.Normalizer{
		Standardize:    on(j.Standardize),
		BakeTransforms: on(j.BakeTransforms),
		Recenter:       on(j.Recenter),
		Square:         on(j.Square),
		Padding:        j.Padding,
		Accessibility:  on(j.Accessibility),
		StripMetadata:  on(j.StripMetadata),
		AutoPrefix:     on(j.PrefixIDs),
		Precision:      j.Precision,
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, buf.Bytes())
}

// WatchDirs lists the source locations of the icon, glyph, atlas and strip jobs.
func (c *Config) WatchDirs() []string {
	var dirs []string
	add := func(p string) {
		if p != "" && !utils.Contains(dirs, p) {
			dirs = append(dirs, p)
		}
	}
	for _, j := range c.Icons {
		add(j.Src)
	}
	for _, j := range c.Glyphs {
		add(filepath.Dir(j.Font))
	}
	for _, j := range c.Atlases {
		add(j.Src)
	}
	for _, j := range c.Strips {
		add(j.Src)
	}
	return dirs
}
