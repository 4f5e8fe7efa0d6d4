package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
workers: 4
icons:
  - src: icons
    recenter: false
    padding: 1
glyphs:
  - name: symbols
    font: fonts/symbols.ttf
    dst: icons/glyphs
    runes: "★☆"
atlases:
  - src: icons
    image: build/icons.png
    cell: 32
    padding: 2
    tint: "#fff"
strips:
  - src: sprites
    image: build/strip.png
    gap: 1
sheets:
  - name: events
    url: https://script.google.com/macros/s/abc/exec
    output: data/events.json
    key: id
    coerce: true
    timeout: 10s
`

func TestLoad(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(4, cfg.Workers)
	require.Len(t, cfg.Icons, 1)
	icon := cfg.Icons[0]
	assert.Equal("icons[0]", icon.Name)
	assert.Equal(filepath.Join(dir, "icons"), icon.Src)
	assert.Equal(icon.Src, icon.Dst)

	n := icon.Normalizer()
	assert.False(n.Recenter)
	assert.True(n.Standardize)
	assert.True(n.BakeTransforms)
	assert.True(n.AutoPrefix)
	assert.Equal(1.0, n.Padding)

	require.Len(t, cfg.Glyphs, 1)
	assert.Equal(filepath.Join(dir, "fonts", "symbols.ttf"), cfg.Glyphs[0].Font)
	assert.Equal("★☆", cfg.Glyphs[0].Runes)

	require.Len(t, cfg.Atlases, 1)
	assert.Equal(filepath.Join(dir, "build", "icons.json"), cfg.Atlases[0].Manifest)
	assert.Equal(32, cfg.Atlases[0].Cell)

	require.Len(t, cfg.Strips, 1)
	assert.Equal(filepath.Join(dir, "build", "strip.json"), cfg.Strips[0].Manifest)

	require.Len(t, cfg.Sheets, 1)
	job := cfg.Sheets[0]
	assert.Equal("id", job.Key)
	assert.True(job.Coerce)
	assert.Equal(10*time.Second, job.Timeout)
	assert.Equal(filepath.Join(dir, "data", "events.json"), job.Output)

	assert.Equal([]string{
		filepath.Join(dir, "icons"),
		filepath.Join(dir, "fonts"),
		filepath.Join(dir, "sprites"),
	}, cfg.WatchDirs())
}

func TestParse_Invalid(t *testing.T) {
	src := `
icons:
  - padding: -1
glyphs:
  - font: a.ttf
atlases:
  - src: icons
    image: atlas.jpg
    cell: 4
    padding: 2
    tint: "#nothex"
sheets:
  - url: nope
`
	_, err := Parse(strings.NewReader(src), "/tmp")
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"icons[0]: src is required",
		"icons[0]: padding must not be negative",
		"glyphs[0]: dst is required",
		"atlases[0]: image must be a .png file",
		"atlases[0]: cell 4 must exceed twice the padding 2",
		"atlases[0]: tint",
		"sheets[0]: invalid url",
		"sheets[0]: output is required",
	} {
		assert.Contains(t, msg, want)
	}

	_, err = Parse(strings.NewReader("icons:\n  - src: a\n    colour: red\n"), "/tmp")
	assert.Error(t, err, "unknown fields are rejected")
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""), "/tmp")
	require.NoError(t, err)
	assert.Empty(t, cfg.Icons)
	assert.Empty(t, cfg.WatchDirs())
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Parse(strings.NewReader(sample), dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "out", DefaultFile)
	require.NoError(t, cfg.Save(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Icons, again.Icons)
	assert.Equal(t, cfg.Sheets, again.Sheets)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	assert.Error(t, err)
}
