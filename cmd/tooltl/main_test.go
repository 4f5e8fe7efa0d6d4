package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const icon = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24"><rect x="4" y="4" width="16" height="8"/></svg>`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append(args, "--quiet"))
	return rootCmd.Execute()
}

func TestCLI_SVGAndAtlas(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "icons")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bar.svg"), []byte(icon), 0644))

	out := filepath.Join(dir, "out")
	require.NoError(t, execute(t, "svg", src, out, "--padding", "1"))

	data, err := os.ReadFile(filepath.Join(out, "bar.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `viewBox="3 -1 18 18"`)
	assert.Contains(t, string(data), `role="img"`)

	png := filepath.Join(dir, "build", "icons.png")
	require.NoError(t, execute(t, "atlas", out, png, "--cell", "16"))
	assert.FileExists(t, png)
	assert.FileExists(t, filepath.Join(dir, "build", "icons.json"))

	assert.Error(t, execute(t, "atlas", out, filepath.Join(dir, "icons.jpg")))
}

func TestCLI_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tooltl.yaml")
	require.NoError(t, execute(t, "init", "-c", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "build/icons.png")

	assert.Error(t, execute(t, "init", "-c", path))
}

func TestCLI_SVGDefaults(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "arrow-up.svg")
	require.NoError(t, os.WriteFile(src, []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24">`+
		`<!-- keep --><metadata>editor</metadata>`+
		`<defs><linearGradient id="g"/></defs><rect width="24" height="24" fill="url(#g)"/></svg>`), 0644))

	require.NoError(t, execute(t, "svg", src))

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "<metadata>")
	assert.Contains(t, out, "<!-- keep -->")
	assert.Contains(t, out, `id="arrow-up_g"`)
	assert.Contains(t, out, `fill="url(#arrow-up_g)"`)

	assert.Equal(t, "Remove the <metadata> elements", svgCmd.Flags().Lookup("strip").Usage)
}
