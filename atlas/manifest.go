package atlas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/tooltl/tooltl/utils"
)

// Frame locates an icon on the sheet, in pixels and in normalized texture coordinates.
type Frame struct {
	X  int     `json:"x"`
	Y  int     `json:"y"`
	W  int     `json:"w"`
	H  int     `json:"h"`
	U0 float64 `json:"u0"`
	V0 float64 `json:"v0"`
	U1 float64 `json:"u1"`
	V1 float64 `json:"v1"`
}

// Meta describes the sheet.
type Meta struct {
	Image   string `json:"image"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Cell    int    `json:"cell,omitempty"`
	Padding int    `json:"padding,omitempty"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Count   int    `json:"count"`
}

// Manifest is the JSON companion of a sheet. Frames are keyed by source name.
type Manifest struct {
	Frames map[string]Frame `json:"frames"`
	Meta   Meta             `json:"meta"`
}

// Atlas is a packed sheet and its manifest.
type Atlas struct {
	Image    *image.NRGBA
	Manifest Manifest
}

func newFrame(r image.Rectangle, sheet image.Point) Frame {
	return Frame{
		X:  r.Min.X,
		Y:  r.Min.Y,
		W:  r.Dx(),
		H:  r.Dy(),
		U0: float64(r.Min.X) / float64(sheet.X),
		V0: float64(r.Min.Y) / float64(sheet.Y),
		U1: float64(r.Max.X) / float64(sheet.X),
		V1: float64(r.Max.Y) / float64(sheet.Y),
	}
}

// WriteFiles stores the sheet as PNG and the manifest as indented JSON.
// The manifest image defaults to the base name of pngPath.
func (a *Atlas) WriteFiles(pngPath, jsonPath string) error {
	if a.Manifest.Meta.Image == "" {
		a.Manifest.Meta.Image = filepath.Base(pngPath)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, a.Image); err != nil {
		return fmt.Errorf("encoding %s: %w", pngPath, err)
	}
	if err := utils.WriteFileAtomic(pngPath, buf.Bytes()); err != nil {
		return err
	}

	data, err := json.MarshalIndent(a.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", jsonPath, err)
	}
	return utils.WriteFileAtomic(jsonPath, append(data, '\n'))
}
