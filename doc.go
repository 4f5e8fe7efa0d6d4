/*
Package tooltl normalizes SVG icons for the timeline web application: it
derives a viewBox from the width and height, bakes transforms into the geometry,
re-centers the viewBox on the drawable content, adds accessibility attributes
and prefixes element ids so that icons can be inlined side by side.

The package provides a command line interface, supporting subcommands for the
icon pipeline, the glyph exporter, the texture atlas packer and the sheet exporters.
To check the supported commands type:

	$ tooltl --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/tooltl/tooltl"
	)

	func main() {
		n := &tooltl.Normalizer{
			Standardize:    true,
			BakeTransforms: true,
			Recenter:       true,
			Square:         true,
		}

		if _, err := n.Process(os.Stdin, os.Stdout); err != nil {
			fmt.Printf("Error normalizing icon: %s", err.Error())
		}
	}
*/
package tooltl
