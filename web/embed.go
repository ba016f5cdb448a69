// Package web holds the dashboard assets compiled into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html static
var assets embed.FS

// Assets returns the embedded dashboard files rooted at the web directory.
func Assets() fs.FS {
	return assets
}
