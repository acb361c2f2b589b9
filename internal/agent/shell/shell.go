// Package shell carries the embedded application shell served to
// navigations when the origin is unreachable.
package shell

import (
	"embed"
	"io/fs"
)

//go:embed static/**
var staticFS embed.FS

// Page returns the offline application shell markup.
func Page() []byte {
	data, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		// The file is embedded at build time; a read failure here is a
		// packaging bug, not a runtime condition.
		return []byte("<!doctype html><title>recall</title><p>offline</p>")
	}
	return data
}
