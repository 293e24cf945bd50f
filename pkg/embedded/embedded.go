// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains all files embedded in the Go binary:
// - viewer/index.html - browser viewer, served at / and fed by the frame stream
//
//go:embed viewer
var Files embed.FS
