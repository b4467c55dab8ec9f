package opts

import (
	"io"

	"github.com/spf13/afero"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// Debug lowers the structured log level to debug.
	Debug bool
	// JSONLogs writes structured logs as JSON instead of console lines.
	JSONLogs bool
	// Fs is the filesystem every command works on.
	Fs afero.Fs
	// Stderr receives structured logs.
	Stderr io.Writer
}
