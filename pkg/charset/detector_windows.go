//go:build windows

package charset

import "github.com/spf13/afero"

// platformDetector decodes in-process; there is no `file` utility to ask.
func platformDetector(fs afero.Fs) Detector {
	return &ProbeDetector{Fs: fs}
}
