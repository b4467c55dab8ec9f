//go:build !windows

package charset

import (
	"os/exec"

	"github.com/spf13/afero"
)

// platformDetector prefers the `file` utility and falls back to in-process
// sniffing when it is missing or the filesystem is not the OS one.
func platformDetector(fs afero.Fs) Detector {
	if isOsFs(fs) {
		if _, err := exec.LookPath("file"); err == nil {
			return &FileCommandDetector{}
		}
	}
	return &SniffDetector{Fs: fs}
}
