package charset

import (
	"context"

	"github.com/spf13/afero"
)

// 🔬 ProbeDetector decodes the first bytes of a file as UTF-8. A leading BOM
// selects utf-8-sig; anything undecodable is binary.
type ProbeDetector struct {
	Fs afero.Fs
}

// Detect implements Detector.
func (d *ProbeDetector) Detect(ctx context.Context, path string) (Classification, error) {
	head, truncated, err := readHead(d.Fs, path, probeSize)
	if err != nil {
		return Classification{}, err
	}

	switch {
	case hasUTF8BOM(head) && validUTF8Prefix(head, truncated):
		return Text(path, UTF8BOM), nil
	case validUTF8Prefix(head, truncated):
		return Text(path, UTF8), nil
	default:
		return Binary(path), nil
	}
}
