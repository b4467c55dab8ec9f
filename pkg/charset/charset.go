// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package charset decides whether a file is text, and in which encoding, so
// that only safely decodable files are ever rewritten.
package charset

import (
	"bytes"
	"context"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 📊 Kind is the verdict of a classification
type Kind int

const (
	KindUnknown Kind = iota // could not be decided, never rewritten
	KindBinary              // not text, never rewritten
	KindText                // decodable with Classification.Encoding
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// 📄 Classification is the verdict for one file
type Classification struct {
	Path     string
	Kind     Kind
	Encoding Encoding
}

// IsText reports whether the file may be rewritten.
func (c Classification) IsText() bool {
	return c.Kind == KindText && !c.Encoding.IsZero()
}

// Text builds a text verdict.
func Text(path string, enc Encoding) Classification {
	return Classification{Path: path, Kind: KindText, Encoding: enc}
}

// Binary builds a binary verdict.
func Binary(path string) Classification {
	return Classification{Path: path, Kind: KindBinary}
}

// Unknown builds an undecided verdict.
func Unknown(path string) Classification {
	return Classification{Path: path, Kind: KindUnknown}
}

// fromCharset turns a charset label into a verdict.
func fromCharset(path, label string) Classification {
	enc, err := Lookup(label)
	switch {
	case err == nil:
		return Text(path, enc)
	case errors.Is(err, ErrBinaryCharset):
		return Binary(path)
	default:
		return Unknown(path)
	}
}

// 🔌 Detector is one strategy for detecting the encoding of a file.
type Detector interface {
	Detect(ctx context.Context, path string) (Classification, error)
}

// probeSize is how much of a file the fallback decode looks at.
const probeSize = 100

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// 🏷️ Classifier wraps a Detector with the never-fail contract: detector errors
// are logged and answered by a plain UTF-8 decode of the file's prefix.
type Classifier struct {
	fs       afero.Fs
	detector Detector
}

// 🏭 NewClassifier creates a Classifier
func NewClassifier(fs afero.Fs, detector Detector) *Classifier {
	return &Classifier{fs: fs, detector: detector}
}

// Classify never returns an error; anything undecidable is KindUnknown.
func (c *Classifier) Classify(ctx context.Context, path string) Classification {
	result, err := c.detector.Detect(ctx, path)
	if err == nil {
		return c.confirmUTF16(ctx, result)
	}

	logger := zerolog.Ctx(ctx)
	logger.Warn().Err(err).Str("path", path).Msg("detecting file encoding failed, falling back to utf-8 probe")

	head, truncated, err := readHead(c.fs, path, probeSize)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("reading file prefix failed")
		return Unknown(path)
	}
	if validUTF8Prefix(head, truncated) {
		return Text(path, UTF8)
	}
	return Unknown(path)
}

// confirmUTF16 demotes a UTF-16 verdict to binary when the file's prefix does
// not decode to text. Detectors may claim UTF-16 on a byte order mark alone.
func (c *Classifier) confirmUTF16(ctx context.Context, result Classification) Classification {
	if !result.IsText() {
		return result
	}
	utf16, bigEndian := isUTF16(result.Encoding.Name())
	if !utf16 {
		return result
	}

	head, truncated, err := readHead(c.fs, result.Path, sniffSize)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", result.Path).Msg("reading file prefix failed")
		return Unknown(result.Path)
	}
	if !plausibleUTF16(head, truncated, bigEndian) {
		return Binary(result.Path)
	}
	return result
}

// readHead reads up to n bytes. truncated is true when the file is longer.
func readHead(fs afero.Fs, path string, n int) ([]byte, bool, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, false, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, n+1)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, false, errors.Errorf("reading %s: %w", path, err)
	}
	if read > n {
		return buf[:n], true, nil
	}
	return buf[:read], false, nil
}

// validUTF8Prefix reports whether b is valid UTF-8, allowing a rune cut in
// half at the end when the read was truncated.
func validUTF8Prefix(b []byte, truncated bool) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			return truncated && !utf8.FullRune(b)
		}
		b = b[size:]
	}
	return true
}

func hasUTF8BOM(b []byte) bool {
	return bytes.HasPrefix(b, utf8BOM)
}
