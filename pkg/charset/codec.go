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

package charset

import (
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrBinaryCharset is returned by Lookup for the "binary" pseudo charset.
	ErrBinaryCharset = errors.Base("binary charset")

	// ErrUnsupportedCharset is returned by Lookup for charsets with no codec.
	ErrUnsupportedCharset = errors.Base("unsupported charset")
)

type codecKind int

const (
	codecUTF8 codecKind = iota
	codecUTF8BOM
	codecIndexed
)

// 🔤 Encoding is a resolved text encoding able to decode and re-encode file
// content. The zero value is not usable; obtain one from Lookup.
type Encoding struct {
	name  string
	kind  codecKind
	codec xencoding.Encoding
}

var (
	// UTF8 is strict UTF-8. Invalid sequences fail decoding.
	UTF8 = Encoding{name: "utf-8", kind: codecUTF8}

	// UTF8BOM is strict UTF-8 with a leading byte order mark that is
	// stripped on decode and restored on encode.
	UTF8BOM = Encoding{name: "utf-8-sig", kind: codecUTF8BOM}
)

// Name is the canonical charset name.
func (e Encoding) Name() string {
	return e.name
}

// IsZero reports whether e was never resolved.
func (e Encoding) IsZero() bool {
	return e.name == ""
}

func (e Encoding) String() string {
	return e.name
}

// Transparent reports whether decoding and encoding are the identity on any
// input that decodes without error. Other encodings need a round trip check
// before their output can replace a file.
func (e Encoding) Transparent() bool {
	return e.kind == codecUTF8 && !e.IsZero()
}

// NewReader wraps r so that reads yield UTF-8 text.
func (e Encoding) NewReader(r io.Reader) io.Reader {
	switch e.kind {
	case codecUTF8:
		return transform.NewReader(r, xencoding.UTF8Validator)
	case codecUTF8BOM:
		return transform.NewReader(r, transform.Chain(xencoding.UTF8Validator, unicode.UTF8BOM.NewDecoder()))
	default:
		return e.codec.NewDecoder().Reader(r)
	}
}

// Encode converts UTF-8 text back into this encoding.
func (e Encoding) Encode(b []byte) ([]byte, error) {
	switch e.kind {
	case codecUTF8:
		return b, nil
	case codecUTF8BOM:
		out, err := unicode.UTF8BOM.NewEncoder().Bytes(b)
		if err != nil {
			return nil, errors.Errorf("encoding %s: %w", e.name, err)
		}
		return out, nil
	default:
		out, err := e.codec.NewEncoder().Bytes(b)
		if err != nil {
			return nil, errors.Errorf("encoding %s: %w", e.name, err)
		}
		return out, nil
	}
}

// 🔍 Lookup resolves a charset label as reported by `file --mime` or a
// content sniffer.
func Lookup(label string) (Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	switch name {
	case "":
		return Encoding{}, errors.WithStack(ErrUnsupportedCharset)
	case "binary":
		return Encoding{}, errors.WithStack(ErrBinaryCharset)
	case "utf-8", "utf8", "us-ascii", "ascii":
		return UTF8, nil
	case "utf-8-sig", "utf-8-bom", "utf8-bom":
		return UTF8BOM, nil
	}

	codec, err := htmlindex.Get(name)
	if err != nil || codec == xencoding.Replacement {
		return Encoding{}, errors.Errorf("%w: %s", ErrUnsupportedCharset, label)
	}
	if codec == unicode.UTF8 {
		return UTF8, nil
	}

	canonical, err := htmlindex.Name(codec)
	if err != nil {
		canonical = name
	}
	return Encoding{name: canonical, kind: codecIndexed, codec: codec}, nil
}
