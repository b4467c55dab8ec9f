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
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/saintfish/chardet"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// sniffSize is the amount of data content type sniffing considers.
const sniffSize = 512

// 👃 SniffDetector sniffs the content type in-process. A declared charset is
// trusted unless it claims UTF-8 for bytes that are not, in which case a
// statistical guess replaces it. Non-text content types are binary.
type SniffDetector struct {
	Fs afero.Fs
}

// Detect implements Detector.
func (d *SniffDetector) Detect(ctx context.Context, path string) (Classification, error) {
	head, truncated, err := readHead(d.Fs, path, sniffSize)
	if err != nil {
		return Classification{}, err
	}

	contentType := http.DetectContentType(head)
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Classification{}, errors.Errorf("parsing content type %q: %w", contentType, err)
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Str("content_type", contentType).Msg("sniffed content type")

	label, ok := params["charset"]
	if !ok {
		if strings.HasPrefix(mediaType, "text/") {
			label = "utf-8"
		} else {
			return Binary(path), nil
		}
	}

	if strings.EqualFold(label, "utf-8") {
		switch {
		case hasUTF8BOM(head) && validUTF8Prefix(head, truncated):
			return Text(path, UTF8BOM), nil
		case validUTF8Prefix(head, truncated):
			return Text(path, UTF8), nil
		}

		guess, err := chardet.NewTextDetector().DetectBest(head)
		if err != nil {
			return Unknown(path), nil
		}
		zerolog.Ctx(ctx).Debug().
			Str("path", path).
			Str("charset", guess.Charset).
			Int("confidence", guess.Confidence).
			Msg("guessed charset for non utf-8 text")
		label = guess.Charset
		if strings.EqualFold(label, "utf-8") {
			return Unknown(path), nil
		}
	}

	if utf16, bigEndian := isUTF16(label); utf16 && !plausibleUTF16(head, truncated, bigEndian) {
		zerolog.Ctx(ctx).Debug().Str("path", path).Str("charset", label).Msg("byte order mark without utf-16 text")
		return Binary(path), nil
	}

	return fromCharset(path, label), nil
}
