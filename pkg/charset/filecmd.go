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
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var charsetPattern = regexp.MustCompile(`charset=([^\s,;]+)`)

// 🗂️ FileCommandDetector asks the `file` utility for the MIME type and
// charset. It only works on the OS filesystem.
type FileCommandDetector struct {
	// Command defaults to "file".
	Command string
}

// Detect implements Detector.
func (d *FileCommandDetector) Detect(ctx context.Context, path string) (Classification, error) {
	command := d.Command
	if command == "" {
		command = "file"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "--brief", "--mime", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Classification{}, errors.Errorf("running %s on %s: %w: %s", command, path, err, strings.TrimSpace(stderr.String()))
	}

	return parseMIMEOutput(path, stdout.String()), nil
}

// parseMIMEOutput interprets output such as "text/plain; charset=us-ascii".
func parseMIMEOutput(path, output string) Classification {
	output = strings.TrimSpace(output)
	if m := charsetPattern.FindStringSubmatch(output); m != nil {
		return fromCharset(path, m[1])
	}
	if strings.Contains(output, "application/octet-stream") {
		return Binary(path)
	}
	return Unknown(path)
}
