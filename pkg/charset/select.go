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
	"os/exec"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 🎛️ Strategy names a Detector implementation
type Strategy string

const (
	StrategyAuto  Strategy = "auto"
	StrategyFile  Strategy = "file"
	StrategySniff Strategy = "sniff"
	StrategyProbe Strategy = "probe"
)

// ParseStrategy accepts the strategy names used on the command line.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StrategyAuto, nil
	case StrategyAuto, StrategyFile, StrategySniff, StrategyProbe:
		return st, nil
	default:
		return "", errors.Errorf("unknown detector %q (want auto, file, sniff or probe)", s)
	}
}

// 🏭 NewDetector builds the detector for a strategy. StrategyAuto picks the
// platform default.
func NewDetector(fs afero.Fs, strategy Strategy) (Detector, error) {
	switch strategy {
	case StrategyAuto, "":
		return platformDetector(fs), nil
	case StrategyFile:
		if !isOsFs(fs) {
			return nil, errors.New("the file detector requires the OS filesystem")
		}
		if _, err := exec.LookPath("file"); err != nil {
			return nil, errors.Errorf("file utility not available: %w", err)
		}
		return &FileCommandDetector{}, nil
	case StrategySniff:
		return &SniffDetector{Fs: fs}, nil
	case StrategyProbe:
		return &ProbeDetector{Fs: fs}, nil
	default:
		return nil, errors.Errorf("unknown detector %q", strategy)
	}
}

func isOsFs(fs afero.Fs) bool {
	_, ok := fs.(*afero.OsFs)
	return ok
}
