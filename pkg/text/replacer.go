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

package text

import (
	"strings"

	"github.com/walteh/recode/pkg/rules"
)

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates if any rule fired
	WasModified bool

	// ReplacementCount is the number of occurrences replaced across all rules
	ReplacementCount int

	// Content is the text after all rules were applied
	Content string
}

// ReplaceText applies every rule in order with literal, non-overlapping
// replacement. Later rules see the output of earlier ones.
func ReplaceText(content string, m *rules.Map) ReplacementResult {
	result := ReplacementResult{Content: content}
	for _, rule := range m.Rules() {
		if rule.Old == rule.New {
			continue
		}

		n := strings.Count(result.Content, rule.Old)
		if n == 0 {
			continue
		}

		result.Content = strings.ReplaceAll(result.Content, rule.Old, rule.New)
		result.ReplacementCount += n
		result.WasModified = true
	}
	return result
}

// Apply is ReplaceText for callers that only need the output.
func Apply(content string, m *rules.Map) string {
	return ReplaceText(content, m).Content
}
