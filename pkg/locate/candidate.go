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

package locate

import (
	"strings"
)

// 🧭 CandidateLocator picks the first anchor, in list order, that occurs in the text.
//
// Unlike AnchorLocator it looks for no placeholder: the returned span is the
// anchor itself and callers insert content before or after it.
type CandidateLocator struct {
	Candidates []string
}

// 🏭 NewCandidateLocator creates a locator over an ordered candidate list
func NewCandidateLocator(candidates ...string) *CandidateLocator {
	return &CandidateLocator{Candidates: candidates}
}

// 🎯 Locate returns the span of the first candidate present and its index in the list
func (l *CandidateLocator) Locate(text string) (MatchSpan, int, error) {
	for i, c := range l.Candidates {
		if c == "" {
			continue
		}
		if at := strings.Index(text, c); at >= 0 {
			return MatchSpan{Start: at, End: at + len(c)}, i, nil
		}
	}
	return MatchSpan{}, -1, ErrNotFound
}
