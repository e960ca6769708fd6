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
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 🎨 Defaults mirror the markup the patch tables were written against
const (
	DefaultWindow   = 500    // characters scanned on each side of an anchor
	DefaultBoundary = "</a>" // closes the element a placeholder belongs to
)

var (
	// ErrNotFound is returned when no placeholder occurrence qualifies.
	ErrNotFound = errors.Base("placeholder not found near anchor")

	// ErrInvalidArgument is returned for an empty anchor or token.
	ErrInvalidArgument = errors.Base("anchor and placeholder must not be empty")
)

// 📍 MatchSpan is a byte range [Start, End) inside the text it was located in
type MatchSpan struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span
func (s MatchSpan) Len() int {
	return s.End - s.Start
}

// Direction tells which side of the anchor a match was taken from
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// 🔍 AnchorLocator finds the placeholder occurrence that belongs to an anchor
// marker by scanning a bounded window around the marker's first occurrence.
//
// The scan never crosses Boundary: a placeholder separated from the anchor by
// an element-closing delimiter belongs to a neighbouring element.
type AnchorLocator struct {
	Window   int
	Boundary string
}

// 🏭 NewAnchorLocator creates a locator, falling back to the defaults for zero values
func NewAnchorLocator(window int, boundary string) *AnchorLocator {
	if window <= 0 {
		window = DefaultWindow
	}
	if boundary == "" {
		boundary = DefaultBoundary
	}
	return &AnchorLocator{Window: window, Boundary: boundary}
}

// 🎯 Locate returns the span of the placeholder nearest to the first occurrence
// of anchor. Forward matches win over backward ones.
func (l *AnchorLocator) Locate(text, anchor, token string) (MatchSpan, error) {
	span, _, err := l.LocateDirection(text, anchor, token)
	return span, err
}

// LocateDirection is Locate that also reports which side of the anchor matched
func (l *AnchorLocator) LocateDirection(text, anchor, token string) (MatchSpan, Direction, error) {
	if anchor == "" || token == "" {
		return MatchSpan{}, Forward, ErrInvalidArgument
	}

	at := strings.Index(text, anchor)
	if at < 0 {
		return MatchSpan{}, Forward, errors.Errorf("%w: anchor absent", ErrNotFound)
	}

	if span, ok := l.forward(text, at+len(anchor), token); ok {
		return span, Forward, nil
	}
	if span, ok := l.backward(text, at, token); ok {
		return span, Backward, nil
	}

	return MatchSpan{}, Forward, errors.Errorf("%w: no placeholder within %d characters", ErrNotFound, l.window())
}

func (l *AnchorLocator) forward(text string, from int, token string) (MatchSpan, bool) {
	idx := strings.Index(text[from:], token)
	if idx < 0 {
		return MatchSpan{}, false
	}
	if !l.gapAllowed(text[from : from+idx]) {
		return MatchSpan{}, false
	}
	start := from + idx
	return MatchSpan{Start: start, End: start + len(token)}, true
}

func (l *AnchorLocator) backward(text string, to int, token string) (MatchSpan, bool) {
	idx := strings.LastIndex(text[:to], token)
	if idx < 0 {
		return MatchSpan{}, false
	}
	end := idx + len(token)
	if !l.gapAllowed(text[end:to]) {
		return MatchSpan{}, false
	}
	return MatchSpan{Start: idx, End: end}, true
}

// gapAllowed checks the text between anchor and placeholder
func (l *AnchorLocator) gapAllowed(gap string) bool {
	if utf8.RuneCountInString(gap) > l.window() {
		return false
	}
	return !strings.Contains(gap, l.boundary())
}

func (l *AnchorLocator) window() int {
	if l.Window <= 0 {
		return DefaultWindow
	}
	return l.Window
}

func (l *AnchorLocator) boundary() string {
	if l.Boundary == "" {
		return DefaultBoundary
	}
	return l.Boundary
}
