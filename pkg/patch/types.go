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

package patch

import (
	"fmt"
	"strings"
)

// 📊 Status is the outcome of one attempted operation
type Status int

const (
	StatusApplied               Status = iota // text was changed
	StatusSkippedUnsetKey                     // mapping key has no value, nothing searched
	StatusSkippedAlreadyApplied               // positively known to be applied already
	StatusWarnedNotFound                      // anchor or placeholder absent
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusSkippedUnsetKey:
		return "skipped-unset-key"
	case StatusSkippedAlreadyApplied:
		return "skipped-already-applied"
	case StatusWarnedNotFound:
		return "warned-not-found"
	default:
		return "unknown"
	}
}

// Statuses lists every status in report order
func Statuses() []Status {
	return []Status{StatusApplied, StatusSkippedUnsetKey, StatusSkippedAlreadyApplied, StatusWarnedNotFound}
}

// 🏷️ Kind says which engine produced an operation
type Kind int

const (
	KindLink        Kind = iota // placeholder substituted by a mapping value
	KindDeclaration             // runtime lookup table declared
	KindRewrite                 // static literal rewritten into a runtime lookup
	KindSection                 // block inserted before a candidate anchor
	KindStyle                   // stylesheet inserted alongside a section
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindDeclaration:
		return "declaration"
	case KindRewrite:
		return "rewrite"
	case KindSection:
		return "section"
	case KindStyle:
		return "style"
	default:
		return "unknown"
	}
}

// 🔧 PatchOperation is one declarative patch against a document.
//
// For KindLink all of AnchorMarker, PlaceholderToken and MappingKey are set.
// The other kinds reuse the fields to describe what they touched.
type PatchOperation struct {
	DocumentID       string
	Kind             Kind
	AnchorMarker     string
	PlaceholderToken string
	// PlaceholderValue is the part of PlaceholderToken replaced by the mapping
	// value. Empty means: the quoted value of an attr="X" token, or the whole
	// token otherwise.
	PlaceholderValue string
	MappingKey       string
}

// Render returns the text written in place of the placeholder token
func (op PatchOperation) Render(value string) string {
	if op.PlaceholderValue != "" {
		at := strings.LastIndex(op.PlaceholderToken, op.PlaceholderValue)
		if at < 0 {
			return value
		}
		return op.PlaceholderToken[:at] + value + op.PlaceholderToken[at+len(op.PlaceholderValue):]
	}
	if prefix, ok := quotedPrefix(op.PlaceholderToken); ok {
		return prefix + value + `"`
	}
	return value
}

// quotedPrefix splits `attr="X"` into `attr="`
func quotedPrefix(token string) (string, bool) {
	at := strings.Index(token, `="`)
	if at < 0 || len(token) < at+3 || !strings.HasSuffix(token, `"`) {
		return "", false
	}
	return token[:at+2], true
}

// Label is a short human description used in reports
func (op PatchOperation) Label() string {
	switch op.Kind {
	case KindLink:
		return fmt.Sprintf("%s → %s", op.AnchorMarker, op.MappingKey)
	case KindDeclaration:
		return fmt.Sprintf("declare %s", op.MappingKey)
	case KindRewrite:
		return fmt.Sprintf("rewrite %s", op.PlaceholderToken)
	case KindSection, KindStyle:
		return fmt.Sprintf("%s %s", op.Kind, op.MappingKey)
	default:
		return op.AnchorMarker
	}
}

// 📝 PatchResult is produced once per attempted operation
type PatchResult struct {
	Operation PatchOperation
	Status    Status
	BeforeLen int
	AfterLen  int
	Note      string
}

// Delta returns the change in document length caused by the operation
func (r PatchResult) Delta() int {
	return r.AfterLen - r.BeforeLen
}

// 🔑 Resolver resolves mapping keys. Empty or absent values report false.
type Resolver interface {
	Lookup(key string) (string, bool)
}

// 📜 History answers whether a key was applied to a document by an earlier
// run. It lets a missing placeholder be told apart from a patched one.
type History interface {
	Applied(documentID, key, value string) bool
}

func splice(text string, start, end int, with string) string {
	var b strings.Builder
	b.Grow(len(text) - (end - start) + len(with))
	b.WriteString(text[:start])
	b.WriteString(with)
	b.WriteString(text[end:])
	return b.String()
}
