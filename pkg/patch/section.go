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
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/anchorpatch/pkg/locate"
)

// DefaultStyleAnchor is where section styles are inserted
const DefaultStyleAnchor = "</head>"

// 🧩 SectionSpec describes a block inserted into one document
type SectionSpec struct {
	DocumentID string
	Name       string
	// Marker is present in Body; finding it in a document means the section
	// was inserted already.
	Marker string
	Body   string
	// Anchors are tried in order; the body goes right before the first found
	Anchors     []string
	Style       string
	StyleAnchor string
}

func (s SectionSpec) styleAnchor() string {
	if s.StyleAnchor == "" {
		return DefaultStyleAnchor
	}
	return s.StyleAnchor
}

// 🧱 SectionInjector inserts sections using exact anchors from an ordered
// candidate list. The style is only inserted together with the body so a
// document never ends up half patched.
type SectionInjector struct{}

// 🏭 NewSectionInjector creates a section injector
func NewSectionInjector() *SectionInjector {
	return &SectionInjector{}
}

// 🏃 Inject yields one result for the body and, when a style is set, one for the style
func (s *SectionInjector) Inject(ctx context.Context, text string, spec SectionSpec) (string, []PatchResult) {
	logger := zerolog.Ctx(ctx).With().Str("document", spec.DocumentID).Str("section", spec.Name).Logger()

	bodyOp := PatchOperation{DocumentID: spec.DocumentID, Kind: KindSection, AnchorMarker: strings.Join(spec.Anchors, " | "), MappingKey: spec.Name}
	styleOp := PatchOperation{DocumentID: spec.DocumentID, Kind: KindStyle, AnchorMarker: spec.styleAnchor(), MappingKey: spec.Name}

	results := func(body, style PatchResult) []PatchResult {
		if spec.Style == "" {
			return []PatchResult{body}
		}
		return []PatchResult{body, style}
	}
	same := func(op PatchOperation, st Status, note string) PatchResult {
		return PatchResult{Operation: op, Status: st, BeforeLen: len(text), AfterLen: len(text), Note: note}
	}

	if spec.Body == "" {
		return text, results(
			same(bodyOp, StatusSkippedUnsetKey, "no body for document"),
			same(styleOp, StatusSkippedUnsetKey, "no body for document"),
		)
	}

	if spec.Marker != "" && strings.Contains(text, spec.Marker) {
		logger.Debug().Str("marker", spec.Marker).Msg("section already present")
		return text, results(
			same(bodyOp, StatusSkippedAlreadyApplied, "marker present"),
			same(styleOp, StatusSkippedAlreadyApplied, "marker present"),
		)
	}

	span, idx, err := locate.NewCandidateLocator(spec.Anchors...).Locate(text)
	if err != nil {
		logger.Debug().Msg("no candidate anchor found")
		return text, results(
			same(bodyOp, StatusWarnedNotFound, "no candidate anchor found"),
			same(styleOp, StatusWarnedNotFound, "section not inserted"),
		)
	}

	current := splice(text, span.Start, span.Start, spec.Body+"\n")
	body := PatchResult{Operation: bodyOp, Status: StatusApplied, BeforeLen: len(text), AfterLen: len(current), Note: spec.Anchors[idx]}

	style := PatchResult{Operation: styleOp, BeforeLen: len(current), AfterLen: len(current)}
	if spec.Style != "" {
		if at := strings.Index(current, spec.styleAnchor()); at >= 0 {
			current = splice(current, at, at, spec.Style+"\n")
			style.Status = StatusApplied
			style.AfterLen = len(current)
		} else {
			style.Status = StatusWarnedNotFound
			style.Note = "style anchor not found"
		}
	}

	logger.Debug().Str("anchor", spec.Anchors[idx]).Msg("section inserted")
	return current, results(body, style)
}
