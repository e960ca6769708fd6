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

	"github.com/rs/zerolog"
	"github.com/walteh/anchorpatch/pkg/locate"
)

// 🔗 LinkPatcher applies an ordered list of link operations to one document
type LinkPatcher struct {
	Locator  *locate.AnchorLocator
	Resolver Resolver
	History  History // optional
}

// 🏭 NewLinkPatcher creates a link patcher
func NewLinkPatcher(loc *locate.AnchorLocator, resolver Resolver, history History) *LinkPatcher {
	if loc == nil {
		loc = locate.NewAnchorLocator(0, "")
	}
	return &LinkPatcher{
		Locator:  loc,
		Resolver: resolver,
		History:  history,
	}
}

// 🏃 Patch attempts every operation in declared order. Each operation searches
// the text as left by the previous ones. Patch never writes anything; the
// same input always yields the same text and results.
func (p *LinkPatcher) Patch(ctx context.Context, documentID, text string, ops []PatchOperation) (string, []PatchResult) {
	logger := zerolog.Ctx(ctx).With().Str("document", documentID).Logger()

	results := make([]PatchResult, 0, len(ops))
	current := text

	for _, op := range ops {
		if op.DocumentID == "" {
			op.DocumentID = documentID
		}
		res := PatchResult{Operation: op, BeforeLen: len(current), AfterLen: len(current)}

		value, ok := p.Resolver.Lookup(op.MappingKey)
		if !ok {
			res.Status = StatusSkippedUnsetKey
			res.Note = "value not configured"
			logger.Debug().Str("key", op.MappingKey).Msg("mapping key unset, skipping")
			results = append(results, res)
			continue
		}

		span, dir, err := p.Locator.LocateDirection(current, op.AnchorMarker, op.PlaceholderToken)
		if err != nil {
			res.Status = StatusWarnedNotFound
			res.Note = err.Error()
			if p.History != nil && p.History.Applied(op.DocumentID, op.MappingKey, value) {
				res.Status = StatusSkippedAlreadyApplied
				res.Note = "recorded by an earlier run"
			}
			logger.Debug().
				Str("anchor", op.AnchorMarker).
				Str("key", op.MappingKey).
				Str("status", res.Status.String()).
				Msg("placeholder not located")
			results = append(results, res)
			continue
		}

		rendered := op.Render(value)
		if rendered == current[span.Start:span.End] {
			res.Status = StatusSkippedAlreadyApplied
			res.Note = "value equals placeholder"
			logger.Debug().
				Str("anchor", op.AnchorMarker).
				Str("key", op.MappingKey).
				Msg("rendered value matches placeholder, nothing to write")
			results = append(results, res)
			continue
		}

		current = splice(current, span.Start, span.End, rendered)
		res.Status = StatusApplied
		res.AfterLen = len(current)
		res.Note = dir.String()

		logger.Debug().
			Str("anchor", op.AnchorMarker).
			Str("key", op.MappingKey).
			Int("offset", span.Start).
			Str("direction", dir.String()).
			Msg("placeholder replaced")
		results = append(results, res)
	}

	return current, results
}
