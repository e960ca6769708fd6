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

package config

import (
	"sort"

	"github.com/walteh/anchorpatch/pkg/patch"
)

// 📋 Plan is everything configured for one document, in application order:
// links, then templates, then sections.
type Plan struct {
	DocumentID string
	Links      []patch.PatchOperation
	Templates  []patch.TemplateSpec
	Sections   []patch.SectionSpec
}

// Empty reports whether the plan has nothing to do
func (p Plan) Empty() bool {
	return len(p.Links) == 0 && len(p.Templates) == 0 && len(p.Sections) == 0
}

// OperationCount is the number of configured steps; results may be more
// since templates and styled sections report two each.
func (p Plan) OperationCount() int {
	return len(p.Links) + len(p.Templates) + len(p.Sections)
}

// 🗂️ Plans groups the configuration by document. Documents appear in the
// order they are first mentioned; ignored documents are left out.
func (cfg *Config) Plans() []Plan {
	var order []string
	byID := map[string]*Plan{}

	get := func(id string) *Plan {
		if p, ok := byID[id]; ok {
			return p
		}
		order = append(order, id)
		byID[id] = &Plan{DocumentID: id}
		return byID[id]
	}

	for _, doc := range cfg.Documents {
		p := get(doc.ID)
		for _, link := range doc.Links {
			p.Links = append(p.Links, patch.PatchOperation{
				DocumentID:       doc.ID,
				Kind:             patch.KindLink,
				AnchorMarker:     link.Anchor,
				PlaceholderToken: link.Placeholder,
				PlaceholderValue: link.PlaceholderValue,
				MappingKey:       link.Key,
			})
		}
	}

	for _, tmpl := range cfg.Templates {
		p := get(tmpl.Document)
		p.Templates = append(p.Templates, patch.TemplateSpec{
			DocumentID:         tmpl.Document,
			Entries:            tmpl.Entries,
			DefaultKey:         tmpl.DefaultKey,
			DeclarationAnchor:  tmpl.DeclarationAnchor,
			PlaceholderLiteral: tmpl.PlaceholderLiteral,
			LookupExpr:         tmpl.Lookup,
			Variable:           tmpl.Variable,
			Attribute:          tmpl.Attribute,
			PlaceholderValue:   tmpl.PlaceholderValue,
			ExtraAttributes:    tmpl.ExtraAttributes,
		})
	}

	for _, sec := range cfg.Sections {
		ids := make([]string, 0, len(sec.Documents))
		for id := range sec.Documents {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			p := get(id)
			p.Sections = append(p.Sections, patch.SectionSpec{
				DocumentID:  id,
				Name:        sec.Name,
				Marker:      sec.Marker,
				Body:        sec.Documents[id],
				Anchors:     sec.Anchors,
				Style:       sec.Style,
				StyleAnchor: sec.StyleAnchor,
			})
		}
	}

	plans := make([]Plan, 0, len(order))
	for _, id := range order {
		if cfg.Ignored(id) {
			continue
		}
		plans = append(plans, *byID[id])
	}
	return plans
}
