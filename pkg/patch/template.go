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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// 🎨 Defaults for runtime-keyed templates
const (
	DefaultVariable         = "affiliateUrls"
	DefaultAttribute        = "href"
	DefaultPlaceholderValue = "#"
)

// 📋 TemplateSpec describes one runtime-keyed placeholder inside a document
type TemplateSpec struct {
	DocumentID string
	// Entries maps runtime keys (e.g. provider names) to mapping keys
	Entries    map[string]string
	DefaultKey string
	// DeclarationAnchor is a statement expected exactly once; the lookup
	// table is declared right before it.
	DeclarationAnchor string
	// PlaceholderLiteral is the exact static element to make dynamic
	PlaceholderLiteral string
	// LookupExpr is the expression yielding the runtime key, e.g. p.provider
	LookupExpr       string
	Variable         string
	Attribute        string
	PlaceholderValue string
	ExtraAttributes  string
}

func (s TemplateSpec) variable() string {
	if s.Variable == "" {
		return DefaultVariable
	}
	return s.Variable
}

func (s TemplateSpec) attribute() string {
	if s.Attribute == "" {
		return DefaultAttribute
	}
	return s.Attribute
}

func (s TemplateSpec) placeholderValue() string {
	if s.PlaceholderValue == "" {
		return DefaultPlaceholderValue
	}
	return s.PlaceholderValue
}

// Token is the static attribute inside PlaceholderLiteral that gets rewritten
func (s TemplateSpec) Token() string {
	return fmt.Sprintf(`%s="%s"`, s.attribute(), s.placeholderValue())
}

func (s TemplateSpec) declarationPrefix() string {
	return "const " + s.variable() + "="
}

func (s TemplateSpec) lookupPrefix() string {
	return fmt.Sprintf("${%s[%s]", s.variable(), s.LookupExpr)
}

// 🗂️ TemplateMapping holds only configured values; Default may be empty
type TemplateMapping struct {
	Entries map[string]string
	Default string
}

// BuildTemplateMapping filters the declared entries down to keys with a value
func BuildTemplateMapping(spec TemplateSpec, resolver Resolver) TemplateMapping {
	tm := TemplateMapping{Entries: map[string]string{}}
	for runtimeKey, mappingKey := range spec.Entries {
		if v, ok := resolver.Lookup(mappingKey); ok {
			tm.Entries[runtimeKey] = v
		}
	}
	if v, ok := resolver.Lookup(spec.DefaultKey); ok {
		tm.Default = v
	}
	return tm
}

// Empty reports whether nothing at all is configured
func (tm TemplateMapping) Empty() bool {
	return len(tm.Entries) == 0 && tm.Default == ""
}

// Resolve mirrors the injected lookup: the entry for key, else the default
func (tm TemplateMapping) Resolve(runtimeKey string) string {
	if v, ok := tm.Entries[runtimeKey]; ok {
		return v
	}
	return tm.Default
}

// Serialize renders the entries as a JSON object with sorted keys
func (tm TemplateMapping) Serialize() (string, error) {
	return marshalJS(tm.Entries)
}

// marshalJS is json.Marshal without HTML escaping, so URLs stay readable
func marshalJS(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// 💉 TemplateMapInjector turns one shared static placeholder into a lookup
// resolved at render time
type TemplateMapInjector struct {
	Resolver Resolver
}

// 🏭 NewTemplateMapInjector creates an injector
func NewTemplateMapInjector(resolver Resolver) *TemplateMapInjector {
	return &TemplateMapInjector{Resolver: resolver}
}

// 🏃 Inject runs the declaration step then the rewrite step. Both are
// idempotent on their own and each yields exactly one result.
func (i *TemplateMapInjector) Inject(ctx context.Context, text string, spec TemplateSpec) (string, []PatchResult) {
	logger := zerolog.Ctx(ctx).With().Str("document", spec.DocumentID).Str("variable", spec.variable()).Logger()

	declOp := PatchOperation{
		DocumentID:   spec.DocumentID,
		Kind:         KindDeclaration,
		AnchorMarker: spec.DeclarationAnchor,
		MappingKey:   spec.variable(),
	}
	rewriteOp := PatchOperation{
		DocumentID:       spec.DocumentID,
		Kind:             KindRewrite,
		AnchorMarker:     spec.PlaceholderLiteral,
		PlaceholderToken: spec.Token(),
		PlaceholderValue: spec.placeholderValue(),
		MappingKey:       spec.DefaultKey,
	}

	tm := BuildTemplateMapping(spec, i.Resolver)
	if tm.Empty() {
		logger.Debug().Msg("no template values configured, skipping")
		return text, []PatchResult{
			{Operation: declOp, Status: StatusSkippedUnsetKey, BeforeLen: len(text), AfterLen: len(text), Note: "no values configured"},
			{Operation: rewriteOp, Status: StatusSkippedUnsetKey, BeforeLen: len(text), AfterLen: len(text), Note: "no values configured"},
		}
	}

	current, decl := i.declare(text, spec, tm, declOp)
	current, rewrite := i.rewrite(current, spec, tm, rewriteOp)

	logger.Debug().
		Int("entries", len(tm.Entries)).
		Bool("has_default", tm.Default != "").
		Str("declaration", decl.Status.String()).
		Str("rewrite", rewrite.Status.String()).
		Msg("template injected")

	return current, []PatchResult{decl, rewrite}
}

// hasLookupTarget reports whether the text holds a literal the rewrite step
// can use, or one it already rewrote
func (s TemplateSpec) hasLookupTarget(text string) bool {
	if strings.Contains(text, s.lookupPrefix()) {
		return true
	}
	return s.PlaceholderLiteral != "" &&
		strings.Contains(s.PlaceholderLiteral, s.Token()) &&
		strings.Contains(text, s.PlaceholderLiteral)
}

func (i *TemplateMapInjector) declare(text string, spec TemplateSpec, tm TemplateMapping, op PatchOperation) (string, PatchResult) {
	res := PatchResult{Operation: op, BeforeLen: len(text), AfterLen: len(text)}

	if strings.Contains(text, spec.declarationPrefix()) {
		res.Status = StatusSkippedAlreadyApplied
		res.Note = "declaration present"
		return text, res
	}

	if !spec.hasLookupTarget(text) {
		res.Status = StatusWarnedNotFound
		res.Note = "placeholder literal not found, nothing would use the declaration"
		return text, res
	}

	at := strings.Index(text, spec.DeclarationAnchor)
	if spec.DeclarationAnchor == "" || at < 0 {
		res.Status = StatusWarnedNotFound
		res.Note = "declaration anchor not found"
		return text, res
	}

	js, err := tm.Serialize()
	if err != nil {
		res.Status = StatusWarnedNotFound
		res.Note = fmt.Sprintf("serializing entries: %v", err)
		return text, res
	}

	decl := spec.declarationPrefix() + js + ";\n"
	out := splice(text, at, at, decl)
	res.Status = StatusApplied
	res.AfterLen = len(out)
	res.Note = fmt.Sprintf("%d entries", len(tm.Entries))
	return out, res
}

func (i *TemplateMapInjector) rewrite(text string, spec TemplateSpec, tm TemplateMapping, op PatchOperation) (string, PatchResult) {
	res := PatchResult{Operation: op, BeforeLen: len(text), AfterLen: len(text)}

	at := -1
	if spec.PlaceholderLiteral != "" {
		at = strings.Index(text, spec.PlaceholderLiteral)
	}
	if at < 0 {
		if strings.Contains(text, spec.lookupPrefix()) {
			res.Status = StatusSkippedAlreadyApplied
			res.Note = "literal already rewritten"
		} else {
			res.Status = StatusWarnedNotFound
			res.Note = "placeholder literal not found"
		}
		return text, res
	}

	token := spec.Token()
	if !strings.Contains(spec.PlaceholderLiteral, token) {
		res.Status = StatusWarnedNotFound
		res.Note = fmt.Sprintf("literal carries no %s", token)
		return text, res
	}

	fallback := tm.Default
	if fallback == "" {
		fallback = spec.placeholderValue()
	}
	fb, err := marshalJS(fallback)
	if err != nil {
		res.Status = StatusWarnedNotFound
		res.Note = fmt.Sprintf("serializing default: %v", err)
		return text, res
	}

	attr := fmt.Sprintf(`%s="%s||%s}"`, spec.attribute(), spec.lookupPrefix(), fb)
	if spec.ExtraAttributes != "" {
		attr += " " + spec.ExtraAttributes
	}

	literal := strings.Replace(spec.PlaceholderLiteral, token, attr, 1)
	out := splice(text, at, at+len(spec.PlaceholderLiteral), literal)
	res.Status = StatusApplied
	res.AfterLen = len(out)
	return out, res
}
