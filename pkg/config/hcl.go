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
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// Documents, templates and sections are labeled blocks:
//
//	document "tools/a/index.html" {
//	  link {
//	    anchor      = "LHH転職エージェント"
//	    placeholder = "href=\"#\""
//	    key         = "lhh_agent"
//	  }
//	}
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclConfig struct {
	Root    string `hcl:"root"`
	Mapping struct {
		Path  string `hcl:"path"`
		Field string `hcl:"field,optional"`
	} `hcl:"mapping,block"`
	Window   int      `hcl:"window,optional"`
	Boundary string   `hcl:"boundary,optional"`
	Ledger   string   `hcl:"ledger,optional"`
	Ignore   []string `hcl:"ignore,optional"`

	Documents []struct {
		ID    string `hcl:"id,label"`
		Links []struct {
			Anchor           string `hcl:"anchor"`
			Placeholder      string `hcl:"placeholder"`
			PlaceholderValue string `hcl:"placeholder_value,optional"`
			Key              string `hcl:"key"`
		} `hcl:"link,block"`
	} `hcl:"document,block"`

	Templates []struct {
		Document           string            `hcl:"document,label"`
		Variable           string            `hcl:"variable,optional"`
		DeclarationAnchor  string            `hcl:"declaration_anchor"`
		PlaceholderLiteral string            `hcl:"placeholder_literal"`
		Lookup             string            `hcl:"lookup"`
		Attribute          string            `hcl:"attribute,optional"`
		PlaceholderValue   string            `hcl:"placeholder_value,optional"`
		DefaultKey         string            `hcl:"default_key,optional"`
		ExtraAttributes    string            `hcl:"extra_attributes,optional"`
		Entries            map[string]string `hcl:"entries,optional"`
	} `hcl:"template,block"`

	Sections []struct {
		Name        string            `hcl:"name,label"`
		Marker      string            `hcl:"marker"`
		Style       string            `hcl:"style,optional"`
		StyleAnchor string            `hcl:"style_anchor,optional"`
		Anchors     []string          `hcl:"anchors"`
		Documents   map[string]string `hcl:"documents"`
	} `hcl:"section,block"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "anchorpatch.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Root: hclCfg.Root,
		Mapping: MappingArgs{
			Path:  hclCfg.Mapping.Path,
			Field: hclCfg.Mapping.Field,
		},
		Window:   hclCfg.Window,
		Boundary: hclCfg.Boundary,
		Ledger:   hclCfg.Ledger,
		Ignore:   hclCfg.Ignore,
	}

	for _, d := range hclCfg.Documents {
		doc := DocumentArgs{ID: d.ID}
		for _, l := range d.Links {
			doc.Links = append(doc.Links, LinkArgs{
				Anchor:           l.Anchor,
				Placeholder:      l.Placeholder,
				PlaceholderValue: l.PlaceholderValue,
				Key:              l.Key,
			})
		}
		cfg.Documents = append(cfg.Documents, doc)
	}

	for _, t := range hclCfg.Templates {
		cfg.Templates = append(cfg.Templates, TemplateArgs{
			Document:           t.Document,
			Variable:           t.Variable,
			DeclarationAnchor:  t.DeclarationAnchor,
			PlaceholderLiteral: t.PlaceholderLiteral,
			Lookup:             t.Lookup,
			Attribute:          t.Attribute,
			PlaceholderValue:   t.PlaceholderValue,
			DefaultKey:         t.DefaultKey,
			ExtraAttributes:    t.ExtraAttributes,
			Entries:            t.Entries,
		})
	}

	for _, s := range hclCfg.Sections {
		cfg.Sections = append(cfg.Sections, SectionArgs{
			Name:        s.Name,
			Marker:      s.Marker,
			Style:       s.Style,
			StyleAnchor: s.StyleAnchor,
			Anchors:     s.Anchors,
			Documents:   s.Documents,
		})
	}

	return cfg, nil
}
