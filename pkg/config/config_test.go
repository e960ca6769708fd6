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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/anchorpatch/pkg/patch"
)

const fullYAML = `
root: output
mapping:
  path: config/affiliate_links.json
window: 300
ledger: .anchorpatch.lock
ignore: ["drafts/**"]
documents:
  - id: tools/salary-calculator/index.html
    links:
      - anchor: LHH転職エージェント
        placeholder: 'href="#"'
        key: lhh_agent
  - id: drafts/wip.html
    links:
      - anchor: X
        placeholder: 'href="#"'
        key: x
templates:
  - document: tools/sim-comparison/index.html
    declaration_anchor: 'let currentSort="price";'
    placeholder_literal: '<a href="#" class="btn-official">公式サイト</a>'
    lookup: p.provider
    default_key: sim_default
    extra_attributes: 'target="_blank"'
    entries: { povo: sim_povo, LINEMO: sim_linemo }
sections:
  - name: related-tools
    marker: related-tools
    style: "<style>.related-tools{}</style>"
    anchors: ['<p class="note">', '<footer']
    documents:
      tools/salary-calculator/index.html: '<div class="related-tools">a</div>'
`

const fullJSON = `{
  "root": "output",
  "mapping": {"path": "config/affiliate_links.json", "field": "href"},
  "documents": [
    {"id": "a.html", "links": [{"anchor": "A", "placeholder": "href=\"#\"", "key": "a"}]}
  ]
}`

const fullHCL = `
root = "output"
mapping {
  path = "config/affiliate_links.json"
}
boundary = "</li>"
ignore = ["drafts/**"]

document "tools/salary-calculator/index.html" {
  link {
    anchor      = "LHH転職エージェント"
    placeholder = "href=\"#\""
    key         = "lhh_agent"
  }
  link {
    anchor            = "FREENANCE"
    placeholder       = "data-url=\"TBD\""
    placeholder_value = "TBD"
    key               = "freenance"
  }
}

template "tools/sim-comparison/index.html" {
  declaration_anchor  = "let currentSort=\"price\";"
  placeholder_literal = "<a href=\"#\" class=\"btn-official\">公式サイト</a>"
  lookup              = "p.provider"
  entries = {
    povo = "sim_povo"
  }
}

section "related-tools" {
  marker  = "related-tools"
  anchors = ["<footer"]
  documents = {
    "tools/loan/index.html" = "<div class=\"related-tools\"></div>"
  }
}
`

func testCtx() context.Context {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled).WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing config file should succeed")
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		config   string
		check    func(t *testing.T, cfg *Config, dir string)
	}{
		{
			name:     "yaml_full",
			filename: "anchorpatch.yaml",
			config:   fullYAML,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, filepath.Join(dir, "output"), cfg.Root, "root resolves against the config dir")
				assert.Equal(t, filepath.Join(dir, "config", "affiliate_links.json"), cfg.Mapping.Path)
				assert.Equal(t, "url", cfg.Mapping.Field, "field should default")
				assert.Equal(t, 300, cfg.Window)
				assert.Equal(t, "</a>", cfg.Boundary, "boundary should default")
				assert.Equal(t, filepath.Join(dir, ".anchorpatch.lock"), cfg.Ledger)
				require.Len(t, cfg.Documents, 2)
				require.Len(t, cfg.Templates, 1)
				assert.Equal(t, map[string]string{"povo": "sim_povo", "LINEMO": "sim_linemo"}, cfg.Templates[0].Entries)
				require.Len(t, cfg.Sections, 1)
				assert.Equal(t, []string{`<p class="note">`, "<footer"}, cfg.Sections[0].Anchors)
			},
		},
		{
			name:     "json",
			filename: "anchorpatch.json",
			config:   fullJSON,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, "href", cfg.Mapping.Field)
				assert.Equal(t, 500, cfg.Window, "window should default")
				assert.Empty(t, cfg.Ledger, "ledger stays off unless configured")
				require.Len(t, cfg.Documents, 1)
				assert.Equal(t, `href="#"`, cfg.Documents[0].Links[0].Placeholder)
			},
		},
		{
			name:     "hcl",
			filename: "anchorpatch.hcl",
			config:   fullHCL,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, filepath.Join(dir, "output"), cfg.Root)
				assert.Equal(t, "</li>", cfg.Boundary)
				require.Len(t, cfg.Documents, 1)
				require.Len(t, cfg.Documents[0].Links, 2)
				assert.Equal(t, "TBD", cfg.Documents[0].Links[1].PlaceholderValue)
				require.Len(t, cfg.Templates, 1)
				assert.Equal(t, "tools/sim-comparison/index.html", cfg.Templates[0].Document)
				assert.Equal(t, map[string]string{"povo": "sim_povo"}, cfg.Templates[0].Entries)
				require.Len(t, cfg.Sections, 1)
				assert.Equal(t, "related-tools", cfg.Sections[0].Name)
				assert.Contains(t, cfg.Sections[0].Documents, "tools/loan/index.html")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.filename, tt.config)

			cfg, err := Load(testCtx(), path)
			require.NoError(t, err, "Load should succeed")

			dir := filepath.Dir(cfg.Location())
			assert.Equal(t, filepath.Dir(path), dir)
			tt.check(t, cfg, dir)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
	}{
		{
			name:        "missing_root",
			filename:    "a.yaml",
			config:      "mapping: {path: m.json}\n",
			errContains: "root is required",
		},
		{
			name:        "missing_mapping_path",
			filename:    "a.yaml",
			config:      "root: out\n",
			errContains: "mapping.path is required",
		},
		{
			name:        "unknown_yaml_field",
			filename:    "a.yaml",
			config:      "root: out\nmapping: {path: m.json}\nwindoww: 3\n",
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			filename:    "a.json",
			config:      `{"root": "out", "mapping": {"path": "m.json"}, "extra": true}`,
			errContains: "parsing JSON",
		},
		{
			name:        "bad_hcl",
			filename:    "a.hcl",
			config:      "root = \n",
			errContains: "parsing HCL",
		},
		{
			name:        "unsupported_extension",
			filename:    "a.toml",
			config:      "root = 'x'",
			errContains: "no parser found",
		},
		{
			name:     "link_missing_key",
			filename: "a.yaml",
			config: `root: out
mapping: {path: m.json}
documents:
  - id: a.html
    links:
      - {anchor: A, placeholder: 'href="#"'}
`,
			errContains: "documents[0].links[0]: key is required",
		},
		{
			name:     "duplicate_document",
			filename: "a.yaml",
			config: `root: out
mapping: {path: m.json}
documents:
  - {id: a.html, links: []}
  - {id: a.html, links: []}
`,
			errContains: `duplicate id "a.html"`,
		},
		{
			name:     "placeholder_value_outside_token",
			filename: "a.yaml",
			config: `root: out
mapping: {path: m.json}
documents:
  - id: a.html
    links:
      - {anchor: A, placeholder: 'href="#"', placeholder_value: TBD, key: k}
`,
			errContains: "is not part of the placeholder",
		},
		{
			name:     "template_without_entries",
			filename: "a.yaml",
			config: `root: out
mapping: {path: m.json}
templates:
  - document: a.html
    declaration_anchor: x
    placeholder_literal: y
    lookup: p.provider
`,
			errContains: "at least one entry or a default_key",
		},
		{
			name:     "section_body_without_marker",
			filename: "a.yaml",
			config: `root: out
mapping: {path: m.json}
sections:
  - name: related
    marker: related-tools
    anchors: ['<footer']
    documents: {a.html: '<div></div>'}
`,
			errContains: "does not contain marker",
		},
		{
			name:        "bad_ignore_pattern",
			filename:    "a.yaml",
			config:      "root: out\nmapping: {path: m.json}\nignore: ['[']\n",
			errContains: "ignore pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.filename, tt.config)

			_, err := Load(testCtx(), path)
			require.Error(t, err, "Load should return error")
			assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testCtx(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestValidate_AbsolutePathsKept(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	cfg := &Config{Root: root + "/", Mapping: MappingArgs{Path: "m.json"}}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, root, cfg.Root, "absolute root should only be cleaned")
	assert.Equal(t, "m.json", cfg.Mapping.Path, "without a location relative paths stay relative")
}

func TestIgnored(t *testing.T) {
	cfg := &Config{Ignore: []string{"drafts/**", "**/*.bak.html"}}

	tests := []struct {
		id   string
		want bool
	}{
		{"drafts/a.html", true},
		{"drafts/deep/b.html", true},
		{"tools/x/index.bak.html", true},
		{"tools/x/index.html", false},
		{"draftsy/a.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Ignored(tt.id))
		})
	}
}

func TestPlans(t *testing.T) {
	cfg, err := Load(testCtx(), writeConfig(t, "anchorpatch.yaml", fullYAML))
	require.NoError(t, err)

	plans := cfg.Plans()
	require.Len(t, plans, 2, "ignored document should be left out")

	salary := plans[0]
	assert.Equal(t, "tools/salary-calculator/index.html", salary.DocumentID)
	require.Len(t, salary.Links, 1)
	assert.Equal(t, patch.PatchOperation{
		DocumentID:       "tools/salary-calculator/index.html",
		Kind:             patch.KindLink,
		AnchorMarker:     "LHH転職エージェント",
		PlaceholderToken: `href="#"`,
		MappingKey:       "lhh_agent",
	}, salary.Links[0])
	require.Len(t, salary.Sections, 1, "section joins the document declared earlier")
	assert.Equal(t, "related-tools", salary.Sections[0].Marker)
	assert.Equal(t, 2, salary.OperationCount())

	sim := plans[1]
	assert.Equal(t, "tools/sim-comparison/index.html", sim.DocumentID)
	require.Len(t, sim.Templates, 1)
	assert.Equal(t, "p.provider", sim.Templates[0].LookupExpr)
	assert.Equal(t, "sim_default", sim.Templates[0].DefaultKey)
	assert.Equal(t, `target="_blank"`, sim.Templates[0].ExtraAttributes)
	assert.False(t, sim.Empty())
}

func TestConfigString(t *testing.T) {
	cfg := &Config{Root: "out", Mapping: MappingArgs{Path: "m.json", Field: "url"}}
	assert.Equal(t, "m.json [url] -> out", cfg.String())
}
