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

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<div><div class="t">LHH転職エージェント</div>
<a href="#" class="btn">詳しく見る</a></div>
<footer>f</footer>`

const configYAML = `root: site
mapping:
  path: links.json
documents:
  - id: tools/a/index.html
    links:
      - anchor: LHH転職エージェント
        placeholder: 'href="#"'
        key: lhh_agent
`

func setupProject(t *testing.T, mappingJSON string) (dir string, configPath string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site", "tools", "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "tools", "a", "index.html"), []byte(page), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "links.json"), []byte(mappingJSON), 0o644))
	configPath = filepath.Join(dir, "anchorpatch.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))
	return dir, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCmd(out, io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	configured := `{"lhh_agent": {"url": "https://ex.com/lhh"}}`

	tests := []struct {
		name        string
		mapping     string
		args        []string
		wantErr     bool
		errContains string
		wantPage    func(t *testing.T, got string)
		wantOut     []string
	}{
		{
			name:    "apply_writes",
			mapping: configured,
			args:    []string{"apply"},
			wantPage: func(t *testing.T, got string) {
				assert.Contains(t, got, `<a href="https://ex.com/lhh" class="btn">`)
			},
			wantOut: []string{"patching tools/a/index.html", "applied", "1 document(s) written"},
		},
		{
			name:    "apply_dry_run",
			mapping: configured,
			args:    []string{"apply", "--dry-run"},
			wantPage: func(t *testing.T, got string) {
				assert.Equal(t, page, got)
			},
			wantOut: []string{"checking tools/a/index.html", "1 document(s) would change"},
		},
		{
			name:    "check",
			mapping: configured,
			args:    []string{"check"},
			wantPage: func(t *testing.T, got string) {
				assert.Equal(t, page, got)
			},
			wantOut: []string{"documents that would change"},
		},
		{
			name:    "only_filter_skips",
			mapping: configured,
			args:    []string{"apply", "--only", "other/**"},
			wantPage: func(t *testing.T, got string) {
				assert.Equal(t, page, got)
			},
		},
		{
			name:        "no_values_configured",
			mapping:     `{"lhh_agent": {"url": ""}}`,
			args:        []string{"apply"},
			wantErr:     true,
			errContains: "mapping unavailable",
			wantPage: func(t *testing.T, got string) {
				assert.Equal(t, page, got)
			},
		},
		{
			name:        "missing_config",
			mapping:     configured,
			args:        []string{"apply", "--config", "nope.yaml"},
			wantErr:     true,
			errContains: "loading config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, configPath := setupProject(t, tt.mapping)

			args := append([]string{"--config", configPath}, tt.args...)
			out, err := execute(t, args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}

			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}

			if tt.wantPage != nil {
				data, err := os.ReadFile(filepath.Join(dir, "site", "tools", "a", "index.html"))
				require.NoError(t, err)
				tt.wantPage(t, string(data))
			}
		})
	}
}

func TestCorruptLedgerDoesNotStopApply(t *testing.T) {
	dir, configPath := setupProject(t, `{"lhh_agent": {"url": "https://ex.com/lhh"}}`)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML+"ledger: .anchorpatch.lock\n"), 0o644))
	ledgerPath := filepath.Join(dir, ".anchorpatch.lock")
	require.NoError(t, os.WriteFile(ledgerPath, []byte("{not json"), 0o644))

	out, err := execute(t, "--config", configPath, "apply")
	require.NoError(t, err, "an unusable ledger is reported, not fatal")
	assert.Contains(t, out, "ledger-unavailable")

	data, err := os.ReadFile(filepath.Join(dir, "site", "tools", "a", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="https://ex.com/lhh"`)

	ledger, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(ledger), "the unreadable ledger is left alone")
}

func TestMappingOverride(t *testing.T) {
	dir, configPath := setupProject(t, `{}`)
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("lhh_agent: https://ex.com/yaml\n"), 0o644))

	_, err := execute(t, "--config", configPath, "apply", "--mapping", other)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "site", "tools", "a", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="https://ex.com/yaml"`)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "anchorpatch version info")

	info := GetVersionInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	formatted := FormatVersion(&VersionInfo{Version: "v1.2.3", Revision: "abc", Modified: true})
	assert.Contains(t, formatted, "Version:   v1.2.3")
	assert.Contains(t, formatted, "Revision:  abc (modified)")
}
