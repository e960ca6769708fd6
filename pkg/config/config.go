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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/locate"
	"github.com/walteh/anchorpatch/pkg/mapping"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🗺️ MappingArgs points at the key→value mapping file
type MappingArgs struct {
	Path  string `json:"path" yaml:"path"`
	Field string `json:"field,omitempty" yaml:"field,omitempty"` // value field for object entries
}

// 🔗 LinkArgs is one placeholder substitution next to an anchor
type LinkArgs struct {
	Anchor           string `json:"anchor" yaml:"anchor"`
	Placeholder      string `json:"placeholder" yaml:"placeholder"`
	PlaceholderValue string `json:"placeholder_value,omitempty" yaml:"placeholder_value,omitempty"`
	Key              string `json:"key" yaml:"key"`
}

// 📄 DocumentArgs lists the link operations of one document, in order
type DocumentArgs struct {
	ID    string     `json:"id" yaml:"id"`
	Links []LinkArgs `json:"links" yaml:"links"`
}

// 🎨 TemplateArgs turns a shared static placeholder into a runtime lookup
type TemplateArgs struct {
	Document           string            `json:"document" yaml:"document"`
	Variable           string            `json:"variable,omitempty" yaml:"variable,omitempty"`
	DeclarationAnchor  string            `json:"declaration_anchor" yaml:"declaration_anchor"`
	PlaceholderLiteral string            `json:"placeholder_literal" yaml:"placeholder_literal"`
	Lookup             string            `json:"lookup" yaml:"lookup"`
	Attribute          string            `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	PlaceholderValue   string            `json:"placeholder_value,omitempty" yaml:"placeholder_value,omitempty"`
	DefaultKey         string            `json:"default_key,omitempty" yaml:"default_key,omitempty"`
	ExtraAttributes    string            `json:"extra_attributes,omitempty" yaml:"extra_attributes,omitempty"`
	Entries            map[string]string `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// 🧩 SectionArgs inserts a named block into several documents
type SectionArgs struct {
	Name        string            `json:"name" yaml:"name"`
	Marker      string            `json:"marker" yaml:"marker"`
	Style       string            `json:"style,omitempty" yaml:"style,omitempty"`
	StyleAnchor string            `json:"style_anchor,omitempty" yaml:"style_anchor,omitempty"`
	Anchors     []string          `json:"anchors" yaml:"anchors"`
	Documents   map[string]string `json:"documents" yaml:"documents"` // document id → body
}

// 📚 Config represents the complete patch table
type Config struct {
	Root      string         `json:"root" yaml:"root"`
	Mapping   MappingArgs    `json:"mapping" yaml:"mapping"`
	Window    int            `json:"window,omitempty" yaml:"window,omitempty"`
	Boundary  string         `json:"boundary,omitempty" yaml:"boundary,omitempty"`
	Ledger    string         `json:"ledger,omitempty" yaml:"ledger,omitempty"`
	Ignore    []string       `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Documents []DocumentArgs `json:"documents,omitempty" yaml:"documents,omitempty"`
	Templates []TemplateArgs `json:"templates,omitempty" yaml:"templates,omitempty"`
	Sections  []SectionArgs  `json:"sections,omitempty" yaml:"sections,omitempty"`

	location string
}

// 🎯 Load loads the configuration from a file. Relative paths inside the
// file are resolved against the file's directory.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.location = abs

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Str("root", cfg.Root).
		Str("mapping", cfg.Mapping.Path).
		Int("documents", len(cfg.Documents)).
		Int("templates", len(cfg.Templates)).
		Int("sections", len(cfg.Sections)).
		Msg("configuration loaded")

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		return errors.Errorf("root is required")
	}
	if cfg.Mapping.Path == "" {
		return errors.Errorf("mapping.path is required")
	}

	if cfg.Window < 0 {
		return errors.Errorf("window must not be negative")
	}
	if cfg.Window == 0 {
		cfg.Window = locate.DefaultWindow
	}
	if cfg.Boundary == "" {
		cfg.Boundary = locate.DefaultBoundary
	}
	if cfg.Mapping.Field == "" {
		cfg.Mapping.Field = mapping.DefaultField
	}

	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("ignore pattern %q is invalid", pattern)
		}
	}

	seen := map[string]bool{}
	for i, doc := range cfg.Documents {
		if doc.ID == "" {
			return errors.Errorf("documents[%d]: id is required", i)
		}
		if seen[doc.ID] {
			return errors.Errorf("documents[%d]: duplicate id %q", i, doc.ID)
		}
		seen[doc.ID] = true
		for j, link := range doc.Links {
			switch {
			case link.Anchor == "":
				return errors.Errorf("documents[%d].links[%d]: anchor is required", i, j)
			case link.Placeholder == "":
				return errors.Errorf("documents[%d].links[%d]: placeholder is required", i, j)
			case link.Key == "":
				return errors.Errorf("documents[%d].links[%d]: key is required", i, j)
			case link.PlaceholderValue != "" && !strings.Contains(link.Placeholder, link.PlaceholderValue):
				return errors.Errorf("documents[%d].links[%d]: placeholder_value %q is not part of the placeholder", i, j, link.PlaceholderValue)
			}
		}
	}

	for i, tmpl := range cfg.Templates {
		switch {
		case tmpl.Document == "":
			return errors.Errorf("templates[%d]: document is required", i)
		case tmpl.DeclarationAnchor == "":
			return errors.Errorf("templates[%d]: declaration_anchor is required", i)
		case tmpl.PlaceholderLiteral == "":
			return errors.Errorf("templates[%d]: placeholder_literal is required", i)
		case tmpl.Lookup == "":
			return errors.Errorf("templates[%d]: lookup is required", i)
		case len(tmpl.Entries) == 0 && tmpl.DefaultKey == "":
			return errors.Errorf("templates[%d]: at least one entry or a default_key is required", i)
		}
	}

	for i, sec := range cfg.Sections {
		switch {
		case sec.Name == "":
			return errors.Errorf("sections[%d]: name is required", i)
		case sec.Marker == "":
			return errors.Errorf("sections[%d]: marker is required", i)
		case len(sec.Anchors) == 0:
			return errors.Errorf("sections[%d]: at least one anchor is required", i)
		case len(sec.Documents) == 0:
			return errors.Errorf("sections[%d]: at least one document is required", i)
		}
		for id, body := range sec.Documents {
			if !strings.Contains(body, sec.Marker) {
				return errors.Errorf("sections[%d]: body for %q does not contain marker %q", i, id, sec.Marker)
			}
		}
	}

	dir := ""
	if cfg.location != "" {
		dir = filepath.Dir(cfg.location)
	}
	cfg.Root = resolve(dir, cfg.Root)
	cfg.Mapping.Path = resolve(dir, cfg.Mapping.Path)
	if cfg.Ledger != "" {
		cfg.Ledger = resolve(dir, cfg.Ledger)
	}

	return nil
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// Location returns the absolute path the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🙈 Ignored reports whether a document id matches an ignore pattern
func (cfg *Config) Ignored(id string) bool {
	for _, pattern := range cfg.Ignore {
		if ok, _ := doublestar.Match(pattern, id); ok {
			return true
		}
	}
	return false
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s [%s] -> %s", cfg.Mapping.Path, cfg.Mapping.Field, cfg.Root)
}
