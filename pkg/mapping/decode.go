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

package mapping

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Decoder turns a mapping file into generic key/entry pairs
type Decoder interface {
	// 📝 Decode parses the file contents
	Decode(data []byte, filename string) (map[string]any, error)

	// 🔍 CanDecode checks if this decoder can handle the given file
	CanDecode(filename string) bool
}

var decoders []Decoder

// 📝 RegisterDecoder registers a decoder
func RegisterDecoder(d Decoder) {
	decoders = append(decoders, d)
}

// 🎯 GetDecoder returns a decoder that can handle the given file
func GetDecoder(filename string) Decoder {
	for _, d := range decoders {
		if d.CanDecode(filename) {
			return d
		}
	}
	return nil
}

func init() {
	RegisterDecoder(&JSONDecoder{})
	RegisterDecoder(&YAMLDecoder{})
	RegisterDecoder(&HCLDecoder{})
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// 🔧 JSONDecoder decodes .json mapping files
type JSONDecoder struct{}

func (d *JSONDecoder) CanDecode(filename string) bool {
	return hasExt(filename, ".json")
}

func (d *JSONDecoder) Decode(data []byte, filename string) (map[string]any, error) {
	var raw map[string]any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return raw, nil
}

// 🔧 YAMLDecoder decodes .yaml and .yml mapping files
type YAMLDecoder struct{}

func (d *YAMLDecoder) CanDecode(filename string) bool {
	return hasExt(filename, ".yaml", ".yml")
}

func (d *YAMLDecoder) Decode(data []byte, filename string) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return raw, nil
}

// 🔧 HCLDecoder decodes .hcl mapping files made of top-level attributes:
//
//	lhh_agent = { url = "https://example.com/lhh" }
//	sim_povo  = "https://example.com/povo"
type HCLDecoder struct{}

func (d *HCLDecoder) CanDecode(filename string) bool {
	return hasExt(filename, ".hcl")
}

func (d *HCLDecoder) Decode(data []byte, filename string) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Errorf("reading HCL attributes: %s", diags.Error())
	}

	raw := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Errorf("evaluating %s: %s", name, diags.Error())
		}
		raw[name] = ctyToAny(val)
	}
	return raw, nil
}

// ctyToAny keeps strings and string-valued objects; everything else is dropped
func ctyToAny(val cty.Value) any {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString()
	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			if v.IsKnown() && !v.IsNull() && v.Type() == cty.String {
				out[k.AsString()] = v.AsString()
			}
		}
		return out
	default:
		return nil
	}
}
