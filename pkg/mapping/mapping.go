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
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultField is the value field read from object entries
const DefaultField = "url"

// ErrConfigUnavailable means the mapping cannot be used to start a run
var ErrConfigUnavailable = errors.Base("mapping unavailable")

// 🗺️ Mapping is a read-only table of symbolic keys to resolved values.
//
// An empty value means "not configured". A Mapping is never mutated after
// construction and is safe to share between documents.
type Mapping struct {
	values map[string]string
	source string
}

// 🏭 New creates a mapping from a copy of values
func New(values map[string]string) *Mapping {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &Mapping{values: cp}
}

// Lookup returns the value for key. It reports false when the key is absent
// or its value is empty.
func (m *Mapping) Lookup(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v := m.values[key]
	return v, v != ""
}

// Value returns the value for key, empty if unset
func (m *Mapping) Value(key string) string {
	v, _ := m.Lookup(key)
	return v
}

// Total returns the number of declared entries
func (m *Mapping) Total() int {
	if m == nil {
		return 0
	}
	return len(m.values)
}

// Configured returns the number of entries with a non-empty value
func (m *Mapping) Configured() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.values {
		if v != "" {
			n++
		}
	}
	return n
}

// Keys returns all declared keys in sorted order
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Source returns the file the mapping was loaded from, if any
func (m *Mapping) Source() string {
	if m == nil {
		return ""
	}
	return m.source
}

// 🔍 Require checks the run precondition: at least one usable value
func (m *Mapping) Require() error {
	if m.Configured() == 0 {
		return errors.Errorf("%w: no configured values (%d entries declared)", ErrConfigUnavailable, m.Total())
	}
	return nil
}

// 🎯 Load reads a mapping file. Object entries contribute their field value,
// string entries contribute themselves, and keys starting with "_" are
// treated as comments. Every failure wraps ErrConfigUnavailable.
func Load(ctx context.Context, path, field string) (*Mapping, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading mapping")

	if field == "" {
		field = DefaultField
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("%w: reading %s: %s", ErrConfigUnavailable, path, err)
	}

	dec := GetDecoder(path)
	if dec == nil {
		return nil, errors.Errorf("%w: no decoder for file: %s", ErrConfigUnavailable, path)
	}

	raw, err := dec.Decode(data, path)
	if err != nil {
		return nil, errors.Errorf("%w: decoding %s: %s", ErrConfigUnavailable, path, err)
	}

	m := &Mapping{values: make(map[string]string, len(raw)), source: path}
	for key, entry := range raw {
		if strings.HasPrefix(key, "_") {
			continue
		}
		switch v := entry.(type) {
		case nil:
			m.values[key] = ""
		case string:
			m.values[key] = strings.TrimSpace(v)
		case map[string]any:
			fv, ok := v[field]
			if !ok {
				logger.Debug().Str("key", key).Str("field", field).Msg("entry has no value field, skipping")
				continue
			}
			s, _ := fv.(string)
			m.values[key] = strings.TrimSpace(s)
		default:
			logger.Debug().Str("key", key).Msgf("ignoring entry of type %T", entry)
		}
	}

	logger.Debug().
		Int("configured", m.Configured()).
		Int("total", m.Total()).
		Msg("mapping loaded")

	return m, nil
}
