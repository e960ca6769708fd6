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

package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/patch"
	"github.com/walteh/anchorpatch/pkg/store"
)

const (
	// DefaultFileName is the ledger file used when none is configured
	DefaultFileName = ".anchorpatch.lock"
	// SchemaVersion is written into every ledger
	SchemaVersion = "1.0.0"
)

// ErrLedgerUnavailable marks a ledger that could not be read or written
var ErrLedgerUnavailable = errors.Base("ledger unavailable")

// Entry records one mapping key applied to one document
type Entry struct {
	Value     string    `json:"value"`
	AppliedAt time.Time `json:"applied_at"`
	RunID     string    `json:"run_id,omitempty"`
}

// File is the on-disk ledger format
type File struct {
	SchemaVersion string                      `json:"schema_version"`
	LastUpdated   time.Time                   `json:"last_updated"`
	Documents     map[string]map[string]Entry `json:"documents"`
}

// 📜 Ledger is a side record of which keys were applied to which documents.
// Without it a vanished placeholder can't be told apart from a missing one.
type Ledger struct {
	path  string
	file  File
	dirty bool
	now   func() time.Time
}

var _ patch.History = (*Ledger)(nil)

// 🏭 New creates an empty ledger backed by path
func New(path string) *Ledger {
	if path == "" {
		path = DefaultFileName
	}
	return &Ledger{
		path: filepath.Clean(path),
		file: File{SchemaVersion: SchemaVersion, Documents: map[string]map[string]Entry{}},
		now:  time.Now,
	}
}

// Path returns the ledger file path
func (l *Ledger) Path() string {
	return l.path
}

// 📥 Load reads the ledger from disk; a missing file yields an empty ledger
func (l *Ledger) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", l.path).Msg("no ledger yet, starting clean")
			return nil
		}
		return errors.Errorf("%w: reading ledger: %s", ErrLedgerUnavailable, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Errorf("%w: parsing ledger %s: %s", ErrLedgerUnavailable, l.path, err)
	}
	if file.SchemaVersion != SchemaVersion {
		return errors.Errorf("%w: ledger %s has schema version %q, want %q", ErrLedgerUnavailable, l.path, file.SchemaVersion, SchemaVersion)
	}
	if file.Documents == nil {
		file.Documents = map[string]map[string]Entry{}
	}

	l.file = file
	l.dirty = false
	logger.Debug().Str("path", l.path).Int("documents", len(file.Documents)).Msg("ledger loaded")
	return nil
}

// 🔍 Applied reports whether key was applied to the document with the same value
func (l *Ledger) Applied(documentID, key, value string) bool {
	entry, ok := l.file.Documents[documentID][key]
	return ok && entry.Value == value
}

// ✍️ Record notes that key was applied to the document with value
func (l *Ledger) Record(documentID, key, value, runID string) {
	if l.file.Documents[documentID] == nil {
		l.file.Documents[documentID] = map[string]Entry{}
	}
	l.file.Documents[documentID][key] = Entry{Value: value, AppliedAt: l.now().UTC(), RunID: runID}
	l.dirty = true
}

// RecordResults records every applied link result of one document. Values
// are resolved again through resolver since results don't carry them.
func (l *Ledger) RecordResults(documentID string, results []patch.PatchResult, resolver patch.Resolver, runID string) int {
	n := 0
	for _, r := range results {
		if r.Status != patch.StatusApplied || r.Operation.Kind != patch.KindLink {
			continue
		}
		value, ok := resolver.Lookup(r.Operation.MappingKey)
		if !ok {
			continue
		}
		l.Record(documentID, r.Operation.MappingKey, value, runID)
		n++
	}
	return n
}

// Entries returns the recorded keys of one document
func (l *Ledger) Entries(documentID string) map[string]Entry {
	out := make(map[string]Entry, len(l.file.Documents[documentID]))
	for k, v := range l.file.Documents[documentID] {
		out[k] = v
	}
	return out
}

// Dirty reports whether there are unsaved records
func (l *Ledger) Dirty() bool {
	return l.dirty
}

// 💾 Save writes the ledger atomically when it has unsaved records
func (l *Ledger) Save(ctx context.Context) error {
	if !l.dirty {
		return nil
	}

	l.file.LastUpdated = l.now().UTC()
	data, err := json.MarshalIndent(l.file, "", "\t")
	if err != nil {
		return errors.Errorf("%w: encoding ledger: %s", ErrLedgerUnavailable, err)
	}

	if err := store.WriteFileAtomic(l.path, append(data, '\n'), 0o644); err != nil {
		return errors.Errorf("%w: writing ledger %s: %s", ErrLedgerUnavailable, l.path, err)
	}

	l.dirty = false
	zerolog.Ctx(ctx).Debug().Str("path", l.path).Msg("ledger saved")
	return nil
}
