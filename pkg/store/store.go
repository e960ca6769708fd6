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

// Package store reads and writes whole documents below a corpus root.
//
// A document is addressed by a slash-separated id relative to the root.
// Writes go to a temp file in the target directory which is synced and then
// renamed over the original, so a reader sees either the old or the new
// text and an interrupted run never leaves a partial document behind.
package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrDocumentUnavailable means the document could not be addressed or read
	ErrDocumentUnavailable = errors.Base("document unavailable")
	// ErrPersistFailure means the patched text could not be written back
	ErrPersistFailure = errors.Base("persist failure")
)

const defaultPerm os.FileMode = 0o644

// 📁 Store gives whole-document access below a root directory
type Store struct {
	root string
}

// 🏭 New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{root: filepath.Clean(dir)}
}

// Root returns the corpus root
func (s *Store) Root() string {
	return s.root
}

// 🔍 Path maps a document id to a file path, rejecting ids that are empty,
// absolute or escape the root.
func (s *Store) Path(id string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(id))
	switch {
	case strings.TrimSpace(id) == "", rel == ".":
		return "", errors.Errorf("%w: empty document id", ErrDocumentUnavailable)
	case filepath.IsAbs(rel), strings.HasPrefix(id, "/"), filepath.VolumeName(rel) != "":
		return "", errors.Errorf("%w: %s: absolute document id", ErrDocumentUnavailable, id)
	case rel == "..", strings.HasPrefix(rel, ".."+string(filepath.Separator)):
		return "", errors.Errorf("%w: %s: document id escapes the root", ErrDocumentUnavailable, id)
	}
	return filepath.Join(s.root, rel), nil
}

// 📖 Read returns the full text of a document
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	path, err := s.Path(id)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("%w: reading %s: %s", ErrDocumentUnavailable, id, err)
	}

	zerolog.Ctx(ctx).Debug().Str("document", id).Int("bytes", len(data)).Msg("document read")
	return string(data), nil
}

// 💾 Write atomically replaces a document with text, keeping its file mode
func (s *Store) Write(ctx context.Context, id string, text string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.Errorf("%w: %s: %s", ErrPersistFailure, id, err)
	}

	perm := defaultPerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := WriteFileAtomic(path, []byte(text), perm); err != nil {
		return errors.Errorf("%w: %s: %s", ErrPersistFailure, id, err)
	}

	zerolog.Ctx(ctx).Debug().Str("document", id).Int("bytes", len(text)).Msg("document written")
	return nil
}

// 💾 WriteFileAtomic writes content to path through a synced temp file in the
// same directory followed by a rename
func WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".anchorpatch-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return errors.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	// best effort, some platforms cannot sync a directory
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}
