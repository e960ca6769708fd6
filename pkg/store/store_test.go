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

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testCtx() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func TestPath(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr bool
	}{
		{name: "nested", id: "tools/sim/index.html", want: filepath.Join(root, "tools", "sim", "index.html")},
		{name: "dot_segments_inside_root", id: "tools/../index.html", want: filepath.Join(root, "index.html")},
		{name: "empty", id: "", wantErr: true},
		{name: "dot", id: ".", wantErr: true},
		{name: "absolute", id: "/etc/passwd", wantErr: true},
		{name: "escape", id: "../outside.html", wantErr: true},
		{name: "escape_after_clean", id: "tools/../../outside.html", wantErr: true},
		{name: "parent_only", id: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Path(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDocumentUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadWrite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tools"), 0o755))
	path := filepath.Join(root, "tools", "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<a href="#">x</a>`), 0o600))

	s := New(root)
	ctx := testCtx()

	text, err := s.Read(ctx, "tools/index.html")
	require.NoError(t, err)
	assert.Equal(t, `<a href="#">x</a>`, text)

	require.NoError(t, s.Write(ctx, "tools/index.html", `<a href="https://ex.com">x</a>`))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<a href="https://ex.com">x</a>`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "file mode should be kept")

	entries, err := os.ReadDir(filepath.Join(root, "tools"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestRead_Missing(t *testing.T) {
	_, err := New(t.TempDir()).Read(testCtx(), "missing.html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentUnavailable))
	assert.False(t, errors.Is(err, ErrPersistFailure))
}

func TestWrite_Failures(t *testing.T) {
	t.Run("target_is_directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.html", "child"), 0o755))

		err := New(root).Write(testCtx(), "dir.html", "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPersistFailure)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file should be removed")
	})

	t.Run("missing_directory", func(t *testing.T) {
		err := New(t.TempDir()).Write(testCtx(), "nope/index.html", "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPersistFailure)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(testCtx())
		cancel()

		err := New(root).Write(ctx, "a.html", "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPersistFailure)
		assert.NoFileExists(t, filepath.Join(root, "a.html"))
	})

	t.Run("escaping_id", func(t *testing.T) {
		err := New(t.TempDir()).Write(testCtx(), "../x.html", "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDocumentUnavailable)
	})
}
