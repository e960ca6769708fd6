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

package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/locate"
	"github.com/walteh/anchorpatch/pkg/log"
	"github.com/walteh/anchorpatch/pkg/mapping"
	"github.com/walteh/anchorpatch/pkg/patch"
	"github.com/walteh/anchorpatch/pkg/state"
	"github.com/walteh/anchorpatch/pkg/store"
)

func result(key string, status patch.Status, delta int) patch.PatchResult {
	return patch.PatchResult{
		Operation: patch.PatchOperation{Kind: patch.KindLink, AnchorMarker: key, PlaceholderToken: `href="#"`, MappingKey: key},
		Status:    status,
		BeforeLen: 100,
		AfterLen:  100 + delta,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "config", err: errors.Errorf("%w: no values", mapping.ErrConfigUnavailable), want: KindConfigUnavailable},
		{name: "document", err: errors.Errorf("%w: missing", store.ErrDocumentUnavailable), want: KindDocumentUnavailable},
		{name: "persist", err: errors.Errorf("%w: disk full", store.ErrPersistFailure), want: KindPersistFailure},
		{name: "ledger", err: errors.Errorf("%w: parsing ledger", state.ErrLedgerUnavailable), want: KindLedgerUnavailable},
		{name: "not_found", err: errors.Errorf("%w: anchor absent", locate.ErrNotFound), want: KindAnchorNotFound},
		{name: "wrapped_twice", err: errors.Errorf("document a: %w", errors.Errorf("%w: x", store.ErrPersistFailure)), want: KindPersistFailure},
		{name: "cancelled", err: errors.Errorf("writing: %w", context.Canceled), want: KindInterrupted},
		{name: "other", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}

	assert.True(t, KindConfigUnavailable.Fatal())
	assert.False(t, KindPersistFailure.Fatal())
	assert.False(t, KindLedgerUnavailable.Fatal())
}

func TestEmitter_Aggregation(t *testing.T) {
	ctx := zerolog.Nop().WithContext(context.Background())
	e := NewEmitter(false, nil)

	_, err := uuid.Parse(e.RunID())
	require.NoError(t, err, "run id should be a uuid")

	e.BeginDocument(ctx, "a.html")
	e.Record(ctx, "a.html", []patch.PatchResult{
		result("k1", patch.StatusApplied, 20),
		result("k2", patch.StatusSkippedUnsetKey, 0),
	})
	e.EndDocument(ctx, "a.html", true, true)

	e.BeginDocument(ctx, "b.html")
	e.Record(ctx, "b.html", []patch.PatchResult{
		result("k1", patch.StatusWarnedNotFound, 0),
	})
	e.EndDocument(ctx, "b.html", false, false)

	e.BeginDocument(ctx, "c.html")
	e.RecordFailure(ctx, "c.html", errors.Errorf("%w: gone", store.ErrDocumentUnavailable))

	entries := e.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a.html", entries[0].DocumentID)
	assert.Equal(t, "k2", entries[1].Result.Operation.MappingKey, "entries keep recording order")
	assert.Equal(t, "b.html", entries[2].Result.Operation.DocumentID, "document id is filled in")
	assert.Len(t, e.Results("a.html"), 2)

	failures := e.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, KindDocumentUnavailable, failures[0].Kind)

	s := e.Summary()
	assert.Equal(t, 3, s.Documents)
	assert.Equal(t, 1, s.Persisted)
	assert.Equal(t, 1, s.Changed)
	assert.Equal(t, 1, s.Unchanged)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, map[patch.Status]int{
		patch.StatusApplied:               1,
		patch.StatusSkippedUnsetKey:       1,
		patch.StatusSkippedAlreadyApplied: 0,
		patch.StatusWarnedNotFound:        1,
	}, s.Counts)

	assert.Equal(t, 0, e.ExitCode(), "warnings and document failures do not fail the run")
}

func TestEmitter_Precondition(t *testing.T) {
	e := NewEmitter(false, nil)
	e.FailPrecondition(context.Background(), errors.Errorf("%w: 0 of 3 values configured", mapping.ErrConfigUnavailable))

	assert.Equal(t, 1, e.ExitCode())
	assert.ErrorIs(t, e.Precondition(), mapping.ErrConfigUnavailable)
}

func TestEmitter_ConsoleAndRender(t *testing.T) {
	color.NoColor = true
	pterm.DisableStyling()
	defer func() {
		color.NoColor = false
		pterm.EnableStyling()
	}()

	ctx := context.Background()
	console := &bytes.Buffer{}
	e := NewEmitter(true, log.New(console, zerolog.Disabled))

	e.BeginDocument(ctx, "a.html")
	e.Record(ctx, "a.html", []patch.PatchResult{result("k1", patch.StatusApplied, 12)})
	e.EndDocument(ctx, "a.html", true, false)
	e.RecordFailure(ctx, "b.html", errors.Errorf("%w: disk full", store.ErrPersistFailure))
	e.RecordFailure(ctx, "c.html", errors.Errorf("%w: missing", store.ErrDocumentUnavailable))
	e.RecordRunFailure(ctx, ".anchorpatch.lock", errors.Errorf("%w: parsing ledger", state.ErrLedgerUnavailable))

	assert.Contains(t, console.String(), "checking a.html", "dry runs are announced as checks")
	assert.Contains(t, console.String(), "k1 → k1")
	assert.Contains(t, console.String(), "b.html")

	out := &bytes.Buffer{}
	require.NoError(t, e.Render(out))

	assert.Contains(t, out.String(), "run "+e.RunID())
	assert.Contains(t, out.String(), "documents that would change")
	assert.Contains(t, out.String(), "warned-not-found")
	assert.Contains(t, out.String(), "persist-failure")
	assert.Contains(t, out.String(), "b.html: persist failure: disk full")
	assert.Contains(t, out.String(), "persist failures")
	assert.Contains(t, out.String(), "ledger-unavailable")
	assert.Contains(t, out.String(), ".anchorpatch.lock: ledger unavailable: parsing ledger")
	assert.Contains(t, console.String(), ".anchorpatch.lock")
	assert.Equal(t, 2, e.Summary().Failed)
	assert.Equal(t, 1, e.Summary().PersistFailures, "unreadable documents are not persist failures")
	assert.Equal(t, 1, e.Summary().RunFailures)
	assert.Equal(t, 0, e.ExitCode(), "run failures do not fail the run")
	assert.Equal(t, 1, e.Summary().Changed)
	assert.Zero(t, e.Summary().Persisted)
}
