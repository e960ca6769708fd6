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

// Package report aggregates patch results into a run report.
//
// The emitter is pure bookkeeping: it never decides what to patch. It keeps
// results in the order they were recorded, counts them per status and
// remembers per-document failures and run-level problems that did not stop
// the run, such as an unusable ledger. The only fatal outcome is a failed
// mapping precondition, which turns the exit code to 1.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/log"
	"github.com/walteh/anchorpatch/pkg/patch"
)

// Entry is one recorded result
type Entry struct {
	DocumentID string
	Result     patch.PatchResult
}

// Failure is a document that could not be read or written
type Failure struct {
	DocumentID string
	Kind       Kind
	Err        error
}

// 📊 Summary is the aggregate view of a run
type Summary struct {
	RunID     string
	DryRun    bool
	Documents int
	Changed   int // documents whose text changed (written unless dry run)
	Persisted int
	Unchanged int
	Failed    int

	// PersistFailures counts documents whose changed text could not be written
	PersistFailures int
	// RunFailures counts problems outside any document that did not stop the run
	RunFailures int
	Counts      map[patch.Status]int
}

// 📣 Emitter collects results for one run
type Emitter struct {
	runID        string
	dryRun       bool
	console      *log.Logger
	entries      []Entry
	failures     []Failure
	runFailures  []Failure
	counts       map[patch.Status]int
	documents    []string
	changed      int
	persisted    int
	unchanged    int
	precondition error
}

// 🏭 NewEmitter creates an emitter; console may be nil for silent runs
func NewEmitter(dryRun bool, console *log.Logger) *Emitter {
	return &Emitter{
		runID:   uuid.NewString(),
		dryRun:  dryRun,
		console: console,
		counts:  map[patch.Status]int{},
	}
}

// RunID identifies this run in logs and in the ledger
func (e *Emitter) RunID() string {
	return e.runID
}

// DryRun reports whether the run keeps changes in memory
func (e *Emitter) DryRun() bool {
	return e.dryRun
}

// 📝 BeginDocument marks the start of a document
func (e *Emitter) BeginDocument(ctx context.Context, documentID string) {
	e.documents = append(e.documents, documentID)
	if e.console != nil {
		e.console.StartDocument(ctx, log.DocumentOperation{ID: documentID, DryRun: e.dryRun})
	}
}

// 📝 Record adds results for one document in the order given
func (e *Emitter) Record(ctx context.Context, documentID string, results []patch.PatchResult) {
	for _, r := range results {
		if r.Operation.DocumentID == "" {
			r.Operation.DocumentID = documentID
		}
		e.entries = append(e.entries, Entry{DocumentID: documentID, Result: r})
		e.counts[r.Status]++
		if e.console != nil {
			e.console.LogResult(ctx, r)
		}
	}
}

// 📝 EndDocument records what happened to the document text
func (e *Emitter) EndDocument(ctx context.Context, documentID string, changed, persisted bool) {
	switch {
	case persisted:
		e.changed++
		e.persisted++
	case changed:
		e.changed++
	default:
		e.unchanged++
	}
	if e.console != nil {
		e.console.EndDocument(ctx, persisted)
	}
}

// 📝 RecordFailure notes a document that could not be processed
func (e *Emitter) RecordFailure(ctx context.Context, documentID string, err error) {
	f := Failure{DocumentID: documentID, Kind: Classify(err), Err: err}
	e.failures = append(e.failures, f)
	if e.console != nil {
		e.console.Errorf("%s: %s", documentID, err)
	}
}

// 📝 RecordRunFailure notes a non-fatal problem outside any document;
// source names what failed, e.g. the ledger path
func (e *Emitter) RecordRunFailure(ctx context.Context, source string, err error) {
	f := Failure{DocumentID: source, Kind: Classify(err), Err: err}
	e.runFailures = append(e.runFailures, f)
	if e.console != nil {
		e.console.Warningf("%s: %s", source, err)
	}
}

// 📝 FailPrecondition marks the run as aborted before any document was touched
func (e *Emitter) FailPrecondition(ctx context.Context, err error) {
	e.precondition = err
	if e.console != nil {
		e.console.Errorf("precondition failed: %s", err)
	}
}

// Precondition returns the precondition error, if any
func (e *Emitter) Precondition() error {
	return e.precondition
}

// Entries returns all recorded results in order
func (e *Emitter) Entries() []Entry {
	return append([]Entry(nil), e.entries...)
}

// Results returns the recorded results of one document in order
func (e *Emitter) Results(documentID string) []patch.PatchResult {
	var out []patch.PatchResult
	for _, entry := range e.entries {
		if entry.DocumentID == documentID {
			out = append(out, entry.Result)
		}
	}
	return out
}

// Failures returns all document failures in order
func (e *Emitter) Failures() []Failure {
	return append([]Failure(nil), e.failures...)
}

// RunFailures returns the non-fatal run-level failures in order
func (e *Emitter) RunFailures() []Failure {
	return append([]Failure(nil), e.runFailures...)
}

// Count returns the number of results with the given status
func (e *Emitter) Count(s patch.Status) int {
	return e.counts[s]
}

// 📊 Summary returns the aggregate counts
func (e *Emitter) Summary() Summary {
	counts := make(map[patch.Status]int, len(e.counts))
	for _, s := range patch.Statuses() {
		counts[s] = e.counts[s]
	}
	persistFailures := 0
	for _, f := range e.failures {
		if f.Kind == KindPersistFailure {
			persistFailures++
		}
	}
	return Summary{
		RunID:           e.runID,
		DryRun:          e.dryRun,
		Documents:       len(e.documents),
		Changed:         e.changed,
		Persisted:       e.persisted,
		Unchanged:       e.unchanged,
		Failed:          len(e.failures),
		PersistFailures: persistFailures,
		RunFailures:     len(e.runFailures),
		Counts:          counts,
	}
}

// 🚦 ExitCode is 1 when the mapping precondition failed and 0 otherwise.
// Warnings, per-document failures and run failures do not fail the run.
func (e *Emitter) ExitCode() int {
	if e.precondition != nil {
		return 1
	}
	return 0
}

// 🖨️ Render writes the summary table and failure list to w
func (e *Emitter) Render(w io.Writer) error {
	s := e.Summary()

	data := pterm.TableData{{"status", "count"}}
	for _, st := range patch.Statuses() {
		data = append(data, []string{st.String(), strconv.Itoa(s.Counts[st])})
	}
	changedLabel := "documents written"
	if s.DryRun {
		changedLabel = "documents that would change"
	}
	data = append(data,
		[]string{"documents", strconv.Itoa(s.Documents)},
		[]string{changedLabel, strconv.Itoa(s.Changed)},
		[]string{"documents unchanged", strconv.Itoa(s.Unchanged)},
		[]string{"documents failed", strconv.Itoa(s.Failed)},
		[]string{"persist failures", strconv.Itoa(s.PersistFailures)},
	)

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering summary table: %w", err)
	}

	if _, err := fmt.Fprintf(w, "run %s\n%s\n", s.RunID, table); err != nil {
		return errors.Errorf("writing summary: %w", err)
	}

	for _, f := range e.failures {
		line := pterm.Error.WithPrefix(pterm.Prefix{Text: string(f.Kind)}).Sprintln(fmt.Sprintf("%s: %s", f.DocumentID, f.Err))
		if _, err := io.WriteString(w, line); err != nil {
			return errors.Errorf("writing failures: %w", err)
		}
	}

	for _, f := range e.runFailures {
		line := pterm.Warning.WithPrefix(pterm.Prefix{Text: string(f.Kind)}).Sprintln(fmt.Sprintf("%s: %s", f.DocumentID, f.Err))
		if _, err := io.WriteString(w, line); err != nil {
			return errors.Errorf("writing run failures: %w", err)
		}
	}

	if e.precondition != nil {
		line := pterm.Error.WithPrefix(pterm.Prefix{Text: string(KindConfigUnavailable)}).Sprintln(e.precondition.Error())
		if _, err := io.WriteString(w, line); err != nil {
			return errors.Errorf("writing precondition: %w", err)
		}
	}

	return nil
}
