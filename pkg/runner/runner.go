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

// Package runner drives one patch pass over the configured documents.
//
// Documents are handled strictly one after another. For each one the text
// is read whole, every configured operation is attempted in order against
// the progressively patched text, and the result is written back once,
// atomically, only when it changed and the run is live. A document that
// can't be read or written is reported and the batch moves on.
package runner

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/config"
	"github.com/walteh/anchorpatch/pkg/locate"
	"github.com/walteh/anchorpatch/pkg/log"
	"github.com/walteh/anchorpatch/pkg/mapping"
	"github.com/walteh/anchorpatch/pkg/patch"
	"github.com/walteh/anchorpatch/pkg/report"
	"github.com/walteh/anchorpatch/pkg/state"
	"github.com/walteh/anchorpatch/pkg/store"
)

// 📁 DocumentStore reads and writes whole documents by id
type DocumentStore interface {
	Read(ctx context.Context, id string) (string, error)
	Write(ctx context.Context, id string, text string) error
}

// 🔧 Options contains configuration for a run
type Options struct {
	// Config is the loaded patch table
	Config *config.Config
	// Store overrides the document store rooted at Config.Root
	Store DocumentStore
	// Mapping overrides loading the mapping file named by the config
	Mapping *mapping.Mapping
	// DryRun keeps all changes in memory
	DryRun bool
	// Only restricts the run to document ids matching any of these globs
	Only []string
	// Console receives human readable progress; nil keeps the run quiet
	Console *log.Logger
}

// 🏃 Runner executes patch passes
type Runner struct {
	opts  Options
	store DocumentStore
}

// 🏭 New creates a runner
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	for _, pattern := range opts.Only {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("only pattern %q is invalid", pattern)
		}
	}

	st := opts.Store
	if st == nil {
		st = store.New(opts.Config.Root)
	}

	return &Runner{opts: opts, store: st}, nil
}

func (r *Runner) selected(id string) bool {
	if len(r.opts.Only) == 0 {
		return true
	}
	for _, pattern := range r.opts.Only {
		if ok, _ := doublestar.Match(pattern, id); ok {
			return true
		}
	}
	return false
}

func (r *Runner) loadMapping(ctx context.Context) (*mapping.Mapping, error) {
	m := r.opts.Mapping
	if m == nil {
		var err error
		m, err = mapping.Load(ctx, r.opts.Config.Mapping.Path, r.opts.Config.Mapping.Field)
		if err != nil {
			return nil, err
		}
	}
	if err := m.Require(); err != nil {
		return nil, err
	}
	return m, nil
}

// 🏃 Run performs one pass and returns its report. The returned error is
// non-nil only when the mapping precondition failed or the run was
// interrupted; per document and ledger problems are in the report.
func (r *Runner) Run(ctx context.Context) (*report.Emitter, error) {
	logger := zerolog.Ctx(ctx)
	emitter := report.NewEmitter(r.opts.DryRun, r.opts.Console)
	cfg := r.opts.Config

	m, err := r.loadMapping(ctx)
	if err != nil {
		emitter.FailPrecondition(ctx, err)
		return emitter, errors.Errorf("loading mapping: %w", err)
	}

	logger.Debug().
		Str("run_id", emitter.RunID()).
		Str("mapping", m.Source()).
		Int("configured", m.Configured()).
		Int("total", m.Total()).
		Bool("dry_run", r.opts.DryRun).
		Msg("starting patch run")

	var ledger *state.Ledger
	var history patch.History
	if cfg.Ledger != "" {
		ledger = state.New(cfg.Ledger)
		if err := ledger.Load(ctx); err != nil {
			// patch without history; the unreadable file is left alone
			logger.Warn().Err(err).Str("ledger", cfg.Ledger).Msg("ledger unusable, continuing without it")
			emitter.RecordRunFailure(ctx, cfg.Ledger, err)
			ledger = nil
		} else {
			history = ledger
		}
	}

	links := patch.NewLinkPatcher(locate.NewAnchorLocator(cfg.Window, cfg.Boundary), m, history)
	templates := patch.NewTemplateMapInjector(m)
	sections := patch.NewSectionInjector()

	for _, plan := range cfg.Plans() {
		if !r.selected(plan.DocumentID) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return emitter, errors.Errorf("run interrupted before %s: %w", plan.DocumentID, err)
		}

		emitter.BeginDocument(ctx, plan.DocumentID)

		original, err := r.store.Read(ctx, plan.DocumentID)
		if err != nil {
			emitter.RecordFailure(ctx, plan.DocumentID, err)
			continue
		}

		text, results := links.Patch(ctx, plan.DocumentID, original, plan.Links)
		for _, spec := range plan.Templates {
			var rs []patch.PatchResult
			text, rs = templates.Inject(ctx, text, spec)
			results = append(results, rs...)
		}
		for _, spec := range plan.Sections {
			var rs []patch.PatchResult
			text, rs = sections.Inject(ctx, text, spec)
			results = append(results, rs...)
		}

		emitter.Record(ctx, plan.DocumentID, results)

		changed := text != original
		persisted := false
		if changed && !r.opts.DryRun {
			if err := r.store.Write(ctx, plan.DocumentID, text); err != nil {
				emitter.RecordFailure(ctx, plan.DocumentID, err)
			} else {
				persisted = true
				if ledger != nil {
					ledger.RecordResults(plan.DocumentID, results, m, emitter.RunID())
				}
			}
		}

		emitter.EndDocument(ctx, plan.DocumentID, changed, persisted)
	}

	if ledger != nil && !r.opts.DryRun {
		if err := ledger.Save(ctx); err != nil {
			logger.Warn().Err(err).Str("ledger", cfg.Ledger).Msg("saving ledger")
			emitter.RecordRunFailure(ctx, cfg.Ledger, err)
		}
	}

	s := emitter.Summary()
	logger.Debug().
		Str("run_id", s.RunID).
		Int("documents", s.Documents).
		Int("changed", s.Changed).
		Int("failed", s.Failed).
		Msg("patch run complete")

	return emitter, nil
}
