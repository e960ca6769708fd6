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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/anchorpatch/pkg/patch"
)

// 🎨 Display configuration
const (
	resultIndent = 4  // spaces to indent result entries
	labelWidth   = 35 // Base width for the operation label
	kindWidth    = 12 // Width for operation kind
	statusWidth  = 24 // Width for status text
)

// 📄 DocumentOperation describes the document currently being patched
type DocumentOperation struct {
	ID     string // Document id relative to the corpus root
	DryRun bool   // Whether changes are kept in memory only
}

// 🎯 Logger prints patch progress to the console and mirrors it to zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *DocumentOperation
	results   []patch.PatchResult
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func statusStyle(s patch.Status) (rune, color.Attribute) {
	switch s {
	case patch.StatusApplied:
		return '✓', color.FgGreen
	case patch.StatusSkippedAlreadyApplied:
		return '•', color.FgCyan
	case patch.StatusSkippedUnsetKey:
		return '-', color.FgYellow
	default:
		return '✗', color.FgRed
	}
}

// 📝 formatResult formats one patch result for display
func (l *Logger) formatResult(r patch.PatchResult) string {
	symbol, symbolColor := statusStyle(r.Status)

	var kindColor color.Attribute
	switch r.Operation.Kind {
	case patch.KindLink:
		kindColor = color.FgBlue
	case patch.KindSection, patch.KindStyle:
		kindColor = color.FgMagenta
	default:
		kindColor = color.FgCyan
	}

	detail := r.Note
	if r.Status == patch.StatusApplied {
		detail = fmt.Sprintf("%+d", r.Delta())
	}

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", resultIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", labelWidth, r.Operation.Label()),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, r.Operation.Kind)),
		fmt.Sprintf("%-*s", statusWidth, r.Status),
		color.New(color.Faint).Sprint(detail))
}

// 📝 LogResult logs one patch result
func (l *Logger) LogResult(ctx context.Context, r patch.PatchResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results = append(l.results, r)

	fmt.Fprintln(l.console, l.formatResult(r))

	l.zlog.Info().
		Str("document", r.Operation.DocumentID).
		Str("kind", r.Operation.Kind.String()).
		Str("key", r.Operation.MappingKey).
		Str("status", r.Status.String()).
		Int("delta", r.Delta()).
		Str("note", r.Note).
		Msg("patch result")
}

// 📝 StartDocument starts a new document section
func (l *Logger) StartDocument(ctx context.Context, op DocumentOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.results = nil

	verb := "patching"
	if op.DryRun {
		verb = "checking"
	}
	fmt.Fprintf(l.console, "%s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Faint).Sprint(verb),
		color.New(color.Bold).Sprint(op.ID))

	l.zlog.Info().
		Str("document", op.ID).
		Bool("dry_run", op.DryRun).
		Msg("starting document")
}

// 📝 EndDocument ends the current document section
func (l *Logger) EndDocument(ctx context.Context, persisted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	applied := 0
	for _, r := range l.results {
		if r.Status == patch.StatusApplied {
			applied++
		}
	}

	l.zlog.Info().
		Str("document", l.currentOp.ID).
		Int("results", len(l.results)).
		Int("applied", applied).
		Bool("persisted", persisted).
		Msg("document complete")

	l.currentOp = nil
	l.results = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("anchorpatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// Console returns the writer console output goes to
func (l *Logger) Console() io.Writer {
	return l.console
}
