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
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/anchorpatch/pkg/locate"
	"github.com/walteh/anchorpatch/pkg/mapping"
	"github.com/walteh/anchorpatch/pkg/state"
	"github.com/walteh/anchorpatch/pkg/store"
)

// 🏷️ Kind names a class of failure
type Kind string

const (
	KindConfigUnavailable   Kind = "config-unavailable"
	KindDocumentUnavailable Kind = "document-unavailable"
	KindPersistFailure      Kind = "persist-failure"
	KindLedgerUnavailable   Kind = "ledger-unavailable"
	KindAnchorNotFound      Kind = "anchor-not-found"
	KindInterrupted         Kind = "interrupted"
	KindUnknown             Kind = "unknown"
)

// 🔍 Classify maps an error to its failure kind. Cancellation wins over
// everything else so an interrupted run is reported as such.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindInterrupted
	case errors.Is(err, mapping.ErrConfigUnavailable):
		return KindConfigUnavailable
	case errors.Is(err, state.ErrLedgerUnavailable):
		return KindLedgerUnavailable
	case errors.Is(err, store.ErrDocumentUnavailable):
		return KindDocumentUnavailable
	case errors.Is(err, store.ErrPersistFailure):
		return KindPersistFailure
	case errors.Is(err, locate.ErrNotFound):
		return KindAnchorNotFound
	default:
		return KindUnknown
	}
}

// Fatal reports whether a failure of this kind aborts the whole run
func (k Kind) Fatal() bool {
	return k == KindConfigUnavailable || k == KindInterrupted
}
