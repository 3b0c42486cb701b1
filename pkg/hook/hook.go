// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hook implements the positional hook list that lets function
// components hold state, effects and lifecycle registrations across renders.
//
// Hook records are positional: the n-th hook call during a render must always
// be the n-th call during every other render of the same instance. A kind
// mismatch at any position raises an OrderError instead of silently
// corrupting state.
package hook

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kadirpekel/weft/pkg/signal"
)

// Kind discriminates hook records.
type Kind int

const (
	KindState Kind = iota
	KindEffect
	KindLifecycle
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindEffect:
		return "effect"
	case KindLifecycle:
		return "lifecycle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Phase names the lifecycle moments a hook callback can register for.
type Phase string

const (
	PhaseStart        Phase = "start"
	PhaseTickStart    Phase = "tickStart"
	PhaseTickEnd      Phase = "tickEnd"
	PhaseAfterCompile Phase = "afterCompile"
	PhaseComplete     Phase = "complete"
)

// Callback is a lifecycle hook callback.
type Callback func(ctx context.Context) error

// OrderError reports a positional contract violation: the component called
// hooks in a different order than on a previous render.
type OrderError struct {
	Index int
	Got   Kind
	Want  Kind
}

func (e *OrderError) Error() string {
	switch {
	case e.Got < 0:
		return fmt.Sprintf(
			"hook order violation: render made only %d hook call(s) but %s was recorded at position %d; hooks must be called unconditionally in the same order every render",
			e.Index, e.Want, e.Index)
	case e.Want < 0:
		return fmt.Sprintf(
			"hook order violation at position %d: %s hook called beyond the recorded list; hooks must be called unconditionally in the same order every render",
			e.Index, e.Got)
	default:
		return fmt.Sprintf(
			"hook order violation at position %d: called %s hook where %s was recorded; hooks must be called unconditionally in the same order every render",
			e.Index, e.Got, e.Want)
	}
}

// Record is one hook slot on an instance's list.
type Record struct {
	Kind Kind

	// KindState
	State *signal.Signal[any]

	// KindEffect
	Deps    []any
	hasDeps bool
	Cleanup func()
	pending func() func()

	// KindLifecycle
	Phase    Phase
	Callback Callback
}

// List is the ordered hook list owned by one component instance. It is not
// safe for concurrent use; a compile pass is single-threaded by contract.
type List struct {
	records []*Record
	cursor  int
	first   bool
}

// NewList returns an empty hook list.
func NewList() *List {
	return &List{first: true}
}

// Begin resets the cursor for a new render.
func (l *List) Begin() {
	l.cursor = 0
}

// End marks the render finished. On any render after the first, a cursor
// that did not reach the end means the component skipped hooks, which is the
// same contract violation as reordering.
func (l *List) End() error {
	first := l.first
	l.first = false
	if !first && l.cursor != len(l.records) {
		return &OrderError{Index: l.cursor, Got: Kind(-1), Want: l.records[l.cursor].Kind}
	}
	return nil
}

// next returns the record at the cursor, creating it on the first render.
// Panics with *OrderError on kind mismatch; the reconciler recovers it into a
// regular error.
func (l *List) next(kind Kind) (rec *Record, created bool) {
	if l.cursor < len(l.records) {
		rec = l.records[l.cursor]
		if rec.Kind != kind {
			panic(&OrderError{Index: l.cursor, Got: kind, Want: rec.Kind})
		}
		l.cursor++
		return rec, false
	}
	if !l.first {
		panic(&OrderError{Index: l.cursor, Got: kind, Want: Kind(-1)})
	}
	rec = &Record{Kind: kind}
	l.records = append(l.records, rec)
	l.cursor++
	return rec, true
}

// Len returns the number of recorded hooks.
func (l *List) Len() int {
	return len(l.records)
}

// Lifecycle returns the callbacks registered for a phase, in hook order.
func (l *List) Lifecycle(phase Phase) []Callback {
	var out []Callback
	for _, rec := range l.records {
		if rec.Kind == KindLifecycle && rec.Phase == phase && rec.Callback != nil {
			out = append(out, rec.Callback)
		}
	}
	return out
}

// RunEffects flushes effects whose deps changed during the last render.
// Called by the reconciler after the render returns.
func (l *List) RunEffects() {
	for _, rec := range l.records {
		if rec.Kind != KindEffect || rec.pending == nil {
			continue
		}
		run := rec.pending
		rec.pending = nil
		if rec.Cleanup != nil {
			rec.Cleanup()
			rec.Cleanup = nil
		}
		rec.Cleanup = run()
	}
}

// Close runs remaining effect cleanups and closes state signals. Called at
// unmount.
func (l *List) Close() {
	for _, rec := range l.records {
		switch rec.Kind {
		case KindEffect:
			if rec.Cleanup != nil {
				rec.Cleanup()
				rec.Cleanup = nil
			}
		case KindState:
			if rec.State != nil {
				rec.State.Close()
			}
		}
	}
	l.records = nil
	l.cursor = 0
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
