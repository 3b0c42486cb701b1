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

package hook

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kadirpekel/weft/pkg/signal"
)

// Requester lets a state setter ask the stabilizer for another compile pass.
// The shared object model implements it.
type Requester interface {
	RequestRecompile(reason string)
}

// Frame is the per-render hook context the reconciler installs around every
// component render.
type Frame struct {
	Hooks     *List
	Requester Requester

	// Component names the owner for diagnostics and recompile reasons.
	Component string
}

type frameKey struct{}

// WithFrame attaches a render frame to the context.
func WithFrame(ctx context.Context, f *Frame) context.Context {
	return context.WithValue(ctx, frameKey{}, f)
}

// FrameFrom returns the active render frame, or nil outside a render.
func FrameFrom(ctx context.Context) *Frame {
	f, _ := ctx.Value(frameKey{}).(*Frame)
	return f
}

func mustFrame(ctx context.Context, hookName string) *Frame {
	f := FrameFrom(ctx)
	if f == nil || f.Hooks == nil {
		panic(fmt.Errorf("%s called outside a component render", hookName))
	}
	return f
}

// UseState returns a state value persisted across renders and a setter.
// Setting a new value requests a recompile so the stabilizer re-runs the
// tree until the state reaches a fixed point.
func UseState[T any](ctx context.Context, initial T) (T, func(T)) {
	f := mustFrame(ctx, "UseState")
	rec, created := f.Hooks.next(KindState)
	if created {
		rec.State = signal.New[any](initial)
	}

	value, ok := rec.State.Get().(T)
	if !ok {
		// Zero value when the stored type drifted; the setter below will
		// overwrite the cell wholesale.
		var zero T
		value = zero
	}

	requester := f.Requester
	component := f.Component
	cell := rec.State
	set := func(v T) {
		changed := !reflect.DeepEqual(cell.Get(), v)
		cell.Set(v)
		if changed && requester != nil {
			requester.RequestRecompile(fmt.Sprintf("state update in %s", component))
		}
	}
	return value, set
}

// UseSignal returns the raw signal cell behind a state hook, for components
// that want to subscribe rather than poll.
func UseSignal[T any](ctx context.Context, initial T) *signal.Signal[any] {
	f := mustFrame(ctx, "UseSignal")
	rec, created := f.Hooks.next(KindState)
	if created {
		rec.State = signal.New[any](initial)
	}
	return rec.State
}

// UseEffect schedules fn to run after the current render completes, whenever
// deps differ from the previous render (always, when no deps are given on
// either render). fn may return a cleanup executed before the next run and at
// unmount.
func UseEffect(ctx context.Context, fn func() func(), deps ...any) {
	f := mustFrame(ctx, "UseEffect")
	rec, created := f.Hooks.next(KindEffect)

	runs := created || !rec.hasDeps || !depsEqual(rec.Deps, deps)
	rec.Deps = deps
	rec.hasDeps = len(deps) > 0
	if runs {
		rec.pending = fn
	}
}

// UseLifecycle registers a callback for a lifecycle phase. The registration
// is refreshed every render so the callback closes over current props/state.
func UseLifecycle(ctx context.Context, phase Phase, cb Callback) {
	f := mustFrame(ctx, "UseLifecycle")
	rec, _ := f.Hooks.next(KindLifecycle)
	rec.Phase = phase
	rec.Callback = cb
}

// UseStart registers a callback fired once per execution, before the first tick.
func UseStart(ctx context.Context, cb Callback) { UseLifecycle(ctx, PhaseStart, cb) }

// UseTickStart registers a callback fired at the start of every tick.
func UseTickStart(ctx context.Context, cb Callback) { UseLifecycle(ctx, PhaseTickStart, cb) }

// UseTickEnd registers a callback fired at the end of every tick.
func UseTickEnd(ctx context.Context, cb Callback) { UseLifecycle(ctx, PhaseTickEnd, cb) }

// UseAfterCompile registers a callback fired after each compile pass, where a
// component may inspect the compiled output and request another pass.
func UseAfterCompile(ctx context.Context, cb Callback) { UseLifecycle(ctx, PhaseAfterCompile, cb) }

// UseComplete registers a callback fired when the execution completes.
func UseComplete(ctx context.Context, cb Callback) { UseLifecycle(ctx, PhaseComplete, cb) }
