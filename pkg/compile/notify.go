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

package compile

import (
	"context"

	"github.com/kadirpekel/weft/pkg/hook"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// NotifyStart fires once-per-execution start callbacks across the mounted
// tree: Starter instances and hook-registered start callbacks. Safe to call
// every tick; fibers remember whether they already started.
func (c *Compiler) NotifyStart(ctx context.Context, tick *runtime.TickState) error {
	return c.forEachFiber(func(f *Fiber) error {
		if f.inst != nil && !f.inst.started {
			f.inst.started = true
			if s, ok := f.inst.comp.(Starter); ok {
				rc := c.renderContext(f, tick)
				err := c.runLifecycle(ctx, f, "onStart", func(ctx context.Context) error {
					return s.OnStart(ctx, rc)
				})
				if err != nil {
					return err
				}
			}
			if err := c.runHookPhase(ctx, f, hook.PhaseStart, "onStart"); err != nil {
				return err
			}
			return nil
		}

		if f.inst == nil && !f.startFired {
			f.startFired = true
			return c.runHookPhase(ctx, f, hook.PhaseStart, "onStart")
		}
		return nil
	})
}

// NotifyTickStart fires tick-start callbacks and re-registers statically
// declared tools. Re-registration is idempotent by name, so a provider whose
// tools survived the previous tick ends up with the same single entry.
func (c *Compiler) NotifyTickStart(ctx context.Context, tick *runtime.TickState) error {
	return c.forEachFiber(func(f *Fiber) error {
		if f.inst != nil {
			if tp, ok := f.inst.comp.(ToolProvider); ok {
				for _, def := range tp.Tools() {
					c.model.AddToolOwned(def, f.inst.id)
				}
			}
			if ts, ok := f.inst.comp.(TickStarter); ok {
				rc := c.renderContext(f, tick)
				err := c.runLifecycle(ctx, f, "onTickStart", func(ctx context.Context) error {
					return ts.OnTickStart(ctx, rc)
				})
				if err != nil {
					return err
				}
			}
		}
		return c.runHookPhase(ctx, f, hook.PhaseTickStart, "onTickStart")
	})
}

// NotifyTickEnd fires tick-end callbacks across the mounted tree.
func (c *Compiler) NotifyTickEnd(ctx context.Context, tick *runtime.TickState) error {
	return c.forEachFiber(func(f *Fiber) error {
		if f.inst != nil {
			if te, ok := f.inst.comp.(TickEnder); ok {
				rc := c.renderContext(f, tick)
				err := c.runLifecycle(ctx, f, "onTickEnd", func(ctx context.Context) error {
					return te.OnTickEnd(ctx, rc)
				})
				if err != nil {
					return err
				}
			}
		}
		return c.runHookPhase(ctx, f, hook.PhaseTickEnd, "onTickEnd")
	})
}

// NotifyComplete fires completion callbacks when the whole execution ends.
func (c *Compiler) NotifyComplete(ctx context.Context, tick *runtime.TickState) error {
	return c.forEachFiber(func(f *Fiber) error {
		if f.inst != nil {
			if cp, ok := f.inst.comp.(Completer); ok {
				rc := c.renderContext(f, tick)
				err := c.runLifecycle(ctx, f, "onComplete", func(ctx context.Context) error {
					return cp.OnComplete(ctx, rc)
				})
				if err != nil {
					return err
				}
			}
		}
		return c.runHookPhase(ctx, f, hook.PhaseComplete, "onComplete")
	})
}

// NotifyError delivers an engine error to every mounted error handler. The
// result is nil when no handler exists; otherwise Continue is true when any
// handler voted to continue. A handler that itself errors aborts delivery.
func (c *Compiler) NotifyError(ctx context.Context, cause error) (*Recovery, error) {
	var verdict *Recovery
	err := c.forEachFiber(func(f *Fiber) error {
		if f.inst == nil {
			return nil
		}
		eh, ok := f.inst.comp.(ErrorHandler)
		if !ok {
			return nil
		}
		rec, herr := eh.OnError(ctx, cause)
		if herr != nil {
			return newComponentError(typeName(f.el), "onError", herr)
		}
		if verdict == nil || rec.Continue {
			verdict = &Recovery{Continue: rec.Continue}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

// notifyAfterCompile fires after-compile callbacks with pass info attached to
// the context for hook-registered callbacks.
func (c *Compiler) notifyAfterCompile(ctx context.Context, pass PassInfo, tick *runtime.TickState) error {
	pctx := WithPassInfo(ctx, pass)
	return c.forEachFiber(func(f *Fiber) error {
		if f.inst != nil {
			if ac, ok := f.inst.comp.(AfterCompiler); ok {
				rc := c.renderContext(f, tick)
				err := c.runLifecycle(pctx, f, "onAfterCompile", func(ctx context.Context) error {
					return ac.OnAfterCompile(ctx, pass, rc)
				})
				if err != nil {
					return err
				}
			}
		}
		return c.runHookPhase(pctx, f, hook.PhaseAfterCompile, "onAfterCompile")
	})
}

// forEachFiber visits the mounted tree preorder, stopping on the first error.
func (c *Compiler) forEachFiber(fn func(f *Fiber) error) error {
	var walk func(f *Fiber) error
	walk = func(f *Fiber) error {
		if f == nil {
			return nil
		}
		if err := fn(f); err != nil {
			return err
		}
		for _, child := range f.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(c.root)
}

// runLifecycle invokes one lifecycle callback through the instrumenter and
// routes failures to the fiber's own error handler.
func (c *Compiler) runLifecycle(ctx context.Context, f *Fiber, phase string, fn LifecycleFunc) error {
	wrapped := c.wrap(typeName(f.el), phase, fn)
	if err := wrapped(ctx); err != nil {
		recovered, rerr := c.routeError(ctx, f, phase, err)
		if !recovered {
			return newComponentError(typeName(f.el), phase, rerr)
		}
	}
	return nil
}

// runHookPhase invokes the hook-registered callbacks for one phase.
func (c *Compiler) runHookPhase(ctx context.Context, f *Fiber, phase hook.Phase, label string) error {
	var hooks *hook.List
	if f.inst != nil {
		hooks = f.inst.hooks
	} else {
		hooks = f.hooks
	}
	if hooks == nil {
		return nil
	}
	for _, cb := range hooks.Lifecycle(phase) {
		if err := c.runLifecycle(ctx, f, label, LifecycleFunc(cb)); err != nil {
			return err
		}
	}
	return nil
}
