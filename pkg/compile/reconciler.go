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
	"errors"
	"fmt"

	"github.com/kadirpekel/weft/pkg/hook"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// reconcile diffs one old fiber (or nil) against one new element (or nil).
//
//   - nil element: the old fiber unmounts and the position is empty.
//   - type mismatch: the old fiber unmounts, a fresh fiber mounts.
//   - type match: the fiber and its instance are reused in place; new props
//     shallow-merge over the persisted ones and mirror into bound signals.
func (c *Compiler) reconcile(ctx context.Context, old *Fiber, el *Element, tick *runtime.TickState) (*Fiber, error) {
	if el == nil {
		if old != nil {
			if err := c.unmountFiber(ctx, old); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	if old != nil && !sameType(old.el, el) {
		if err := c.unmountFiber(ctx, old); err != nil {
			return nil, err
		}
		old = nil
	}

	var f *Fiber
	if old != nil {
		f = old
		f.el = el
		f.Props = mergeProps(f.Props, el.Props)
		f.Key = el.Key
		if f.inst != nil {
			f.inst.pushProps(f.Props)
		}
	} else {
		fresh, err := c.mountFiber(ctx, el, tick)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			// Unclassifiable element: no output, not fatal.
			return nil, nil
		}
		f = fresh
	}

	switch el.Kind {
	case KindHost, KindFragment:
		children, err := c.reconcileChildren(ctx, f, el.Children, tick)
		f.Children = children
		if err != nil {
			return f, err
		}

	case KindBlock:
		// Leaf; drop any stale children from a previous shape.
		for _, child := range f.Children {
			if err := c.unmountFiber(ctx, child); err != nil {
				return f, err
			}
		}
		f.Children = nil

	case KindFunc:
		out, err := c.renderFunc(ctx, f, el, tick)
		if err != nil {
			return f, err
		}
		if err := c.reconcileRendered(ctx, f, el, out, tick); err != nil {
			return f, err
		}

	case KindComponent, KindInstance:
		out, err := c.renderComponent(ctx, f, tick)
		if err != nil {
			recovered, rerr := c.routeError(ctx, f, "render", err)
			if !recovered {
				return f, rerr
			}
			out = nil
		}
		if err := c.reconcileRendered(ctx, f, el, out, tick); err != nil {
			return f, err
		}
	}

	return f, nil
}

// mountFiber constructs the fiber for an element with no reusable old fiber.
// Returns nil (and no error) for elements that cannot be classified.
func (c *Compiler) mountFiber(ctx context.Context, el *Element, tick *runtime.TickState) (*Fiber, error) {
	switch el.Kind {
	case KindHost:
		if el.Tag == "" {
			c.log.Warn("host element with empty tag produces no output")
			return nil, nil
		}
	case KindFunc:
		if el.Fn == nil {
			c.log.Warn("function element with nil function produces no output", "component", typeName(el))
			return nil, nil
		}
	case KindComponent:
		if el.New == nil {
			c.log.Warn("component element with nil constructor produces no output", "component", typeName(el))
			return nil, nil
		}
	case KindInstance:
		if el.Inst == nil {
			c.log.Warn("instance element with nil instance produces no output", "component", typeName(el))
			return nil, nil
		}
	case KindFragment, KindBlock:
		// Always constructible.
	default:
		c.log.Warn("unclassifiable element produces no output", "kind", int(el.Kind))
		return nil, nil
	}

	f := &Fiber{el: el, Props: el.Props.Clone(), Key: el.Key}

	switch el.Kind {
	case KindComponent:
		f.inst = newInstance(el.New())
	case KindInstance:
		f.inst = newInstance(el.Inst)
	}

	if f.inst != nil {
		f.inst.pushProps(f.Props)

		if ref := f.Props.GetString("ref"); ref != "" {
			f.Ref = ref
			c.model.SetRef(ref, f.inst.comp)
		}

		if tp, ok := f.inst.comp.(ToolProvider); ok {
			for _, def := range tp.Tools() {
				c.model.AddToolOwned(def, f.inst.id)
			}
		}

		if m, ok := f.inst.comp.(Mounter); ok {
			rc := c.renderContext(f, tick)
			fn := c.wrap(typeName(el), "onMount", func(ctx context.Context) error {
				return m.OnMount(ctx, rc)
			})
			if err := fn(ctx); err != nil {
				recovered, rerr := c.routeError(ctx, f, "onMount", err)
				if !recovered {
					// Roll back the partial mount.
					if f.Ref != "" {
						c.model.RemoveRef(f.Ref)
					}
					c.model.RemoveToolsOwned(f.inst.id)
					return nil, rerr
				}
			}
		}
	}

	return f, nil
}

// reconcileRendered places a component's render output under its fiber.
// Fragments reconcile their children list; a terminal self-reference
// reconciles the output's children without recursing into the output itself;
// anything else is a single child at index 0, surplus old children unmount.
func (c *Compiler) reconcileRendered(ctx context.Context, f *Fiber, el, out *Element, tick *runtime.TickState) error {
	if out == nil {
		for _, child := range f.Children {
			if err := c.unmountFiber(ctx, child); err != nil {
				return err
			}
		}
		f.Children = nil
		return nil
	}

	if out.Kind == KindFragment || c.isTerminalReturn(el, out) {
		children, err := c.reconcileChildren(ctx, f, out.Children, tick)
		f.Children = children
		return err
	}

	var old *Fiber
	if len(f.Children) > 0 {
		old = f.Children[0]
		for _, extra := range f.Children[1:] {
			if err := c.unmountFiber(ctx, extra); err != nil {
				return err
			}
		}
	}
	child, err := c.reconcile(ctx, old, out, tick)
	if err != nil {
		return err
	}
	if child != nil {
		f.Children = []*Fiber{child}
	} else {
		f.Children = nil
	}
	return nil
}

// isTerminalReturn detects a component whose output is itself: either the
// element carries the explicit terminal marker, or the rendered output has
// the same type identity as the element that produced it. Recursing into the
// self-reference would never terminate.
func (c *Compiler) isTerminalReturn(el, out *Element) bool {
	if el.terminal || out.terminal {
		return true
	}
	return sameType(el, out)
}

// reconcileChildren pairs new child elements against old child fibers.
//
// Pairing is position-first with key override: the candidate for index i is
// the old child at i; when the new child carries a key that differs from the
// candidate's, the key is searched among unclaimed old children and the
// positional candidate is left for a later keyed match. Surplus old children
// unmount.
func (c *Compiler) reconcileChildren(ctx context.Context, parent *Fiber, els []*Element, tick *runtime.TickState) ([]*Fiber, error) {
	old := parent.Children
	used := make([]bool, len(old))
	children := make([]*Fiber, 0, len(els))

	claim := func(i int) *Fiber {
		if i < 0 || i >= len(old) || used[i] {
			return nil
		}
		used[i] = true
		return old[i]
	}

	for i, el := range els {
		if el == nil {
			continue
		}

		candIdx := -1
		if i < len(old) && !used[i] {
			candIdx = i
		}

		if el.Key != "" && (candIdx < 0 || old[candIdx].Key != el.Key) {
			candIdx = -1
			for j, of := range old {
				if !used[j] && of.Key == el.Key {
					candIdx = j
					break
				}
			}
		}

		child, err := c.reconcile(ctx, claim(candIdx), el, tick)
		if err != nil {
			return children, err
		}
		if child != nil {
			children = append(children, child)
		}
	}

	for j, of := range old {
		if !used[j] {
			if err := c.unmountFiber(ctx, of); err != nil {
				return children, err
			}
		}
	}

	return children, nil
}

// renderFunc invokes a function component with a hook frame installed.
func (c *Compiler) renderFunc(ctx context.Context, f *Fiber, el *Element, tick *runtime.TickState) (out *Element, err error) {
	hooks := f.hookList()
	hooks.Begin()

	frame := &hook.Frame{Hooks: hooks, Requester: c.model, Component: typeName(el)}
	hctx := hook.WithFrame(runtime.WithTick(ctx, tick), frame)

	defer func() {
		if r := recover(); r != nil {
			var oe *hook.OrderError
			if rerr, ok := r.(error); ok && errors.As(rerr, &oe) {
				out = nil
				err = newComponentError(typeName(el), "render", rerr)
				return
			}
			panic(r)
		}
	}()

	out, err = el.Fn(hctx, f.Props, c.model, tick)
	if err != nil {
		return nil, newComponentError(typeName(el), "render", err)
	}
	if endErr := hooks.End(); endErr != nil {
		return nil, newComponentError(typeName(el), "render", endErr)
	}
	hooks.RunEffects()
	return out, nil
}

// renderComponent invokes a class component's Render. Hooks are available to
// class components too; they share the instance's list.
func (c *Compiler) renderComponent(ctx context.Context, f *Fiber, tick *runtime.TickState) (out *Element, err error) {
	name := typeName(f.el)
	hooks := f.hookList()
	hooks.Begin()

	frame := &hook.Frame{Hooks: hooks, Requester: c.model, Component: name}
	hctx := hook.WithFrame(runtime.WithTick(ctx, tick), frame)
	rc := c.renderContext(f, tick)

	defer func() {
		if r := recover(); r != nil {
			var oe *hook.OrderError
			if rerr, ok := r.(error); ok && errors.As(rerr, &oe) {
				out = nil
				err = newComponentError(name, "render", rerr)
				return
			}
			panic(r)
		}
	}()

	out, err = f.inst.comp.Render(hctx, rc)
	if err != nil {
		return nil, newComponentError(name, "render", err)
	}
	if endErr := hooks.End(); endErr != nil {
		return nil, newComponentError(name, "render", endErr)
	}
	hooks.RunEffects()
	return out, nil
}

// unmountFiber tears down one fiber bottom-up: children first, then hook and
// signal cleanup, then onUnmount, so a child is fully unmounted before its
// parent's teardown runs. Cancellation-class errors from onUnmount are
// suppressed.
func (c *Compiler) unmountFiber(ctx context.Context, f *Fiber) error {
	if f == nil {
		return nil
	}

	for _, child := range f.Children {
		if err := c.unmountFiber(ctx, child); err != nil {
			return err
		}
	}
	f.Children = nil

	if f.hooks != nil {
		f.hooks.Close()
		f.hooks = nil
	}

	if f.inst != nil {
		f.inst.close()

		if u, ok := f.inst.comp.(Unmounter); ok {
			fn := c.wrap(typeName(f.el), "onUnmount", u.OnUnmount)
			if err := fn(ctx); err != nil && !isCancellation(err) {
				return newComponentError(typeName(f.el), "onUnmount", err)
			}
		}

		if f.Ref != "" {
			c.model.RemoveRef(f.Ref)
		}
		c.model.RemoveToolsOwned(f.inst.id)
	}

	f.inst = nil
	return nil
}

// routeError delivers a render/lifecycle error to the instance's error
// handler when it has one. A Continue verdict swallows the error; anything
// else propagates.
func (c *Compiler) routeError(ctx context.Context, f *Fiber, phase string, err error) (recovered bool, out error) {
	if f == nil || f.inst == nil {
		return false, err
	}
	eh, ok := f.inst.comp.(ErrorHandler)
	if !ok {
		return false, err
	}

	rec, herr := eh.OnError(ctx, err)
	if herr != nil {
		return false, newComponentError(typeName(f.el), "onError", herr)
	}
	if rec.Continue {
		c.log.Debug("component recovered from error",
			"component", typeName(f.el), "phase", phase, "error", fmt.Sprintf("%v", err))
		return true, nil
	}
	return false, err
}

// renderContext builds the view a class component sees for one call.
func (c *Compiler) renderContext(f *Fiber, tick *runtime.TickState) *RenderContext {
	return &RenderContext{Props: f.Props, Model: c.model, Tick: tick}
}
