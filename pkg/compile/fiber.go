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

import "github.com/kadirpekel/weft/pkg/hook"

// Fiber is the mutable reconciliation node mirroring one element across
// ticks. The tree stores only parent-to-children ownership: no back links,
// no sibling links, so an unmounted subtree is simply dropped.
type Fiber struct {
	el    *Element
	Props *Props
	Key   string
	Ref   string

	Children []*Fiber

	// inst holds the component instance for class/prebuilt components.
	inst *instance

	// hooks holds function-component hook state (inst is nil for those).
	hooks *hook.List

	// startFired tracks the once-per-execution start notification for
	// function components, whose callbacks are re-registered each render.
	startFired bool
}

// Element returns the latest element this fiber mirrors.
func (f *Fiber) Element() *Element { return f.el }

// Kind returns the fiber's element kind.
func (f *Fiber) Kind() Kind {
	if f.el == nil {
		return KindFragment
	}
	return f.el.Kind
}

// Tag returns the host tag, or "" for non-host fibers.
func (f *Fiber) Tag() string {
	if f.el == nil {
		return ""
	}
	return f.el.Tag
}

// Instance returns the mounted component instance, or nil.
func (f *Fiber) Instance() Component {
	if f.inst == nil {
		return nil
	}
	return f.inst.comp
}

// InstanceID returns the stable instance handle, or "".
func (f *Fiber) InstanceID() string {
	if f.inst == nil {
		return ""
	}
	return f.inst.id
}

// hookList returns the hook list backing this fiber, creating the
// function-component list on demand.
func (f *Fiber) hookList() *hook.List {
	if f.inst != nil {
		return f.inst.hooks
	}
	if f.hooks == nil {
		f.hooks = hook.NewList()
	}
	return f.hooks
}

// Walk visits the subtree preorder. Returning false skips the descendants of
// the current fiber.
func (f *Fiber) Walk(fn func(*Fiber) bool) {
	if f == nil {
		return
	}
	if !fn(f) {
		return
	}
	for _, child := range f.Children {
		child.Walk(fn)
	}
}

// FindFiberByKey returns the first fiber in the subtree with the given key.
func FindFiberByKey(root *Fiber, key string) *Fiber {
	if root == nil || key == "" {
		return nil
	}
	var found *Fiber
	root.Walk(func(f *Fiber) bool {
		if found != nil {
			return false
		}
		if f.Key == key {
			found = f
			return false
		}
		return true
	})
	return found
}
