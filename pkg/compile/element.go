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

// Package compile implements the context compiler: an incremental tree
// runtime that reconciles a declarative element tree against its previous
// version, preserves component instances and their hook/signal state across
// ticks, runs lifecycle callbacks, and collects the reconciled tree into a
// structured Compiled value for the model-invocation engine.
package compile

import (
	"context"
	"reflect"
	goruntime "runtime"
	"strings"

	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// Kind discriminates element types.
type Kind int

const (
	// KindHost is a built-in tag (section, message, tool, ...).
	KindHost Kind = iota
	// KindFunc is a function component.
	KindFunc
	// KindComponent is a class component constructed per mount.
	KindComponent
	// KindInstance is a pre-built component instance supplied by the caller.
	KindInstance
	// KindFragment groups children without a node of its own.
	KindFragment
	// KindBlock is a leaf carrying one content block.
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindFunc:
		return "func"
	case KindComponent:
		return "component"
	case KindInstance:
		return "instance"
	case KindFragment:
		return "fragment"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Func is a function component. It receives the merged props, the shared
// object model and the current tick, and returns the element subtree to
// mount in its place. Hooks are available through ctx.
type Func func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error)

// Ctor constructs a class component instance. Identity of the constructor
// function decides instance reuse across ticks.
type Ctor func() Component

// Element is one immutable node of the declarative tree. Elements are created
// fresh on every render and never mutated; fibers mirror them across ticks.
type Element struct {
	Kind     Kind
	Tag      string     // KindHost
	Fn       Func       // KindFunc
	New      Ctor       // KindComponent
	Inst     Component  // KindInstance
	Block    *content.Block // KindBlock
	TypeName string
	Props    *Props
	Key      string
	Children []*Element

	terminal bool
}

// H creates a host element. A string "key" prop becomes the element key.
func H(tag string, props *Props, children ...*Element) *Element {
	el := &Element{Kind: KindHost, Tag: tag, TypeName: tag, Props: props, Children: children}
	el.Key = keyFromProps(props)
	return el
}

// F creates a function component element.
func F(fn Func, props *Props, children ...*Element) *Element {
	el := &Element{Kind: KindFunc, Fn: fn, TypeName: funcName(fn), Props: props, Children: children}
	el.Key = keyFromProps(props)
	return el
}

// C creates a class component element. The name is used for diagnostics and
// string-name matching; the constructor's identity decides reuse.
func C(name string, ctor Ctor, props *Props, children ...*Element) *Element {
	el := &Element{Kind: KindComponent, New: ctor, TypeName: name, Props: props, Children: children}
	el.Key = keyFromProps(props)
	return el
}

// FromInstance creates an element around a pre-built component instance.
func FromInstance(inst Component, props *Props, children ...*Element) *Element {
	el := &Element{Kind: KindInstance, Inst: inst, TypeName: instanceName(inst), Props: props, Children: children}
	el.Key = keyFromProps(props)
	return el
}

// Fragment groups children without introducing a node.
func Fragment(children ...*Element) *Element {
	return &Element{Kind: KindFragment, TypeName: "fragment", Children: children}
}

// BlockEl wraps a content block as a leaf element.
func BlockEl(b content.Block) *Element {
	return &Element{Kind: KindBlock, TypeName: string(b.Type), Block: &b}
}

// Text is shorthand for a text block leaf.
func Text(s string) *Element {
	return BlockEl(content.TextBlock(s))
}

// Code is shorthand for a code block leaf.
func Code(language, text string) *Element {
	return BlockEl(content.CodeBlock(language, text))
}

// Terminal marks a function component element as terminal: when its render
// output has its own type again, the reconciler treats the output's children
// as the subtree instead of recursing forever.
func Terminal(el *Element) *Element {
	el.terminal = true
	return el
}

// WithKey sets the element key used for child matching.
func (e *Element) WithKey(key string) *Element {
	e.Key = key
	return e
}

// IsTerminal reports whether the element carries the terminal marker.
func (e *Element) IsTerminal() bool { return e.terminal }

func keyFromProps(p *Props) string {
	if p == nil {
		return ""
	}
	return p.GetString("key")
}

// sameType reports whether an old fiber's element and a new element share
// type identity, the condition for instance reuse.
func sameType(old, new *Element) bool {
	if old == nil || new == nil {
		return false
	}
	if old.Kind != new.Kind {
		return false
	}
	switch new.Kind {
	case KindHost:
		return old.Tag == new.Tag
	case KindFunc:
		return fnPointer(old.Fn) == fnPointer(new.Fn)
	case KindComponent:
		return ctorPointer(old.New) == ctorPointer(new.New)
	case KindInstance:
		return old.Inst == new.Inst
	case KindFragment:
		return true
	case KindBlock:
		return old.Block != nil && new.Block != nil && old.Block.Type == new.Block.Type
	default:
		return false
	}
}

func fnPointer(fn Func) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

func ctorPointer(ctor Ctor) uintptr {
	if ctor == nil {
		return 0
	}
	return reflect.ValueOf(ctor).Pointer()
}

func funcName(fn Func) string {
	ptr := fnPointer(fn)
	if ptr == 0 {
		return "func"
	}
	f := goruntime.FuncForPC(ptr)
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func instanceName(inst Component) string {
	if inst == nil {
		return "instance"
	}
	t := reflect.TypeOf(inst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// typeName returns the best diagnostic name for an element.
func typeName(el *Element) string {
	if el == nil {
		return ""
	}
	if el.TypeName != "" {
		return el.TypeName
	}
	return el.Kind.String()
}
