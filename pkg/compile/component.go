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

	"github.com/google/uuid"

	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/hook"
	"github.com/kadirpekel/weft/pkg/runtime"
	"github.com/kadirpekel/weft/pkg/signal"
)

// RenderContext is what a class component sees during render and lifecycle
// calls: its merged props, the shared object model and the current tick.
type RenderContext struct {
	Props *Props
	Model *runtime.Model
	Tick  *runtime.TickState
}

// Component is a class component. Lifecycle participation is opt-in through
// the capability interfaces below, discovered by type assertion; there is no
// reflective method scanning.
type Component interface {
	Render(ctx context.Context, rc *RenderContext) (*Element, error)
}

// Mounter runs once when the instance is constructed into the tree.
type Mounter interface {
	OnMount(ctx context.Context, rc *RenderContext) error
}

// Unmounter runs when the fiber is removed. Cancellation-class errors raised
// here are suppressed; the execution is already tearing down.
type Unmounter interface {
	OnUnmount(ctx context.Context) error
}

// Starter runs once per whole execution, after the initial mount and before
// the first tick.
type Starter interface {
	OnStart(ctx context.Context, rc *RenderContext) error
}

// TickStarter runs at the start of every tick.
type TickStarter interface {
	OnTickStart(ctx context.Context, rc *RenderContext) error
}

// TickEnder runs at the end of every tick.
type TickEnder interface {
	OnTickEnd(ctx context.Context, rc *RenderContext) error
}

// Completer runs when the whole execution completes.
type Completer interface {
	OnComplete(ctx context.Context, rc *RenderContext) error
}

// ErrorHandler receives errors raised by the instance's own render or
// lifecycle callbacks, and engine errors delivered via NotifyError.
type ErrorHandler interface {
	OnError(ctx context.Context, err error) (Recovery, error)
}

// AfterCompiler runs after each compile pass and may inspect the compiled
// output; requesting a recompile triggers another pass.
type AfterCompiler interface {
	OnAfterCompile(ctx context.Context, pass PassInfo, rc *RenderContext) error
}

// PropBinder lets a component mirror props into signals. Bind is called once
// at construction; the reconciler pushes new prop values into the returned
// signals on every subsequent reconcile.
type PropBinder interface {
	BindProps(b *Binder)
}

// ToolProvider statically declares tools owned by the instance. They are
// registered at mount, re-registered at every tick start, and unregistered
// at unmount.
type ToolProvider interface {
	Tools() []*runtime.ToolDef
}

// Recovery is an error handler's verdict: Continue true resumes the current
// phase, false aborts it.
type Recovery struct {
	Continue bool
}

// PassInfo describes one stabilizer pass to after-compile callbacks.
type PassInfo struct {
	Iteration     int
	MaxIterations int
	Compiled      *content.Compiled
}

type passKey struct{}

// WithPassInfo attaches pass info to a context for hook-registered
// after-compile callbacks.
func WithPassInfo(ctx context.Context, p PassInfo) context.Context {
	return context.WithValue(ctx, passKey{}, p)
}

// PassFrom returns the pass info carried by ctx during after-compile
// notification.
func PassFrom(ctx context.Context) (PassInfo, bool) {
	p, ok := ctx.Value(passKey{}).(PassInfo)
	return p, ok
}

// Binder registers prop-mirroring signals during component construction.
type Binder struct {
	signals map[string]*signal.Signal[any]
}

// Bind returns the signal that will track the named prop. Binding the same
// name twice returns the same signal.
func (b *Binder) Bind(name string) *signal.Signal[any] {
	if b.signals == nil {
		b.signals = make(map[string]*signal.Signal[any])
	}
	if s, ok := b.signals[name]; ok {
		return s
	}
	s := signal.New[any](nil)
	b.signals[name] = s
	return s
}

// instance is the mutable per-mount record behind a class component fiber.
// The uuid handle keys everything owned by the instance (registered tools,
// instrumentation state) so nothing relies on weak references.
type instance struct {
	id      string
	comp    Component
	hooks   *hook.List
	signals map[string]*signal.Signal[any]
	started bool
}

func newInstance(comp Component) *instance {
	inst := &instance{
		id:    uuid.NewString(),
		comp:  comp,
		hooks: hook.NewList(),
	}
	if pb, ok := comp.(PropBinder); ok {
		b := &Binder{}
		pb.BindProps(b)
		inst.signals = b.signals
	}
	return inst
}

// pushProps mirrors current prop values into the bound signals.
func (i *instance) pushProps(p *Props) {
	for name, sig := range i.signals {
		if v, ok := p.Get(name); ok {
			sig.Set(v)
		}
	}
}

// close releases hook and signal state at unmount.
func (i *instance) close() {
	i.hooks.Close()
	for _, sig := range i.signals {
		sig.Close()
	}
}
