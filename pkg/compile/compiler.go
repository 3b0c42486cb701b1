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
	"log/slog"

	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// DefaultMaxIterations bounds the stabilization loop.
const DefaultMaxIterations = 10

// LifecycleFunc is one component lifecycle invocation.
type LifecycleFunc func(ctx context.Context) error

// Instrumenter wraps lifecycle invocations in middleware, e.g. for tracing.
// A nil instrumenter is a no-op, never an error.
type Instrumenter interface {
	WrapLifecycle(component, phase string, fn LifecycleFunc) LifecycleFunc
}

// Compiler owns the persistent fiber tree for one agent execution and turns
// element trees into compiled structures, one pass per call.
//
// A compiler is not safe for concurrent use: the engine must serialize ticks
// against a given compiler and its shared model.
type Compiler struct {
	model *runtime.Model
	root  *Fiber

	log           *slog.Logger
	instr         Instrumenter
	maxIterations int
	debug         bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the compiler's logger; the default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Compiler) { c.log = log }
}

// WithInstrumenter installs lifecycle middleware.
func WithInstrumenter(i Instrumenter) Option {
	return func(c *Compiler) { c.instr = i }
}

// WithMaxIterations overrides the stabilization bound.
func WithMaxIterations(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithDebug enables development diagnostics such as silent-mutation tracking
// around after-compile callbacks.
func WithDebug(debug bool) Option {
	return func(c *Compiler) { c.debug = debug }
}

// New creates a compiler bound to a shared object model.
func New(model *runtime.Model, opts ...Option) *Compiler {
	c := &Compiler{
		model:         model,
		log:           slog.Default(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the shared object model.
func (c *Compiler) Model() *runtime.Model { return c.model }

// Root returns the current fiber tree root, nil before the first compile.
func (c *Compiler) Root() *Fiber { return c.root }

// Compile runs one reconcile+collect pass: the element tree is diffed against
// the persisted fiber tree, lifecycle callbacks fire, and the reconciled tree
// is collected into a Compiled structure.
//
// On error the previous fiber tree is kept: failed components remain mounted
// for the next tick unless explicitly unmounted.
func (c *Compiler) Compile(ctx context.Context, el *Element, tick *runtime.TickState) (*content.Compiled, error) {
	root, err := c.reconcile(ctx, c.root, el, tick)
	if err != nil {
		return nil, err
	}
	c.root = root

	compiled := c.collect(c.root)
	c.model.SetCompiled(compiled)
	return compiled, nil
}

// Collect re-collects the current fiber tree without reconciling. Collecting
// twice in a row yields identical output.
func (c *Compiler) Collect() *content.Compiled {
	return c.collect(c.root)
}

// Unmount tears the whole tree down, firing unmount callbacks bottom-up.
func (c *Compiler) Unmount(ctx context.Context) error {
	err := c.unmountFiber(ctx, c.root)
	c.root = nil
	return err
}

// wrap applies the instrumenter middleware to one lifecycle invocation.
func (c *Compiler) wrap(component, phase string, fn LifecycleFunc) LifecycleFunc {
	if c.instr == nil {
		return fn
	}
	return c.instr.WrapLifecycle(component, phase, fn)
}
