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
	"reflect"

	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// StabilizeResult reports how one tick's compile loop converged.
type StabilizeResult struct {
	// Compiled is the output of the final pass.
	Compiled *content.Compiled

	// Iterations counts passes actually run, including the final clean one.
	Iterations int

	// ForcedStable is true when the iteration bound was hit while a recompile
	// was still pending; the output is the last pass as-is.
	ForcedStable bool

	// Reasons lists every recompile reason accumulated across passes.
	Reasons []string
}

// StabilizeOption adjusts one CompileUntilStable call.
type StabilizeOption func(*stabilizeConfig)

type stabilizeConfig struct {
	maxIterations int
}

// WithPassLimit overrides the compiler's iteration bound for one call.
func WithPassLimit(n int) StabilizeOption {
	return func(cfg *stabilizeConfig) {
		if n > 0 {
			cfg.maxIterations = n
		}
	}
}

// CompileUntilStable runs compile passes until no component requests another
// one, up to the iteration bound. Each pass reconciles the same element tree;
// what changes between passes is component state, and through it the render
// output.
//
// After-compile callbacks run between passes and are the sanctioned place to
// inspect the compiled output and request a recompile.
func (c *Compiler) CompileUntilStable(ctx context.Context, el *Element, tick *runtime.TickState, opts ...StabilizeOption) (*StabilizeResult, error) {
	cfg := stabilizeConfig{maxIterations: c.maxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := &StabilizeResult{}
	for i := 1; i <= cfg.maxIterations; i++ {
		c.model.ResetRecompile()

		compiled, err := c.Compile(ctx, el, tick)
		if err != nil {
			return nil, err
		}
		res.Compiled = compiled
		res.Iterations = i

		var before modelSnapshot
		if c.debug {
			before = c.snapshotModel()
		}

		pass := PassInfo{Iteration: i, MaxIterations: cfg.maxIterations, Compiled: compiled}
		if err := c.notifyAfterCompile(ctx, pass, tick); err != nil {
			return nil, err
		}

		if !c.model.RecompileRequested() {
			if c.debug {
				c.checkSilentMutation(before)
			}
			return res, nil
		}
		res.Reasons = append(res.Reasons, c.model.RecompileReasons()...)
	}

	res.ForcedStable = true
	c.log.Warn("compile did not stabilize within iteration bound; using last pass",
		"iterations", res.Iterations, "reasons", res.Reasons)
	return res, nil
}

// modelSnapshot captures the shared-model surface a component could mutate
// from an after-compile callback.
type modelSnapshot struct {
	toolNames []string
	metadata  map[string]any
}

func (c *Compiler) snapshotModel() modelSnapshot {
	entries := c.model.Tools()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return modelSnapshot{toolNames: names, metadata: c.model.Metadata()}
}

// checkSilentMutation flags after-compile callbacks that changed shared state
// without requesting a recompile: the mutation is invisible until some later
// pass happens to run.
func (c *Compiler) checkSilentMutation(before modelSnapshot) {
	after := c.snapshotModel()
	if !reflect.DeepEqual(before.toolNames, after.toolNames) {
		c.log.Warn("after-compile callback changed registered tools without requesting a recompile",
			"before", before.toolNames, "after", after.toolNames)
	}
	if !reflect.DeepEqual(before.metadata, after.metadata) {
		c.log.Warn("after-compile callback changed metadata without requesting a recompile")
	}
}
