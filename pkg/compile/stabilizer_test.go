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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/weft/pkg/hook"
	"github.com/kadirpekel/weft/pkg/runtime"
)

func TestStabilizeCleanFirstPass(t *testing.T) {
	c := New(runtime.NewModel())

	res, err := c.CompileUntilStable(context.Background(),
		SectionEl("identity", P("content", "stable")), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.ForcedStable)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, "stable", res.Compiled.Sections["identity"].Content)
}

type twoPassComp struct {
	requests int
}

func (p *twoPassComp) Render(ctx context.Context, rc *RenderContext) (*Element, error) {
	return Text("body"), nil
}

func (p *twoPassComp) OnAfterCompile(ctx context.Context, pass PassInfo, rc *RenderContext) error {
	if p.requests < 2 {
		p.requests++
		rc.Model.RequestRecompile(fmt.Sprintf("pass %d wants more", pass.Iteration))
	}
	return nil
}

func TestStabilizeRequestTwiceRunsThreePasses(t *testing.T) {
	c := New(runtime.NewModel())

	res, err := c.CompileUntilStable(context.Background(),
		FromInstance(&twoPassComp{}, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations, "two requests settle on the third pass")
	assert.False(t, res.ForcedStable)
	assert.Equal(t, 2, len(res.Reasons))
}

type restlessComp struct{}

func (restlessComp) Render(ctx context.Context, rc *RenderContext) (*Element, error) {
	return Text("never enough"), nil
}

func (restlessComp) OnAfterCompile(ctx context.Context, pass PassInfo, rc *RenderContext) error {
	rc.Model.RequestRecompile("always")
	return nil
}

func TestStabilizeForcedAtIterationBound(t *testing.T) {
	c := New(runtime.NewModel())

	res, err := c.CompileUntilStable(context.Background(),
		FromInstance(restlessComp{}, nil), &runtime.TickState{Tick: 1},
		WithPassLimit(3))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.True(t, res.ForcedStable)
	require.NotNil(t, res.Compiled, "forced stabilization still yields the last pass")
}

func TestStabilizeStateSetterDrivesConvergence(t *testing.T) {
	c := New(runtime.NewModel())

	fn := func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		n, setN := hook.UseState(ctx, 0)
		if n < 2 {
			setN(n + 1)
		}
		return SectionEl("counter", P("content", fmt.Sprintf("n=%d", n))), nil
	}

	res, err := c.CompileUntilStable(context.Background(), F(fn, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.False(t, res.ForcedStable)
	assert.Equal(t, "n=2", res.Compiled.Sections["counter"].Content)
}

func TestStabilizeHookAfterCompileSeesPassInfo(t *testing.T) {
	c := New(runtime.NewModel())

	var iterations []int
	fn := func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		hook.UseAfterCompile(ctx, func(ctx context.Context) error {
			pass, ok := PassFrom(ctx)
			if ok {
				iterations = append(iterations, pass.Iteration)
			}
			return nil
		})
		return Text("x"), nil
	}

	_, err := c.CompileUntilStable(context.Background(), F(fn, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, iterations)
}
