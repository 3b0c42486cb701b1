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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/weft/pkg/hook"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// trackedComp records lifecycle calls into a shared log.
type trackedComp struct {
	name string
	log  *[]string
	out  func() *Element
}

func (t *trackedComp) Render(ctx context.Context, rc *RenderContext) (*Element, error) {
	*t.log = append(*t.log, t.name+":render")
	if t.out != nil {
		return t.out(), nil
	}
	return Text(t.name), nil
}

func (t *trackedComp) OnMount(ctx context.Context, rc *RenderContext) error {
	*t.log = append(*t.log, t.name+":mount")
	return nil
}

func (t *trackedComp) OnUnmount(ctx context.Context) error {
	*t.log = append(*t.log, t.name+":unmount")
	return nil
}

func count(log []string, event string) int {
	n := 0
	for _, e := range log {
		if e == event {
			n++
		}
	}
	return n
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	return New(runtime.NewModel())
}

func TestReconcileReusesInstanceAcrossTicks(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var log []string
	constructed := 0
	ctor := func() Component {
		constructed++
		return &trackedComp{name: "counter", log: &log}
	}

	el := C("Counter", ctor, nil)
	for i := 1; i <= 3; i++ {
		_, err := c.Compile(ctx, el, &runtime.TickState{Tick: i})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, constructed, "same position, same type: one instance for the whole execution")
	assert.Equal(t, 1, count(log, "counter:mount"))
	assert.Equal(t, 3, count(log, "counter:render"))
}

func TestReconcileUnmountsRemovedChild(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var log []string
	mk := func(name string) *Element {
		comp := &trackedComp{name: name, log: &log}
		return FromInstance(comp, nil)
	}

	a, b := mk("a"), mk("b")
	_, err := c.Compile(ctx, Fragment(a, b), &runtime.TickState{Tick: 1})
	require.NoError(t, err)
	require.Equal(t, 2, len(c.Root().Children))

	_, err = c.Compile(ctx, Fragment(a), &runtime.TickState{Tick: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, len(c.Root().Children))
	assert.Equal(t, 1, count(log, "b:unmount"))
	assert.Equal(t, 0, count(log, "a:unmount"))
}

func TestReconcileTypeChangeRemounts(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var log []string
	ctorA := func() Component { return &trackedComp{name: "a", log: &log} }
	ctorB := func() Component { return &trackedComp{name: "b", log: &log} }

	_, err := c.Compile(ctx, C("A", ctorA, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err)
	_, err = c.Compile(ctx, C("B", ctorB, nil), &runtime.TickState{Tick: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"a:mount", "a:render", "a:unmount", "b:mount", "b:render"}, log)
}

func TestReconcileKeyedReorderPreservesInstances(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var log []string
	constructed := map[string]int{}
	mk := func(key string) *Element {
		ctor := func() Component {
			constructed[key]++
			return &trackedComp{name: key, log: &log}
		}
		return C("Item", ctor, P("key", key))
	}

	x, y := mk("x"), mk("y")
	_, err := c.Compile(ctx, Fragment(x, y), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	_, err = c.Compile(ctx, Fragment(y, x), &runtime.TickState{Tick: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, constructed["x"])
	assert.Equal(t, 1, constructed["y"])
	assert.Equal(t, 0, count(log, "x:unmount"))
	assert.Equal(t, 0, count(log, "y:unmount"))

	// The fiber order follows the new element order.
	root := c.Root()
	require.Equal(t, 2, len(root.Children))
	assert.Equal(t, "y", root.Children[0].Key)
	assert.Equal(t, "x", root.Children[1].Key)
}

func TestReconcileMergesPropsOverPersistedOnes(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var seen []map[string]any
	fn := func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		seen = append(seen, props.ToMap())
		return nil, nil
	}

	_, err := c.Compile(ctx, F(fn, P("a", 1, "b", 2)), &runtime.TickState{Tick: 1})
	require.NoError(t, err)
	_, err = c.Compile(ctx, F(fn, P("b", 3)), &runtime.TickState{Tick: 2})
	require.NoError(t, err)

	require.Equal(t, 2, len(seen))
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, seen[0])
	assert.Equal(t, map[string]any{"a": 1, "b": 3}, seen[1], "keys absent from the new element keep their persisted value")
}

func TestReconcileFunctionStatePersists(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var values []int
	fn := func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		n, setN := hook.UseState(ctx, 0)
		values = append(values, n)
		if n < 2 {
			setN(n + 1)
		}
		return Text(fmt.Sprintf("n=%d", n)), nil
	}

	el := F(fn, nil)
	for i := 1; i <= 3; i++ {
		_, err := c.Compile(ctx, el, &runtime.TickState{Tick: i})
		require.NoError(t, err)
	}

	assert.Equal(t, []int{0, 1, 2}, values)
}

func TestReconcileTerminalOutputReconcilesChildren(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var panel Func
	panel = func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		return Terminal(F(panel, nil, Text("inner"))), nil
	}

	compiled, err := c.Compile(ctx, F(panel, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	require.Equal(t, 1, len(compiled.SystemMessageItems))
	require.Equal(t, 1, len(compiled.SystemMessageItems[0].Blocks))
	assert.Equal(t, "inner", compiled.SystemMessageItems[0].Blocks[0].Text)
}

func TestReconcileHookOrderViolationIsComponentError(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	tickNo := 0
	fn := func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		if tickNo == 0 {
			hook.UseState(ctx, "a")
		}
		hook.UseEffect(ctx, func() func() { return nil }, tickNo)
		return nil, nil
	}

	el := F(fn, nil)
	_, err := c.Compile(ctx, el, &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	tickNo = 1
	_, err = c.Compile(ctx, el, &runtime.TickState{Tick: 2})
	require.Error(t, err)

	var ce *ComponentError
	require.True(t, errors.As(err, &ce))
	var oe *hook.OrderError
	assert.True(t, errors.As(err, &oe))
}

func TestReconcileErrorKeepsPreviousTree(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	fail := false
	fn := func(ctx context.Context, props *Props, model *runtime.Model, tick *runtime.TickState) (*Element, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return Text("ok"), nil
	}

	el := F(fn, nil)
	_, err := c.Compile(ctx, el, &runtime.TickState{Tick: 1})
	require.NoError(t, err)
	prev := c.Root()

	fail = true
	_, err = c.Compile(ctx, el, &runtime.TickState{Tick: 2})
	require.Error(t, err)
	assert.Same(t, prev, c.Root(), "failed pass must not drop the mounted tree")
}

type recoveringComp struct {
	fail      bool
	recovered []error
}

func (r *recoveringComp) Render(ctx context.Context, rc *RenderContext) (*Element, error) {
	if r.fail {
		return nil, errors.New("render failed")
	}
	return Text("ok"), nil
}

func (r *recoveringComp) OnError(ctx context.Context, err error) (Recovery, error) {
	r.recovered = append(r.recovered, err)
	return Recovery{Continue: true}, nil
}

func TestReconcileErrorHandlerContinues(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	comp := &recoveringComp{fail: true}
	compiled, err := c.Compile(ctx, FromInstance(comp, nil), &runtime.TickState{Tick: 1})

	require.NoError(t, err, "a Continue verdict swallows the render error")
	require.NotNil(t, compiled)
	assert.Equal(t, 1, len(comp.recovered))
	assert.Empty(t, compiled.SystemMessageItems, "the failed render contributes nothing")
}

func TestReconcileRefPublication(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var log []string
	comp := &trackedComp{name: "svc", log: &log}
	el := FromInstance(comp, P("ref", "service"))

	_, err := c.Compile(ctx, el, &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	got, ok := c.Model().Ref("service")
	require.True(t, ok)
	assert.Same(t, comp, got)

	require.NoError(t, c.Unmount(ctx))
	_, ok = c.Model().Ref("service")
	assert.False(t, ok, "unmount withdraws the ref")
}

func TestReconcileNilElementUnmountsTree(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	var log []string
	comp := &trackedComp{name: "root", log: &log}
	_, err := c.Compile(ctx, FromInstance(comp, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	_, err = c.Compile(ctx, nil, &runtime.TickState{Tick: 2})
	require.NoError(t, err)
	assert.Nil(t, c.Root())
	assert.Equal(t, 1, count(log, "root:unmount"))
}

func TestReconcileUnclassifiableElementProducesNothing(t *testing.T) {
	c := newTestCompiler(t)
	ctx := context.Background()

	compiled, err := c.Compile(ctx, F(nil, nil), &runtime.TickState{Tick: 1})
	require.NoError(t, err, "an unclassifiable element is no output, not a failure")
	assert.Nil(t, c.Root())
	assert.Empty(t, compiled.SystemMessageItems)
}
