package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	reasons []string
}

func (r *fakeRequester) RequestRecompile(reason string) {
	r.reasons = append(r.reasons, reason)
}

func renderCtx(l *List, req Requester) context.Context {
	return WithFrame(context.Background(), &Frame{Hooks: l, Requester: req, Component: "test"})
}

func TestUseState_PersistsAcrossRenders(t *testing.T) {
	l := NewList()
	req := &fakeRequester{}

	// First render: initial value.
	l.Begin()
	ctx := renderCtx(l, req)
	v, set := UseState(ctx, 1)
	require.NoError(t, l.End())
	assert.Equal(t, 1, v)

	set(5)
	assert.Equal(t, []string{"state update in test"}, req.reasons)

	// Second render: sees the updated value.
	l.Begin()
	v, _ = UseState(renderCtx(l, req), 1)
	require.NoError(t, l.End())
	assert.Equal(t, 5, v)
}

func TestUseState_SetEqualValueDoesNotRequestRecompile(t *testing.T) {
	l := NewList()
	req := &fakeRequester{}

	l.Begin()
	_, set := UseState(renderCtx(l, req), "a")
	require.NoError(t, l.End())

	set("a")
	assert.Empty(t, req.reasons)
}

func TestUseEffect_RunsOnDepChange(t *testing.T) {
	l := NewList()

	runs, cleanups := 0, 0
	render := func(dep int) {
		l.Begin()
		UseEffect(renderCtx(l, nil), func() func() {
			runs++
			return func() { cleanups++ }
		}, dep)
		require.NoError(t, l.End())
		l.RunEffects()
	}

	render(1)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 0, cleanups)

	// Same dep: no re-run.
	render(1)
	assert.Equal(t, 1, runs)

	// Changed dep: cleanup then re-run.
	render(2)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, cleanups)

	// Unmount runs the last cleanup.
	l.Close()
	assert.Equal(t, 2, cleanups)
}

func TestUseLifecycle_RegistersByPhase(t *testing.T) {
	l := NewList()

	l.Begin()
	ctx := renderCtx(l, nil)
	UseTickStart(ctx, func(context.Context) error { return nil })
	UseTickEnd(ctx, func(context.Context) error { return nil })
	UseTickEnd(ctx, func(context.Context) error { return nil })
	require.NoError(t, l.End())

	assert.Len(t, l.Lifecycle(PhaseTickStart), 1)
	assert.Len(t, l.Lifecycle(PhaseTickEnd), 2)
	assert.Empty(t, l.Lifecycle(PhaseComplete))
}

func TestHookOrderViolation_KindMismatch(t *testing.T) {
	l := NewList()

	l.Begin()
	ctx := renderCtx(l, nil)
	UseState(ctx, 1)
	UseEffect(ctx, func() func() { return nil })
	require.NoError(t, l.End())

	// Second render swaps the hook order.
	l.Begin()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected OrderError panic")
		var oe *OrderError
		require.True(t, errors.As(r.(error), &oe))
		assert.Equal(t, 0, oe.Index)
		assert.Equal(t, KindEffect, oe.Got)
		assert.Equal(t, KindState, oe.Want)
	}()
	UseEffect(renderCtx(l, nil), func() func() { return nil })
}

func TestHookOrderViolation_FewerCalls(t *testing.T) {
	l := NewList()

	l.Begin()
	ctx := renderCtx(l, nil)
	UseState(ctx, 1)
	UseState(ctx, 2)
	require.NoError(t, l.End())

	l.Begin()
	UseState(renderCtx(l, nil), 1)
	err := l.End()
	var oe *OrderError
	require.True(t, errors.As(err, &oe))
}

func TestHookOrderViolation_ExtraCalls(t *testing.T) {
	l := NewList()

	l.Begin()
	UseState(renderCtx(l, nil), 1)
	require.NoError(t, l.End())

	l.Begin()
	ctx := renderCtx(l, nil)
	UseState(ctx, 1)
	assert.Panics(t, func() { UseState(ctx, 2) })
}

func TestUseState_OutsideRenderPanics(t *testing.T) {
	assert.Panics(t, func() { UseState(context.Background(), 0) })
}
