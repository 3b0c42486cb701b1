package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_GetSet(t *testing.T) {
	s := New(1)
	assert.Equal(t, 1, s.Get())

	s.Set(2)
	assert.Equal(t, 2, s.Get())
}

func TestSignal_SubscribeNotifies(t *testing.T) {
	s := New("a")

	var got []string
	unsub := s.Subscribe(func(v string) { got = append(got, v) })

	s.Set("b")
	s.Set("c")
	unsub()
	s.Set("d")

	assert.Equal(t, []string{"b", "c"}, got)
}

func TestSignal_SetEqualValueDoesNotNotify(t *testing.T) {
	s := New(map[string]any{"k": "v"})

	calls := 0
	s.Subscribe(func(map[string]any) { calls++ })

	s.Set(map[string]any{"k": "v"})
	assert.Equal(t, 0, calls)

	s.Set(map[string]any{"k": "w"})
	assert.Equal(t, 1, calls)
}

func TestSignal_SubscriberOrder(t *testing.T) {
	s := New(0)

	var order []int
	s.Subscribe(func(int) { order = append(order, 1) })
	s.Subscribe(func(int) { order = append(order, 2) })
	s.Subscribe(func(int) { order = append(order, 3) })

	s.Set(42)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSignal_Close(t *testing.T) {
	s := New(0)

	calls := 0
	s.Subscribe(func(int) { calls++ })
	s.Close()
	s.Set(1)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, s.Get())
}
