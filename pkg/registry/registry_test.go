package registry

import (
	"fmt"
	"testing"
)

// testTool is a simple struct for testing
type testTool struct {
	Name string
	Desc string
}

func TestOrdered_Register(t *testing.T) {
	reg := NewOrdered[testTool]()

	tests := []struct {
		name    string
		key     string
		item    testTool
		wantErr bool
	}{
		{
			name:    "register valid item",
			key:     "search",
			item:    testTool{Name: "search"},
			wantErr: false,
		},
		{
			name:    "register item with empty name",
			key:     "",
			item:    testTool{},
			wantErr: true,
		},
		{
			name:    "register duplicate item",
			key:     "search",
			item:    testTool{Name: "search", Desc: "again"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.key, tt.item)
			if (err != nil) != tt.wantErr {
				t.Errorf("Ordered.Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrdered_UpsertKeepsPosition(t *testing.T) {
	reg := NewOrdered[testTool]()
	reg.Upsert("a", testTool{Name: "a"})
	reg.Upsert("b", testTool{Name: "b"})
	reg.Upsert("c", testTool{Name: "c"})

	// Replacing "a" must keep it first.
	reg.Upsert("a", testTool{Name: "a", Desc: "v2"})

	names := reg.Names()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("Ordered.Names() length = %d, want %d", len(names), len(want))
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("Ordered.Names()[%d] = %q, want %q", i, names[i], n)
		}
	}

	item, ok := reg.Get("a")
	if !ok || item.Desc != "v2" {
		t.Errorf("Ordered.Get(a) = %+v, ok=%v, want replaced item", item, ok)
	}
}

func TestOrdered_ListOrder(t *testing.T) {
	reg := NewOrdered[testTool]()
	for i := 0; i < 5; i++ {
		if err := reg.Register(fmt.Sprintf("tool-%d", i), testTool{Name: fmt.Sprintf("tool-%d", i)}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	items := reg.List()
	if len(items) != 5 {
		t.Fatalf("Ordered.List() length = %d, want 5", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf("tool-%d", i)
		if item.Name != want {
			t.Errorf("Ordered.List()[%d].Name = %q, want %q", i, item.Name, want)
		}
	}
}

func TestOrdered_Remove(t *testing.T) {
	reg := NewOrdered[testTool]()
	reg.Upsert("a", testTool{Name: "a"})
	reg.Upsert("b", testTool{Name: "b"})

	if err := reg.Remove("a"); err != nil {
		t.Fatalf("Ordered.Remove() error = %v", err)
	}
	if err := reg.Remove("a"); err == nil {
		t.Error("Ordered.Remove() second remove expected error, got nil")
	}
	if reg.Count() != 1 {
		t.Errorf("Ordered.Count() = %d, want 1", reg.Count())
	}
	names := reg.Names()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("Ordered.Names() = %v, want [b]", names)
	}
}

func TestOrdered_Clear(t *testing.T) {
	reg := NewOrdered[testTool]()
	reg.Upsert("a", testTool{Name: "a"})
	reg.Clear()
	if reg.Count() != 0 {
		t.Errorf("Ordered.Count() after Clear = %d, want 0", reg.Count())
	}
	if len(reg.Names()) != 0 {
		t.Errorf("Ordered.Names() after Clear = %v, want empty", reg.Names())
	}
}
