package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeContent(t *testing.T) {
	tests := []struct {
		name     string
		old      any
		incoming any
		want     any
	}{
		{
			name:     "string plus string joins with newline",
			old:      "A",
			incoming: "B",
			want:     "A\nB",
		},
		{
			name:     "list plus list concatenates",
			old:      []any{"a", "b"},
			incoming: []any{"c"},
			want:     []any{"a", "b", "c"},
		},
		{
			name:     "map plus map shallow merges, later keys win",
			old:      map[string]any{"x": 1, "y": 1},
			incoming: map[string]any{"y": 2, "z": 3},
			want:     map[string]any{"x": 1, "y": 2, "z": 3},
		},
		{
			name:     "mixed types become a two element list",
			old:      "A",
			incoming: map[string]any{"k": "v"},
			want:     []any{"A", map[string]any{"k": "v"}},
		},
		{
			name:     "nil old yields incoming",
			old:      nil,
			incoming: "B",
			want:     "B",
		},
		{
			name:     "nil incoming yields old",
			old:      "A",
			incoming: nil,
			want:     "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeContent(tt.old, tt.incoming)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeContent_BlockLists(t *testing.T) {
	old := []Block{TextBlock("one")}
	incoming := []Block{TextBlock("two")}

	got := MergeContent(old, incoming)
	list, ok := got.([]any)
	require.True(t, ok, "expected merged list, got %T", got)
	require.Len(t, list, 2)
	assert.Equal(t, TextBlock("one"), list[0])
	assert.Equal(t, TextBlock("two"), list[1])
}

func TestSection_Merge(t *testing.T) {
	s := &Section{ID: "x", Content: "A", Title: "First"}
	s.Merge(&Section{
		ID:       "x",
		Content:  "B",
		Title:    "Second",
		Tags:     []string{"extra"},
		Metadata: map[string]any{"k": "v"},
	})

	assert.Equal(t, "A\nB", s.Content)
	// First explicit title wins.
	assert.Equal(t, "First", s.Title)
	assert.Equal(t, []string{"extra"}, s.Tags)
	assert.Equal(t, map[string]any{"k": "v"}, s.Metadata)
}

func TestSection_MergeNil(t *testing.T) {
	s := &Section{ID: "x", Content: "A"}
	s.Merge(nil)
	assert.Equal(t, "A", s.Content)
}
