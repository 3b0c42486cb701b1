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
	"fmt"

	"github.com/mitchellh/mapstructure"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kadirpekel/weft/pkg/content"
)

// Props is an ordered string-keyed property map. All methods tolerate a nil
// receiver, which behaves as an empty, immutable map.
type Props struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewProps returns an empty props map.
func NewProps() *Props {
	return &Props{om: orderedmap.New[string, any]()}
}

// P builds props from alternating key/value pairs:
//
//	P("id", "identity", "content", "You are a helpful assistant")
//
// Panics on an odd pair count or a non-string key; both are programmer errors.
func P(pairs ...any) *Props {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("compile.P: odd number of arguments (%d)", len(pairs)))
	}
	p := NewProps()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("compile.P: key at position %d is %T, not string", i, pairs[i]))
		}
		p.om.Set(key, pairs[i+1])
	}
	return p
}

// Set stores a value, returning p for chaining.
func (p *Props) Set(key string, v any) *Props {
	if p == nil || p.om == nil {
		return p
	}
	p.om.Set(key, v)
	return p
}

// Get returns the value for key.
func (p *Props) Get(key string) (any, bool) {
	if p == nil || p.om == nil {
		return nil, false
	}
	return p.om.Get(key)
}

// GetString returns a string-valued prop, or "".
func (p *Props) GetString(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetInt returns an int-valued prop, or 0.
func (p *Props) GetInt(key string) int {
	v, ok := p.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// GetStringSlice returns a []string-valued prop, converting []any of strings.
func (p *Props) GetStringSlice(key string) []string {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// GetMap returns a map-valued prop, or nil.
func (p *Props) GetMap(key string) map[string]any {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// Len returns the number of entries.
func (p *Props) Len() int {
	if p == nil || p.om == nil {
		return 0
	}
	return p.om.Len()
}

// Keys returns keys in insertion order.
func (p *Props) Keys() []string {
	if p == nil || p.om == nil {
		return nil
	}
	keys := make([]string, 0, p.om.Len())
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range iterates entries in insertion order until fn returns false.
func (p *Props) Range(fn func(key string, v any) bool) {
	if p == nil || p.om == nil {
		return
	}
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns an independent shallow copy.
func (p *Props) Clone() *Props {
	out := NewProps()
	p.Range(func(key string, v any) bool {
		out.om.Set(key, v)
		return true
	})
	return out
}

// ToMap returns entries as a plain map (insertion order lost).
func (p *Props) ToMap() map[string]any {
	out := make(map[string]any, p.Len())
	p.Range(func(key string, v any) bool {
		out[key] = v
		return true
	})
	return out
}

// Decode maps props onto a typed struct using mapstructure tags.
func (p *Props) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to build props decoder: %w", err)
	}
	if err := decoder.Decode(p.ToMap()); err != nil {
		return fmt.Errorf("failed to decode props: %w", err)
	}
	return nil
}

// mergeProps shallow-merges newer over older into a fresh map. Keys absent
// from newer keep their old value, so an element rendered with empty props
// never blanks out props set on a persisted instance: last explicit value
// wins, not last call.
func mergeProps(older, newer *Props) *Props {
	merged := older.Clone()
	newer.Range(func(key string, v any) bool {
		merged.om.Set(key, v)
		return true
	})
	return merged
}

// blocksOf coerces a prop value into content blocks. Strings become text
// blocks; slices are flattened element-wise.
func blocksOf(v any) []content.Block {
	switch b := v.(type) {
	case nil:
		return nil
	case content.Block:
		return []content.Block{b}
	case *content.Block:
		if b == nil {
			return nil
		}
		return []content.Block{*b}
	case []content.Block:
		return b
	case string:
		if b == "" {
			return nil
		}
		return []content.Block{content.TextBlock(b)}
	case []any:
		var out []content.Block
		for _, item := range b {
			out = append(out, blocksOf(item)...)
		}
		return out
	default:
		return nil
	}
}
