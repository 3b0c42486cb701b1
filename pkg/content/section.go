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

package content

// Section is a named, mergeable chunk of system-prompt content.
type Section struct {
	ID         string         `json:"id" yaml:"id"`
	Content    any            `json:"content,omitempty" yaml:"content,omitempty"`
	Visibility string         `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Audience   []string       `json:"audience,omitempty" yaml:"audience,omitempty"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty"`
	Tags       []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Renderer   string         `json:"renderer,omitempty" yaml:"renderer,omitempty"`
}

// MergeContent combines two section contents occurring under the same id
// within one pass:
//
//   - string + string: newline-joined
//   - list + list: concatenated
//   - map + map: shallow-merged, later keys win
//   - anything else: a two-element list
func MergeContent(old, incoming any) any {
	if old == nil {
		return incoming
	}
	if incoming == nil {
		return old
	}

	if os, ok := old.(string); ok {
		if ns, ok := incoming.(string); ok {
			return os + "\n" + ns
		}
	}

	if ol, ok := asList(old); ok {
		if nl, ok := asList(incoming); ok {
			merged := make([]any, 0, len(ol)+len(nl))
			merged = append(merged, ol...)
			merged = append(merged, nl...)
			return merged
		}
	}

	if om, ok := old.(map[string]any); ok {
		if nm, ok := incoming.(map[string]any); ok {
			merged := make(map[string]any, len(om)+len(nm))
			for k, v := range om {
				merged[k] = v
			}
			for k, v := range nm {
				merged[k] = v
			}
			return merged
		}
	}

	return []any{old, incoming}
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []Block:
		out := make([]any, len(l))
		for i, b := range l {
			out[i] = b
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// Merge folds a later occurrence of the same section id into s. Content
// follows MergeContent; scalar fields are filled only when unset so the first
// explicit value wins; tags are appended; metadata is shallow-merged with
// later keys winning.
func (s *Section) Merge(incoming *Section) {
	if incoming == nil {
		return
	}
	s.Content = MergeContent(s.Content, incoming.Content)
	if s.Visibility == "" {
		s.Visibility = incoming.Visibility
	}
	if s.Title == "" {
		s.Title = incoming.Title
	}
	if s.Renderer == "" {
		s.Renderer = incoming.Renderer
	}
	if len(incoming.Audience) > 0 {
		s.Audience = append(s.Audience, incoming.Audience...)
	}
	if len(incoming.Tags) > 0 {
		s.Tags = append(s.Tags, incoming.Tags...)
	}
	if len(incoming.Metadata) > 0 {
		if s.Metadata == nil {
			s.Metadata = make(map[string]any, len(incoming.Metadata))
		}
		for k, v := range incoming.Metadata {
			s.Metadata[k] = v
		}
	}
}
