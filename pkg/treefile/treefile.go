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

// Package treefile loads declarative element trees from YAML files. A tree
// file describes the static shape of an agent context; named components are
// resolved against a registry populated by the host program.
package treefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/weft/pkg/compile"
	"github.com/kadirpekel/weft/pkg/registry"
)

// componentEntry is one registered component: exactly one of the two fields
// is set.
type componentEntry struct {
	ctor compile.Ctor
	fn   compile.Func
}

// Loader parses tree files and resolves component references.
type Loader struct {
	components *registry.Ordered[componentEntry]
}

// NewLoader returns a loader with an empty component registry.
func NewLoader() *Loader {
	return &Loader{components: registry.NewOrdered[componentEntry]()}
}

// RegisterComponent makes a class component constructible from tree files
// under the given name.
func (l *Loader) RegisterComponent(name string, ctor compile.Ctor) error {
	return l.components.Register(name, componentEntry{ctor: ctor})
}

// RegisterFunc makes a function component usable from tree files under the
// given name.
func (l *Loader) RegisterFunc(name string, fn compile.Func) error {
	return l.components.Register(name, componentEntry{fn: fn})
}

// document is the top-level tree file shape.
type document struct {
	Version int `yaml:"version"`
	Root    any `yaml:"root"`
}

// Load reads and parses a tree file.
func (l *Loader) Load(path string) (*compile.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	el, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return el, nil
}

// Parse builds an element tree from tree file bytes.
func (l *Loader) Parse(data []byte) (*compile.Element, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tree file: %w", err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("tree file has no root")
	}
	return l.buildNode(doc.Root)
}

// buildNode turns one YAML value into an element. Strings are text blocks,
// sequences are fragments, and maps carry exactly one node-type key.
func (l *Loader) buildNode(v any) (*compile.Element, error) {
	switch node := v.(type) {
	case string:
		return compile.Text(node), nil

	case []any:
		children, err := l.buildChildren(node)
		if err != nil {
			return nil, err
		}
		return compile.Fragment(children...), nil

	case map[string]any:
		if len(node) != 1 {
			return nil, fmt.Errorf("tree node must have exactly one type key, got %d", len(node))
		}
		for kind, body := range node {
			return l.buildTyped(kind, body)
		}
	}
	return nil, fmt.Errorf("unsupported tree node type %T", v)
}

func (l *Loader) buildTyped(kind string, body any) (*compile.Element, error) {
	switch kind {
	case "text":
		s, ok := body.(string)
		if !ok {
			return nil, fmt.Errorf("text node body must be a string, got %T", body)
		}
		return compile.Text(s), nil

	case "code":
		props, children, err := l.splitBody(body)
		if err != nil {
			return nil, fmt.Errorf("code node: %w", err)
		}
		if len(children) > 0 {
			return nil, fmt.Errorf("code node takes no children")
		}
		return compile.Code(props.GetString("language"), props.GetString("text")), nil

	case "fragment":
		items, ok := body.([]any)
		if !ok {
			return nil, fmt.Errorf("fragment body must be a sequence, got %T", body)
		}
		children, err := l.buildChildren(items)
		if err != nil {
			return nil, err
		}
		return compile.Fragment(children...), nil

	case "component":
		return l.buildComponent(body)

	case compile.TagSection, compile.TagMessage, compile.TagTimeline,
		compile.TagTool, compile.TagEphemeral, compile.TagRenderer,
		compile.TagMetadata:
		props, children, err := l.splitBody(body)
		if err != nil {
			return nil, fmt.Errorf("%s node: %w", kind, err)
		}
		return compile.H(kind, props, children...), nil

	default:
		// Unknown keys fall back to the component registry, so a tree file
		// can name registered components directly.
		return l.resolveComponent(kind, nil, nil)
	}
}

// buildComponent handles the explicit component form:
//
//	component:
//	  name: Planner
//	  props: {depth: 2}
//	  children: [...]
func (l *Loader) buildComponent(body any) (*compile.Element, error) {
	if name, ok := body.(string); ok {
		return l.resolveComponent(name, nil, nil)
	}

	m, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("component body must be a name or mapping, got %T", body)
	}
	name, _ := m["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("component node needs a name")
	}

	props := compile.NewProps()
	if pm, ok := m["props"].(map[string]any); ok {
		for k, v := range pm {
			props.Set(k, v)
		}
	}

	var children []*compile.Element
	if raw, ok := m["children"].([]any); ok {
		var err error
		children, err = l.buildChildren(raw)
		if err != nil {
			return nil, err
		}
	}
	return l.resolveComponent(name, props, children)
}

func (l *Loader) resolveComponent(name string, props *compile.Props, children []*compile.Element) (*compile.Element, error) {
	entry, ok := l.components.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	if entry.ctor != nil {
		return compile.C(name, entry.ctor, props, children...), nil
	}
	return compile.F(entry.fn, props, children...), nil
}

// splitBody separates a node mapping into props and built children. A nil or
// scalar body becomes a "content" prop.
func (l *Loader) splitBody(body any) (*compile.Props, []*compile.Element, error) {
	props := compile.NewProps()
	switch b := body.(type) {
	case nil:
		return props, nil, nil
	case string:
		props.Set("content", b)
		return props, nil, nil
	case map[string]any:
		var children []*compile.Element
		for k, v := range b {
			if k == "children" {
				raw, ok := v.([]any)
				if !ok {
					return nil, nil, fmt.Errorf("children must be a sequence, got %T", v)
				}
				var err error
				children, err = l.buildChildren(raw)
				if err != nil {
					return nil, nil, err
				}
				continue
			}
			props.Set(k, v)
		}
		return props, children, nil
	default:
		return nil, nil, fmt.Errorf("node body must be a mapping, string or empty, got %T", body)
	}
}

func (l *Loader) buildChildren(items []any) ([]*compile.Element, error) {
	children := make([]*compile.Element, 0, len(items))
	for i, item := range items {
		child, err := l.buildNode(item)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children = append(children, child)
	}
	return children, nil
}
