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

// Package runtime holds the shared object model the compiler and component
// instances mutate during a tick: the tool registry, published refs,
// metadata, the last compiled structure, and recompile-request tracking.
//
// The model is mutex-guarded, but the compile contract is single-writer: the
// engine must not run two compile passes against the same model concurrently.
package runtime

import (
	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/registry"
)

// ToolEntry is one registered tool plus its owner, used to drop statically
// declared tools when their owning instance unmounts.
type ToolEntry struct {
	Name       string
	Definition *ToolDef
	Owner      string
}

// Model is the shared object model for one agent execution.
type Model struct {
	tools *registry.Ordered[ToolEntry]
	refs  *refTable
	meta  *metaTable

	compiled *compiledRef
	rec      *recompileTracker
}

// NewModel creates an empty shared object model.
func NewModel() *Model {
	return &Model{
		tools:    registry.NewOrdered[ToolEntry](),
		refs:     newRefTable(),
		meta:     newMetaTable(),
		compiled: &compiledRef{},
		rec:      &recompileTracker{},
	}
}

// ---------------------------------------------------------------------------
// Tools
// ---------------------------------------------------------------------------

// AddTool registers or replaces a tool declaration. Registration is
// idempotent by name: a later declaration with the same name replaces the
// earlier one without duplicating it.
func (m *Model) AddTool(def *ToolDef) {
	m.AddToolOwned(def, "")
}

// AddToolOwned registers a tool on behalf of an owning instance handle.
func (m *Model) AddToolOwned(def *ToolDef, owner string) {
	if def == nil || def.Name == "" {
		return
	}
	m.tools.Upsert(def.Name, ToolEntry{Name: def.Name, Definition: def, Owner: owner})
}

// RemoveTool removes a tool declaration by name.
func (m *Model) RemoveTool(name string) {
	_ = m.tools.Remove(name)
}

// RemoveToolsOwned removes every tool registered under an owner handle.
func (m *Model) RemoveToolsOwned(owner string) {
	if owner == "" {
		return
	}
	for _, name := range m.tools.Names() {
		if entry, ok := m.tools.Get(name); ok && entry.Owner == owner {
			_ = m.tools.Remove(name)
		}
	}
}

// GetTool returns a tool declaration by name.
func (m *Model) GetTool(name string) (*ToolDef, bool) {
	entry, ok := m.tools.Get(name)
	if !ok {
		return nil, false
	}
	return entry.Definition, true
}

// Tools lists tool entries in registration order.
func (m *Model) Tools() []ToolEntry {
	return m.tools.List()
}

// ---------------------------------------------------------------------------
// Compiled view
// ---------------------------------------------------------------------------

// SetCompiled stores the output of the latest collector pass so components
// can inspect it from their after-compile callbacks.
func (m *Model) SetCompiled(c *content.Compiled) {
	m.compiled.set(c)
}

// Compiled returns the latest collector output, or nil before the first pass.
func (m *Model) Compiled() *content.Compiled {
	return m.compiled.get()
}

// Timeline returns the timeline entries of the latest pass.
func (m *Model) Timeline() []content.TimelineEntry {
	if c := m.compiled.get(); c != nil {
		return c.Timeline
	}
	return nil
}

// Sections returns the merged sections of the latest pass.
func (m *Model) Sections() map[string]*content.Section {
	if c := m.compiled.get(); c != nil {
		return c.Sections
	}
	return nil
}

// ---------------------------------------------------------------------------
// Refs and metadata
// ---------------------------------------------------------------------------

// SetRef publishes an instance under a name. The reconciler calls this when a
// fiber mounts with a string ref prop.
func (m *Model) SetRef(name string, v any) { m.refs.set(name, v) }

// RemoveRef withdraws a published ref.
func (m *Model) RemoveRef(name string) { m.refs.remove(name) }

// Ref looks up a published instance.
func (m *Model) Ref(name string) (any, bool) { return m.refs.get(name) }

// AddMetadata records a metadata entry; last writer wins.
func (m *Model) AddMetadata(key string, v any) { m.meta.set(key, v) }

// Metadata returns a copy of the metadata map.
func (m *Model) Metadata() map[string]any { return m.meta.snapshot() }

// ---------------------------------------------------------------------------
// Recompile tracking
// ---------------------------------------------------------------------------

// RequestRecompile asks the stabilizer for another pass. Components mutating
// shared state after compile must call this or the mutation is lost until an
// unrelated pass happens to run.
func (m *Model) RequestRecompile(reason string) { m.rec.request(reason) }

// ResetRecompile clears the request flag and reason log. The stabilizer calls
// it at the top of every pass.
func (m *Model) ResetRecompile() { m.rec.reset() }

// RecompileRequested reports whether any component requested another pass.
func (m *Model) RecompileRequested() bool { return m.rec.isRequested() }

// RecompileReasons returns the reasons accumulated since the last reset.
func (m *Model) RecompileReasons() []string { return m.rec.reasons() }
