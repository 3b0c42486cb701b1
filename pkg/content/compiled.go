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

// ToolEntry pairs a tool name with its declaration. The definition is opaque
// to this package; the runtime package owns the concrete ToolDef type.
type ToolEntry struct {
	Name       string `json:"name" yaml:"name"`
	Definition any    `json:"definition" yaml:"definition"`
}

// Compiled is the structured output of one collector pass. It is transient:
// the engine consumes it and the next tick rebuilds it from scratch.
type Compiled struct {
	Sections           map[string]*Section `json:"sections" yaml:"sections"`
	SectionOrder       []string            `json:"section_order" yaml:"section_order"`
	Timeline           []TimelineEntry     `json:"timeline" yaml:"timeline"`
	SystemMessageItems []SystemMessageItem `json:"system_message_items" yaml:"system_message_items"`
	Tools              []ToolEntry         `json:"tools" yaml:"tools"`
	Ephemeral          []EphemeralItem     `json:"ephemeral" yaml:"ephemeral"`
	Metadata           map[string]any      `json:"metadata" yaml:"metadata"`
}

// NewCompiled returns an empty compiled structure with allocated containers.
func NewCompiled() *Compiled {
	return &Compiled{
		Sections: make(map[string]*Section),
		Metadata: make(map[string]any),
	}
}

// SectionIDs returns the set of section ids present, in first-occurrence order.
func (c *Compiled) SectionIDs() []string {
	ids := make([]string, len(c.SectionOrder))
	copy(ids, c.SectionOrder)
	return ids
}

// Tool returns the entry for name, if declared this pass.
func (c *Compiled) Tool(name string) (ToolEntry, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolEntry{}, false
}
