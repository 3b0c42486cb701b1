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

// Message roles. System-role messages never enter the timeline; they are
// diverted to SystemMessageItems and rebuilt every tick.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one conversational message.
type Message struct {
	Role    string  `json:"role" yaml:"role"`
	Content []Block `json:"content" yaml:"content"`
}

// EntryKindMessage is the only timeline entry kind the compiler emits today.
const EntryKindMessage = "message"

// TimelineEntry is one persisted conversational message.
type TimelineEntry struct {
	Kind       string         `json:"kind" yaml:"kind"`
	Message    Message        `json:"message" yaml:"message"`
	Tags       []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Visibility string         `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Renderer   string         `json:"renderer,omitempty" yaml:"renderer,omitempty"`
}

// System message item types.
const (
	SystemItemSection = "section"
	SystemItemMessage = "message"
	SystemItemLoose   = "loose"
)

// SystemMessageItem is one piece of the system prompt assembled this pass.
// Index is the true encounter order across the whole traversal, regardless of
// item type, so consumers can reconstruct original prompt ordering.
type SystemMessageItem struct {
	Index     int     `json:"index" yaml:"index"`
	Type      string  `json:"type" yaml:"type"`
	SectionID string  `json:"section_id,omitempty" yaml:"section_id,omitempty"`
	Content   any     `json:"content,omitempty" yaml:"content,omitempty"`
	Blocks    []Block `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// EphemeralItem is a transient note attached to one pass, never persisted.
type EphemeralItem struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string         `json:"type,omitempty" yaml:"type,omitempty"`
	Position string         `json:"position,omitempty" yaml:"position,omitempty"`
	Order    int            `json:"order,omitempty" yaml:"order,omitempty"`
	Content  []Block        `json:"content,omitempty" yaml:"content,omitempty"`
	Tags     []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Renderer string         `json:"renderer,omitempty" yaml:"renderer,omitempty"`
}
