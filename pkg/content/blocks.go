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

// Package content defines the structured output of one compile pass: content
// blocks, sections, timeline entries, system-message items and the Compiled
// container. These types are plain data; turning them into a model provider's
// wire format is the renderer's concern and stays outside this package.
package content

// BlockType discriminates the content block union.
type BlockType string

const (
	BlockText        BlockType = "text"
	BlockImage       BlockType = "image"
	BlockDocument    BlockType = "document"
	BlockAudio       BlockType = "audio"
	BlockVideo       BlockType = "video"
	BlockCode        BlockType = "code"
	BlockJSON        BlockType = "json"
	BlockToolUse     BlockType = "tool_use"
	BlockToolResult  BlockType = "tool_result"
	BlockReasoning   BlockType = "reasoning"
	BlockUserAction  BlockType = "user_action"
	BlockSystemEvent BlockType = "system_event"
	BlockStateChange BlockType = "state_change"
)

// Block is one content block. Which fields are meaningful depends on Type;
// unused fields stay zero and are omitted from serialized output.
type Block struct {
	Type BlockType `json:"type" yaml:"type"`

	// Text-like blocks (text, code, reasoning).
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Media blocks (image, document, audio, video).
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`

	// Structured payloads (json, user_action, system_event, state_change,
	// tool_use input, tool_result content).
	Data any `json:"data,omitempty" yaml:"data,omitempty"`

	// Tool blocks.
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty" yaml:"tool_use_id,omitempty"`
	IsError   bool   `json:"is_error,omitempty" yaml:"is_error,omitempty"`

	// Optional nested formatting tree and its discriminator, carried by
	// text/heading/list/table shaped blocks.
	Semantic     *SemanticNode `json:"semantic_node,omitempty" yaml:"semantic_node,omitempty"`
	SemanticType string        `json:"semantic_type,omitempty" yaml:"semantic_type,omitempty"`

	// Name of the renderer in effect where this block was collected.
	Renderer string `json:"renderer,omitempty" yaml:"renderer,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SemanticNode is a nested formatting tree attached to text-like blocks.
type SemanticNode struct {
	Type     string          `json:"type" yaml:"type"`
	Text     string          `json:"text,omitempty" yaml:"text,omitempty"`
	Attrs    map[string]any  `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*SemanticNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// TextBlock builds a plain text block.
func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

// CodeBlock builds a code block.
func CodeBlock(language, text string) Block {
	return Block{Type: BlockCode, Language: language, Text: text}
}

// JSONBlock builds a structured JSON block.
func JSONBlock(data any) Block {
	return Block{Type: BlockJSON, Data: data}
}

// ToolUseBlock builds a tool invocation block.
func ToolUseBlock(id, name string, input any) Block {
	return Block{Type: BlockToolUse, ToolUseID: id, Name: name, Data: input}
}

// ToolResultBlock builds a tool result block.
func ToolResultBlock(id string, result any, isError bool) Block {
	return Block{Type: BlockToolResult, ToolUseID: id, Data: result, IsError: isError}
}
