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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
)

func compileTree(t *testing.T, el *Element) (*Compiler, *content.Compiled) {
	t.Helper()
	c := New(runtime.NewModel())
	compiled, err := c.Compile(context.Background(), el, &runtime.TickState{Tick: 1})
	require.NoError(t, err)
	return c, compiled
}

func TestCollectSectionMerge(t *testing.T) {
	_, compiled := compileTree(t, Fragment(
		SectionEl("identity", P("content", "A")),
		SectionEl("identity", P("content", "B")),
	))

	require.Contains(t, compiled.Sections, "identity")
	assert.Equal(t, "A\nB", compiled.Sections["identity"].Content)
	assert.Equal(t, []string{"identity"}, compiled.SectionOrder)

	// One system item per section id, carrying the fully merged content.
	require.Equal(t, 1, len(compiled.SystemMessageItems))
	item := compiled.SystemMessageItems[0]
	assert.Equal(t, content.SystemItemSection, item.Type)
	assert.Equal(t, "identity", item.SectionID)
	assert.Equal(t, "A\nB", item.Content)
}

func TestCollectSectionScalarAndTagMerge(t *testing.T) {
	_, compiled := compileTree(t, Fragment(
		SectionEl("rules", P("content", "first", "title", "Rules", "tags", []string{"core"})),
		SectionEl("rules", P("content", "second", "title", "Overridden", "tags", []string{"extra"})),
	))

	sec := compiled.Sections["rules"]
	require.NotNil(t, sec)
	assert.Equal(t, "Rules", sec.Title, "first scalar wins")
	assert.Equal(t, []string{"core", "extra"}, sec.Tags)
}

func TestCollectSectionChildrenBecomeContent(t *testing.T) {
	_, compiled := compileTree(t, SectionEl("guide", nil,
		Text("line one"),
		Text("line two"),
	))

	sec := compiled.Sections["guide"]
	require.NotNil(t, sec)
	blocks, ok := sec.Content.([]content.Block)
	require.True(t, ok)
	require.Equal(t, 2, len(blocks))
	assert.Equal(t, "line one", blocks[0].Text)

	// Child blocks are section content, never loose system items.
	require.Equal(t, 1, len(compiled.SystemMessageItems))
	assert.Equal(t, content.SystemItemSection, compiled.SystemMessageItems[0].Type)
}

func TestCollectToolDedupLastWins(t *testing.T) {
	mk := func(desc string) *Element {
		return ToolEl(&runtime.ToolDef{Name: "search", Description: desc})
	}
	_, compiled := compileTree(t, Fragment(mk("v1"), mk("v2"), mk("v3")))

	require.Equal(t, 1, len(compiled.Tools))
	entry := compiled.Tools[0]
	assert.Equal(t, "search", entry.Name)
	def, ok := entry.Definition.(*runtime.ToolDef)
	require.True(t, ok)
	assert.Equal(t, "v3", def.Description, "last declaration wins")
}

func TestCollectToolByRegisteredName(t *testing.T) {
	c := New(runtime.NewModel())
	c.Model().AddTool(&runtime.ToolDef{Name: "lookup", Description: "registered"})

	compiled, err := c.Compile(context.Background(), ToolEl("lookup"), &runtime.TickState{Tick: 1})
	require.NoError(t, err)

	require.Equal(t, 1, len(compiled.Tools))
	def := compiled.Tools[0].Definition.(*runtime.ToolDef)
	assert.Equal(t, "registered", def.Description)
}

func TestCollectSystemMessagesNeverEnterTimeline(t *testing.T) {
	_, compiled := compileTree(t, Fragment(
		MessageEl(content.RoleSystem, P("content", "be terse")),
		MessageEl(content.RoleUser, P("content", "hello")),
		MessageEl(content.RoleAssistant, P("content", "hi")),
	))

	require.Equal(t, 2, len(compiled.Timeline))
	assert.Equal(t, content.RoleUser, compiled.Timeline[0].Message.Role)
	assert.Equal(t, content.RoleAssistant, compiled.Timeline[1].Message.Role)

	require.Equal(t, 1, len(compiled.SystemMessageItems))
	item := compiled.SystemMessageItems[0]
	assert.Equal(t, content.SystemItemMessage, item.Type)
	require.Equal(t, 1, len(item.Blocks))
	assert.Equal(t, "be terse", item.Blocks[0].Text)
}

func TestCollectTimelineWrapperPreservesOrder(t *testing.T) {
	_, compiled := compileTree(t, TimelineEl(
		MessageEl(content.RoleUser, P("content", "First")),
		MessageEl(content.RoleAssistant, P("content", "Second")),
		MessageEl(content.RoleUser, P("content", "Third")),
	))

	require.Equal(t, 3, len(compiled.Timeline))
	for i, want := range []string{"First", "Second", "Third"} {
		require.Equal(t, 1, len(compiled.Timeline[i].Message.Content))
		assert.Equal(t, want, compiled.Timeline[i].Message.Content[0].Text)
	}
}

func TestCollectLooseBlocksAndEncounterOrder(t *testing.T) {
	_, compiled := compileTree(t, Fragment(
		Text("loose one"),
		SectionEl("mid", P("content", "section")),
		MessageEl(content.RoleSystem, P("content", "sys")),
	))

	require.Equal(t, 3, len(compiled.SystemMessageItems))
	assert.Equal(t, content.SystemItemLoose, compiled.SystemMessageItems[0].Type)
	assert.Equal(t, content.SystemItemSection, compiled.SystemMessageItems[1].Type)
	assert.Equal(t, content.SystemItemMessage, compiled.SystemMessageItems[2].Type)

	// Index is the shared encounter counter across item types.
	for i, item := range compiled.SystemMessageItems {
		assert.Equal(t, i, item.Index)
	}
}

func TestCollectRendererStackAppliesToBlocks(t *testing.T) {
	_, compiled := compileTree(t, RendererNameEl("xml",
		Text("wrapped"),
		SectionEl("styled", P("content", "body")),
		RendererNameEl("markdown", Text("inner")),
	))

	require.Equal(t, 3, len(compiled.SystemMessageItems))
	loose := compiled.SystemMessageItems[0]
	assert.Equal(t, "xml", loose.Blocks[0].Renderer)
	assert.Equal(t, "xml", compiled.Sections["styled"].Renderer)
	inner := compiled.SystemMessageItems[2]
	assert.Equal(t, "markdown", inner.Blocks[0].Renderer, "innermost wrapper wins")
}

func TestCollectMetadataLastWriterWins(t *testing.T) {
	_, compiled := compileTree(t, Fragment(
		MetadataEl(map[string]any{"model": "a", "budget": 10}),
		MetadataEl(map[string]any{"model": "b"}),
	))

	assert.Equal(t, "b", compiled.Metadata["model"])
	assert.Equal(t, 10, compiled.Metadata["budget"])
}

func TestCollectEphemeral(t *testing.T) {
	_, compiled := compileTree(t, EphemeralEl(
		P("id", "reminder", "position", "end", "order", 5),
		Text("transient note"),
	))

	require.Equal(t, 1, len(compiled.Ephemeral))
	item := compiled.Ephemeral[0]
	assert.Equal(t, "reminder", item.ID)
	assert.Equal(t, "end", item.Position)
	assert.Equal(t, 5, item.Order)
	require.Equal(t, 1, len(item.Content))
	assert.Equal(t, "transient note", item.Content[0].Text)
	assert.Empty(t, compiled.SystemMessageItems, "ephemeral blocks are not loose items")
}

func TestCollectIsIdempotent(t *testing.T) {
	c, compiled := compileTree(t, Fragment(
		SectionEl("identity", P("content", "A")),
		SectionEl("identity", P("content", "B")),
		MessageEl(content.RoleUser, P("content", "hello")),
		ToolEl(&runtime.ToolDef{Name: "search"}),
	))

	again := c.Collect()
	assert.Equal(t, compiled, again, "collecting without reconciling must not accumulate")
}
