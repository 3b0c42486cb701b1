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
	"log/slog"

	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// collector walks the reconciled fiber tree once, depth-first, and assembles
// the Compiled structure. It reads fibers and never mutates them, so
// collecting the same tree twice yields identical output.
type collector struct {
	model *runtime.Model
	log   *slog.Logger
	out   *content.Compiled

	// index is the monotonic encounter counter shared by every system
	// message item, preserving original traversal order across item types.
	index int

	// renderers is the active renderer-wrapper stack; the innermost name
	// applies to blocks that don't carry one themselves.
	renderers []string

	// sink, when non-nil, receives blocks for the enclosing section, message
	// or ephemeral node instead of emitting them as loose system items.
	sink *[]content.Block
}

// collect turns the current fiber tree into a fresh Compiled structure.
func (c *Compiler) collect(root *Fiber) *content.Compiled {
	col := &collector{model: c.model, log: c.log, out: content.NewCompiled()}
	col.visit(root)
	col.finish()
	return col.out
}

func (col *collector) visit(f *Fiber) {
	if f == nil {
		return
	}

	switch f.Kind() {
	case KindBlock:
		col.emitBlock(f)
		return

	case KindHost:
		switch f.Tag() {
		case TagRenderer:
			col.renderers = append(col.renderers, rendererNameOf(f.Props))
			col.visitChildren(f)
			col.renderers = col.renderers[:len(col.renderers)-1]
		case TagSection:
			col.collectSection(f)
		case TagMessage:
			col.collectMessage(f)
		case TagTool:
			col.collectTool(f)
		case TagEphemeral:
			col.collectEphemeral(f)
		case TagMetadata:
			col.collectMetadata(f)
		default:
			// Unknown host tags are transparent, like timeline.
			col.visitChildren(f)
		}
		return

	default:
		// Component, function, fragment: structure only.
		col.visitChildren(f)
	}
}

func (col *collector) visitChildren(f *Fiber) {
	for _, child := range f.Children {
		col.visit(child)
	}
}

// emitBlock routes one content block: into the enclosing container when there
// is one, otherwise as a loose system message item.
func (col *collector) emitBlock(f *Fiber) {
	b := *f.Element().Block
	if b.Renderer == "" {
		b.Renderer = col.currentRenderer()
	}
	if col.sink != nil {
		*col.sink = append(*col.sink, b)
		return
	}
	col.out.SystemMessageItems = append(col.out.SystemMessageItems, content.SystemMessageItem{
		Index:  col.nextIndex(),
		Type:   content.SystemItemLoose,
		Blocks: []content.Block{b},
	})
}

// collectSection merges one section occurrence. The first occurrence of an id
// fixes its order and emits the id's single system message item; later
// occurrences fold into the stored section.
func (col *collector) collectSection(f *Fiber) {
	id := f.Props.GetString("id")
	if id == "" {
		col.log.Warn("section without id is skipped")
		return
	}

	sec := &content.Section{
		ID:         id,
		Visibility: f.Props.GetString("visibility"),
		Audience:   f.Props.GetStringSlice("audience"),
		Title:      f.Props.GetString("title"),
		Tags:       f.Props.GetStringSlice("tags"),
		Metadata:   f.Props.GetMap("metadata"),
		Renderer:   f.Props.GetString("renderer"),
	}
	if sec.Renderer == "" {
		sec.Renderer = col.currentRenderer()
	}

	// Reconciled children win over the content prop.
	if blocks := col.childBlocks(f); len(blocks) > 0 {
		sec.Content = blocks
	} else if v, ok := f.Props.Get("content"); ok {
		sec.Content = v
	}

	if existing, ok := col.out.Sections[id]; ok {
		existing.Merge(sec)
		return
	}
	col.out.Sections[id] = sec
	col.out.SectionOrder = append(col.out.SectionOrder, id)
	col.out.SystemMessageItems = append(col.out.SystemMessageItems, content.SystemMessageItem{
		Index:     col.nextIndex(),
		Type:      content.SystemItemSection,
		SectionID: id,
	})
}

// collectMessage emits one message. System-role messages never reach the
// timeline; they become system message items rebuilt every pass.
func (col *collector) collectMessage(f *Fiber) {
	role := f.Props.GetString("role")
	if role == "" {
		role = content.RoleUser
	}

	blocks := col.childBlocks(f)
	if len(blocks) == 0 {
		if v, ok := f.Props.Get("content"); ok {
			blocks = blocksOf(v)
		}
	}

	renderer := f.Props.GetString("renderer")
	if renderer == "" {
		renderer = col.currentRenderer()
	}

	if role == content.RoleSystem {
		col.out.SystemMessageItems = append(col.out.SystemMessageItems, content.SystemMessageItem{
			Index:  col.nextIndex(),
			Type:   content.SystemItemMessage,
			Blocks: blocks,
		})
		return
	}

	col.out.Timeline = append(col.out.Timeline, content.TimelineEntry{
		Kind:       content.EntryKindMessage,
		Message:    content.Message{Role: role, Content: blocks},
		Tags:       f.Props.GetStringSlice("tags"),
		Visibility: f.Props.GetString("visibility"),
		Metadata:   f.Props.GetMap("metadata"),
		Renderer:   renderer,
	})
}

// collectTool records a tool declaration. Re-declaring a name within one pass
// keeps the first position and the last definition.
func (col *collector) collectTool(f *Fiber) {
	def, ok := toolDefOf(f.Props, col.model)
	if !ok {
		col.log.Warn("tool declaration without a resolvable definition is skipped")
		return
	}
	for i, t := range col.out.Tools {
		if t.Name == def.Name {
			col.out.Tools[i].Definition = def
			return
		}
	}
	col.out.Tools = append(col.out.Tools, content.ToolEntry{Name: def.Name, Definition: def})
}

func (col *collector) collectEphemeral(f *Fiber) {
	blocks := col.childBlocks(f)
	if len(blocks) == 0 {
		if v, ok := f.Props.Get("content"); ok {
			blocks = blocksOf(v)
		}
	}

	renderer := f.Props.GetString("renderer")
	if renderer == "" {
		renderer = col.currentRenderer()
	}

	col.out.Ephemeral = append(col.out.Ephemeral, content.EphemeralItem{
		ID:       f.Props.GetString("id"),
		Type:     f.Props.GetString("type"),
		Position: f.Props.GetString("position"),
		Order:    f.Props.GetInt("order"),
		Content:  blocks,
		Tags:     f.Props.GetStringSlice("tags"),
		Metadata: f.Props.GetMap("metadata"),
		Renderer: renderer,
	})
}

// collectMetadata folds a metadata node's entries into the pass metadata;
// last writer wins across the whole traversal.
func (col *collector) collectMetadata(f *Fiber) {
	for k, v := range f.Props.GetMap("entries") {
		col.out.Metadata[k] = v
	}
}

// childBlocks collects the subtree's blocks into a private sink. Nested
// structural nodes (tools, metadata, further sections) still register
// globally; only blocks are captured.
func (col *collector) childBlocks(f *Fiber) []content.Block {
	var blocks []content.Block
	prev := col.sink
	col.sink = &blocks
	col.visitChildren(f)
	col.sink = prev
	return blocks
}

// finish backfills section items with their fully merged content, which is
// only known once the whole tree has been walked.
func (col *collector) finish() {
	for i := range col.out.SystemMessageItems {
		item := &col.out.SystemMessageItems[i]
		if item.Type == content.SystemItemSection {
			if sec, ok := col.out.Sections[item.SectionID]; ok {
				item.Content = sec.Content
			}
		}
	}
}

func (col *collector) currentRenderer() string {
	for i := len(col.renderers) - 1; i >= 0; i-- {
		if col.renderers[i] != "" {
			return col.renderers[i]
		}
	}
	return ""
}

func (col *collector) nextIndex() int {
	n := col.index
	col.index++
	return n
}
