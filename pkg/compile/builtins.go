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
	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// Built-in host tags. The collector matches them by tag string, which doubles
// as the cross-module name fallback: two packages constructing the same tag
// always collect the same way.
const (
	TagSection   = "section"
	TagMessage   = "message"
	TagTimeline  = "timeline"
	TagTool      = "tool"
	TagEphemeral = "ephemeral"
	TagRenderer  = "renderer"
	TagMetadata  = "metadata"
)

// SectionEl declares a named system-prompt section. Content comes from the
// reconciled children when present, else from the "content" prop.
func SectionEl(id string, props *Props, children ...*Element) *Element {
	if props == nil {
		props = NewProps()
	}
	props.Set("id", id)
	return H(TagSection, props, children...)
}

// MessageEl declares one conversational message. Role "system" is diverted
// into the system prompt instead of the timeline.
func MessageEl(role string, props *Props, children ...*Element) *Element {
	if props == nil {
		props = NewProps()
	}
	props.Set("role", role)
	return H(TagMessage, props, children...)
}

// TimelineEl is a transparent grouping node for messages.
func TimelineEl(children ...*Element) *Element {
	return H(TagTimeline, nil, children...)
}

// ToolEl declares a tool. The definition may be a *runtime.ToolDef or the
// string name of a tool already registered on the shared model.
func ToolEl(definition any) *Element {
	return H(TagTool, P("definition", definition))
}

// EphemeralEl declares a transient note collected this pass only.
func EphemeralEl(props *Props, children ...*Element) *Element {
	return H(TagEphemeral, props, children...)
}

// RendererEl pushes a content renderer for the duration of its subtree:
// blocks collected underneath carry the renderer's name unless they name one
// themselves.
func RendererEl(r content.Renderer, children ...*Element) *Element {
	return H(TagRenderer, P("renderer", r), children...)
}

// RendererNameEl is RendererEl for a renderer known only by name.
func RendererNameEl(name string, children ...*Element) *Element {
	return H(TagRenderer, P("name", name), children...)
}

// MetadataEl contributes entries to the compiled metadata map; last writer
// wins across the whole pass.
func MetadataEl(entries map[string]any) *Element {
	return H(TagMetadata, P("entries", entries))
}

// rendererNameOf extracts the renderer name from a renderer-wrapper fiber.
func rendererNameOf(props *Props) string {
	if name := props.GetString("name"); name != "" {
		return name
	}
	if v, ok := props.Get("renderer"); ok {
		switch r := v.(type) {
		case content.Renderer:
			return r.Name()
		case string:
			return r
		}
	}
	return ""
}

// toolDefOf resolves a tool node's definition against the shared model.
func toolDefOf(props *Props, model *runtime.Model) (*runtime.ToolDef, bool) {
	v, _ := props.Get("definition")
	switch d := v.(type) {
	case *runtime.ToolDef:
		return d, d != nil
	case runtime.ToolDef:
		return &d, true
	case string:
		if model == nil {
			return nil, false
		}
		return model.GetTool(d)
	}

	// Inline declaration via props.
	if name := props.GetString("name"); name != "" {
		return &runtime.ToolDef{
			Name:        name,
			Description: props.GetString("description"),
			InputSchema: props.GetMap("schema"),
			Metadata:    props.GetMap("metadata"),
		}, true
	}
	return nil, false
}
