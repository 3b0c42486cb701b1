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

// Package testutils provides testing utilities for the weft compiler.
package testutils

import (
	"context"
	"time"

	"github.com/kadirpekel/weft/pkg/compile"
	"github.com/kadirpekel/weft/pkg/runtime"
)

// TestContext returns a context with a 5 second timeout for testing.
func TestContext() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = cancel // Context is cancelled by the timeout.
	return ctx
}

// TestTree returns a small valid element tree exercising sections, messages
// and a tool declaration.
func TestTree() *compile.Element {
	return compile.Fragment(
		compile.SectionEl("identity", compile.P("content", "You are a test assistant")),
		compile.MessageEl("user", compile.P("content", "test input")),
		compile.ToolEl(&runtime.ToolDef{Name: "test_tool", Description: "A test tool"}),
	)
}

// TestToolDef returns a minimal valid tool definition for testing.
func TestToolDef() *runtime.ToolDef {
	return &runtime.ToolDef{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
		},
	}
}

// MockComponent implements compile.Component and the common lifecycle
// capabilities with overridable behavior.
type MockComponent struct {
	RenderFunc  func(ctx context.Context, rc *compile.RenderContext) (*compile.Element, error)
	RenderDelay time.Duration
	RenderError error

	// Calls logs lifecycle invocations in order.
	Calls []string
}

// NewMockComponent creates a mock that renders a fixed text block.
func NewMockComponent() *MockComponent {
	return &MockComponent{
		RenderFunc: func(ctx context.Context, rc *compile.RenderContext) (*compile.Element, error) {
			return compile.Text("mock output"), nil
		},
	}
}

// Render implements compile.Component.
func (m *MockComponent) Render(ctx context.Context, rc *compile.RenderContext) (*compile.Element, error) {
	m.Calls = append(m.Calls, "render")

	if m.RenderDelay > 0 {
		select {
		case <-time.After(m.RenderDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.RenderError != nil {
		return nil, m.RenderError
	}
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, rc)
	}
	return compile.Text("mock output"), nil
}

// OnMount implements compile.Mounter.
func (m *MockComponent) OnMount(ctx context.Context, rc *compile.RenderContext) error {
	m.Calls = append(m.Calls, "mount")
	return nil
}

// OnUnmount implements compile.Unmounter.
func (m *MockComponent) OnUnmount(ctx context.Context) error {
	m.Calls = append(m.Calls, "unmount")
	return nil
}

// OnTickStart implements compile.TickStarter.
func (m *MockComponent) OnTickStart(ctx context.Context, rc *compile.RenderContext) error {
	m.Calls = append(m.Calls, "tickStart")
	return nil
}

// OnTickEnd implements compile.TickEnder.
func (m *MockComponent) OnTickEnd(ctx context.Context, rc *compile.RenderContext) error {
	m.Calls = append(m.Calls, "tickEnd")
	return nil
}

// CallCount returns how many times an event was logged.
func (m *MockComponent) CallCount(event string) int {
	n := 0
	for _, c := range m.Calls {
		if c == event {
			n++
		}
	}
	return n
}
