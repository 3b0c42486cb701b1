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

// Package weft is a declarative context compiler for AI agents: component
// trees are reconciled incrementally each tick and collected into a
// structured, provider-agnostic context.
//
// This is the main entry point for the weft Go library. It re-exports the
// most commonly used types and functions from the sub-packages.
//
// # Quick Start
//
//	import weft "github.com/kadirpekel/weft/pkg"
//
//	model := weft.NewModel()
//	compiler := weft.NewCompiler(model)
//
//	tree := weft.Fragment(
//		weft.SectionEl("identity", weft.P("content", "You are a helpful assistant")),
//		weft.MessageEl("user", weft.P("content", "hello")),
//	)
//
//	res, err := compiler.CompileUntilStable(ctx, tree, &weft.TickState{Tick: 1})
//	// res.Compiled holds sections, timeline, tools, metadata
package weft

import (
	"github.com/kadirpekel/weft/pkg/compile"
	"github.com/kadirpekel/weft/pkg/content"
	"github.com/kadirpekel/weft/pkg/runtime"
	"github.com/kadirpekel/weft/pkg/treefile"
)

// Re-export commonly used types
type (
	// Tree building
	Element = compile.Element
	Props   = compile.Props

	// Components
	Component     = compile.Component
	RenderContext = compile.RenderContext
	Recovery      = compile.Recovery
	PassInfo      = compile.PassInfo

	// Compiler
	Compiler        = compile.Compiler
	StabilizeResult = compile.StabilizeResult

	// Shared model and tick state
	Model     = runtime.Model
	TickState = runtime.TickState
	ToolDef   = runtime.ToolDef

	// Compiled output
	Compiled = content.Compiled
	Section  = content.Section
	Message  = content.Message
	Block    = content.Block

	// Tree files
	Loader = treefile.Loader
)

// Re-export commonly used functions
var (
	// Tree building
	H            = compile.H
	F            = compile.F
	C            = compile.C
	FromInstance = compile.FromInstance
	Fragment     = compile.Fragment
	Text         = compile.Text
	Code         = compile.Code
	P            = compile.P

	// Built-in nodes
	SectionEl   = compile.SectionEl
	MessageEl   = compile.MessageEl
	TimelineEl  = compile.TimelineEl
	ToolEl      = compile.ToolEl
	EphemeralEl = compile.EphemeralEl
	RendererEl  = compile.RendererEl
	MetadataEl  = compile.MetadataEl

	// Compiler and model
	NewCompiler = compile.New
	NewModel    = runtime.NewModel

	// Tree files
	NewLoader = treefile.NewLoader
)
