// Package weft is a declarative, incremental context compiler for AI agents.
//
// An agent's context (system prompt sections, conversation timeline, tool
// declarations, transient notes) is expressed as a tree of components.
// Every tick, weft reconciles the tree against its previous version,
// preserving component instances and their state, runs lifecycle callbacks,
// and collects the result into a structured, provider-agnostic Compiled
// value.
//
// # Quick Start
//
// Install the CLI:
//
//	go install github.com/kadirpekel/weft/cmd/weft@latest
//
// Describe a context tree in YAML:
//
//	version: 1
//	root:
//	  - section:
//	      id: identity
//	      content: You are a helpful assistant.
//	  - message:
//	      role: user
//	      content: hello
//	  - tool:
//	      name: search
//	      description: Web search
//
// Compile it:
//
//	weft compile --tree agent.yaml
//
// # Using as Go Library
//
// Import the facade for convenience:
//
//	import weft "github.com/kadirpekel/weft/pkg"
//
// Or import specific packages:
//
//	import (
//	    "github.com/kadirpekel/weft/pkg/compile"
//	    "github.com/kadirpekel/weft/pkg/content"
//	    "github.com/kadirpekel/weft/pkg/runtime"
//	)
//
// # Key Concepts
//
//   - **Elements** are immutable tree nodes, rebuilt every render
//   - **Fibers** mirror elements across ticks and own component instances
//   - **Hooks** give function components positional state and effects
//   - **The stabilizer** re-runs compile passes until no component requests
//     another one
//   - **The collector** turns the reconciled tree into sections, a timeline,
//     tools, ephemeral items and metadata
//
// # License
//
// AGPL-3.0 - See LICENSE.md for details.
package weft
