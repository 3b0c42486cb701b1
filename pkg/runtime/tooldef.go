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

package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ToolDef declares a callable tool to the model. Execution is the engine's
// concern; the compiler only registers and de-duplicates declarations.
type ToolDef struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty" yaml:"input_schema,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewToolDef builds a tool declaration whose input schema is derived from the
// Args struct via jsonschema struct tags.
//
// Supported tags:
//   - json:"name" - parameter name
//   - json:",omitempty" - optional parameter
//   - jsonschema:"required" - explicitly mark as required
//   - jsonschema:"description=..." - parameter description
//   - jsonschema:"enum=a|b" - allowed values
//   - jsonschema:"minimum=N,maximum=M" - numeric constraints
//
// Example:
//
//	type SearchArgs struct {
//	    Query string `json:"query" jsonschema:"required,description=Search query"`
//	    Limit int    `json:"limit,omitempty" jsonschema:"default=10,minimum=1"`
//	}
//	def, err := runtime.NewToolDef[SearchArgs]("search", "Search the corpus")
func NewToolDef[Args any](name, description string) (*ToolDef, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}

	schema, err := generateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for tool '%s': %w", name, err)
	}

	return &ToolDef{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, nil
}

// MustToolDef is NewToolDef that panics on error, for static declarations.
func MustToolDef[Args any](name, description string) *ToolDef {
	def, err := NewToolDef[Args](name, description)
	if err != nil {
		panic(err)
	}
	return def
}

// generateSchema creates a JSON schema map from a Go type using struct tags.
func generateSchema[T any]() (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		// Use jsonschema tags to determine required fields
		RequiredFromJSONSchemaTags: true,

		// Don't add $ref for definitions (inline everything)
		ExpandedStruct: true,

		// Don't add $schema and $id
		DoNotReference: true,
	}

	schema := reflector.Reflect(new(T))

	schemaMap, err := schemaToMap(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to convert schema to map: %w", err)
	}

	// Model providers expect a bare object schema: type, properties, required.
	if schemaMap["type"] == "object" {
		result := map[string]any{
			"type": "object",
		}
		if props, ok := schemaMap["properties"]; ok {
			result["properties"] = props
		}
		if required, ok := schemaMap["required"]; ok {
			result["required"] = required
		}
		if addProps, ok := schemaMap["additionalProperties"]; ok {
			result["additionalProperties"] = addProps
		}
		return result, nil
	}

	return schemaMap, nil
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
