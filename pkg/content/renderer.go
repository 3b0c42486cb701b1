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

// Renderer formats content blocks for a specific model provider or output
// surface. The compiler only threads renderer names through the tree; actual
// formatting implementations live with the invocation engine.
type Renderer interface {
	// Name identifies the renderer; blocks collected under it carry this name.
	Name() string

	// Format renders one block. Implementations decide the target shape.
	Format(b Block) (string, error)
}
