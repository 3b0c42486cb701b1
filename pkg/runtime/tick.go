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
	"context"

	"github.com/kadirpekel/weft/pkg/content"
)

// TickState describes one round of agent/model interaction. The engine builds
// one per tick and the compiler threads it through every render and lifecycle
// call.
type TickState struct {
	// Tick is the 1-based tick counter.
	Tick int

	// Stop asks the engine to end the execution after this tick.
	Stop func()

	// QueuedMessages are messages submitted while the previous tick ran.
	QueuedMessages []content.Message

	// Previous and Current carry engine-owned invocation state; opaque here.
	Previous any
	Current  any

	// Err is the error that interrupted the previous tick, if any.
	Err error
}

type tickKey struct{}

// WithTick attaches the tick state to a context for lifecycle callbacks that
// only receive a context.
func WithTick(ctx context.Context, t *TickState) context.Context {
	return context.WithValue(ctx, tickKey{}, t)
}

// TickFrom returns the tick state carried by ctx, or nil.
func TickFrom(ctx context.Context) *TickState {
	t, _ := ctx.Value(tickKey{}).(*TickState)
	return t
}
