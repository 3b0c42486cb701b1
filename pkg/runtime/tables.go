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
	"sync"

	"github.com/kadirpekel/weft/pkg/content"
)

type refTable struct {
	mu   sync.RWMutex
	refs map[string]any
}

func newRefTable() *refTable {
	return &refTable{refs: make(map[string]any)}
}

func (t *refTable) set(name string, v any) {
	if name == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs[name] = v
}

func (t *refTable) remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.refs, name)
}

func (t *refTable) get(name string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.refs[name]
	return v, ok
}

type metaTable struct {
	mu   sync.RWMutex
	meta map[string]any
}

func newMetaTable() *metaTable {
	return &metaTable{meta: make(map[string]any)}
}

func (t *metaTable) set(key string, v any) {
	if key == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta[key] = v
}

func (t *metaTable) snapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]any, len(t.meta))
	for k, v := range t.meta {
		out[k] = v
	}
	return out
}

type compiledRef struct {
	mu sync.RWMutex
	c  *content.Compiled
}

func (r *compiledRef) set(c *content.Compiled) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c = c
}

func (r *compiledRef) get() *content.Compiled {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c
}

type recompileTracker struct {
	mu        sync.Mutex
	requested bool
	log       []string
}

func (t *recompileTracker) request(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requested = true
	if reason != "" {
		t.log = append(t.log, reason)
	}
}

func (t *recompileTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requested = false
	t.log = nil
}

func (t *recompileTracker) isRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requested
}

func (t *recompileTracker) reasons() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.log))
	copy(out, t.log)
	return out
}
