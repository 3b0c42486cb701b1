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

// Package signal provides minimal reactive value cells with subscriber
// notification. The compiler uses them for component-local state and for
// mirroring props into long-lived component instances.
package signal

import (
	"reflect"
	"sync"
)

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Signal is a reactive value cell. Subscribers are invoked synchronously, in
// subscription order, from the goroutine that calls Set.
type Signal[T any] struct {
	mu     sync.Mutex
	value  T
	subs   []subscriber[T]
	nextID int
}

// New creates a signal holding an initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores a new value and notifies subscribers. Setting a value deep-equal
// to the current one is a no-op and does not notify.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	if reflect.DeepEqual(s.value, v) {
		s.mu.Unlock()
		return
	}
	s.value = v
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn for value changes and returns an unsubscribe func.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Close drops all subscribers. Called when the owning instance unmounts.
func (s *Signal[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = nil
}
