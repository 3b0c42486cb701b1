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
	"context"
	"errors"
	"fmt"
)

// ComponentError wraps an error raised by a component's render or lifecycle
// callback, naming the component and phase.
type ComponentError struct {
	Component string
	Phase     string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("[%s:%s] %v", e.Component, e.Phase, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

func newComponentError(component, phase string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ComponentError
	if errors.As(err, &ce) {
		return err
	}
	return &ComponentError{Component: component, Phase: phase, Err: err}
}

// isCancellation reports whether err is a cancellation-class error. Unmount
// suppresses these: the execution is already aborting.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
