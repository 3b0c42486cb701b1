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

package instrument

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestWrapLifecyclePassesThrough(t *testing.T) {
	l := NewLifecycle(nil, nil)

	called := false
	fn := l.WrapLifecycle("comp", "onMount", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, fn(context.Background()))
	assert.True(t, called)
}

func TestWrapLifecyclePropagatesError(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	l := NewLifecycle(tracer, &Metrics{})

	want := errors.New("lifecycle failed")
	fn := l.WrapLifecycle("comp", "onTickStart", func(ctx context.Context) error {
		return want
	})
	assert.ErrorIs(t, fn(context.Background()), want)
}

func TestInitTracerDisabledIsNoop(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{Enabled: false})
	require.NoError(t, err)
	assert.NotNil(t, tp)
}

func TestInitMetricsDisabledIsNoop(t *testing.T) {
	m, err := InitMetrics(context.Background(), MetricsConfig{Enabled: false})
	require.NoError(t, err)

	// Disabled recorder methods are no-ops, never panics.
	m.RecordCompilePass(context.Background(), 0)
	m.RecordLifecycle(context.Background(), "comp", "onMount", 0, nil)
	m.RecordForcedStable(context.Background())
}
