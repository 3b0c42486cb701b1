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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/weft/pkg/compile"
)

// Lifecycle is the compile.Instrumenter that spans and meters every component
// lifecycle invocation. Either tracer or metrics may be nil.
type Lifecycle struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewLifecycle builds a lifecycle instrumenter.
func NewLifecycle(tracer trace.Tracer, metrics *Metrics) *Lifecycle {
	return &Lifecycle{tracer: tracer, metrics: metrics}
}

// WrapLifecycle implements compile.Instrumenter.
func (l *Lifecycle) WrapLifecycle(component, phase string, fn compile.LifecycleFunc) compile.LifecycleFunc {
	return func(ctx context.Context) error {
		var span trace.Span
		if l.tracer != nil {
			ctx, span = l.tracer.Start(ctx, "component."+phase,
				trace.WithAttributes(
					attribute.String("weft.component", component),
					attribute.String("weft.phase", phase),
				),
			)
			defer span.End()
		}

		start := time.Now()
		err := fn(ctx)
		l.metrics.RecordLifecycle(ctx, component, phase, time.Since(start), err)

		if span != nil && err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
