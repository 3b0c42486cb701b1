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
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Metrics records compile-loop and lifecycle metrics. The zero value is a
// disabled recorder whose methods are no-ops.
type Metrics struct {
	compilePasses     metric.Int64Counter
	compileDuration   metric.Float64Histogram
	recompileRequests metric.Int64Counter
	forcedStable      metric.Int64Counter
	lifecycleCalls    metric.Int64Counter
	lifecycleErrors   metric.Int64Counter
	lifecycleDuration metric.Float64Histogram
}

// InitMetrics builds the meter instruments backed by a Prometheus exporter.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{}, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)
	meter := meterProvider.Meter("weft")

	m := &Metrics{}

	m.compilePasses, err = meter.Int64Counter(
		"weft_compile_passes_total",
		metric.WithDescription("Total compile passes run"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compile passes counter: %w", err)
	}

	m.compileDuration, err = meter.Float64Histogram(
		"weft_compile_duration_seconds",
		metric.WithDescription("Compile pass duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compile duration histogram: %w", err)
	}

	m.recompileRequests, err = meter.Int64Counter(
		"weft_recompile_requests_total",
		metric.WithDescription("Total recompile requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recompile requests counter: %w", err)
	}

	m.forcedStable, err = meter.Int64Counter(
		"weft_forced_stable_total",
		metric.WithDescription("Compile loops terminated at the iteration bound"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create forced stable counter: %w", err)
	}

	m.lifecycleCalls, err = meter.Int64Counter(
		"weft_lifecycle_calls_total",
		metric.WithDescription("Total component lifecycle invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle calls counter: %w", err)
	}

	m.lifecycleErrors, err = meter.Int64Counter(
		"weft_lifecycle_errors_total",
		metric.WithDescription("Total component lifecycle errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle errors counter: %w", err)
	}

	m.lifecycleDuration, err = meter.Float64Histogram(
		"weft_lifecycle_duration_seconds",
		metric.WithDescription("Component lifecycle invocation duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle duration histogram: %w", err)
	}

	return m, nil
}

// ServeMetrics exposes the Prometheus scrape endpoint; it blocks.
func ServeMetrics(cfg MetricsConfig) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), mux)
}

// RecordCompilePass records one compile pass.
func (m *Metrics) RecordCompilePass(ctx context.Context, duration time.Duration) {
	if m == nil || m.compilePasses == nil {
		return
	}
	m.compilePasses.Add(ctx, 1)
	m.compileDuration.Record(ctx, duration.Seconds())
}

// RecordRecompileRequests records recompile requests accumulated over a tick.
func (m *Metrics) RecordRecompileRequests(ctx context.Context, n int) {
	if m == nil || m.recompileRequests == nil || n <= 0 {
		return
	}
	m.recompileRequests.Add(ctx, int64(n))
}

// RecordForcedStable records a loop that hit the iteration bound.
func (m *Metrics) RecordForcedStable(ctx context.Context) {
	if m == nil || m.forcedStable == nil {
		return
	}
	m.forcedStable.Add(ctx, 1)
}

// RecordLifecycle records one lifecycle invocation.
func (m *Metrics) RecordLifecycle(ctx context.Context, component, phase string, duration time.Duration, err error) {
	if m == nil || m.lifecycleCalls == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("phase", phase),
	)
	m.lifecycleCalls.Add(ctx, 1, attrs)
	m.lifecycleDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.lifecycleErrors.Add(ctx, 1, attrs)
	}
}
