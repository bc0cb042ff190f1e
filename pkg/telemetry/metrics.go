// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
)

// RegistryMetrics tracks registry operation counts, failures, and card fetch
// latency for production monitoring.
type RegistryMetrics struct {
	// opCounter tracks completed operations by name and outcome.
	opCounter metric.Int64Counter

	// errorCounter tracks failures by operation and error code.
	errorCounter metric.Int64Counter

	// fetchDuration tracks outbound card fetch latency.
	fetchDuration metric.Float64Histogram
}

// NewRegistryMetrics creates a registry metrics tracker with OTEL meters.
func NewRegistryMetrics() (*RegistryMetrics, error) {
	meter := otel.Meter("agentdir/registry")

	opCounter, err := meter.Int64Counter(
		"agentdir.registry.operations",
		metric.WithDescription("Completed registry operations by name and outcome"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"agentdir.registry.errors",
		metric.WithDescription("Registry operation failures by error code"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"agentdir.fetch.duration",
		metric.WithDescription("Agent card fetch latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RegistryMetrics{
		opCounter:     opCounter,
		errorCounter:  errorCounter,
		fetchDuration: fetchDuration,
	}, nil
}

// RecordOperation records a completed registry operation. Nil receivers are
// safe so metrics stay optional.
func (m *RegistryMetrics) RecordOperation(ctx context.Context, op string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("code", string(agentdirerrors.Code(err))),
		))
	}
	m.opCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordFetch records the latency of one outbound card fetch.
func (m *RegistryMetrics) RecordFetch(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.fetchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
