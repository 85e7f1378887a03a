// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the attachment storage OTel instruments.
// All fields are non-nil after NewMetrics or NoopMetrics.
type Metrics struct {
	// UploadsTotal counts objects written to the store.
	UploadsTotal metric.Int64Counter

	// RenamesTotal counts objects moved after a filename change.
	RenamesTotal metric.Int64Counter

	// DeletesTotal counts delete calls, including already-missing objects.
	DeletesTotal metric.Int64Counter

	// OperationErrorsTotal counts failed remote operations by operation name.
	OperationErrorsTotal metric.Int64Counter
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	uploadsTotal, err := meter.Int64Counter(
		"attachment_uploads_total",
		metric.WithDescription("Attachments written to the object store"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create attachment_uploads_total counter: %w", err)
	}

	renamesTotal, err := meter.Int64Counter(
		"attachment_renames_total",
		metric.WithDescription("Attachments moved to a new key after a filename change"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create attachment_renames_total counter: %w", err)
	}

	deletesTotal, err := meter.Int64Counter(
		"attachment_deletes_total",
		metric.WithDescription("Attachments deleted from the object store"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create attachment_deletes_total counter: %w", err)
	}

	operationErrorsTotal, err := meter.Int64Counter(
		"attachment_operation_errors_total",
		metric.WithDescription("Failed object store operations per operation"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create attachment_operation_errors_total counter: %w", err)
	}

	return &Metrics{
		UploadsTotal:         uploadsTotal,
		RenamesTotal:         renamesTotal,
		DeletesTotal:         deletesTotal,
		OperationErrorsTotal: operationErrorsTotal,
	}, nil
}

// NoopMetrics returns instruments that record nothing.
func NoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("noop")

	// noop meter never returns errors.
	uploadsTotal, _ := meter.Int64Counter("attachment_uploads_total")
	renamesTotal, _ := meter.Int64Counter("attachment_renames_total")
	deletesTotal, _ := meter.Int64Counter("attachment_deletes_total")
	operationErrorsTotal, _ := meter.Int64Counter("attachment_operation_errors_total")

	return &Metrics{
		UploadsTotal:         uploadsTotal,
		RenamesTotal:         renamesTotal,
		DeletesTotal:         deletesTotal,
		OperationErrorsTotal: operationErrorsTotal,
	}
}

func (m *Metrics) recordError(ctx context.Context, operation, bucket string) {
	m.OperationErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("bucket", bucket),
	))
}

func (m *Metrics) recordSuccess(ctx context.Context, counter metric.Int64Counter, bucket string) {
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("bucket", bucket)))
}
