// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"go.opentelemetry.io/otel/trace"
)

// ContextWithTracking attaches logger and tracer to ctx in the lib-commons
// tracking value, readable with libCommons.NewTrackingFromContext.
// The parent's value is copied, never mutated, so contexts derived for
// concurrent calls do not leak loggers into each other.
func ContextWithTracking(ctx context.Context, logger log.Logger, tracer trace.Tracer) context.Context {
	values := &libCommons.CustomContextKeyValue{}

	if parent, ok := ctx.Value(libCommons.CustomContextKey).(*libCommons.CustomContextKeyValue); ok && parent != nil {
		*values = *parent
	}

	values.Logger = logger
	values.Tracer = tracer

	return context.WithValue(ctx, libCommons.CustomContextKey, values)
}
