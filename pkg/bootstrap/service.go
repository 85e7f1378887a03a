// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"

	"github.com/LerianStudio/attachment-storage/pkg"
	"github.com/LerianStudio/attachment-storage/pkg/attachment"
	"github.com/LerianStudio/attachment-storage/pkg/storage"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"go.opentelemetry.io/otel/trace"
)

// Service is the glue holding the wired attachment adapter and its resources.
type Service struct {
	Adapter *attachment.Adapter
	log.Logger
	tracer        trace.Tracer
	healthMonitor *storage.HealthMonitor
	cleanups      []func()
}

// Context returns ctx carrying the service logger and tracer, ready to be
// passed to adapter operations.
func (app *Service) Context(ctx context.Context) context.Context {
	return pkg.ContextWithTracking(ctx, app.Logger, app.tracer)
}

// Hooks returns the lifecycle callbacks of the wired adapter.
func (app *Service) Hooks() attachment.Hooks {
	return app.Adapter.Hooks()
}

// HealthStatus reports the bucket and circuit breaker state, or nil when the
// circuit breaker is disabled.
func (app *Service) HealthStatus() map[string]string {
	if app.healthMonitor == nil {
		return nil
	}

	return app.healthMonitor.Status()
}

// Shutdown releases resources in reverse order of acquisition.
func (app *Service) Shutdown() {
	app.Info("Starting graceful shutdown...")

	for i := len(app.cleanups) - 1; i >= 0; i-- {
		app.cleanups[i]()
	}

	app.cleanups = nil

	app.Info("Graceful shutdown complete")
}
