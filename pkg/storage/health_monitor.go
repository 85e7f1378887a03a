// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/attachment-storage/pkg"
	"github.com/LerianStudio/attachment-storage/pkg/constant"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

// HealthMonitor periodically probes the bucket and closes the circuit breaker
// once the bucket answers again.
type HealthMonitor struct {
	storage  *BreakerStorage
	logger   log.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHealthMonitor creates a monitor for storage. A non-positive interval uses HealthCheckInterval.
func NewHealthMonitor(storage *BreakerStorage, logger log.Logger, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = constant.HealthCheckInterval
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &HealthMonitor{
		storage:  storage,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the check loop in a separate goroutine.
func (hm *HealthMonitor) Start() {
	hm.wg.Add(1)

	pkg.GoNamed(hm.logger, "storage-health-monitor", func() {
		defer hm.wg.Done()

		hm.loop()
	})

	hm.logger.Infof("Storage health monitor started - checking bucket %s every %v", hm.storage.Bucket(), hm.interval)
}

// Stop ends the loop and waits for it. Safe to call more than once.
func (hm *HealthMonitor) Stop() {
	hm.stopOnce.Do(func() {
		close(hm.stopChan)
	})

	hm.wg.Wait()
	hm.logger.Info("Storage health monitor stopped")
}

func (hm *HealthMonitor) loop() {
	ticker := time.NewTicker(hm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hm.Check()
		case <-hm.stopChan:
			return
		}
	}
}

// Check probes the bucket once and reports whether it answered.
// An open breaker is reset when the probe succeeds.
func (hm *HealthMonitor) Check() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constant.HealthCheckTimeout)
	defer cancel()

	if err := hm.storage.HealthCheck(ctx); err != nil {
		hm.logger.Warnf("Bucket %s health check failed (CB: %s): %v", hm.storage.Bucket(), hm.storage.State(), err)

		return false
	}

	if !hm.storage.IsHealthy() {
		hm.storage.Reset()
		hm.logger.Infof("Bucket %s reachable again - circuit breaker reset", hm.storage.Bucket())
	}

	return true
}

// Status renders the bucket and breaker state.
func (hm *HealthMonitor) Status() map[string]string {
	return map[string]string{
		"bucket":          hm.storage.Bucket(),
		"circuit_breaker": hm.storage.State(),
	}
}
