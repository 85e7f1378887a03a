// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

//go:build unit

package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LerianStudio/attachment-storage/pkg/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type probedStore struct {
	*MockObjectStorage
	healthy atomic.Bool
	checks  atomic.Int32
}

func (p *probedStore) HealthCheck(context.Context) error {
	p.checks.Add(1)

	if !p.healthy.Load() {
		return errors.New("bucket unreachable")
	}

	return nil
}

func newProbedStore(t *testing.T) *probedStore {
	t.Helper()

	return &probedStore{MockObjectStorage: newMockStore(t)}
}

func TestHealthMonitor_ResetsBreakerWhenBucketRecovers(t *testing.T) {
	t.Parallel()

	next := newProbedStore(t)
	store := NewBreakerStorage(next, nil)

	next.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("timeout")).Times(constant.CircuitBreakerThreshold)

	for i := 0; i < constant.CircuitBreakerThreshold; i++ {
		require.Error(t, store.Delete(context.Background(), "key"))
	}

	require.Equal(t, constant.CircuitBreakerStateOpen, store.State())

	monitor := NewHealthMonitor(store, nil, time.Minute)

	assert.False(t, monitor.Check())
	assert.Equal(t, constant.CircuitBreakerStateOpen, store.State())

	next.healthy.Store(true)

	assert.True(t, monitor.Check())
	assert.Equal(t, constant.CircuitBreakerStateClosed, store.State())
	assert.Equal(t, map[string]string{"bucket": "attachments", "circuit_breaker": "closed"}, monitor.Status())
}

func TestHealthMonitor_StartStop(t *testing.T) {
	t.Parallel()

	next := newProbedStore(t)
	next.healthy.Store(true)

	monitor := NewHealthMonitor(NewBreakerStorage(next, nil), nil, 5*time.Millisecond)
	monitor.Start()

	assert.Eventually(t, func() bool { return next.checks.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	monitor.Stop()
	monitor.Stop()

	checks := next.checks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, checks, next.checks.Load())
}
