// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/LerianStudio/attachment-storage/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen indicates the bucket is failing fast after repeated errors.
var ErrCircuitOpen = errors.New("object storage circuit breaker open")

// HealthChecker is implemented by stores that can probe their bucket.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BreakerStorage guards an ObjectStorage with a per-bucket circuit breaker.
// Every call is attempted once. A missing object is a normal answer and never
// counts as a breaker failure.
type BreakerStorage struct {
	next    ObjectStorage
	logger  log.Logger
	mu      sync.RWMutex
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStorage wraps next. logger receives breaker state changes.
func NewBreakerStorage(next ObjectStorage, logger log.Logger) *BreakerStorage {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	b := &BreakerStorage{
		next:   next,
		logger: logger,
	}
	b.breaker = gobreaker.NewCircuitBreaker(b.settings())

	return b
}

func (b *BreakerStorage) settings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        fmt.Sprintf("storage-%s", b.next.Bucket()),
		MaxRequests: constant.CircuitBreakerMaxRequests,
		Interval:    constant.CircuitBreakerInterval,
		Timeout:     constant.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= constant.CircuitBreakerThreshold {
				return true
			}

			if counts.Requests < constant.CircuitBreakerMinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= constant.CircuitBreakerFailureRate
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrObjectNotFound) ||
				errors.Is(err, ErrKeyRequired) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Warnf("Circuit Breaker [%s] state changed: %s -> %s", name, from.String(), to.String())

			switch to {
			case gobreaker.StateOpen:
				b.logger.Errorf("Circuit Breaker [%s] OPENED - bucket is unhealthy, requests will fast-fail", name)
			case gobreaker.StateHalfOpen:
				b.logger.Infof("Circuit Breaker [%s] HALF-OPEN - testing bucket recovery", name)
			case gobreaker.StateClosed:
				b.logger.Infof("Circuit Breaker [%s] CLOSED - bucket is healthy", name)
			}
		},
	}
}

func (b *BreakerStorage) current() *gobreaker.CircuitBreaker {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.breaker
}

// Bucket returns the wrapped store's bucket.
func (b *BreakerStorage) Bucket() string {
	return b.next.Bucket()
}

// State returns the breaker state as closed, open or half-open.
func (b *BreakerStorage) State() string {
	switch b.current().State() {
	case gobreaker.StateOpen:
		return constant.CircuitBreakerStateOpen
	case gobreaker.StateHalfOpen:
		return constant.CircuitBreakerStateHalfOpen
	default:
		return constant.CircuitBreakerStateClosed
	}
}

// IsHealthy reports false only while the breaker is open.
func (b *BreakerStorage) IsHealthy() bool {
	return b.current().State() != gobreaker.StateOpen
}

// Counts returns the request counters of the current breaker generation.
func (b *BreakerStorage) Counts() gobreaker.Counts {
	return b.current().Counts()
}

// Reset closes the breaker by replacing it.
func (b *BreakerStorage) Reset() {
	b.logger.Infof("Manually resetting circuit breaker for bucket: %s", b.next.Bucket())

	b.mu.Lock()
	defer b.mu.Unlock()

	b.breaker = gobreaker.NewCircuitBreaker(b.settings())
}

// HealthCheck probes the bucket directly, bypassing the breaker.
func (b *BreakerStorage) HealthCheck(ctx context.Context) error {
	checker, ok := b.next.(HealthChecker)
	if !ok {
		return nil
	}

	return checker.HealthCheck(ctx)
}

func (b *BreakerStorage) Write(ctx context.Context, key string, body io.Reader, contentType, acl string) error {
	return b.execute(ctx, "write", key, func() error {
		return b.next.Write(ctx, key, body, contentType, acl)
	})
}

func (b *BreakerStorage) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	var body io.ReadCloser

	err := b.execute(ctx, "read", key, func() error {
		var err error

		body, err = b.next.Read(ctx, key)

		return err
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (b *BreakerStorage) Delete(ctx context.Context, key string) error {
	return b.execute(ctx, "delete", key, func() error {
		return b.next.Delete(ctx, key)
	})
}

func (b *BreakerStorage) Move(ctx context.Context, oldKey, newKey, acl string) error {
	return b.execute(ctx, "move", oldKey, func() error {
		return b.next.Move(ctx, oldKey, newKey, acl)
	})
}

func (b *BreakerStorage) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool

	err := b.execute(ctx, "exists", key, func() error {
		var err error

		exists, err = b.next.Exists(ctx, key)

		return err
	})

	return exists, err
}

// PresignedURL signs locally and is not routed through the breaker.
func (b *BreakerStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return b.next.PresignedURL(ctx, key, expiry)
}

func (b *BreakerStorage) execute(ctx context.Context, operation, key string, fn func() error) error {
	_, err := b.current().Execute(func() (any, error) {
		return nil, fn()
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		libCommons.NewLoggerFromContext(ctx).Warnf("Circuit breaker [%s] rejected %s of %s: %v", b.next.Bucket(), operation, key, err)

		return fmt.Errorf("%w: bucket %s: %w", ErrCircuitOpen, b.next.Bucket(), err)
	}

	return err
}

var (
	_ ObjectStorage = (*BreakerStorage)(nil)
	_ HealthChecker = (*BreakerStorage)(nil)
	_ HealthChecker = (*S3Client)(nil)
)
