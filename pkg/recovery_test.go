// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

//go:build unit

package pkg

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
)

func TestGoNamed_ExecutesFunction(t *testing.T) {
	t.Parallel()

	logger := &log.NoneLogger{}

	var executed atomic.Bool

	done := make(chan struct{})

	GoNamed(logger, "worker", func() {
		defer close(done)
		executed.Store(true)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not run")
	}

	assert.True(t, executed.Load(), "function should have been executed")
}

func TestGoNamed_RecoversPanic(t *testing.T) {
	t.Parallel()

	logger := &log.NoneLogger{}

	done := make(chan struct{})

	GoNamed(logger, "panicking-worker", func() {
		defer close(done)
		panic("test panic in GoNamed")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not complete - panic may not have been recovered")
	}
}
