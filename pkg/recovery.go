// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"runtime/debug"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

// GoNamed starts a named goroutine with panic recovery and stack trace logging.
// The name is included in the log message for easier identification during debugging.
func GoNamed(logger log.Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("Goroutine %q panic recovered: %v\nStack: %s", name, r, string(debug.Stack()))
			}
		}()

		fn()
	}()
}
