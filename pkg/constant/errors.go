// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import (
	"errors"
)

// List of errors that can be returned.
// Standardized error codes shared by every attachment storage failure.
var (
	ErrConfigurationMissing = errors.New("ATT-0001")
	ErrRemoteStore          = errors.New("ATT-0002")
	ErrInvalidState         = errors.New("ATT-0003")
)
