// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

const ApplicationName = "attachment-storage"

// RedactPlaceholder is the replacement value for masked credentials in logged configuration.
const RedactPlaceholder = "REDACTED"
