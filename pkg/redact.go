// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"net/url"
	"strings"

	"github.com/LerianStudio/attachment-storage/pkg/constant"
)

// visibleSecretSuffix is how many trailing characters RedactSecret keeps.
const visibleSecretSuffix = 4

// RedactConnectionString masks credentials in a URI such as an HTTP proxy address.
// It replaces the username and password with "REDACTED" to prevent accidental
// credential leakage in logs. Returns "[invalid-uri]" if parsing fails.
func RedactConnectionString(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "[invalid-uri]"
	}

	if u.User != nil {
		u.User = url.UserPassword(constant.RedactPlaceholder, constant.RedactPlaceholder)
	}

	return u.String()
}

// RedactSecret masks an access key or secret, keeping only the last characters
// for correlation. Short values are masked entirely.
func RedactSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= visibleSecretSuffix*2 {
		return constant.RedactPlaceholder
	}

	return constant.RedactPlaceholder + "..." + secret[len(secret)-visibleSecretSuffix:]
}

// RedactedFields returns a copy of fields with every key that looks like a
// credential masked through RedactSecret.
func RedactedFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))

	for key, value := range fields {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "secret") || strings.Contains(lower, "access_key") || strings.Contains(lower, "password") {
			out[key] = RedactSecret(value)
			continue
		}

		out[key] = value
	}

	return out
}
