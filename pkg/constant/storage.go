// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

const (
	// DefaultS3ConfigPath is the bucket configuration file read when no path is configured.
	DefaultS3ConfigPath = "config/s3_images.yml"

	// DefaultS3Hostname is used for bucket URLs when the configuration has no server.
	DefaultS3Hostname = "s3.amazonaws.com"

	// DefaultS3Region is used when the configuration has no region.
	DefaultS3Region = "us-east-1"

	// DefaultEnvName selects the configuration section when ENV_NAME is unset.
	DefaultEnvName = "development"

	// PathIDWidth is the minimum number of digits a record id is padded to.
	PathIDWidth = 8

	// PathSegmentSize is the number of digits in each key path segment.
	PathSegmentSize = 4

	// HTTPSDefaultPort and HTTPDefaultPort are omitted from generated URLs.
	HTTPSDefaultPort = 443
	HTTPDefaultPort  = 80
)

// Circuit breaker settings for object store calls.
const (
	CircuitBreakerMaxRequests = 3
	CircuitBreakerInterval    = 60 * time.Second
	CircuitBreakerTimeout     = 30 * time.Second
	CircuitBreakerThreshold   = 5

	// CircuitBreakerMinRequests is the sample size before the failure ratio can trip the breaker.
	CircuitBreakerMinRequests = 10
	CircuitBreakerFailureRate = 0.5
)

// Circuit breaker states as reported by health status.
const (
	CircuitBreakerStateClosed   = "closed"
	CircuitBreakerStateOpen     = "open"
	CircuitBreakerStateHalfOpen = "half-open"
)

const (
	HealthCheckInterval = 30 * time.Second
	HealthCheckTimeout  = 5 * time.Second
)
