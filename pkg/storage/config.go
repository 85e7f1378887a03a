// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"strconv"

	"github.com/LerianStudio/attachment-storage/pkg/constant"
)

// S3Config contains configuration for S3-compatible storage.
// Works with AWS S3, MinIO, SeaweedFS S3, and other S3-compatible services.
type S3Config struct {
	Endpoint          string // Empty for AWS; http://localhost:8333 for SeaweedFS
	Region            string // Default: us-east-1
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	UsePathStyle      bool   // Required for SeaweedFS/MinIO
	ProxyURL          string // Optional HTTP proxy for every request
	DisableKeepAlives bool   // Non-persistent connections
}

// DefaultSeaweedS3Config returns a configuration suitable for local SeaweedFS S3 development.
func DefaultSeaweedS3Config(bucket string) S3Config {
	return S3Config{
		Endpoint:     "http://localhost:8333",
		Region:       constant.DefaultS3Region,
		Bucket:       bucket,
		UsePathStyle: true,
	}
}

// Endpoint builds the base URL of a custom S3 server.
// The port is omitted when it is unset or equals the scheme default.
func Endpoint(server string, port int, useSSL bool) string {
	return Scheme(useSSL) + "://" + server + PortSuffix(port, useSSL)
}

// Scheme returns "https" iff SSL is enabled.
func Scheme(useSSL bool) string {
	if useSSL {
		return "https"
	}

	return "http"
}

// PortSuffix returns ":<port>" unless port is zero or the default for the scheme.
func PortSuffix(port int, useSSL bool) string {
	defaultPort := constant.HTTPDefaultPort
	if useSSL {
		defaultPort = constant.HTTPSDefaultPort
	}

	if port == 0 || port == defaultPort {
		return ""
	}

	return ":" + strconv.Itoa(port)
}

// String renders the configuration without credentials.
func (cfg S3Config) String() string {
	return fmt.Sprintf("S3Config{Endpoint:%q Region:%q Bucket:%q UsePathStyle:%t ProxyConfigured:%t DisableKeepAlives:%t}",
		cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.UsePathStyle, cfg.ProxyURL != "", cfg.DisableKeepAlives)
}
