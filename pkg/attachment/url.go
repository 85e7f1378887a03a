// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import (
	"strings"

	"github.com/LerianStudio/attachment-storage/pkg/storage"
)

// URLBuilder renders public URLs for stored attachments. It performs no I/O.
// Protocol, host and port are fixed when the builder is created.
type URLBuilder struct {
	protocol           string
	hostname           string
	portString         string
	bucket             string
	distributionDomain string
	pathPrefix         string
}

// NewURLBuilder derives the URL parts from cfg for bucket.
func NewURLBuilder(cfg *Config, bucket, pathPrefix string) *URLBuilder {
	return &URLBuilder{
		protocol:           storage.Scheme(cfg.UseSSL) + "://",
		hostname:           cfg.Hostname(),
		portString:         storage.PortSuffix(cfg.Port, cfg.UseSSL),
		bucket:             bucket,
		distributionDomain: cfg.DistributionDomain,
		pathPrefix:         pathPrefix,
	}
}

// Protocol returns "https://" when SSL is enabled and "http://" otherwise.
func (b *URLBuilder) Protocol() string { return b.protocol }

// Hostname returns the S3 host used in bucket URLs.
func (b *URLBuilder) Hostname() string { return b.hostname }

// PortString is empty for an unset or default port, ":<port>" otherwise.
func (b *URLBuilder) PortString() string { return b.portString }

// DistributionDomain returns the CDN host, empty when none is configured.
func (b *URLBuilder) DistributionDomain() string { return b.distributionDomain }

// FullFilename returns the storage path of record's variant.
func (b *URLBuilder) FullFilename(record Record, variant string) (string, error) {
	return BuildFilePath(b.pathPrefix, pathID(record), record.VariantFilename(variant))
}

// S3URL returns the virtual-host style bucket URL of record's variant.
func (b *URLBuilder) S3URL(record Record, variant string) (string, error) {
	fullFilename, err := b.FullFilename(record, variant)
	if err != nil {
		return "", err
	}

	return b.protocol + b.bucket + "." + b.hostname + b.portString + "/" + StorageKey(fullFilename), nil
}

// CloudfrontURL returns the distribution URL of record's variant.
func (b *URLBuilder) CloudfrontURL(record Record, variant string) (string, error) {
	fullFilename, err := b.FullFilename(record, variant)
	if err != nil {
		return "", err
	}

	return "http://" + b.distributionDomain + "/" + StorageKey(fullFilename), nil
}

// joinVariants concatenates variant arguments into a single variant name.
func joinVariants(variants []string) string {
	return strings.Join(variants, "")
}
