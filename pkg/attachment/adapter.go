// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

// Package attachment stores record attachments in an S3-compatible bucket under
// keys derived from the record id, and builds public and signed URLs for them.
package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/LerianStudio/attachment-storage/pkg"
	"github.com/LerianStudio/attachment-storage/pkg/storage"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
)

// Adapter persists attachments of one model type.
// It holds no per-record state and is safe for concurrent use across records.
type Adapter struct {
	storage storage.ObjectStorage
	config  *Config
	options Options
	bucket  string
	urls    *URLBuilder
	metrics *Metrics
}

// AdapterOption customizes an Adapter at construction.
type AdapterOption func(*Adapter)

// WithMetrics records operation counts on m.
func WithMetrics(m *Metrics) AdapterOption {
	return func(a *Adapter) {
		if m != nil {
			a.metrics = m
		}
	}
}

// SignedURLOptions selects the variant and lifetime of an authenticated URL.
type SignedURLOptions struct {
	Variant string
	// ExpiresIn is truncated to whole seconds; zero keeps the client default.
	ExpiresIn time.Duration
}

// NewAdapter validates cfg and opts and resolves the model's bucket.
// client must already point at that bucket.
func NewAdapter(client storage.ObjectStorage, cfg *Config, opts Options, adapterOpts ...AdapterOption) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("object storage client is required")
	}

	if cfg == nil {
		return nil, pkg.NewConfigurationMissingError("bucket configuration", "", nil)
	}

	opts = cfg.WithDefaults(opts)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Cloudfront && cfg.DistributionDomain == "" {
		return nil, pkg.NewConfigurationMissingError("bucket configuration", "distribution_domain", nil)
	}

	bucket := cfg.ResolveBucket(opts.BucketKey)
	if client.Bucket() != bucket {
		return nil, fmt.Errorf("storage client bucket %q does not match resolved bucket %q", client.Bucket(), bucket)
	}

	adapter := &Adapter{
		storage: client,
		config:  cfg,
		options: opts,
		bucket:  bucket,
		urls:    NewURLBuilder(cfg, bucket, opts.PathPrefix),
		metrics: NoopMetrics(),
	}

	for _, opt := range adapterOpts {
		opt(adapter)
	}

	return adapter, nil
}

// Bucket returns the resolved bucket name.
func (a *Adapter) Bucket() string { return a.bucket }

// URLs returns the URL builder bound to this adapter's bucket.
func (a *Adapter) URLs() *URLBuilder { return a.urls }

// BasePath returns the directory that holds every variant of record.
func (a *Adapter) BasePath(record Record) (string, error) {
	return BuildBasePath(a.options.PathPrefix, pathID(record))
}

// FullFilename returns the storage path of record's variant; an empty variant is the original.
func (a *Adapter) FullFilename(record Record, variant string) (string, error) {
	return a.urls.FullFilename(record, variant)
}

func (a *Adapter) key(record Record, variant string) (string, error) {
	fullFilename, err := a.FullFilename(record, variant)
	if err != nil {
		return "", err
	}

	return StorageKey(fullFilename), nil
}

// Store uploads the record's staged bytes under its current key.
// The rename intent is cleared after a successful write or a vetoed save.
func (a *Adapter) Store(ctx context.Context, record Record) error {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "attachment.store")

	defer span.End()

	if decider, ok := record.(SaveDecider); ok && !decider.SaveAttachment() {
		record.ClearPreviousFilename()

		return nil
	}

	key, err := a.key(record, "")
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to build attachment key", err)

		return err
	}

	body, closeBody, err := openPayload(record)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to open attachment payload", err)

		return err
	}

	defer func() {
		if closeErr := closeBody(); closeErr != nil {
			logger.Warnf("failed to close attachment payload for %s: %v", key, closeErr)
		}
	}()

	if err := a.storage.Write(ctx, key, body, record.ContentType(), a.options.S3Access); err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to store attachment", err)
		a.metrics.recordError(ctx, "write", a.bucket)

		logger.Errorf("failed to store attachment %s: %v", key, err)

		return pkg.NewRemoteStoreError("write", key, err)
	}

	a.metrics.recordSuccess(ctx, a.metrics.UploadsTotal, a.bucket)
	record.ClearPreviousFilename()

	return nil
}

// openPayload prefers the staged file over in-memory bytes.
func openPayload(record Record) (io.Reader, func() error, error) {
	if tempPath := record.TempPath(); tempPath != "" {
		file, err := os.Open(tempPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening temp file: %w", err)
		}

		return file, file.Close, nil
	}

	if data := record.TempData(); data != nil {
		return bytes.NewReader(data), func() error { return nil }, nil
	}

	return nil, nil, pkg.NewInvalidStateError(entityType, "record %d has no staged data to store", record.AttachmentID())
}

// RenameIfNeeded moves the stored object when the filename changed since the
// last save. An intent naming the current filename is cleared without a call. It returns true when the save may proceed. On failure the rename
// intent is kept so the same save can be retried.
func (a *Adapter) RenameIfNeeded(ctx context.Context, record Record) (bool, error) {
	previous := record.PreviousFilename()
	current := record.Filename()

	if previous == "" {
		return true, nil
	}

	if previous == current {
		record.ClearPreviousFilename()

		return true, nil
	}

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "attachment.rename")

	defer span.End()

	if current == "" {
		err := pkg.NewInvalidStateError(entityType, "record %d renames %q to an empty filename", record.AttachmentID(), previous)
		libOpentelemetry.HandleSpanError(&span, "invalid rename", err)

		return false, err
	}

	base, err := a.BasePath(record)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to build attachment key", err)

		return false, err
	}

	oldKey := StorageKey(path.Join(base, previous))
	newKey := StorageKey(path.Join(base, current))

	if err := a.storage.Move(ctx, oldKey, newKey, a.options.S3Access); err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to rename attachment", err)
		a.metrics.recordError(ctx, "move", a.bucket)

		logger.Errorf("failed to rename attachment %s to %s: %v", oldKey, newKey, err)

		return false, pkg.NewRemoteStoreError("move", oldKey, err)
	}

	a.metrics.recordSuccess(ctx, a.metrics.RenamesTotal, a.bucket)
	record.ClearPreviousFilename()

	logger.Infof("renamed attachment %s to %s", oldKey, newKey)

	return true, nil
}

// Destroy deletes the stored object. A missing object counts as deleted.
func (a *Adapter) Destroy(ctx context.Context, record Record) error {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "attachment.destroy")

	defer span.End()

	key, err := a.key(record, "")
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to build attachment key", err)

		return err
	}

	if err := a.storage.Delete(ctx, key); err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			libOpentelemetry.HandleSpanError(&span, "failed to delete attachment", err)
			a.metrics.recordError(ctx, "delete", a.bucket)

			logger.Errorf("failed to delete attachment %s: %v", key, err)

			return pkg.NewRemoteStoreError("delete", key, err)
		}

		logger.Warnf("attachment %s was already absent from bucket %s", key, a.bucket)
	}

	a.metrics.recordSuccess(ctx, a.metrics.DeletesTotal, a.bucket)

	return nil
}

// CurrentData reads the stored bytes of record.
func (a *Adapter) CurrentData(ctx context.Context, record Record) ([]byte, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "attachment.current_data")

	defer span.End()

	key, err := a.key(record, "")
	if err != nil {
		return nil, err
	}

	body, err := a.storage.Read(ctx, key)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to read attachment", err)
		a.metrics.recordError(ctx, "read", a.bucket)

		return nil, pkg.NewRemoteStoreError("read", key, err)
	}

	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			logger.Warnf("failed to close attachment body for %s: %v", key, closeErr)
		}
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to read attachment body", err)

		return nil, pkg.NewRemoteStoreError("read", key, err)
	}

	return data, nil
}

// CreateTempFile downloads the stored object into a new local temp file and
// returns its path. The caller owns the file and must remove it.
func (a *Adapter) CreateTempFile(ctx context.Context, record Record) (string, error) {
	data, err := a.CurrentData(ctx, record)
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", "attachment-*"+path.Ext(record.Filename()))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())

		return "", fmt.Errorf("writing temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())

		return "", fmt.Errorf("closing temp file: %w", err)
	}

	return file.Name(), nil
}

// PublicFilename returns the public URL of record. Variant arguments are
// concatenated into one variant name. CDN URLs are used when the model is
// configured for the distribution, bucket URLs otherwise.
func (a *Adapter) PublicFilename(record Record, variants ...string) (string, error) {
	variant := joinVariants(variants)

	if a.options.Cloudfront {
		return a.urls.CloudfrontURL(record, variant)
	}

	return a.urls.S3URL(record, variant)
}

// AuthenticatedURL returns a presigned download URL for record's variant.
func (a *Adapter) AuthenticatedURL(ctx context.Context, record Record, opts SignedURLOptions) (string, error) {
	key, err := a.key(record, opts.Variant)
	if err != nil {
		return "", err
	}

	url, err := a.storage.PresignedURL(ctx, key, opts.ExpiresIn.Truncate(time.Second))
	if err != nil {
		a.metrics.recordError(ctx, "presign", a.bucket)

		return "", pkg.NewRemoteStoreError("presign", key, err)
	}

	return url, nil
}
