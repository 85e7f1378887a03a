// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LerianStudio/attachment-storage/pkg"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client provides S3-compatible object storage operations.
type S3Client struct {
	s3     *s3.Client
	bucket string
}

var (
	// ErrBucketRequired indicates bucket name is missing.
	ErrBucketRequired = errors.New("bucket name is required")
	// ErrKeyRequired indicates object key is missing.
	ErrKeyRequired = errors.New("object key is required")
	// ErrObjectNotFound indicates the object does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidProxy indicates the proxy address cannot be parsed.
	ErrInvalidProxy = errors.New("invalid proxy url")
)

// NewS3Client creates a new S3 client with the given configuration.
func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	var opts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	// Each request is sent once; failures surface to the caller unchanged.
	opts = append(opts,
		config.WithHTTPClient(httpClient),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	clientOpts := []func(*s3.Options){}

	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	if cfg.UsePathStyle {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Client{
		s3:     s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
	}, nil
}

// newHTTPClient applies proxy and keep-alive settings to the SDK transport.
func newHTTPClient(cfg S3Config) (*awshttp.BuildableClient, error) {
	var proxy *url.URL

	if cfg.ProxyURL != "" {
		parsed, err := url.Parse(cfg.ProxyURL)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProxy, pkg.RedactConnectionString(cfg.ProxyURL))
		}

		proxy = parsed
	}

	return awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
		if proxy != nil {
			tr.Proxy = http.ProxyURL(proxy)
		}

		tr.DisableKeepAlives = cfg.DisableKeepAlives
	}), nil
}

// Bucket returns the bucket this client operates on.
func (client *S3Client) Bucket() string {
	return client.bucket
}

// Write stores content from body at the given key.
func (client *S3Client) Write(ctx context.Context, key string, body io.Reader, contentType, acl string) error {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "repository.storage.write")

	defer span.End()

	if key == "" {
		return ErrKeyRequired
	}

	// The SDK needs a seekable body to compute the payload checksum.
	seekable, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("reading data: %w", err)
		}

		seekable = bytes.NewReader(data)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
		Body:   seekable,
	}

	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if acl != "" {
		input.ACL = types.ObjectCannedACL(acl)
	}

	if _, err := client.s3.PutObject(ctx, input); err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to write object", err)

		logger.Errorf("failed to write object %s: %v", key, err)

		return fmt.Errorf("writing object: %w", err)
	}

	logger.Infof("wrote object %s to bucket %s", key, client.bucket)

	return nil
}

// Read retrieves content from the given key.
func (client *S3Client) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "repository.storage.read")

	defer span.End()

	if key == "" {
		return nil, ErrKeyRequired
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
	}

	result, err := client.s3.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}

		libOpentelemetry.HandleSpanError(&span, "failed to read object", err)

		logger.Errorf("failed to read object %s: %v", key, err)

		return nil, fmt.Errorf("reading object: %w", err)
	}

	return result.Body, nil
}

// Delete removes an object by key.
func (client *S3Client) Delete(ctx context.Context, key string) error {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "repository.storage.delete")

	defer span.End()

	if key == "" {
		return ErrKeyRequired
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
	}

	if _, err := client.s3.DeleteObject(ctx, input); err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound
		}

		libOpentelemetry.HandleSpanError(&span, "failed to delete object", err)

		logger.Errorf("failed to delete object %s: %v", key, err)

		return fmt.Errorf("deleting object: %w", err)
	}

	logger.Infof("deleted object %s from bucket %s", key, client.bucket)

	return nil
}

// Move copies oldKey to newKey server-side and removes oldKey.
// S3 has no native rename; a failed delete leaves both objects in place.
func (client *S3Client) Move(ctx context.Context, oldKey, newKey, acl string) error {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "repository.storage.move")

	defer span.End()

	if oldKey == "" || newKey == "" {
		return ErrKeyRequired
	}

	input := &s3.CopyObjectInput{
		Bucket:     aws.String(client.bucket),
		Key:        aws.String(newKey),
		CopySource: aws.String(copySource(client.bucket, oldKey)),
	}

	if acl != "" {
		input.ACL = types.ObjectCannedACL(acl)
	}

	if _, err := client.s3.CopyObject(ctx, input); err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to copy object", err)

		logger.Errorf("failed to copy object %s to %s: %v", oldKey, newKey, err)

		if isNotFound(err) {
			return fmt.Errorf("copying object: %w", ErrObjectNotFound)
		}

		return fmt.Errorf("copying object: %w", err)
	}

	if _, err := client.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(oldKey),
	}); err != nil && !isNotFound(err) {
		libOpentelemetry.HandleSpanError(&span, "failed to delete moved object", err)

		logger.Errorf("failed to delete moved object %s: %v", oldKey, err)

		return fmt.Errorf("deleting moved object: %w", err)
	}

	logger.Infof("moved object %s to %s in bucket %s", oldKey, newKey, client.bucket)

	return nil
}

// PresignedURL creates a time-limited download URL.
func (client *S3Client) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "repository.storage.presigned_url")

	defer span.End()

	if key == "" {
		return "", ErrKeyRequired
	}

	presigner := s3.NewPresignClient(client.s3)

	input := &s3.GetObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
	}

	var opts []func(*s3.PresignOptions)
	if expiry > 0 {
		opts = append(opts, s3.WithPresignExpires(expiry))
	}

	result, err := presigner.PresignGetObject(ctx, input, opts...)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "failed to generate presigned url", err)

		logger.Errorf("failed to generate presigned url for %s: %v", key, err)

		return "", fmt.Errorf("generating presigned url: %w", err)
	}

	return result.URL, nil
}

// Exists checks if an object exists at the given key.
func (client *S3Client) Exists(ctx context.Context, key string) (bool, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)
	ctx, span := tracer.Start(ctx, "repository.storage.exists")

	defer span.End()

	if key == "" {
		return false, ErrKeyRequired
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
	}

	if _, err := client.s3.HeadObject(ctx, input); err != nil {
		if isNotFound(err) {
			return false, nil
		}

		libOpentelemetry.HandleSpanError(&span, "failed to check object existence", err)

		logger.Errorf("failed to check existence of %s: %v", key, err)

		return false, fmt.Errorf("checking object existence: %w", err)
	}

	return true, nil
}

// HealthCheck verifies the bucket is reachable with the configured credentials.
func (client *S3Client) HealthCheck(ctx context.Context) error {
	input := &s3.HeadBucketInput{
		Bucket: aws.String(client.bucket),
	}

	if _, err := client.s3.HeadBucket(ctx, input); err != nil {
		return fmt.Errorf("S3 health check failed: %w", err)
	}

	return nil
}

// isNotFound reports whether err means the key does not exist.
// CopyObject and DeleteObject surface NoSuchKey as a generic API error, so the
// error code is checked as well as the typed errors.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}

// copySource builds the URL-encoded "bucket/key" value CopyObject expects.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return bucket + "/" + strings.Join(segments, "/")
}

// Compile-time interface check.
var _ ObjectStorage = (*S3Client)(nil)
