// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

// Package storage defines the remote object store port used by attachment storage
// and its S3-compatible implementation.
package storage

//go:generate mockgen --destination=ports.mock.go --package=storage . ObjectStorage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage provides the remote operations an attachment backend needs.
// Implementations must be safe for concurrent use by multiple goroutines.
type ObjectStorage interface {
	// Write stores the content of body at key with the given content type and canned ACL.
	// An empty acl leaves the bucket default in place.
	Write(ctx context.Context, key string, body io.Reader, contentType, acl string) error

	// Read retrieves the content stored at key.
	// The caller must close the returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key.
	// Returns ErrObjectNotFound when the store reports the key as missing.
	Delete(ctx context.Context, key string) error

	// Move renames oldKey to newKey, applying acl to the new object.
	Move(ctx context.Context, oldKey, newKey, acl string) error

	// Exists checks if an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignedURL creates a time-limited download URL for key.
	// A zero expiry leaves the client default in place.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Bucket returns the bucket this client operates on.
	Bucket() string
}
