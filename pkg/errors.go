// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"fmt"
	"strings"

	"github.com/LerianStudio/attachment-storage/pkg/constant"
)

// ConfigurationMissingError records a missing or invalid configuration source or key.
// It is fatal: the adapter cannot be initialized without a valid configuration.
type ConfigurationMissingError struct {
	Source  string
	Key     string
	Code    string
	Title   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e ConfigurationMissingError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s - configuration %s: %v", e.Code, e.Source, e.Err)
	}

	return fmt.Sprintf("%s - configuration %s is missing key %s", e.Code, e.Source, e.Key)
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ConfigurationMissingError) Unwrap() error {
	return e.Err
}

// Is matches the standardized error code.
func (e ConfigurationMissingError) Is(target error) bool {
	return target == constant.ErrConfigurationMissing
}

// RemoteStoreError records any failure reported by the object store.
// The original store error is kept so callers can inspect it with errors.As.
type RemoteStoreError struct {
	Operation string
	Key       string
	Code      string
	Err       error
}

// Error implements the error interface.
func (e RemoteStoreError) Error() string {
	return fmt.Sprintf("%s - remote store %s %q failed: %v", e.Code, e.Operation, e.Key, e.Err)
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e RemoteStoreError) Unwrap() error {
	return e.Err
}

// Is matches the standardized error code.
func (e RemoteStoreError) Is(target error) bool {
	return target == constant.ErrRemoteStore
}

// InvalidStateError indicates an operation attempted on a record that is not ready for it,
// such as a record without an identifier or a rename without a target filename.
type InvalidStateError struct {
	EntityType string
	Code       string
	Message    string
}

// Error implements the error interface.
func (e InvalidStateError) Error() string {
	if strings.TrimSpace(e.EntityType) != "" {
		return fmt.Sprintf("%s - %s: %s", e.Code, e.EntityType, e.Message)
	}

	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

// Is matches the standardized error code.
func (e InvalidStateError) Is(target error) bool {
	return target == constant.ErrInvalidState
}

// NewConfigurationMissingError builds a ConfigurationMissingError for the given source and key.
func NewConfigurationMissingError(source, key string, err error) error {
	return ConfigurationMissingError{
		Source: source,
		Key:    key,
		Code:   constant.ErrConfigurationMissing.Error(),
		Title:  "Configuration Missing",
		Err:    err,
	}
}

// NewRemoteStoreError wraps an object store failure for the given operation and key.
func NewRemoteStoreError(operation, key string, err error) error {
	return RemoteStoreError{
		Operation: operation,
		Key:       key,
		Code:      constant.ErrRemoteStore.Error(),
		Err:       err,
	}
}

// NewInvalidStateError builds an InvalidStateError with a formatted message.
func NewInvalidStateError(entityType, format string, args ...any) error {
	return InvalidStateError{
		EntityType: entityType,
		Code:       constant.ErrInvalidState.Error(),
		Message:    fmt.Sprintf(format, args...),
	}
}
