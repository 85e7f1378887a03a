// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import "context"

// LifecycleHooks are the callbacks a host wires into its save and destroy flow.
// A non-nil error from any hook must abort the host transaction.
type LifecycleHooks interface {
	BeforeUpdate(ctx context.Context, record Record) error
	AfterDestroy(ctx context.Context, record Record) error
	OnSaveAttachment(ctx context.Context, record Record) error
}

// Hooks binds the lifecycle callbacks to an Adapter.
type Hooks struct {
	adapter *Adapter
}

// Hooks returns the lifecycle callbacks of a.
func (a *Adapter) Hooks() Hooks {
	return Hooks{adapter: a}
}

// BeforeUpdate renames the stored object when the filename changed.
func (h Hooks) BeforeUpdate(ctx context.Context, record Record) error {
	_, err := h.adapter.RenameIfNeeded(ctx, record)

	return err
}

// AfterDestroy removes the stored object.
func (h Hooks) AfterDestroy(ctx context.Context, record Record) error {
	return h.adapter.Destroy(ctx, record)
}

// OnSaveAttachment uploads the staged bytes.
func (h Hooks) OnSaveAttachment(ctx context.Context, record Record) error {
	return h.adapter.Store(ctx, record)
}

var _ LifecycleHooks = Hooks{}
