// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

//go:build unit

package attachment

import (
	"context"
	"errors"
	"testing"

	"github.com/LerianStudio/attachment-storage/pkg/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHooks_Lifecycle(t *testing.T) {
	t.Parallel()

	adapter, client := newTestAdapter(t, Options{})
	hooks := adapter.Hooks()
	ctx := context.Background()

	record := NewFile(42, "photo.png", "image/png")
	record.SetTempData([]byte("png-bytes"))

	gomock.InOrder(
		client.EXPECT().Write(gomock.Any(), "attachments/0000/0042/photo.png", gomock.Any(), "image/png", "").Return(nil),
		client.EXPECT().Move(gomock.Any(), "attachments/0000/0042/photo.png", "attachments/0000/0042/renamed.png", "").Return(nil),
		client.EXPECT().Delete(gomock.Any(), "attachments/0000/0042/renamed.png").Return(nil),
	)

	require.NoError(t, hooks.OnSaveAttachment(ctx, record))

	record.SetFilename("renamed.png")
	require.NoError(t, hooks.BeforeUpdate(ctx, record))
	assert.Empty(t, record.PreviousFilename())

	require.NoError(t, hooks.AfterDestroy(ctx, record))
}

func TestHooks_BeforeUpdateAbortsOnFailure(t *testing.T) {
	t.Parallel()

	adapter, client := newTestAdapter(t, Options{})

	record := NewFile(42, "photo.png", "image/png")
	record.SetFilename("renamed.png")

	client.EXPECT().Move(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	err := adapter.Hooks().BeforeUpdate(context.Background(), record)

	assert.ErrorIs(t, err, constant.ErrRemoteStore)
	assert.Equal(t, "photo.png", record.PreviousFilename())
}

func TestHooks_BeforeUpdateWithoutRenameMakesNoCalls(t *testing.T) {
	t.Parallel()

	adapter, _ := newTestAdapter(t, Options{})

	assert.NoError(t, adapter.Hooks().BeforeUpdate(context.Background(), NewFile(42, "photo.png", "image/png")))
}
