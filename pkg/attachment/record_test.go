// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

//go:build unit

package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Plain name", input: "photo.png", expected: "photo.png"},
		{name: "Unix directories", input: "/tmp/uploads/photo.png", expected: "photo.png"},
		{name: "Windows directories", input: `C:\Users\me\photo.png`, expected: "photo.png"},
		{name: "Spaces and symbols", input: " my photo (1).png ", expected: "my_photo__1_.png"},
		{name: "Dashes kept", input: "report-2026.pdf", expected: "report-2026.pdf"},
		{name: "Non ascii", input: "café.txt", expected: "caf_.txt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestVariantName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "photo.png", VariantName("photo.png", ""))
	assert.Equal(t, "photo_thumb.png", VariantName("photo.png", "thumb"))
	assert.Equal(t, "archive.tar_small.gz", VariantName("archive.tar.gz", "small"))
	assert.Equal(t, "README_thumb", VariantName("README", "thumb"))
}

func TestFile_SetFilenameTracksFirstPreviousName(t *testing.T) {
	t.Parallel()

	file := NewFile(42, "photo.png", "image/png")
	assert.Empty(t, file.PreviousFilename())

	file.SetFilename("holiday.png")
	assert.Equal(t, "holiday.png", file.Filename())
	assert.Equal(t, "photo.png", file.PreviousFilename())

	file.SetFilename("holiday 2.png")
	assert.Equal(t, "holiday_2.png", file.Filename())
	assert.Equal(t, "photo.png", file.PreviousFilename(), "the first name stays the rename source")

	file.ClearPreviousFilename()
	assert.Empty(t, file.PreviousFilename())
}

func TestFile_FirstAssignmentIsNotARename(t *testing.T) {
	t.Parallel()

	file := NewFile(0, "", "image/png")
	file.SetFilename("photo.png")

	assert.Equal(t, "photo.png", file.Filename())
	assert.Empty(t, file.PreviousFilename())
}

func TestFile_Accessors(t *testing.T) {
	t.Parallel()

	file := NewFile(1, "doc.pdf", "application/pdf")
	file.SetID(42)
	file.SetParentID(7)
	file.SetTempPath("/tmp/upload")
	file.SetTempData([]byte("data"))

	assert.Equal(t, int64(42), file.AttachmentID())
	assert.Equal(t, int64(7), file.ParentID())
	assert.Equal(t, "application/pdf", file.ContentType())
	assert.Equal(t, "/tmp/upload", file.TempPath())
	assert.Equal(t, []byte("data"), file.TempData())
	assert.Equal(t, "doc_thumb.pdf", file.VariantFilename("thumb"))
	assert.True(t, file.SaveAttachment())

	file.SetSkipSave(true)
	assert.False(t, file.SaveAttachment())
}
