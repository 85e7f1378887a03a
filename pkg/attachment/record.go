// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import (
	"path"
	"regexp"
	"strings"
)

const entityType = "Attachment"

// Record is the host entity whose attachment is stored remotely.
// The adapter reads every field and only mutates the rename intent.
type Record interface {
	// AttachmentID returns the persisted id, or 0 before the record is saved.
	AttachmentID() int64
	// ParentID returns the id of the original when the record is a variant, or 0.
	ParentID() int64
	Filename() string
	// PreviousFilename is set while a rename is pending and empty otherwise.
	PreviousFilename() string
	ClearPreviousFilename()
	ContentType() string
	// TempPath is the local file holding the uploaded bytes, if any.
	TempPath() string
	// TempData holds the uploaded bytes when there is no TempPath.
	TempData() []byte
	// VariantFilename returns the filename of a variant such as a thumbnail.
	// An empty variant returns Filename.
	VariantFilename(variant string) string
}

// SaveDecider is implemented by records that can veto an upload.
type SaveDecider interface {
	SaveAttachment() bool
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9.\-]`)

// SanitizeFilename drops any directory part and replaces characters outside
// [A-Za-z0-9.-] with underscores.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)

	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// VariantName inserts "_<variant>" before the extension of filename.
func VariantName(filename, variant string) string {
	if variant == "" {
		return filename
	}

	ext := path.Ext(filename)

	return strings.TrimSuffix(filename, ext) + "_" + variant + ext
}

// File is a plain Record implementation for hosts without their own entity type.
type File struct {
	id               int64
	parentID         int64
	filename         string
	previousFilename string
	contentType      string
	tempPath         string
	tempData         []byte
	skipSave         bool
}

// NewFile returns a File with a sanitized filename and no pending rename.
func NewFile(id int64, filename, contentType string) *File {
	return &File{
		id:          id,
		filename:    SanitizeFilename(filename),
		contentType: contentType,
	}
}

func (f *File) AttachmentID() int64 { return f.id }

func (f *File) ParentID() int64 { return f.parentID }

func (f *File) Filename() string { return f.filename }

func (f *File) PreviousFilename() string { return f.previousFilename }

func (f *File) ClearPreviousFilename() { f.previousFilename = "" }

func (f *File) ContentType() string { return f.contentType }

func (f *File) TempPath() string { return f.tempPath }

func (f *File) TempData() []byte { return f.tempData }

func (f *File) VariantFilename(variant string) string {
	return VariantName(f.filename, variant)
}

func (f *File) SaveAttachment() bool { return !f.skipSave }

// SetID assigns the persisted id.
func (f *File) SetID(id int64) { f.id = id }

// SetParentID marks the file as a variant of parentID.
func (f *File) SetParentID(parentID int64) { f.parentID = parentID }

// SetFilename sanitizes and assigns name. The first filename replaced since the
// last clear is kept as the rename source.
func (f *File) SetFilename(name string) {
	if f.filename != "" && f.previousFilename == "" {
		f.previousFilename = f.filename
	}

	f.filename = SanitizeFilename(name)
}

// SetTempPath stages the upload from a local file.
func (f *File) SetTempPath(p string) { f.tempPath = p }

// SetTempData stages the upload from memory.
func (f *File) SetTempData(data []byte) { f.tempData = data }

// SetSkipSave makes SaveAttachment report false.
func (f *File) SetSkipSave(skip bool) { f.skipSave = skip }

var (
	_ Record      = (*File)(nil)
	_ SaveDecider = (*File)(nil)
)
