// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import (
	"path"
	"strconv"
	"strings"

	"github.com/LerianStudio/attachment-storage/pkg"
	"github.com/LerianStudio/attachment-storage/pkg/constant"
)

// BuildPath splits a record id into 4-digit directory segments.
// The id is zero-padded to 8 digits, so ids up to 99,999,999 always map to two
// segments ("42" -> ["0000", "0042"]). Longer ids are padded to the next
// multiple of four digits instead of being truncated.
func BuildPath(id int64) ([]string, error) {
	if id <= 0 {
		return nil, pkg.NewInvalidStateError(entityType, "record id %d is not persisted", id)
	}

	digits := strconv.FormatInt(id, 10)

	width := constant.PathIDWidth
	if len(digits) > width {
		width = (len(digits) + constant.PathSegmentSize - 1) / constant.PathSegmentSize * constant.PathSegmentSize
	}

	padded := strings.Repeat("0", width-len(digits)) + digits

	segments := make([]string, 0, width/constant.PathSegmentSize)
	for i := 0; i < width; i += constant.PathSegmentSize {
		segments = append(segments, padded[i:i+constant.PathSegmentSize])
	}

	return segments, nil
}

// BuildBasePath joins prefix with the id segments.
func BuildBasePath(prefix string, id int64) (string, error) {
	segments, err := BuildPath(id)
	if err != nil {
		return "", err
	}

	return path.Join(append([]string{prefix}, segments...)...), nil
}

// BuildFilePath joins the base path with filename.
// The filename is joined as given; variant naming is the record's concern.
func BuildFilePath(prefix string, id int64, filename string) (string, error) {
	base, err := BuildBasePath(prefix, id)
	if err != nil {
		return "", err
	}

	return path.Join(base, filename), nil
}

// StorageKey strips leading separators so the result is a valid object key.
func StorageKey(filePath string) string {
	return strings.TrimLeft(filePath, "/")
}

// pathID prefers the parent id so variants are stored next to their original.
func pathID(record Record) int64 {
	if parentID := record.ParentID(); parentID > 0 {
		return parentID
	}

	return record.AttachmentID()
}
