//go:build property

// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package attachment

import (
	"strconv"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

const maxTwoSegmentID = 99999999

// TestProperty_BuildPath_TwoSegments verifies that every id up to eight digits
// maps to exactly two 4-digit segments that spell the zero-padded id.
func TestProperty_BuildPath_TwoSegments(t *testing.T) {
	t.Parallel()

	property := func(raw uint32) bool {
		id := int64(raw%maxTwoSegmentID) + 1

		segments, err := BuildPath(id)
		if err != nil || len(segments) != 2 {
			return false
		}

		for _, segment := range segments {
			if len(segment) != 4 {
				return false
			}
		}

		parsed, err := strconv.ParseInt(strings.Join(segments, ""), 10, 64)

		return err == nil && parsed == id
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 5000}))
}

// TestProperty_BuildFilePath_PrefixIndependent verifies that the id segments
// do not depend on the prefix they are joined to.
func TestProperty_BuildFilePath_PrefixIndependent(t *testing.T) {
	t.Parallel()

	property := func(raw uint32, prefixSeed uint8) bool {
		id := int64(raw%maxTwoSegmentID) + 1
		prefix := "prefix" + strconv.Itoa(int(prefixSeed))

		segments, err := BuildPath(id)
		if err != nil {
			return false
		}

		full, err := BuildFilePath(prefix, id, "file.bin")
		if err != nil {
			return false
		}

		return full == prefix+"/"+strings.Join(segments, "/")+"/file.bin"
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 2000}))
}

// TestProperty_BuildPath_NeverDropsDigits verifies that ids of any length keep
// all their digits, so distinct ids never share a directory.
func TestProperty_BuildPath_NeverDropsDigits(t *testing.T) {
	t.Parallel()

	property := func(raw uint64) bool {
		id := int64(raw>>2) + 1

		segments, err := BuildPath(id)
		if err != nil {
			return false
		}

		parsed, err := strconv.ParseInt(strings.Join(segments, ""), 10, 64)

		return err == nil && parsed == id && len(segments) >= 2
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 2000}))
}
