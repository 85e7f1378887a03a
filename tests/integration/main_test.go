// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LerianStudio/attachment-storage/tests/utils/containers"
)

const testEnv = "integration"

var (
	infra        *containers.TestInfrastructure
	bucketConfig string
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var err error

	infra, err = containers.StartInfrastructure(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test infrastructure: %v\n", err)
		return 1
	}

	defer func() {
		if err := infra.Stop(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to stop test infrastructure: %v\n", err)
		}
	}()

	dir, err := os.MkdirTemp("", "attachment-integration-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create config dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(dir)

	bucketConfig = filepath.Join(dir, "s3_images.yml")
	yaml := containers.BucketConfigYAML(testEnv, infra.SeaweedFS.Host, infra.SeaweedFS.S3Port)

	if err := os.WriteFile(bucketConfig, []byte(yaml), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write bucket config: %v\n", err)
		return 1
	}

	return m.Run()
}
