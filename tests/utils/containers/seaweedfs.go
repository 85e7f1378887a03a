// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	SeaweedBucket        = "attachments"
	SeaweedAvatarsBucket = "avatars"
	SeaweedAccessKey     = "any"
	SeaweedSecretKey     = "any"
	SeaweedRegion        = "us-east-1"

	// SeaweedS3Port is the S3 gateway port inside the container.
	SeaweedS3Port = "8333"

	seaweedStartDeadlineSeconds = 60
	seaweedStopTimeoutSeconds   = 10
)

// SeaweedFSContainer wraps a SeaweedFS testcontainer with S3 endpoint info.
type SeaweedFSContainer struct {
	testcontainers.Container
	S3Endpoint string
	Host       string
	S3Port     string
	AdminPort  string
}

// StartSeaweedFS creates and starts a SeaweedFS container in S3 mode with the
// attachment buckets created.
func StartSeaweedFS(ctx context.Context, networkName, image string) (*SeaweedFSContainer, error) {
	if image == "" {
		image = "chrislusf/seaweedfs:3.97"
	}

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{SeaweedS3Port + "/tcp", "9333/tcp"},
		Cmd:          []string{"server", "-s3", "-dir=/data"},
		Networks:     []string{networkName},
		NetworkAliases: map[string][]string{
			networkName: {"seaweedfs"},
		},
		WaitingFor: wait.ForAll(
			wait.ForHTTP("/cluster/status").WithPort("9333/tcp"),
			wait.ForListeningPort(SeaweedS3Port+"/tcp"),
		).WithDeadline(seaweedStartDeadlineSeconds * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start seaweedfs container: %w", err)
	}

	sc := &SeaweedFSContainer{Container: ctr}

	if err := sc.refreshEndpoints(ctx); err != nil {
		_ = ctr.Terminate(ctx)
		return nil, err
	}

	if err := sc.createBuckets(ctx); err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return sc, nil
}

// refreshEndpoints reads the host and mapped ports, which change across restarts.
func (s *SeaweedFSContainer) refreshEndpoints(ctx context.Context) error {
	host, err := s.Container.Host(ctx)
	if err != nil {
		return fmt.Errorf("get seaweedfs host: %w", err)
	}

	s3Mapped, err := s.MappedPort(ctx, SeaweedS3Port+"/tcp")
	if err != nil {
		return fmt.Errorf("get seaweedfs s3 mapped port: %w", err)
	}

	admMapped, err := s.MappedPort(ctx, "9333/tcp")
	if err != nil {
		return fmt.Errorf("get seaweedfs admin mapped port: %w", err)
	}

	s.Host = host
	s.S3Port = s3Mapped.Port()
	s.AdminPort = admMapped.Port()
	s.S3Endpoint = fmt.Sprintf("http://%s:%s", host, s.S3Port)

	return nil
}

// createBuckets creates the attachment buckets with retry; the S3 gateway may
// accept connections before it serves requests.
func (s *SeaweedFSContainer) createBuckets(ctx context.Context) error {
	client, err := s.S3Client(ctx)
	if err != nil {
		return err
	}

	for _, bucket := range []string{SeaweedBucket, SeaweedAvatarsBucket} {
		var lastErr error

		for i := 0; i < 10; i++ {
			_, lastErr = client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: aws.String(bucket),
			})
			if lastErr == nil {
				break
			}

			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}

		if lastErr != nil {
			return fmt.Errorf("create bucket %s after retries: %w", bucket, lastErr)
		}
	}

	return nil
}

// S3Client returns a raw SDK client for assertions that bypass the adapter.
func (s *SeaweedFSContainer) S3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(SeaweedRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			SeaweedAccessKey,
			SeaweedSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.S3Endpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Restart stops and starts the SeaweedFS container, refreshing connection info.
// Stored data does not survive a restart, so the buckets are created again.
func (s *SeaweedFSContainer) Restart(ctx context.Context, delay time.Duration) error {
	timeout := seaweedStopTimeoutSeconds * time.Second
	if err := s.Stop(ctx, &timeout); err != nil {
		return fmt.Errorf("stop seaweedfs: %w", err)
	}

	if delay > 0 {
		time.Sleep(delay)
	}

	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start seaweedfs: %w", err)
	}

	if err := s.refreshEndpoints(ctx); err != nil {
		return err
	}

	// Buckets may survive in the container filesystem; creation errors are ignored.
	_ = s.createBuckets(ctx)

	return nil
}

// BucketConfigYAML renders an environment-keyed bucket configuration that
// targets host:port with the container credentials.
func BucketConfigYAML(env, host, port string) string {
	return fmt.Sprintf(`%s:
  access_key_id: %s
  secret_access_key: %s
  server: %s
  port: %s
  use_ssl: false
  persistent: false
  region: %s
  bucket_name: %s
  avatars_bucket: %s
`, env, SeaweedAccessKey, SeaweedSecretKey, host, port, SeaweedRegion, SeaweedBucket, SeaweedAvatarsBucket)
}
