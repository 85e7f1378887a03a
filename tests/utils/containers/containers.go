// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/LerianStudio/attachment-storage/tests/utils/chaos"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
)

// TestInfrastructure holds the test containers and provides connection information.
type TestInfrastructure struct {
	SeaweedFS *SeaweedFSContainer
	Toxiproxy *chaos.ToxiproxyInfrastructure

	network     *testcontainers.DockerNetwork
	networkName string
}

const defaultStartTimeoutSeconds = 120

// InfrastructureConfig holds configuration for container startup.
type InfrastructureConfig struct {
	SeaweedImage string
	StartTimeout time.Duration
	// WithToxiproxy also starts Toxiproxy with a proxy in front of SeaweedFS.
	WithToxiproxy bool
}

// DefaultConfig returns default configuration for test infrastructure.
func DefaultConfig() *InfrastructureConfig {
	return &InfrastructureConfig{
		SeaweedImage: "chrislusf/seaweedfs:3.97",
		StartTimeout: defaultStartTimeoutSeconds * time.Second,
	}
}

// StartInfrastructure starts SeaweedFS on a dedicated network.
func StartInfrastructure(ctx context.Context) (*TestInfrastructure, error) {
	return StartInfrastructureWithConfig(ctx, DefaultConfig())
}

// StartInfrastructureWithConfig starts the containers with custom configuration.
func StartInfrastructureWithConfig(ctx context.Context, cfg *InfrastructureConfig) (*TestInfrastructure, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StartTimeout)
	defer cancel()

	net, err := network.New(ctx,
		network.WithDriver("bridge"),
	)
	if err != nil {
		return nil, fmt.Errorf("create network: %w", err)
	}

	infra := &TestInfrastructure{
		network:     net,
		networkName: net.Name,
	}

	seaweed, err := StartSeaweedFS(ctx, infra.networkName, cfg.SeaweedImage)
	if err != nil {
		_ = infra.Stop(context.Background())
		return nil, fmt.Errorf("seaweedfs: %w", err)
	}

	infra.SeaweedFS = seaweed

	if cfg.WithToxiproxy {
		if err := infra.StartToxiproxy(ctx); err != nil {
			_ = infra.Stop(context.Background())
			return nil, err
		}
	}

	return infra, nil
}

// StartToxiproxy starts a Toxiproxy container on the test network with a proxy
// in front of the SeaweedFS S3 gateway.
func (i *TestInfrastructure) StartToxiproxy(ctx context.Context) error {
	toxi, err := chaos.StartToxiproxy(ctx, i.networkName, chaos.SeaweedFSProxyPort)
	if err != nil {
		return fmt.Errorf("start toxiproxy: %w", err)
	}

	i.Toxiproxy = toxi

	_, err = toxi.CreateProxy(chaos.ProxyConfig{
		Name:     chaos.ProxyNameSeaweedFS,
		Listen:   "0.0.0.0:" + chaos.SeaweedFSProxyPort,
		Upstream: "seaweedfs:" + SeaweedS3Port,
	})
	if err != nil {
		return fmt.Errorf("create seaweedfs proxy: %w", err)
	}

	return nil
}

// SeaweedFSProxyAddress returns the host and port that reach SeaweedFS through Toxiproxy.
func (i *TestInfrastructure) SeaweedFSProxyAddress(ctx context.Context) (string, string, error) {
	if i.Toxiproxy == nil {
		return "", "", fmt.Errorf("toxiproxy not started")
	}

	return i.Toxiproxy.MappedAddress(ctx, chaos.SeaweedFSProxyPort)
}

// Stop terminates all containers and cleans up resources.
func (i *TestInfrastructure) Stop(ctx context.Context) error {
	var errs []error

	// Terminate Toxiproxy first (it depends on other containers)
	if i.Toxiproxy != nil {
		if err := i.Toxiproxy.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("toxiproxy terminate: %w", err))
		}
	}

	if i.SeaweedFS != nil {
		if err := i.SeaweedFS.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("seaweedfs terminate: %w", err))
		}
	}

	if i.network != nil {
		if err := i.network.Remove(ctx); err != nil {
			errs = append(errs, fmt.Errorf("network remove: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}
