// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package chaos

import (
	"context"
	"fmt"

	toxiproxy "github.com/Shopify/toxiproxy/v2/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// ToxiproxyImage is the Docker image for the Toxiproxy container.
	ToxiproxyImage = "ghcr.io/shopify/toxiproxy:2.9.0"

	// ToxiproxyAPIPort is the API port for Toxiproxy management.
	ToxiproxyAPIPort = "8474/tcp"

	// ProxyNameSeaweedFS routes S3 traffic to the SeaweedFS container.
	ProxyNameSeaweedFS = "seaweedfs"

	// SeaweedFSProxyPort is the listen port of the SeaweedFS proxy inside the container.
	SeaweedFSProxyPort = "28333"
)

// ProxyConfig defines the upstream target for a Toxiproxy proxy.
type ProxyConfig struct {
	Name     string
	Listen   string // host:port inside Toxiproxy container
	Upstream string // host:port of the real service (container alias:port)
}

// ToxiproxyInfrastructure holds the Toxiproxy container and its managed proxies.
type ToxiproxyInfrastructure struct {
	Container testcontainers.Container
	Client    *toxiproxy.Client
	Proxies   map[string]*toxiproxy.Proxy
	Host      string
	APIPort   string
}

// StartToxiproxy creates and starts a Toxiproxy container on the given network.
// proxyPorts are exposed so proxies listening on them are reachable from the host.
func StartToxiproxy(ctx context.Context, networkName string, proxyPorts ...string) (*ToxiproxyInfrastructure, error) {
	exposed := []string{ToxiproxyAPIPort}
	for _, port := range proxyPorts {
		exposed = append(exposed, port+"/tcp")
	}

	req := testcontainers.ContainerRequest{
		Image:        ToxiproxyImage,
		ExposedPorts: exposed,
		Networks:     []string{networkName},
		NetworkAliases: map[string][]string{
			networkName: {"toxiproxy"},
		},
		WaitingFor: wait.ForHTTP("/version").WithPort(ToxiproxyAPIPort),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start toxiproxy container: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get toxiproxy host: %w", err)
	}

	mappedPort, err := ctr.MappedPort(ctx, ToxiproxyAPIPort)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get toxiproxy mapped port: %w", err)
	}

	apiAddr := fmt.Sprintf("%s:%s", host, mappedPort.Port())

	return &ToxiproxyInfrastructure{
		Container: ctr,
		Client:    toxiproxy.NewClient(apiAddr),
		Proxies:   make(map[string]*toxiproxy.Proxy),
		Host:      host,
		APIPort:   mappedPort.Port(),
	}, nil
}

// CreateProxy creates a named proxy that routes traffic from a listen address
// inside the Toxiproxy container to the upstream service.
func (t *ToxiproxyInfrastructure) CreateProxy(cfg ProxyConfig) (*toxiproxy.Proxy, error) {
	proxy, err := t.Client.CreateProxy(cfg.Name, cfg.Listen, cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("create proxy %s: %w", cfg.Name, err)
	}

	t.Proxies[cfg.Name] = proxy

	return proxy, nil
}

// GetProxy returns a previously created proxy by name.
func (t *ToxiproxyInfrastructure) GetProxy(name string) (*toxiproxy.Proxy, bool) {
	p, ok := t.Proxies[name]
	return p, ok
}

// MappedAddress returns the host:port that reaches a proxy listening on containerPort.
func (t *ToxiproxyInfrastructure) MappedAddress(ctx context.Context, containerPort string) (string, string, error) {
	mapped, err := t.Container.MappedPort(ctx, nat.Port(containerPort+"/tcp"))
	if err != nil {
		return "", "", fmt.Errorf("get mapped port %s: %w", containerPort, err)
	}

	return t.Host, mapped.Port(), nil
}

// InjectLatency adds a latency toxic to the given proxy.
// latencyMs is the base latency in milliseconds, jitterMs adds randomness.
func InjectLatency(proxy *toxiproxy.Proxy, latencyMs int, jitterMs int) error {
	_, err := proxy.AddToxic("latency_downstream", "latency", "downstream", 1.0, toxiproxy.Attributes{
		"latency": latencyMs,
		"jitter":  jitterMs,
	})
	if err != nil {
		return fmt.Errorf("add latency toxic to %s: %w", proxy.Name, err)
	}

	return nil
}

// InjectResetPeer closes every connection with a TCP RST after timeoutMs.
func InjectResetPeer(proxy *toxiproxy.Proxy, timeoutMs int) error {
	_, err := proxy.AddToxic("reset_peer_downstream", "reset_peer", "downstream", 1.0, toxiproxy.Attributes{
		"timeout": timeoutMs,
	})
	if err != nil {
		return fmt.Errorf("add reset_peer toxic to %s: %w", proxy.Name, err)
	}

	return nil
}

// RemoveAllToxics removes all toxics from the given proxy, restoring normal operation.
func RemoveAllToxics(proxy *toxiproxy.Proxy) error {
	toxics, err := proxy.Toxics()
	if err != nil {
		return fmt.Errorf("list toxics for %s: %w", proxy.Name, err)
	}

	for _, toxic := range toxics {
		if err := proxy.RemoveToxic(toxic.Name); err != nil {
			return fmt.Errorf("remove toxic %s from %s: %w", toxic.Name, proxy.Name, err)
		}
	}

	return nil
}

// DisableProxy disables the proxy entirely (simulates a hard connection cut).
func DisableProxy(proxy *toxiproxy.Proxy) error {
	proxy.Enabled = false

	return proxy.Save()
}

// EnableProxy re-enables the proxy (restores connectivity).
func EnableProxy(proxy *toxiproxy.Proxy) error {
	proxy.Enabled = true

	return proxy.Save()
}

// Terminate stops and removes the Toxiproxy container.
func (t *ToxiproxyInfrastructure) Terminate(ctx context.Context) error {
	if t.Container != nil {
		return t.Container.Terminate(ctx)
	}

	return nil
}
