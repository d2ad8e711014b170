// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/internal/log"
	"github.com/teradata-labs/tripweave/pkg/client"
	"github.com/teradata-labs/tripweave/pkg/mirror"
	"github.com/teradata-labs/tripweave/pkg/orchestrator"
	"github.com/teradata-labs/tripweave/pkg/statuschannel"
)

// app is everything a planning command needs, wired from config.
type app struct {
	client *client.Client
	mirror mirror.Store
	orch   *orchestrator.Orchestrator
}

func newClient(cfg *Config) (*client.Client, error) {
	c, err := client.NewClient(client.Config{
		ServerAddr:    cfg.Server.Addr,
		Timeout:       cfg.Server.Timeout,
		TLSEnabled:    cfg.Server.TLS.Enabled,
		TLSInsecure:   cfg.Server.TLS.Insecure,
		TLSCAFile:     cfg.Server.TLS.CAFile,
		TLSServerName: cfg.Server.TLS.ServerName,
		Headers:       cfg.Server.Headers,
		Logger:        log.Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Server.Addr, err)
	}
	return c, nil
}

// newApp wires the client, status channel, mirror and orchestrator. The
// status subscription is opened immediately.
func newApp(cfg *Config) (*app, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	channel, err := statuschannel.New(statuschannel.Config{
		BaseURL:        c.BaseURL(),
		Transport:      cfg.Status.Transport,
		ReconnectDelay: cfg.Status.ReconnectDelay,
		Headers:        cfg.Server.Headers,
		TLSConfig:      c.TLSConfig(),
		Logger:         log.Logger(),
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	store, err := mirror.Open(cfg.Mirror)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to open session mirror: %w", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		PlanTimeout:    cfg.Planning.PlanTimeout,
		RestoreTimeout: cfg.Planning.RestoreTimeout,
		Logger:         log.Logger(),
	}, orchestrator.Deps{
		Planner:  c,
		Sessions: c,
		Status:   channel,
		Mirror:   store,
	})
	orch.Start()

	return &app{client: c, mirror: store, orch: orch}, nil
}

func (a *app) Close() {
	a.orch.Close()
	if err := a.mirror.Close(); err != nil {
		log.Warn("failed to close session mirror", zap.Error(err))
	}
	_ = a.client.Close()
}
