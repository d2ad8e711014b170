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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teradata-labs/tripweave/pkg/client"
	tripconfig "github.com/teradata-labs/tripweave/pkg/config"
	"github.com/teradata-labs/tripweave/pkg/mirror"
	"github.com/teradata-labs/tripweave/pkg/orchestrator"
	"github.com/teradata-labs/tripweave/pkg/statuschannel"
)

// DefaultConfigFileName is the config file searched for, without extension.
const DefaultConfigFileName = "tripweave"

// Config is the tripweave CLI configuration.
type Config struct {
	// DataDir holds local state. Set from TRIPWEAVE_DATA_DIR, not the file.
	DataDir string `mapstructure:"-"`

	Server   ServerConfig   `mapstructure:"server"`
	Status   StatusConfig   `mapstructure:"status"`
	Planning PlanningConfig `mapstructure:"planning"`
	Mirror   mirror.Config  `mapstructure:"mirror"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the backend connection.
type ServerConfig struct {
	Addr    string            `mapstructure:"addr"`
	Timeout time.Duration     `mapstructure:"timeout"` // per HTTP request, 0 = none
	Headers map[string]string `mapstructure:"headers"`
	TLS     TLSConfig         `mapstructure:"tls"`
}

// TLSConfig configures TLS towards the backend.
type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Insecure   bool   `mapstructure:"insecure"`
	CAFile     string `mapstructure:"ca_file"`
	ServerName string `mapstructure:"server_name"`
}

// StatusConfig configures the live progress channel.
type StatusConfig struct {
	Transport      string        `mapstructure:"transport"` // websocket or sse
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// PlanningConfig bounds planning and restoration calls.
type PlanningConfig struct {
	PlanTimeout    time.Duration `mapstructure:"plan_timeout"`
	RestoreTimeout time.Duration `mapstructure:"restore_timeout"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from file, environment and flags.
func LoadConfig(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(tripconfig.GetDataDir())
		viper.AddConfigPath(".")
		viper.SetConfigName(DefaultConfigFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetEnvPrefix("TRIPWEAVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.DataDir = tripconfig.GetDataDir()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("server.addr", client.DefaultServerAddr)
	viper.SetDefault("server.timeout", time.Duration(0))

	viper.SetDefault("status.transport", statuschannel.TransportWebSocket)
	viper.SetDefault("status.reconnect_delay", statuschannel.DefaultReconnectDelay)

	viper.SetDefault("planning.plan_timeout", orchestrator.DefaultPlanTimeout)
	viper.SetDefault("planning.restore_timeout", orchestrator.DefaultRestoreTimeout)

	viper.SetDefault("mirror.backend", mirror.BackendFile)
	viper.SetDefault("mirror.key", mirror.DefaultKey)
	viper.SetDefault("mirror.service", mirror.DefaultService)

	viper.SetDefault("logging.level", "warn")
	viper.SetDefault("logging.format", "text")
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Status.Transport {
	case statuschannel.TransportWebSocket, statuschannel.TransportSSE:
	default:
		return fmt.Errorf("status.transport must be %s or %s, got %q",
			statuschannel.TransportWebSocket, statuschannel.TransportSSE, c.Status.Transport)
	}
	switch c.Mirror.Backend {
	case mirror.BackendFile, mirror.BackendSQLite, mirror.BackendKeyring, mirror.BackendMemory:
	default:
		return fmt.Errorf("mirror.backend %q is not supported", c.Mirror.Backend)
	}
	if c.Status.ReconnectDelay < 0 {
		return fmt.Errorf("status.reconnect_delay cannot be negative")
	}
	return nil
}

// GenerateExampleConfig returns a commented config file with every setting.
func GenerateExampleConfig() string {
	return `# Tripweave configuration
# Every value can also be set with TRIPWEAVE_<SECTION>_<KEY>, e.g. TRIPWEAVE_SERVER_ADDR.

server:
  addr: http://localhost:8000
  timeout: 0s            # per request; 0 leaves deadlines to planning settings
  headers: {}
  tls:
    enabled: false
    insecure: false
    ca_file: ""
    server_name: ""

status:
  transport: websocket   # websocket or sse
  reconnect_delay: 2s

planning:
  plan_timeout: 5m
  restore_timeout: 30s

mirror:
  backend: file          # file, sqlite, keyring or memory
  path: ""               # defaults to $TRIPWEAVE_DATA_DIR/session.json (or tripweave.db)
  key: current_session_id
  service: tripweave

logging:
  level: warn
  format: text           # text or json
`
}
