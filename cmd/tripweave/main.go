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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/internal/log"
	"github.com/teradata-labs/tripweave/internal/version"
)

var (
	cfgFile string
	config  *Config
)

var rootCmd = &cobra.Command{
	Use:     "tripweave",
	Short:   "Tripweave - plan trips against a travel agent backend",
	Long:    `Tripweave submits trip planning requests, follows their progress live and keeps your planning sessions across restarts.`,
	Version: version.Info(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}

Quick Start:
  1. Plan a trip:          tripweave plan Lisbon --days 5 --travelers 2
  2. Pick up where you were: tripweave resume
  3. Start over:           tripweave new
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $TRIPWEAVE_DATA_DIR/tripweave.yaml)")

	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:8000", "Backend address")
	rootCmd.PersistentFlags().Bool("tls", false, "Enable TLS connection")
	rootCmd.PersistentFlags().Bool("tls-insecure", false, "Skip TLS certificate verification (for self-signed certs)")
	rootCmd.PersistentFlags().String("tls-ca-file", "", "Path to CA certificate file")
	rootCmd.PersistentFlags().String("tls-server-name", "", "Override TLS server name verification")

	rootCmd.PersistentFlags().String("transport", "websocket", "Progress transport (websocket, sse)")
	rootCmd.PersistentFlags().String("mirror", "file", "Where the current session id is kept (file, sqlite, keyring, memory)")

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	_ = viper.BindPFlag("server.addr", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("server.tls.enabled", rootCmd.PersistentFlags().Lookup("tls"))
	_ = viper.BindPFlag("server.tls.insecure", rootCmd.PersistentFlags().Lookup("tls-insecure"))
	_ = viper.BindPFlag("server.tls.ca_file", rootCmd.PersistentFlags().Lookup("tls-ca-file"))
	_ = viper.BindPFlag("server.tls.server_name", rootCmd.PersistentFlags().Lookup("tls-server-name"))
	_ = viper.BindPFlag("status.transport", rootCmd.PersistentFlags().Lookup("transport"))
	_ = viper.BindPFlag("mirror.backend", rootCmd.PersistentFlags().Lookup("mirror"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(newTripCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(memoriesCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig loads configuration and installs the process logger.
func initConfig() error {
	var err error
	config, err = LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger, err := log.Configure(config.Logging.Level, config.Logging.Format)
	if err != nil {
		return fmt.Errorf("error configuring logging: %w", err)
	}
	log.SetLogger(logger)
	log.Debug("configuration loaded",
		zap.String("server", config.Server.Addr),
		zap.String("transport", config.Status.Transport),
		zap.String("mirror", config.Mirror.Backend))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		renderError(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
