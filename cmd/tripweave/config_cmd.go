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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tripconfig "github.com/teradata-labs/tripweave/pkg/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tripweave configuration",
	Long:  `Generate, inspect, and edit the tripweave configuration file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate example configuration file",
	Long:  `Generate an example tripweave.yaml in the data directory (~/.tripweave by default).`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration (merged from file, environment and flags).`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Examples:
  tripweave config set server.addr https://planner.example.com
  tripweave config set status.transport sse
  tripweave config set planning.plan_timeout 10m`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long: `Get a configuration value from the config file.

Examples:
  tripweave config get server.addr`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config file")
}

// configFilePath is the file config set/get/init operate on.
func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(tripconfig.GetDataDir(), DefaultConfigFileName+".yaml")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := tripconfig.EnsureDataDir(); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	path := configFilePath()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(GenerateExampleConfig()), 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "======================")
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "File: %s\n", used)
	}
	fmt.Fprintf(out, "Data dir: %s\n", config.DataDir)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Server:")
	fmt.Fprintf(out, "  Address: %s\n", config.Server.Addr)
	fmt.Fprintf(out, "  Timeout: %s\n", config.Server.Timeout)
	fmt.Fprintf(out, "  TLS: %t\n", config.Server.TLS.Enabled)
	if config.Server.TLS.Enabled {
		fmt.Fprintf(out, "  TLS Insecure: %t\n", config.Server.TLS.Insecure)
		if config.Server.TLS.CAFile != "" {
			fmt.Fprintf(out, "  TLS CA File: %s\n", config.Server.TLS.CAFile)
		}
	}
	for k, v := range config.Server.Headers {
		fmt.Fprintf(out, "  Header %s: %s\n", k, maskSecret(v))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Status:")
	fmt.Fprintf(out, "  Transport: %s\n", config.Status.Transport)
	fmt.Fprintf(out, "  Reconnect Delay: %s\n", config.Status.ReconnectDelay)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Planning:")
	fmt.Fprintf(out, "  Plan Timeout: %s\n", config.Planning.PlanTimeout)
	fmt.Fprintf(out, "  Restore Timeout: %s\n", config.Planning.RestoreTimeout)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Mirror:")
	fmt.Fprintf(out, "  Backend: %s\n", config.Mirror.Backend)
	if config.Mirror.Path != "" {
		fmt.Fprintf(out, "  Path: %s\n", config.Mirror.Path)
	}
	fmt.Fprintf(out, "  Key: %s\n", config.Mirror.Key)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Logging:")
	fmt.Fprintf(out, "  Level: %s\n", config.Logging.Level)
	fmt.Fprintf(out, "  Format: %s\n", config.Logging.Format)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	v, err := readConfigFile()
	if err != nil {
		return err
	}
	typed := inferType(value)
	v.Set(key, typed)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %v\n", key, typed)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v, err := readConfigFile()
	if err != nil {
		return err
	}
	if !v.IsSet(key) {
		return fmt.Errorf("key not found: %s", key)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, v.Get(key))
	return nil
}

func readConfigFile() (*viper.Viper, error) {
	path := configFilePath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s (run 'tripweave config init' to create one)", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return v, nil
}

// inferType keeps booleans and integers typed in the written YAML. Durations
// stay strings, which viper decodes.
func inferType(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return value
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
