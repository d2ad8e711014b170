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
	"context"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealthCommand,
}

func runHealthCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	h, err := c.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("backend at %s is not reachable: %w", c.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	lipgloss.Fprintf(out, "%s %s (%s)\n", doneStyle.Render("✓"), c.BaseURL(), time.Since(start).Round(time.Millisecond))
	if h.Message != "" {
		fmt.Fprintf(out, "  %s\n", h.Message)
	}
	return nil
}
