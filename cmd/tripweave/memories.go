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
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var memoryTypeFilter string

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "Manage personalisation memories",
	Long: `List, add, and delete the memories the backend keeps about your travel
preferences. Memories shape future plans.`,
}

var memoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories",
	Long: `List stored memories.

Examples:
  tripweave memories list
  tripweave memories list --type preference
`,
	Args: cobra.NoArgs,
	RunE: runMemoriesListCommand,
}

var memoriesAddCmd = &cobra.Command{
	Use:   "add <type> <content>",
	Short: "Add a memory",
	Long: `Store a memory by hand.

Examples:
  tripweave memories add preference "Prefers window seats"
`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMemoriesAddCommand,
}

var memoriesDeleteCmd = &cobra.Command{
	Use:   "delete <memory-id>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoriesDeleteCommand,
}

var memoriesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every memory",
	Args:  cobra.NoArgs,
	RunE:  runMemoriesClearCommand,
}

func init() {
	memoriesCmd.AddCommand(memoriesListCmd)
	memoriesCmd.AddCommand(memoriesAddCmd)
	memoriesCmd.AddCommand(memoriesDeleteCmd)
	memoriesCmd.AddCommand(memoriesClearCmd)

	memoriesListCmd.Flags().StringVarP(&memoryTypeFilter, "type", "t", "", "Only list memories of this type")
}

func runMemoriesListCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	memories, err := c.ListMemories(ctx, memoryTypeFilter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(memories) == 0 {
		fmt.Fprintln(out, "No memories found.")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-14s %-10s %s\n", "ID", "TYPE", "CONFIDENCE", "CONTENT")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, m := range memories {
		fmt.Fprintf(out, "%-6d %-14s %-10.2f %s\n", m.ID, truncate(m.MemoryType, 14), m.Confidence, truncate(m.Content, 60))
	}
	fmt.Fprintf(out, "\nShowing %d memory(ies)\n", len(memories))
	return nil
}

func runMemoriesAddCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	m, err := c.CreateMemory(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added memory %d\n", m.ID)
	return nil
}

func runMemoriesDeleteCommand(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid memory id %q", args[0])
	}

	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	if err := c.DeleteMemory(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted memory %d\n", id)
	return nil
}

func runMemoriesClearCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	if err := c.ClearMemories(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cleared all memories.")
	return nil
}
