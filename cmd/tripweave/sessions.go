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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/internal/log"
	"github.com/teradata-labs/tripweave/pkg/client"
	"github.com/teradata-labs/tripweave/pkg/mirror"
	"github.com/teradata-labs/tripweave/pkg/trip"
)

// requestTimeout bounds one-shot management calls.
const requestTimeout = 10 * time.Second

var (
	createTitle       string
	createDestination string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage planning sessions",
	Long:  `List, view, create, open, and delete planning sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planning sessions",
	Long: `List all planning sessions, most recently updated first.

Examples:
  tripweave sessions list
`,
	Args: cobra.NoArgs,
	RunE: runSessionsListCommand,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show session details",
	Long: `Show a session and its conversation.

Examples:
  tripweave sessions show 3f2a9c4e-8d1b-4b7a-9e0f-2c5d6a7b8c9d
`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsShowCommand,
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty session",
	Args:  cobra.NoArgs,
	RunE:  runSessionsCreateCommand,
}

var sessionsOpenCmd = &cobra.Command{
	Use:   "open <session-id>",
	Short: "Make a session current and show its latest plan",
	Long: `Make a session current. Later plan requests refine it, and resume shows it.

Examples:
  tripweave sessions open 3f2a9c4e-8d1b-4b7a-9e0f-2c5d6a7b8c9d
`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsOpenCommand,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Long: `Delete a session and its conversation history. Deleting the current
session also forgets it locally.

Examples:
  tripweave sessions delete 3f2a9c4e-8d1b-4b7a-9e0f-2c5d6a7b8c9d
`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsDeleteCommand,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsCreateCmd)
	sessionsCmd.AddCommand(sessionsOpenCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsCreateCmd.Flags().StringVar(&createTitle, "title", "", "Session title")
	sessionsCreateCmd.Flags().StringVar(&createDestination, "destination", "", "Destination the session is about")
	sessionsOpenCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the raw plan as JSON")
}

func runSessionsListCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	sessions, err := c.ListSessions(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}

	current, _ := currentSessionID()
	now := time.Now()

	fmt.Fprintf(out, "  %-38s %-24s %-16s %-15s\n", "SESSION ID", "TITLE", "DESTINATION", "UPDATED")
	fmt.Fprintln(out, strings.Repeat("-", 96))
	for _, s := range sessions {
		marker := " "
		if s.ID == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-38s %-24s %-16s %-15s\n",
			marker,
			s.ID,
			truncate(orDefault(s.Title, "untitled"), 24),
			truncate(orDefault(s.Destination, "n/a"), 16),
			timeAgo(s.UpdatedAt, now),
		)
	}
	fmt.Fprintf(out, "\nShowing %d session(s)\n", len(sessions))
	return nil
}

func runSessionsShowCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	record, err := c.GetSession(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	now := time.Now()
	s := record.Session
	fmt.Fprintf(out, "Session: %s\n", s.ID)
	if s.Title != "" {
		fmt.Fprintf(out, "Title: %s\n", s.Title)
	}
	if s.Destination != "" {
		fmt.Fprintf(out, "Destination: %s\n", s.Destination)
	}
	if t, err := s.CreatedTime(); err == nil {
		fmt.Fprintf(out, "Created: %s (%s)\n", t.Format(time.RFC3339), formatTimeAgo(t, now))
	}
	if t, err := s.UpdatedTime(); err == nil {
		fmt.Fprintf(out, "Updated: %s (%s)\n", t.Format(time.RFC3339), formatTimeAgo(t, now))
	}
	fmt.Fprintf(out, "Messages: %d\n", len(record.Messages))

	if len(record.Messages) > 0 {
		fmt.Fprintln(out, "\nConversation:")
		for _, m := range record.Messages {
			line := m.Content
			if m.TripPlan != nil {
				line = strings.TrimSpace(line + " [trip plan]")
			}
			fmt.Fprintf(out, "  %-9s %s\n", m.Role+":", truncate(line, 80))
		}
	}
	return nil
}

func runSessionsCreateCommand(cmd *cobra.Command, args []string) error {
	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	s, err := c.CreateSession(ctx, createTitle, createDestination)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created session: %s\n", s.ID)
	return nil
}

func runSessionsOpenCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	ok, err := a.orch.OpenSession(ctx, args[0])
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("session %s does not exist", args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "Session %s has no trip plan yet.\n", args[0])
		return nil
	}
	return printOutcome(out, a.orch.State())
}

func runSessionsDeleteCommand(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	c, err := newClient(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	if err := c.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if err := forgetSession(sessionID); err != nil {
		log.Warn("failed to clear session mirror", zap.String("session_id", sessionID), zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session: %s\n", sessionID)
	return nil
}

// currentSessionID reads the mirrored session identifier without starting
// an orchestrator.
func currentSessionID() (string, error) {
	store, err := mirror.Open(config.Mirror)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	id, _, err := store.Get()
	return id, err
}

// forgetSession removes the mirror when it points at sessionID.
func forgetSession(sessionID string) error {
	store, err := mirror.Open(config.Mirror)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id, ok, err := store.Get()
	if err != nil || !ok || id != sessionID {
		return err
	}
	return store.Remove()
}

// timeAgo renders a backend timestamp relative to now.
func timeAgo(ts string, now time.Time) string {
	t, err := trip.ParseTimestamp(ts)
	if err != nil {
		return "unknown"
	}
	return formatTimeAgo(t, now)
}

// formatTimeAgo formats a time as "X ago" (e.g., "2 hours ago").
func formatTimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return ago(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return ago(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return ago(int(d.Hours()/24), "day")
	case d < 30*24*time.Hour:
		return ago(int(d.Hours()/24/7), "week")
	case d < 365*24*time.Hour:
		return ago(int(d.Hours()/24/30), "month")
	default:
		return ago(int(d.Hours()/24/365), "year")
	}
}

func ago(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
