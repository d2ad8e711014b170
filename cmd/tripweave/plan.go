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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/tripweave/pkg/orchestrator"
	"github.com/teradata-labs/tripweave/pkg/trip"
)

var (
	planOrigin       string
	planDates        string
	planDays         int
	planTravelers    int
	planTravelTime   string
	planCurrency     string
	planStrictBudget bool
	planFresh        bool
	outputJSON       bool
)

var planCmd = &cobra.Command{
	Use:   "plan <destination>",
	Short: "Plan a trip",
	Long: `Submit a trip planning request and follow its progress live.

The request continues the current session when there is one, so the backend
can refine earlier plans. Use --new to start a fresh session.

Examples:
  tripweave plan Lisbon
  tripweave plan "New York" --days 5 --travelers 2 --currency EUR
  tripweave plan Kyoto --origin Berlin --dates "2026-04-01 to 2026-04-08" --new
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlanCommand,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Show the plan of the current session",
	Long: `Restore the current session from the backend and show its latest plan.

Examples:
  tripweave resume
  tripweave resume --json
`,
	Args: cobra.NoArgs,
	RunE: runResumeCommand,
}

var newTripCmd = &cobra.Command{
	Use:   "new",
	Short: "Forget the current session and start over",
	Args:  cobra.NoArgs,
	RunE:  runNewTripCommand,
}

func init() {
	planCmd.Flags().StringVar(&planOrigin, "origin", "", "Departure city")
	planCmd.Flags().StringVar(&planDates, "dates", "", "Travel dates")
	planCmd.Flags().IntVarP(&planDays, "days", "d", trip.DefaultDays, "Trip length in days")
	planCmd.Flags().IntVarP(&planTravelers, "travelers", "n", trip.DefaultTravelers, "Number of travelers")
	planCmd.Flags().StringVar(&planTravelTime, "travel-time", "", "Rough travel period, e.g. \"Summer 2026\"")
	planCmd.Flags().StringVar(&planCurrency, "currency", trip.DefaultCurrency, "Preferred currency")
	planCmd.Flags().BoolVar(&planStrictBudget, "strict-budget", false, "Keep the plan strictly within budget")
	planCmd.Flags().BoolVar(&planFresh, "new", false, "Start a new session instead of continuing the current one")
	planCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the raw plan as JSON")

	resumeCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the raw plan as JSON")
}

func runPlanCommand(cmd *cobra.Command, args []string) error {
	q := trip.Query{
		Destination:  strings.Join(args, " "),
		Origin:       planOrigin,
		Dates:        planDates,
		Days:         planDays,
		Travelers:    planTravelers,
		TravelTime:   planTravelTime,
		Currency:     planCurrency,
		StrictBudget: planStrictBudget,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	final, err := watch(ctx, a.orch, out, func() error {
		if planFresh {
			a.orch.NewTrip()
		} else if _, err := a.orch.MountResults(ctx); err != nil {
			return err
		}
		return a.orch.Submit(ctx, q)
	})
	if err != nil && !errors.Is(err, orchestrator.ErrSuperseded) && final.Phase != orchestrator.PhaseFailed {
		return err
	}

	switch final.Phase {
	case orchestrator.PhaseSettled:
		return printOutcome(out, final)
	case orchestrator.PhaseFailed:
		return errors.New(final.Error)
	default:
		return fmt.Errorf("planning interrupted")
	}
}

func runResumeCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var nav orchestrator.Navigation
	final, err := watch(cmd.Context(), a.orch, out, func() error {
		var err error
		nav, err = a.orch.MountResults(cmd.Context())
		return err
	})
	if err != nil {
		return err
	}

	if nav == orchestrator.NavigateSearch || final.Outcome == nil {
		fmt.Fprintln(out, "Nothing to resume. Start with: tripweave plan <destination>")
		return nil
	}
	return printOutcome(out, final)
}

func runNewTripCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()

	a.orch.NewTrip()
	fmt.Fprintln(cmd.OutOrStdout(), "Started a new trip. The next plan opens a new session.")
	return nil
}

// watch runs fn while printing state changes, and returns the state once fn
// has returned and every pending snapshot has been printed.
func watch(ctx context.Context, orch *orchestrator.Orchestrator, out io.Writer, fn func() error) (orchestrator.State, error) {
	subCtx, cancel := context.WithCancel(ctx)
	events := orch.Subscribe(subCtx)
	printer := newProgressPrinter(out)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			printer.Update(ev.Payload)
		}
	}()

	err := fn()
	cancel()
	<-done

	final := orch.State()
	printer.Update(final)
	return final, err
}

func printOutcome(out io.Writer, s orchestrator.State) error {
	if outputJSON {
		data, err := json.MarshalIndent(map[string]any{
			"session_id": s.SessionID,
			"query":      s.Query,
			"trip_plan":  s.Outcome.Plan,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	fmt.Fprintln(out)
	return renderPlan(out, s.Outcome.Plan, s.SessionID)
}
