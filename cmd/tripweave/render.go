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
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/teradata-labs/tripweave/pkg/orchestrator"
	"github.com/teradata-labs/tripweave/pkg/trip"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	statusStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#8A8A8A"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// progressPrinter prints the difference between successive state snapshots
// as plain lines, so it works in pipes as well as terminals.
type progressPrinter struct {
	w          io.Writer
	phase      orchestrator.Phase
	step       int
	lastStatus string
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, phase: orchestrator.PhaseIdle}
}

// Update prints whatever changed since the previous snapshot.
func (p *progressPrinter) Update(s orchestrator.State) {
	if s.Phase == orchestrator.PhaseSubmitting && p.phase != orchestrator.PhaseSubmitting {
		p.step = 0
		p.lastStatus = ""
		lipgloss.Fprintln(p.w, titleStyle.Render("Planning your trip to "+s.Query.Destination))
	}
	if s.Phase == orchestrator.PhaseRestoring && p.phase != orchestrator.PhaseRestoring {
		lipgloss.Fprintln(p.w, statusStyle.Render("Restoring session "+s.SessionID+"..."))
	}

	if s.StatusMessage != "" && s.StatusMessage != p.lastStatus {
		p.lastStatus = s.StatusMessage
		lipgloss.Fprintln(p.w, statusStyle.Render("  › "+s.StatusMessage))
	}

	if p.phase == orchestrator.PhaseSubmitting || s.Phase == orchestrator.PhaseSubmitting {
		steps := trip.Steps()
		for ; p.step < s.CurrentStepIndex && p.step < len(steps); p.step++ {
			lipgloss.Fprintln(p.w, doneStyle.Render("  ✓ "+steps[p.step].Label))
		}
	}

	p.phase = s.Phase
}

// planView picks the fields of a plan worth summarising on a terminal.
type planView struct {
	Destination       string         `json:"destination"`
	Flights           []flightView   `json:"flights"`
	Hotels            []hotelView    `json:"hotels"`
	Visa              *visaView      `json:"visa"`
	Itinerary         []itineraryDay `json:"itinerary"`
	TotalBudget       string         `json:"total_budget"`
	PreferredCurrency string         `json:"preferred_currency"`
}

type flightView struct {
	Airline  string `json:"airline"`
	Price    string `json:"price"`
	Duration string `json:"duration"`
}

type hotelView struct {
	Name          string  `json:"name"`
	PricePerNight string  `json:"price_per_night"`
	Rating        float64 `json:"rating"`
}

type visaView struct {
	Country  string `json:"country"`
	Required bool   `json:"required"`
}

type itineraryDay struct {
	Day        int `json:"day"`
	Activities []struct {
		Name string `json:"name"`
	} `json:"activities"`
}

// renderPlan writes a short human summary of a settled plan.
func renderPlan(w io.Writer, plan *trip.Plan, sessionID string) error {
	var v planView
	if err := plan.Decode(&v); err != nil {
		return fmt.Errorf("failed to read plan: %w", err)
	}

	lipgloss.Fprintln(w, titleStyle.Render("Trip to "+v.Destination))
	if sessionID != "" {
		lipgloss.Fprintf(w, "%s %s\n", labelStyle.Render("Session:"), sessionID)
	}
	if v.TotalBudget != "" {
		budget := v.TotalBudget
		if v.PreferredCurrency != "" && !strings.Contains(budget, v.PreferredCurrency) {
			budget += " " + v.PreferredCurrency
		}
		lipgloss.Fprintf(w, "%s %s\n", labelStyle.Render("Budget:"), budget)
	}
	if v.Visa != nil {
		visa := "not required"
		if v.Visa.Required {
			visa = "required"
		}
		lipgloss.Fprintf(w, "%s %s (%s)\n", labelStyle.Render("Visa:"), visa, v.Visa.Country)
	}

	if len(v.Flights) > 0 {
		lipgloss.Fprintln(w, labelStyle.Render("Flights:"))
		for _, f := range v.Flights {
			lipgloss.Fprintf(w, "  - %s  %s  %s\n", f.Airline, f.Price, f.Duration)
		}
	}
	if len(v.Hotels) > 0 {
		lipgloss.Fprintln(w, labelStyle.Render("Hotels:"))
		for _, h := range v.Hotels {
			lipgloss.Fprintf(w, "  - %s  %s/night  %.1f★\n", h.Name, h.PricePerNight, h.Rating)
		}
	}
	if len(v.Itinerary) > 0 {
		lipgloss.Fprintln(w, labelStyle.Render("Itinerary:"))
		for _, day := range v.Itinerary {
			names := make([]string, 0, len(day.Activities))
			for _, a := range day.Activities {
				names = append(names, a.Name)
			}
			lipgloss.Fprintf(w, "  Day %d: %s\n", day.Day, strings.Join(names, ", "))
		}
	}
	return nil
}

func renderError(w io.Writer, msg string) {
	lipgloss.Fprintln(w, errorStyle.Render(msg))
}
