package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/tui/components"
	"github.com/hollowbrook/cashcast/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// simulateState holds the affordability-check form and its last result.
type simulateState struct {
	form *huh.Form
	vals simulateValues

	result      *forecast.SpendDecision
	amountCents int64
	date        time.Time
}

type simulateValues struct {
	Date   string
	Amount string
}

func (a App) startSimulateForm() (tea.Model, tea.Cmd) {
	a.activeTab = 2
	a.sim.vals = simulateValues{Date: a.today.Format(model.ISODate)}

	a.sim.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Description("Dollars, e.g. 120 or 49.99").
				Value(&a.sim.vals.Amount).
				Validate(func(s string) error {
					_, err := parseDollars(s)
					return err
				}),
			huh.NewInput().
				Key("date").
				Title("Spend date").
				Description("YYYY-MM-DD").
				Value(&a.sim.vals.Date).
				Validate(func(s string) error {
					if _, err := model.ParseDate(s); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase())

	if a.width > 0 {
		a.sim.form = a.sim.form.WithWidth(a.contentWidth())
	}
	return a, a.sim.form.Init()
}

func (a App) updateSimulateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.sim.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.sim.form = f
	}

	if a.sim.form.State == huh.StateCompleted {
		a.computeSimulation()
		a.sim.form = nil
		return a, nil
	}

	if a.sim.form.State == huh.StateAborted {
		a.sim.form = nil
		return a, nil
	}

	return a, cmd
}

func (a *App) computeSimulation() {
	amount, err := parseDollars(a.sim.vals.Amount)
	if err != nil {
		return
	}
	date, err := model.ParseDate(a.sim.vals.Date)
	if err != nil {
		return
	}

	horizonEnd, err := model.ParseDate(a.proj.Horizon.End)
	if err != nil {
		return
	}

	dec := forecast.SimulateSpend(a.proj.Series, date, horizonEnd, amount,
		a.cfg.Forecast.BufferFloorCents, a.cfg.Forecast.TightThresholdCents)

	a.sim.result = &dec
	a.sim.amountCents = amount
	a.sim.date = date
}

func (a App) renderSimulateTab(cw int) string {
	t := theme.Active

	if a.sim.form != nil {
		return a.sim.form.View()
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	if a.sim.result == nil {
		return "\n  " + labelStyle.Render("Press Enter to run an affordability check.")
	}

	dec := a.sim.result
	var b strings.Builder

	verdict := lipgloss.NewStyle().Foreground(t.Credit).Bold(true).Render("SAFE")
	if !dec.Safe {
		verdict = lipgloss.NewStyle().Foreground(t.Debit).Bold(true).Render("NOT SAFE")
	}

	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s on %s\n\n",
		verdict,
		valueStyle.Render(cli.FormatCents(a.sim.amountCents)),
		valueStyle.Render(a.sim.date.Format(model.ISODate)))
	fmt.Fprintf(&body, "%s %s\n",
		labelStyle.Render("Baseline minimum   "),
		valueStyle.Render(cli.FormatCents(dec.BaselineMinCents)))
	fmt.Fprintf(&body, "%s %s\n",
		labelStyle.Render("Minimum after spend"),
		valueStyle.Render(cli.FormatCents(dec.NewMinBalanceCents)))
	fmt.Fprintf(&body, "%s %s\n",
		labelStyle.Render("Buffer floor       "),
		valueStyle.Render(cli.FormatCents(a.cfg.Forecast.BufferFloorCents)))
	fmt.Fprintf(&body, "%s %s\n",
		labelStyle.Render("Max safe spend     "),
		valueStyle.Render(cli.FormatCents(dec.MaxSafeTodayCents)))

	if dec.MaxSafeTodayCents > 0 {
		body.WriteString("\n")
		pct := float64(a.sim.amountCents) / float64(dec.MaxSafeTodayCents)
		barW := components.CardInnerWidth(cw) - 24
		if barW < 10 {
			barW = 10
		}
		body.WriteString(components.BufferBar("Headroom used", pct, 14, barW))
		body.WriteString("\n")
	}

	if len(dec.TightDates) > 0 {
		warnStyle := lipgloss.NewStyle().Foreground(t.Warn)
		dates := make([]string, 0, len(dec.TightDates))
		for _, d := range dec.TightDates {
			dates = append(dates, d.Format(model.ISODate))
		}
		body.WriteString("\n")
		body.WriteString(warnStyle.Render("Tight: " + strings.Join(dates, ", ")))
		body.WriteString("\n")
	}

	b.WriteString(components.ContentCard("Affordability", body.String(), cw))
	b.WriteString("\n")
	b.WriteString("  " + labelStyle.Render("[Enter] new check"))

	return b.String()
}

// parseDollars converts a dollar string like "49.99" into cents.
func parseDollars(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.New("enter a non-negative amount")
	}
	return int64(math.Round(v * 100)), nil
}
