package tui

import (
	"fmt"
	"strings"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/tui/components"
	"github.com/hollowbrook/cashcast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.digest
	var b strings.Builder

	// Row 1: Metric cards
	minNote := ""
	minValue := "-"
	minTone := components.ToneNeutral
	if d.Balances.MinBalanceCents != nil {
		minValue = cli.FormatCents(*d.Balances.MinBalanceCents)
		minNote = "on " + d.Balances.MinBalanceDate
		if *d.Balances.MinBalanceCents < d.Balances.BufferFloorCents {
			minTone = components.ToneWarn
		}
	}

	cliffNote := "none in horizon"
	cliffTone := components.ToneNeutral
	if d.Balances.NextCliffDate != "" {
		cliffNote = "cliff " + d.Balances.NextCliffDate
		cliffTone = components.ToneWarn
	}

	safeTone := components.ToneCredit
	if d.SafeToSpendTodayCents <= 0 {
		safeTone = components.ToneWarn
	}

	cards := []components.Metric{
		{Label: "Current", Value: cli.FormatCents(d.CurrentBalanceCents), Note: "cleared balance"},
		{Label: "Today EOD", Value: cli.FormatCents(d.Balances.TodayBalanceCents), Note: cliffNote, Tone: cliffTone},
		{Label: "Safe to spend", Value: cli.FormatCents(d.SafeToSpendTodayCents), Note: "floor " + cli.FormatCents(d.Balances.BufferFloorCents), Tone: safeTone},
		{Label: "Horizon min", Value: minValue, Note: minNote, Tone: minTone},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: Balance curve over the horizon
	days := a.proj.Series.Days()
	if len(days) > 0 {
		vals := make([]float64, len(days))
		for i, day := range days {
			vals[i] = float64(a.proj.Series.Sparse()[day]) / 100
		}
		color := t.Credit
		if d.Balances.MinBalanceCents != nil && *d.Balances.MinBalanceCents < d.Balances.BufferFloorCents {
			color = t.Warn
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Balance (%dd horizon)", a.proj.Horizon.Days),
			components.Sparkline(vals, color),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: Commitments + Key Events
	halves := components.LayoutRow(cw, 2)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	outStyle := lipgloss.NewStyle().Foreground(t.Debit)

	var commitBody strings.Builder
	if len(d.TopCommitmentsNext14Days) == 0 {
		commitBody.WriteString(dateStyle.Render("none due"))
		commitBody.WriteString("\n")
	}
	innerW := components.CardInnerWidth(halves[0])
	nameW := innerW - 24
	if nameW < 8 {
		nameW = 8
	}
	for _, c := range d.TopCommitmentsNext14Days {
		fmt.Fprintf(&commitBody, "%s %s %s\n",
			dateStyle.Render(c.Date),
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Name, nameW))),
			outStyle.Render(cli.FormatCents(c.AmountCents)))
	}

	var eventBody strings.Builder
	if len(d.UpcomingKeyEvents) == 0 {
		eventBody.WriteString(dateStyle.Render("none in lead window"))
		eventBody.WriteString("\n")
	}
	for _, e := range d.UpcomingKeyEvents {
		fmt.Fprintf(&eventBody, "%s %s %s %s\n",
			dateStyle.Render(e.Date),
			dateStyle.Render(fmt.Sprintf("%3dd", e.DaysUntil)),
			nameStyle.Render(fmt.Sprintf("%-*s", nameW-5, truncStr(e.Name, nameW-5))),
			outStyle.Render(cli.FormatCents(e.AmountCents)))
	}

	commitCard := components.ContentCard("Commitments (14d)", commitBody.String(), halves[0])
	eventCard := components.ContentCard("Key Events", eventBody.String(), halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Commitments (14d)", commitBody.String(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Key Events", eventBody.String(), cw))
	} else {
		b.WriteString(components.CardRow([]string{commitCard, eventCard}))
	}

	return b.String()
}
