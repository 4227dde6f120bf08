package tui

import (
	"fmt"
	"strings"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// calendarRow is one rendered line: an expanded entry with the running
// balance carried to its date.
type calendarRow struct {
	entry   model.Entry
	balance int64
}

func (a App) calendarRows() []calendarRow {
	rows := make([]calendarRow, 0, len(a.proj.Entries))
	for _, e := range a.proj.Entries {
		rows = append(rows, calendarRow{entry: e, balance: a.proj.Series.At(e.Date)})
	}
	return rows
}

func (a App) maxCalScroll() int {
	visible := a.height - scrollOverhead
	if visible < 1 {
		visible = 1
	}
	m := len(a.proj.Entries) - visible
	if m < 0 {
		m = 0
	}
	return m
}

func (a App) renderCalendarTab(cw, contentH int) string {
	t := theme.Active
	rows := a.calendarRows()

	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	inStyle := lipgloss.NewStyle().Foreground(t.Credit)
	outStyle := lipgloss.NewStyle().Foreground(t.Debit)
	balStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	lowStyle := lipgloss.NewStyle().Foreground(t.Warn).Bold(true)
	shiftStyle := lipgloss.NewStyle().Foreground(t.Notice)
	typeStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder

	openLine := fmt.Sprintf("  Opening %s as of %s",
		cli.FormatCents(a.proj.OpeningBalanceCents), a.proj.Horizon.Start)
	b.WriteString(dateStyle.Render(openLine))
	b.WriteString("\n\n")

	if len(rows) == 0 {
		b.WriteString(dateStyle.Render("  No scheduled entries in this horizon."))
		return b.String()
	}

	innerW := cw - 2
	nameW := innerW - 52
	if nameW < 10 {
		nameW = 10
	}

	visible := contentH - 3 // opening line + blank + possible truncation
	if visible < 1 {
		visible = 1
	}
	lo := a.calScroll
	if lo > len(rows)-1 {
		lo = len(rows) - 1
	}
	hi := lo + visible
	if hi > len(rows) {
		hi = len(rows)
	}

	for _, r := range rows[lo:hi] {
		amtStyle := outStyle
		if r.entry.AmountCents > 0 {
			amtStyle = inStyle
		}

		bs := balStyle
		if r.balance < a.cfg.Forecast.BufferFloorCents {
			bs = lowStyle
		}

		shifted := "          "
		if r.entry.ShiftApplied {
			shifted = fmt.Sprintf("%-10s", truncStr(r.entry.Policy.String(), 10))
		}

		fmt.Fprintf(&b, "  %s %s %s %s %s %s\n",
			dateStyle.Render(r.entry.Date.Format(model.ISODate)),
			typeStyle.Render(fmt.Sprintf("%-10s", r.entry.Type)),
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(r.entry.Name, nameW))),
			amtStyle.Render(fmt.Sprintf("%12s", cli.FormatCentsSigned(r.entry.AmountCents))),
			shiftStyle.Render(shifted),
			bs.Render(fmt.Sprintf("%12s", cli.FormatCents(r.balance))))
	}

	if hi < len(rows) {
		b.WriteString(dateStyle.Render(fmt.Sprintf("  ... %d more (j/k to scroll)", len(rows)-hi)))
		b.WriteString("\n")
	}

	return b.String()
}
