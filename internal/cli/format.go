// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatCents formats an integer cent amount as dollars.
// e.g., 123456 -> "$1,234.56", -500 -> "-$5.00"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, FormatNumber(cents/100), cents%100)
}

// FormatCentsSigned is FormatCents with an explicit leading + on positive
// amounts, for ledger-style entry listings.
func FormatCentsSigned(cents int64) string {
	if cents > 0 {
		return "+" + FormatCents(cents)
	}
	return FormatCents(cents)
}

// FormatDate renders a date as YYYY-MM-DD with its short weekday.
// e.g., "2025-01-06 Mon"
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02 Mon")
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMultiplier renders a weekday multiplier with two decimals.
func FormatMultiplier(m float64) string {
	return fmt.Sprintf("%.2fx", m)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a Monday-first
// weekday index.
func FormatDayOfWeek(mondayIdx int) string {
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if mondayIdx >= 0 && mondayIdx < 7 {
		return days[mondayIdx]
	}
	return "???"
}
