package cmd

import (
	"fmt"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Projected end-of-day balances over the horizon",
	RunE:  runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

func runBalances(_ *cobra.Command, _ []string) error {
	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	start, end, err := horizonRange(cfg)
	if err != nil {
		return err
	}

	proj, err := pipeline.Project(s, start, end, forecast.ExpandOptions{})
	if err != nil {
		return err
	}
	printWarnings(proj.Warnings)

	days := proj.Series.Days()
	if len(days) == 0 {
		fmt.Printf("\n  No entries in horizon; balance stays at %s.\n", cli.FormatCents(proj.OpeningBalanceCents))
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BALANCES  %s .. %s", proj.Horizon.Start, proj.Horizon.End)))
	fmt.Println()

	floor := cfg.Forecast.BufferFloorCents
	rows := make([][]string, 0, len(days))
	vals := make([]float64, 0, len(days))
	for _, d := range days {
		bal := proj.Series.Sparse()[d]
		vals = append(vals, float64(bal))
		note := ""
		if bal < floor {
			note = "below floor"
		}
		rows = append(rows, []string{cli.FormatDate(d), cli.FormatCents(bal), note})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Balance", ""},
		Rows:    rows,
	}))

	if min, date, ok := proj.Series.Min(start, end); ok {
		fmt.Printf("\n  Minimum: %s on %s\n", cli.FormatCents(min), cli.FormatDate(date))
	}
	if len(vals) > 1 {
		fmt.Printf("  Curve:   %s\n", cli.RenderSparkline(vals))
	}
	fmt.Println()

	return nil
}
