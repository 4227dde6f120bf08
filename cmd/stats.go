package cmd

import (
	"fmt"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagStatsWindow int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Daily spend statistics and weekday multipliers",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsWindow, "window", 0, "Spend history window in days (default from config)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	window := flagStatsWindow
	if window < 1 {
		window = cfg.Forecast.StatsWindowDays
	}

	sm, err := pipeline.LoadSpendModel(s, today(cfg), window)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPEND STATS  Last %dd", window)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Daily mean", cli.FormatCents(sm.Stats.MuCents)},
			{"Daily stddev", cli.FormatCents(sm.Stats.SigmaCents)},
		},
	}))

	fmt.Println()
	rows := make([][]string, 0, 7)
	for i, m := range sm.Mults {
		expected := int64(float64(sm.Stats.MuCents)*m + 0.5)
		rows = append(rows, []string{
			cli.FormatDayOfWeek(i),
			cli.FormatMultiplier(m),
			cli.FormatCents(expected),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Weekday multipliers",
		Headers: []string{"Day", "Multiplier", "Expected spend"},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}
