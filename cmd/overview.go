package cmd

import (
	"fmt"
	"time"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Forecast digest: today's position, cliffs, and upcoming obligations",
	RunE:  runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(_ *cobra.Command, _ []string) error {
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

	now := today(cfg)
	current, err := s.OpeningBalance(now)
	if err != nil {
		return err
	}
	digest := pipeline.BuildDigest(proj, now, current, cfg.Forecast.BufferFloorCents, time.Now().UTC())

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASHCAST  %s .. %s", proj.Horizon.Start, proj.Horizon.End)))
	fmt.Println()

	rows := [][]string{
		{"Current balance", cli.FormatCents(digest.CurrentBalanceCents)},
		{"Today EOD", cli.FormatCents(digest.Balances.TodayBalanceCents)},
		{"Safe to spend today", cli.FormatCents(digest.SafeToSpendTodayCents)},
		{"Buffer floor", cli.FormatCents(digest.Balances.BufferFloorCents)},
		{"---"},
	}
	if digest.Balances.MinBalanceCents != nil {
		rows = append(rows, []string{"Horizon minimum",
			fmt.Sprintf("%s on %s", cli.FormatCents(*digest.Balances.MinBalanceCents), digest.Balances.MinBalanceDate)})
	}
	if digest.Balances.NextCliffDate != "" {
		rows = append(rows, []string{"Next cliff",
			fmt.Sprintf("%s (%s)", digest.Balances.NextCliffDate, cli.FormatCents(*digest.Balances.NextCliffBalanceCents))})
	} else {
		rows = append(rows, []string{"Next cliff", "none in horizon"})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(digest.TopCommitmentsNext14Days) > 0 {
		fmt.Println()
		crows := make([][]string, 0, len(digest.TopCommitmentsNext14Days))
		for _, c := range digest.TopCommitmentsNext14Days {
			crows = append(crows, []string{c.Date, c.Name, cli.FormatCents(c.AmountCents)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Commitments next 14 days",
			Headers: []string{"Date", "Name", "Amount"},
			Rows:    crows,
		}))
	}

	if len(digest.UpcomingKeyEvents) > 0 {
		fmt.Println()
		erows := make([][]string, 0, len(digest.UpcomingKeyEvents))
		for _, ev := range digest.UpcomingKeyEvents {
			erows = append(erows, []string{
				ev.Date,
				fmt.Sprintf("%dd", ev.DaysUntil),
				ev.Name,
				cli.FormatCents(ev.AmountCents),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Key events in lead window",
			Headers: []string{"Date", "In", "Name", "Amount"},
			Rows:    erows,
		}))
	}

	// Sparkline over the projected balance curve.
	days := proj.Series.Days()
	if len(days) > 1 {
		vals := make([]float64, 0, len(days))
		for _, d := range days {
			vals = append(vals, float64(proj.Series.Sparse()[d]))
		}
		fmt.Println()
		fmt.Printf("  Balance curve: %s\n", cli.RenderSparkline(vals))
	}
	fmt.Println()

	return nil
}
