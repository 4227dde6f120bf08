package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagSimDate      string
	flagSimFloor     int64
	flagSimThreshold int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <amount>",
	Short: "Check whether a one-off spend keeps the balance above the buffer floor",
	Long: `Check whether spending an amount (in dollars, e.g. 120 or 49.99) on a
date keeps the projected minimum balance at or above the buffer floor.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagSimDate, "date", "", "Spend date, YYYY-MM-DD (default today)")
	simulateCmd.Flags().Int64Var(&flagSimFloor, "floor", -1, "Buffer floor in cents (default from config)")
	simulateCmd.Flags().Int64Var(&flagSimThreshold, "threshold", -1, "Tight-date threshold in cents (default from config)")
	rootCmd.AddCommand(simulateCmd)
}

func parseAmountCents(s string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(math.Round(v * 100)), nil
}

func runSimulate(_ *cobra.Command, args []string) error {
	amount, err := parseAmountCents(args[0])
	if err != nil {
		return err
	}

	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	spendDate := today(cfg)
	if flagSimDate != "" {
		spendDate, err = model.ParseDate(flagSimDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	_, end, err := horizonRange(cfg)
	if err != nil {
		return err
	}
	if end.Before(spendDate) {
		end = spendDate.AddDate(0, 0, cfg.General.HorizonDays)
	}

	proj, err := pipeline.Project(s, spendDate, end, forecast.ExpandOptions{})
	if err != nil {
		return err
	}
	printWarnings(proj.Warnings)

	floor := flagSimFloor
	if floor < 0 {
		floor = cfg.Forecast.BufferFloorCents
	}
	threshold := flagSimThreshold
	if threshold < 0 {
		threshold = cfg.Forecast.TightThresholdCents
	}

	dec := forecast.SimulateSpend(proj.Series, spendDate, end, amount, floor, threshold)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SIMULATE  %s on %s", cli.FormatCents(amount), cli.FormatDate(spendDate))))
	fmt.Println()

	verdict := cli.RenderAmount(1, "SAFE")
	if !dec.Safe {
		verdict = cli.RenderAmount(-1, "NOT SAFE")
	}
	fmt.Printf("  Verdict: %s\n", verdict)
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Baseline minimum", cli.FormatCents(dec.BaselineMinCents)},
			{"Minimum after spend", cli.FormatCents(dec.NewMinBalanceCents)},
			{"Buffer floor", cli.FormatCents(floor)},
			{"Max safe spend", cli.FormatCents(dec.MaxSafeTodayCents)},
		},
	}))

	if len(dec.TightDates) > 0 {
		fmt.Println()
		dates := make([]string, 0, len(dec.TightDates))
		for _, d := range dec.TightDates {
			dates = append(dates, d.Format(model.ISODate))
		}
		fmt.Println(cli.RenderWarning(fmt.Sprintf("  Tight dates: %s", strings.Join(dates, ", "))))
	}
	fmt.Println()

	return nil
}
