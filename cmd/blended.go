package cmd

import (
	"fmt"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagBandK         float64
	flagBlendedWindow int
)

var blendedCmd = &cobra.Command{
	Use:   "blended",
	Short: "Balance projection with expected spend and a sigma band",
	RunE:  runBlended,
}

func init() {
	blendedCmd.Flags().Float64Var(&flagBandK, "band-k", 0, "Band half-width as a multiple of sigma (default from config)")
	blendedCmd.Flags().IntVar(&flagBlendedWindow, "window", 0, "Spend history window in days (default from config)")
	rootCmd.AddCommand(blendedCmd)
}

func runBlended(_ *cobra.Command, _ []string) error {
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

	window := flagBlendedWindow
	if window < 1 {
		window = cfg.Forecast.StatsWindowDays
	}
	bandK := flagBandK
	if bandK <= 0 {
		bandK = cfg.Forecast.BandK
	}

	sm, err := pipeline.LoadSpendModel(s, start.AddDate(0, 0, -1), window)
	if err != nil {
		return err
	}

	points := forecast.BlendedBand(proj.Series, sm.Stats, sm.Mults, bandK)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BLENDED  %s .. %s", cli.FormatDate(start), cli.FormatDate(end))))
	fmt.Println()
	fmt.Printf("  Daily spend %s ± %s  (k=%.2f, window %dd)\n",
		cli.FormatCents(sm.Stats.MuCents), cli.FormatCents(sm.Stats.SigmaCents), bandK, window)
	fmt.Println()

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			cli.FormatDate(p.Date),
			cli.FormatCents(p.BalanceCents),
			cli.FormatCents(p.ExpectedSpend),
			cli.FormatCents(p.BlendedCents),
			cli.FormatCents(p.LowerCents),
			cli.FormatCents(p.UpperCents),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Balance", "Exp. spend", "Blended", "Lower", "Upper"},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}
