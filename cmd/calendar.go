package cmd

import (
	"fmt"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Expanded forecast calendar entries",
	RunE:  runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(_ *cobra.Command, _ []string) error {
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

	if len(proj.Entries) == 0 {
		fmt.Println("\n  No scheduled entries in the horizon.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CALENDAR  %s .. %s", proj.Horizon.Start, proj.Horizon.End)))
	fmt.Println()

	rows := make([][]string, 0, len(proj.Entries))
	for _, e := range proj.Entries {
		shifted := ""
		if e.ShiftApplied {
			shifted = e.Policy.String()
		}
		rows = append(rows, []string{
			cli.FormatDate(e.Date),
			string(e.Type),
			e.Name,
			cli.FormatCentsSigned(e.AmountCents),
			shifted,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Type", "Name", "Amount", "Shifted"},
		Rows:    rows,
	}))

	fmt.Printf("\n  Opening balance: %s (as of %s)\n",
		cli.FormatCents(proj.OpeningBalanceCents),
		start.AddDate(0, 0, -1).Format(model.ISODate))
	fmt.Println()

	return nil
}
