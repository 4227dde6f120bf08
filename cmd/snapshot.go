package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute and store a forecast snapshot now",
	RunE:  runSnapshot,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the most recently stored snapshot digest",
	RunE:  runSnapshotShow,
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(_ *cobra.Command, _ []string) error {
	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	rec, err := pipeline.RunNightly(s, today(cfg), cfg.General.HorizonDays, cfg.Forecast.BufferFloorCents, nil)
	if err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Printf("stored snapshot %s (%s .. %s)\n",
			rec.ID, rec.Digest.Horizon.Start, rec.Digest.Horizon.End)
	}
	renderDigest(rec.Digest)
	return nil
}

func runSnapshotShow(_ *cobra.Command, _ []string) error {
	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	rec, err := s.LatestSnapshot()
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no snapshots stored yet, run 'cashcast snapshot' first")
	}
	if err != nil {
		return err
	}

	fmt.Printf("snapshot %s, generated %s\n",
		rec.ID, rec.GeneratedAt.Format(time.RFC3339))
	renderDigest(rec.Digest)
	return nil
}

func renderDigest(d model.Digest) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DIGEST  %s .. %s", d.Horizon.Start, d.Horizon.End)))
	fmt.Println()

	rows := [][]string{
		{"Current balance", cli.FormatCents(d.CurrentBalanceCents)},
		{"Today EOD", cli.FormatCents(d.Balances.TodayBalanceCents)},
		{"Safe to spend today", cli.FormatCents(d.SafeToSpendTodayCents)},
		{"Buffer floor", cli.FormatCents(d.Balances.BufferFloorCents)},
	}
	if d.Balances.MinBalanceCents != nil {
		rows = append(rows, []string{
			"Horizon minimum",
			fmt.Sprintf("%s on %s", cli.FormatCents(*d.Balances.MinBalanceCents), d.Balances.MinBalanceDate),
		})
	}
	if d.Balances.NextCliffDate != "" && d.Balances.NextCliffBalanceCents != nil {
		rows = append(rows, []string{
			"Next cliff",
			fmt.Sprintf("%s on %s", cli.FormatCents(*d.Balances.NextCliffBalanceCents), d.Balances.NextCliffDate),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows}))

	if len(d.TopCommitmentsNext14Days) > 0 {
		crows := make([][]string, 0, len(d.TopCommitmentsNext14Days))
		for _, c := range d.TopCommitmentsNext14Days {
			crows = append(crows, []string{c.Date, c.Name, cli.FormatCents(c.AmountCents)})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Commitments next 14 days",
			Headers: []string{"Date", "Name", "Amount"},
			Rows:    crows,
		}))
	}

	if len(d.UpcomingKeyEvents) > 0 {
		erows := make([][]string, 0, len(d.UpcomingKeyEvents))
		for _, e := range d.UpcomingKeyEvents {
			erows = append(erows, []string{
				e.Date, fmt.Sprintf("%dd", e.DaysUntil), e.Name, cli.FormatCents(e.AmountCents),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Upcoming key events",
			Headers: []string{"Date", "In", "Name", "Amount"},
			Rows:    erows,
		}))
	}
	fmt.Println()
}
