package commands

import (
	"log/slog"
	"time"

	"numicat-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(retryCmd)
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Lists lots whose bidding was still open at import time.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, cleanup := openService()
		defer cleanup()

		pending, err := svc.Store().ListPending(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list pending lots", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Url", "Reason", "Last checked"})
		for _, lot := range pending {
			t.AppendRow(table.Row{
				lot.URL,
				lot.Reason,
				lot.LastChecked.Format(time.DateTime),
			})
		}
		t.Render()
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Reimports every pending lot, settling the ones that closed.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, cleanup := openService()
		defer cleanup()

		report, err := svc.RetryPending(cmd.Context())
		if err != nil {
			serviceutil.Fatal("retry failed", err)
		}
		slog.Info("retry finished",
			"imported", report.Imported,
			"pending", report.Pending,
			"skipped", report.Skipped,
			"failed", report.Failed)
	},
}
