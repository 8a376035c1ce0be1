package commands

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"numicat-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <site> <auction-number> <category>",
	Short: "Imports every closed lot of one auction category.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		svc, cleanup := openService()
		defer cleanup()

		site, ok := svc.FindSite(args[0])
		if !ok {
			serviceutil.Fatal("unknown site", fmt.Errorf("%q", args[0]))
		}
		auction, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("auction number must be an integer", err)
		}
		category := strings.Join(args[2:], " ")

		t1 := time.Now()
		report, err := svc.ScanAuction(cmd.Context(), site, auction, category)
		if err != nil {
			serviceutil.Fatal("scan failed", err)
		}

		slog.Info("scan finished",
			"site", site.Name(),
			"auction", auction,
			"imported", report.Imported,
			"pending", report.Pending,
			"skipped", report.Skipped,
			"failed", report.Failed,
			"seconds", time.Since(t1).Seconds())
	},
}
