package commands

import (
	"numicat-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var lotsSite *string

func init() {
	lotsSite = lotsCmd.Flags().String("site", "", "Only list lots from this site.")
	rootCmd.AddCommand(lotsCmd)
}

var lotsCmd = &cobra.Command{
	Use:   "lots [--site <name>]",
	Short: "Lists the imported lots, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, cleanup := openService()
		defer cleanup()

		place := *lotsSite
		if place != "" {
			if site, ok := svc.FindSite(place); ok {
				place = site.Name()
			}
		}

		records, err := svc.Store().ListItems(cmd.Context(), place)
		if err != nil {
			serviceutil.Fatal("failed to list lots", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Site", "Title", "Closed", "Grade", "Price", "Buyer", "Url"})
		for _, record := range records {
			closed := ""
			if !record.Item.Date.IsZero() {
				closed = record.Item.Date.String()
			}
			t.AppendRow(table.Row{
				record.Item.Place,
				record.Item.Title,
				closed,
				record.Item.Grade,
				record.Item.Price,
				record.Item.Buyer,
				record.URL,
			})
		}
		t.Render()
	},
}
