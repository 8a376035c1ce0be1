package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sitesCmd)
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Lists the supported auction sites and their scan categories.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, cleanup := openService()
		defer cleanup()

		t := newTable()
		t.AppendHeader(table.Row{"Site", "Hostnames", "Charset", "Categories"})
		for _, site := range svc.Registry().Sites() {
			categories := strings.Join(site.Categories(), "\n")
			if categories == "" {
				categories = "(lot import only)"
			}
			t.AppendRow(table.Row{
				site.Name(),
				strings.Join(site.Hostnames(), "\n"),
				site.Encoding(),
				categories,
			})
		}
		t.Render()
	},
}
