package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"numicat-backend/lib/auctions"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lotCmd)
}

var lotCmd = &cobra.Command{
	Use:   "lot <url>...",
	Short: "Imports the given lot urls and prints the parsed records.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, cleanup := openService()
		defer cleanup()

		for _, rawURL := range args {
			item, err := svc.ImportLot(cmd.Context(), rawURL)
			switch {
			case errors.Is(err, auctions.ErrNotDoneYet):
				slog.Warn("bidding is still open, lot recorded as pending", "url", rawURL)
				continue
			case errors.Is(err, auctions.ErrCanceled):
				slog.Warn("lot was pulled, recorded as skipped", "url", rawURL)
				continue
			case err != nil:
				slog.Error("failed to import lot", "url", rawURL, "err", err)
				continue
			}
			printItem(rawURL, item)
		}
	},
}

func printItem(url string, item auctions.Item) {
	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Url", url},
		{"Site", item.Place},
		{"Title", item.Title},
		{"Closed", item.Date},
		{"Grade", item.Grade},
		{"Seller", item.Seller},
		{"Buyer", item.Buyer},
		{"Price", item.Price},
		{"Buyer pays", item.TotalPayPrice},
		{"Seller nets", item.TotalSalePrice},
		{"Bids", fmt.Sprintf("%d (%d bidders)", item.BidCount, item.BidderCount)},
		{"Single bid", item.SingleBid},
		{"Images", strings.Join(item.Images, "\n")},
	})
	t.Render()
}
