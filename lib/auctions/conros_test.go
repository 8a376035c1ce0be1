package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestConrosParseLot(t *testing.T) {
	page := loadPage(t, "conros_lot.html", "http://auction.conros.ru/clLots/27/1/")
	parser := NewConros()

	item, err := parser.ParseLot(context.Background(), page)
	require.NoError(t, err)

	want := Item{
		Place: "Конрос",
		Date:  Date{Year: 2011, Month: time.September, Day: 29},
		Title: "5 копеек 1924 года",
		Info:  "Диаметр 32 мм.\nРедкость: Р1.\nОсобенности: приятная патина",
		Images: []string{
			"http://auction.conros.ru/images/lot123_1.jpg",
			"http://auction.conros.ru/images/lot123_2.jpg",
		},
		BidCount:    2,
		BidderCount: 2,
		SingleBid:   false,
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestConrosParseLotStillRunning(t *testing.T) {
	page := loadPage(t, "conros_lot_open.html", "http://auction.conros.ru/clLots/27/2/")
	parser := NewConros()

	_, err := parser.ParseLot(context.Background(), page)
	require.ErrorIs(t, err, ErrNotDoneYet)
}

func TestConrosParseListing(t *testing.T) {
	page := loadPage(t, "conros_listing.html", "http://auction.conros.ru/clAuct/27/1/0/0/asc/")
	parser := NewConros()

	entries, err := parser.ParseListing(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	want := ListingEntry{
		LotNumber:      "1",
		Site:           "Аукцион",
		AuctionNumber:  "27",
		URL:            "http://auction.conros.ru/clLots/27/1/",
		Denomination:   "5 копеек",
		Year:           "1924",
		Mintmark:       "",
		Material:       "медь",
		Grade:          "XF",
		Buyer:          "buyer9",
		BidCount:       4,
		Price:          350,
		TotalPayPrice:  385,
		TotalSalePrice: 297.5,
	}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "VF", entries[1].Grade)
	require.Equal(t, float64(1100), entries[1].Price)
}

func TestConrosParseListingFloorSale(t *testing.T) {
	page := loadPage(t, "conros_listing_floor.html", "http://auction.conros.ru/clAuct/14/2/0/0/asc/")
	parser := NewConros()

	entries, err := parser.ParseListing(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Очный", entries[0].Site)
	require.Equal(t, "14", entries[0].AuctionNumber)
}

func TestConrosParseListingNoHeading(t *testing.T) {
	page := loadPage(t, "spb_listing_empty.html", "http://auction.conros.ru/clAuct/27/1/99/0/asc/")
	parser := NewConros()

	entries, err := parser.ParseListing(context.Background(), page)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestConrosPageURL(t *testing.T) {
	parser := NewConros()

	u, err := parser.PageURL(27, 1, 3)
	require.NoError(t, err)
	require.Equal(t, "http://auction.conros.ru/clAuct/27/2/3/0/asc/", u)

	pages := parser.Pages()
	require.Equal(t, 0, pages.Next())
	require.Equal(t, 1, pages.Next())
	require.Equal(t, 2, pages.Next())
}

func TestSplitConrosInfo(t *testing.T) {
	parts := splitConrosInfo("Диаметр 32 мм. Редкость: Р1. Особенности: патина")
	require.Equal(t, []string{"Диаметр 32 мм.", "Редкость: Р1.", "Особенности: патина"}, parts)

	parts = splitConrosInfo("Обычный лот без примечаний")
	require.Equal(t, []string{"Обычный лот без примечаний"}, parts)
}
