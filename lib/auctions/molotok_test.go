package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
}

func TestMolotokParseLot(t *testing.T) {
	page := loadPage(t, "molotok_lot.html", "http://molotok.ru/item/12345")
	parser := &molotok{now: fixedClock(2012)}

	item, err := parser.ParseLot(context.Background(), page)
	require.NoError(t, err)

	want := Item{
		Place:     "Молоток.Ру",
		Date:      Date{Year: 2012, Month: time.January, Day: 19},
		Seller:    "seller77",
		Buyer:     "buyer01",
		BidCount:  1,
		SingleBid: true,
		Price:     1250,
		// hammer price plus 150 shipping
		TotalPayPrice: 1400,
		// 1250 - (25 + 750*3.5%)
		TotalSalePrice: 1198.75,
		Images: []string{
			"http://img.molotok.ru/large/1.jpg",
			"http://img.molotok.ru/large/2.jpg",
		},
		Info: "Монета 5 копеек 1924 года. Сохранность отличная.\nhttp://molotok.ru/item/12345",
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestMolotokParseLotStillRunning(t *testing.T) {
	page := loadPage(t, "molotok_open.html", "http://molotok.ru/item/12345")
	parser := &molotok{now: fixedClock(2012)}

	_, err := parser.ParseLot(context.Background(), page)
	require.ErrorIs(t, err, ErrNotDoneYet)
}

func TestMolotokParseLotArchived(t *testing.T) {
	page := loadPage(t, "molotok_archived.html", "http://molotok.ru/item/12345")
	parser := &molotok{now: fixedClock(2012)}

	_, err := parser.ParseLot(context.Background(), page)
	require.ErrorIs(t, err, ErrCanceled)
}

func TestMolotokNoListings(t *testing.T) {
	parser := NewMolotok()

	_, err := parser.PageURL(1, 0, 0)
	require.ErrorIs(t, err, ErrNoListings)
	require.Nil(t, parser.Pages())
}
