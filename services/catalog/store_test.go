package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"numicat-backend/lib/auctions"
	"numicat-backend/lib/telemetry"
	"numicat-backend/services/catalog/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) Store {
	t.Helper()

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	return NewStore(sqlite)
}

func TestStoreSaveAndGet(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:catalog")
	defer cleanup()

	store := openTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.GetItem(ctx, "http://molotok.ru/item/1")
	require.ErrorIs(t, err, ErrNotFound)

	item := auctions.Item{
		Place:          "Молоток.Ру",
		Title:          "5 копеек 1924 года",
		Date:           auctions.Date{Year: 2012, Month: time.January, Day: 19},
		Buyer:          "buyer01",
		Price:          1250,
		TotalPayPrice:  1400,
		TotalSalePrice: 1198.75,
		BidCount:       1,
		SingleBid:      true,
		Images:         []string{"http://img.molotok.ru/large/1.jpg"},
		Info:           "Сохранность отличная",
	}
	err = store.SaveItem(ctx, "http://molotok.ru/item/1", item)
	require.NoError(t, err)

	record, err := store.GetItem(ctx, "http://molotok.ru/item/1")
	require.NoError(t, err)
	require.Equal(t, "http://molotok.ru/item/1", record.URL)
	require.Equal(t, item, record.Item)
	require.False(t, record.ImportedAt.IsZero())

	// a reimport overwrites, it must not duplicate
	item.Price = 1300
	err = store.SaveItem(ctx, "http://molotok.ru/item/1", item)
	require.NoError(t, err)

	records, err := store.ListItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, float64(1300), records[0].Item.Price)
}

func TestStoreListItemsByPlace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.SaveItem(ctx, "http://molotok.ru/item/1", auctions.Item{Place: "Молоток.Ру"})
	require.NoError(t, err)
	err = store.SaveItem(ctx, "http://www.wolmar.ru/auction/59/175035", auctions.Item{Place: "Wolmar"})
	require.NoError(t, err)

	records, err := store.ListItems(ctx, "Wolmar")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "http://www.wolmar.ru/auction/59/175035", records[0].URL)

	records, err = store.ListItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestStorePendingLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.MarkPending(ctx, "http://molotok.ru/item/2", "bidding still open")
	require.NoError(t, err)
	err = store.MarkSkipped(ctx, "http://molotok.ru/item/3", "lot was canceled")
	require.NoError(t, err)

	// only open lots come back for retry
	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "http://molotok.ru/item/2", pending[0].URL)
	require.Equal(t, PendingOpen, pending[0].Status)
	require.Equal(t, "bidding still open", pending[0].Reason)

	// a successful import settles the pending entry
	err = store.SaveItem(ctx, "http://molotok.ru/item/2", auctions.Item{Place: "Молоток.Ру"})
	require.NoError(t, err)

	pending, err = store.ListPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestStoreResolvePending(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.MarkPending(ctx, "http://molotok.ru/item/4", "bidding still open")
	require.NoError(t, err)
	err = store.ResolvePending(ctx, "http://molotok.ru/item/4")
	require.NoError(t, err)

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}
