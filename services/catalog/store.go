package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"numicat-backend/lib/auctions"
)

// ErrNotFound is returned when a lot url has never been imported.
var ErrNotFound = errors.New("lot not found")

// LotRecord is one imported lot as stored, keyed by its source url.
type LotRecord struct {
	URL        string
	ImportedAt time.Time
	Item       auctions.Item
}

// PendingLot is a lot whose import did not produce a record yet,
// either because bidding was still open or because the lot was pulled.
type PendingLot struct {
	URL         string
	Status      string
	Reason      string
	LastChecked time.Time
}

const (
	// the lot should be retried later
	PendingOpen = "open"
	// the lot is gone for good, kept only so reimports skip it
	PendingSkipped = "skipped"
)

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) SaveItem(ctx context.Context, url string, item auctions.Item) error {
	images, err := json.Marshal(item.Images)
	if err != nil {
		return err
	}
	closeDate := ""
	if !item.Date.IsZero() {
		closeDate = item.Date.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT OR REPLACE INTO auction_lot (
    url, place, title, denomination, country, period, year, mintmark,
    category, material, grade, variety, close_date, seller, buyer,
    price, total_pay_price, total_sale_price,
    bid_count, bidder_count, single_bid, images, info, imported_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		url, item.Place, item.Title, item.Denomination, item.Country,
		item.Period, item.Year, item.Mintmark, item.Category,
		item.Material, item.Grade, item.Variety, closeDate,
		item.Seller, item.Buyer,
		item.Price, item.TotalPayPrice, item.TotalSalePrice,
		item.BidCount, item.BidderCount, boolToInt(item.SingleBid),
		string(images), item.Info, time.Now().Unix(),
	)
	if err != nil {
		return err
	}

	// a successful import settles any pending entry for the url
	_, err = tx.ExecContext(ctx, `DELETE FROM pending_lot WHERE url = ?`, url)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s Store) GetItem(ctx context.Context, url string) (LotRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT url, place, title, denomination, country, period, year, mintmark,
       category, material, grade, variety, close_date, seller, buyer,
       price, total_pay_price, total_sale_price,
       bid_count, bidder_count, single_bid, images, info, imported_at
FROM auction_lot WHERE url = ?`, url)

	record, err := scanLotRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return LotRecord{}, ErrNotFound
	}
	return record, err
}

// ListItems returns imported lots, newest import first. An empty place
// matches every site.
func (s Store) ListItems(ctx context.Context, place string) ([]LotRecord, error) {
	query := `
SELECT url, place, title, denomination, country, period, year, mintmark,
       category, material, grade, variety, close_date, seller, buyer,
       price, total_pay_price, total_sale_price,
       bid_count, bidder_count, single_bid, images, info, imported_at
FROM auction_lot`
	args := []any{}
	if place != "" {
		query += ` WHERE place = ?`
		args = append(args, place)
	}
	query += ` ORDER BY imported_at DESC, url`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LotRecord
	for rows.Next() {
		record, err := scanLotRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s Store) MarkPending(ctx context.Context, url, reason string) error {
	return s.markLot(ctx, url, PendingOpen, reason)
}

func (s Store) MarkSkipped(ctx context.Context, url, reason string) error {
	return s.markLot(ctx, url, PendingSkipped, reason)
}

func (s Store) markLot(ctx context.Context, url, status, reason string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO pending_lot (url, status, reason, last_checked)
VALUES (?, ?, ?, ?)`,
		url, status, reason, time.Now().Unix())
	return err
}

func (s Store) ResolvePending(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_lot WHERE url = ?`, url)
	return err
}

// ListPending returns lots awaiting a retry, oldest check first.
func (s Store) ListPending(ctx context.Context) ([]PendingLot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT url, status, reason, last_checked
FROM pending_lot WHERE status = ?
ORDER BY last_checked, url`, PendingOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingLot
	for rows.Next() {
		var p PendingLot
		var lastChecked int64
		err := rows.Scan(&p.URL, &p.Status, &p.Reason, &lastChecked)
		if err != nil {
			return nil, err
		}
		p.LastChecked = time.Unix(lastChecked, 0)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLotRecord(row rowScanner) (LotRecord, error) {
	var record LotRecord
	var closeDate, images string
	var singleBid int
	var importedAt int64

	item := &record.Item
	err := row.Scan(
		&record.URL, &item.Place, &item.Title, &item.Denomination,
		&item.Country, &item.Period, &item.Year, &item.Mintmark,
		&item.Category, &item.Material, &item.Grade, &item.Variety,
		&closeDate, &item.Seller, &item.Buyer,
		&item.Price, &item.TotalPayPrice, &item.TotalSalePrice,
		&item.BidCount, &item.BidderCount, &singleBid,
		&images, &item.Info, &importedAt,
	)
	if err != nil {
		return LotRecord{}, err
	}

	item.SingleBid = singleBid != 0
	item.Date, err = auctions.ParseDate(closeDate)
	if err != nil {
		return LotRecord{}, err
	}
	err = json.Unmarshal([]byte(images), &item.Images)
	if err != nil {
		return LotRecord{}, err
	}
	record.ImportedAt = time.Unix(importedAt, 0)

	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
