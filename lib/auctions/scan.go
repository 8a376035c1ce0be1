package auctions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"numicat-backend/lib/fetch"
	"numicat-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
)

// hard ceiling on listing pages per scan, a site that never serves an
// empty page must not pin the importer forever
const maxScanPages = 1000

// ImportLot fetches and parses a single lot url with whichever site
// parser claims its hostname.
func (r *Registry) ImportLot(ctx context.Context, rawURL string) (Item, error) {
	parser, ok := r.Select(rawURL)
	if !ok {
		return Item{}, fmt.Errorf("no parser registered for %q", rawURL)
	}
	return r.importWith(ctx, parser, rawURL)
}

func (r *Registry) importWith(ctx context.Context, p Parser, rawURL string) (Item, error) {
	page, err := r.fetch.Fetch(ctx, rawURL, p.Encoding())
	if err != nil {
		return Item{}, err
	}
	return p.ParseLot(ctx, page)
}

// MatchCategory resolves an approximate category name ("иностранные
// монеты") to the site's category index, so callers do not have to
// spell the site's titles exactly.
func MatchCategory(p Parser, name string) (int, error) {
	categories := p.Categories()
	if len(categories) == 0 {
		return 0, ErrNoListings
	}

	normalized := strings.ToLower(textutil.CollapseWhitespace(name))
	best := -1
	bestScore := 0.0
	for i, category := range categories {
		candidate := strings.ToLower(textutil.CollapseWhitespace(category))
		score := matchr.JaroWinkler(normalized, candidate, false)
		if strings.Contains(candidate, normalized) {
			score = 1
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < 0.6 {
		return 0, fmt.Errorf("%s: no category close to %q", p.Name(), name)
	}
	return best, nil
}

// ScanListing walks one auction+category's listing pages in the site's
// page sequence until a page yields zero entries, collecting every row.
func (r *Registry) ScanListing(ctx context.Context, p Parser, auction, category int) ([]ListingEntry, error) {
	ctx, span := tracer.Start(ctx, "ScanListing")
	defer span.End()
	span.SetAttributes(
		attribute.String("site", p.Name()),
		attribute.Int("auction", auction),
		attribute.Int("category", category),
	)

	pages := p.Pages()
	if pages == nil {
		return nil, ErrNoListings
	}

	var all []ListingEntry
	for i := 0; i < maxScanPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL, err := p.PageURL(auction, category, pages.Next())
		if err != nil {
			return nil, err
		}
		page, err := r.fetch.Fetch(ctx, pageURL, p.Encoding())
		if errors.Is(err, fetch.ErrEmptyPage) {
			break
		}
		if err != nil {
			return nil, err
		}

		entries, err := p.ParseListing(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		all = append(all, entries...)
	}

	span.SetAttributes(attribute.Int("entries", len(all)))
	return all, nil
}

// sites whose foreign-coin lot titles embed a country name
type countryExtractor interface {
	CountryFromTitle(category int, title string) string
}

// ScanAuction imports every lot of one auction+category. handle is
// called once per lot with the parse outcome; NotDoneYet, Canceled and
// fetch failures arrive there instead of aborting the scan. A non-nil
// error from handle, or a canceled ctx, stops the scan between lots,
// never mid-lot.
func (r *Registry) ScanAuction(
	ctx context.Context,
	p Parser,
	auction, category int,
	handle func(entry ListingEntry, item Item, err error) error,
) error {
	ctx, span := tracer.Start(ctx, "ScanAuction")
	defer span.End()

	entries, err := r.ScanListing(ctx, p, auction, category)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := r.importWith(ctx, p, entry.URL)
		if err == nil {
			mergeEntry(&item, entry)
			if ce, ok := p.(countryExtractor); ok && item.Country == "" {
				item.Country = ce.CountryFromTitle(category, item.Title)
			}
		}
		if handle != nil {
			if err := handle(entry, item, err); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeEntry fills an item's blank fields from its listing row. The
// listing is authoritative for the site label and the hammer price on
// sites whose lot pages omit them.
func mergeEntry(item *Item, e ListingEntry) {
	if e.Site != "" {
		item.Place = e.Site
	}
	if item.Denomination == "" {
		item.Denomination = e.Denomination
	}
	if item.Year == "" {
		item.Year = e.Year
	}
	if item.Mintmark == "" {
		item.Mintmark = e.Mintmark
	}
	if item.Material == "" {
		item.Material = e.Material
	}
	if item.Grade == "" {
		item.Grade = e.Grade
	}
	if item.Buyer == "" {
		item.Buyer = e.Buyer
	}
	if item.Price == 0 {
		item.Price = e.Price
		item.TotalPayPrice = e.TotalPayPrice
		item.TotalSalePrice = e.TotalSalePrice
	}
	if item.BidCount == 0 && e.BidCount > 0 {
		item.BidCount = e.BidCount
		item.SingleBid = e.BidCount < 2
	}
}
