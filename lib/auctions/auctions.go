// Package auctions extracts structured lot records from the auction
// sites a coin collector imports results from. One parser per site,
// each knowing its hostnames, charset, fee schedule and page layout.
package auctions

import (
	"context"
	"net/url"

	"numicat-backend/lib/fetch"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/auctions")

// Item is a fully parsed auction lot. Fields absent on the source page
// stay blank. Whenever all three money fields are present,
// TotalPayPrice >= Price >= TotalSalePrice.
type Item struct {
	Place        string
	Title        string
	Denomination string
	Country      string
	Period       string
	Year         string
	Mintmark     string
	Category     string
	Material     string
	Grade        string
	Variety      string

	// lot closing date
	Date Date

	Seller string
	Buyer  string

	// hammer price in the site's native currency
	Price float64
	// hammer price plus buyer's premium and shipping
	TotalPayPrice float64
	// hammer price minus seller's commission
	TotalSalePrice float64

	BidCount    int
	BidderCount int

	Images []string
	Info   string

	// fewer than 2 bids were placed, a buyer-advisory condition
	SingleBid bool
}

// ListingEntry is the partial record scanned off one row of a listing
// page. It exists to drive the per-lot detail fetch.
type ListingEntry struct {
	LotNumber     string
	URL           string
	Site          string
	AuctionNumber string

	Denomination string
	Year         string
	Mintmark     string
	Material     string
	Grade        string
	Buyer        string

	BidCount       int
	Price          float64
	TotalPayPrice  float64
	TotalSalePrice float64
}

// Parser is the capability contract every auction site implements.
type Parser interface {
	Name() string
	Hostnames() []string
	// charset of the site's pages, passed to the fetch layer
	Encoding() string
	// lot categories the site publishes listings for, nil when the
	// site has no listing scan support
	Categories() []string

	ParseLot(ctx context.Context, page fetch.Page) (Item, error)
	ParseListing(ctx context.Context, page fetch.Page) ([]ListingEntry, error)

	// fresh page index sequence for iterating one auction+category
	Pages() *PageSequence
	PageURL(auction, category, page int) (string, error)
}

// PageSequence generates listing page indexes, forward-only. Some
// sites page by row offset (step 20), others by page number (step 1).
// Callers iterate until a page parses to zero entries.
type PageSequence struct {
	next int
	step int
}

func NewPageSequence(start, step int) *PageSequence {
	return &PageSequence{next: start, step: step}
}

func (s *PageSequence) Next() int {
	v := s.next
	s.next += s.step
	return v
}

// Registry holds the known site parsers in precedence order.
type Registry struct {
	fetch   *fetch.Client
	parsers []Parser
}

func NewRegistry(client *fetch.Client) *Registry {
	return &Registry{
		fetch: client,
		parsers: []Parser{
			NewMolotok(),
			NewAuctionSpb(),
			NewConros(),
			NewWolmar(client),
		},
	}
}

// Register mounts an extra site parser ahead of the built-in ones.
func (r *Registry) Register(p Parser) {
	r.parsers = append([]Parser{p}, r.parsers...)
}

// Select matches a lot url's hostname against the known sites. A miss
// is not an error, the caller decides how to react.
func (r *Registry) Select(rawURL string) (Parser, bool) {
	link, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	hostname := link.Hostname()
	for _, p := range r.parsers {
		for _, known := range p.Hostnames() {
			if hostname == known {
				return p, true
			}
		}
	}
	return nil, false
}

// Sites returns the registered parsers in precedence order.
func (r *Registry) Sites() []Parser {
	return r.parsers
}
