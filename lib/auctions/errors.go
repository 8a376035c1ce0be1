package auctions

import (
	"errors"
	"fmt"
)

// ErrNotDoneYet means the lot's auction has not closed yet. Skip the
// lot and retry on a later scan.
var ErrNotDoneYet = errors.New("auction is not done yet")

// ErrCanceled means the lot was withdrawn or has aged out of the
// site's live listing. No usable result will ever exist, skip forever.
var ErrCanceled = errors.New("auction was canceled")

// ErrNoListings is returned by sites that only support single-lot
// parsing.
var ErrNoListings = errors.New("site does not publish listing pages")

// LayoutError reports a page that no longer matches the scraper's
// expectations, naming the site and the field that failed so operators
// can tell when a scraper needs updating.
type LayoutError struct {
	Site  string
	Field string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: page layout mismatch at %q", e.Site, e.Field)
}

func layoutError(site, field string) error {
	return &LayoutError{Site: site, Field: field}
}
