package auctions

import (
	"context"
	"strconv"
	"strings"
	"time"

	"numicat-backend/lib/fetch"
	"numicat-backend/lib/htmlutil"
	"numicat-backend/lib/textutil"
	"numicat-backend/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// molotok parses lot pages of molotok.ru. The site has no listing
// pages worth scanning, lots are imported one by one from their urls.
type molotok struct {
	// injected in tests, the lot page only shows a day and month so
	// the year is taken from the Moscow clock
	now func() time.Time
}

func NewMolotok() Parser {
	return &molotok{now: timezone.Now}
}

func (m *molotok) Name() string         { return "Молоток.Ру" }
func (m *molotok) Hostnames() []string  { return []string{"molotok.ru"} }
func (m *molotok) Encoding() string     { return "utf-8" }
func (m *molotok) Categories() []string { return nil }

func (m *molotok) Pages() *PageSequence { return nil }

func (m *molotok) PageURL(auction, category, page int) (string, error) {
	return "", ErrNoListings
}

func (m *molotok) ParseListing(ctx context.Context, page fetch.Page) ([]ListingEntry, error) {
	return nil, ErrNoListings
}

func (m *molotok) ParseLot(ctx context.Context, page fetch.Page) (Item, error) {
	ctx, span := tracer.Start(ctx, "molotok:ParseLot")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	doc := page.Doc

	// the bid form only renders while bidding is open
	if doc.Find("#siBidForm2").Length() > 0 {
		return Item{}, ErrNotDoneYet
	}

	wrapper := doc.Find("#siWrapper")
	if wrapper.Length() == 0 {
		// lots move to a data-less archive two months after closing
		return Item{}, ErrCanceled
	}

	bidLink := wrapper.Find(".alleLink")
	if bidLink.Length() == 0 {
		return Item{}, ErrCanceled
	}
	bidFields := strings.Fields(bidLink.First().Text())
	if len(bidFields) == 0 {
		return Item{}, layoutError(m.Name(), "bid count")
	}
	bidCount, err := strconv.Atoi(bidFields[0])
	if err != nil {
		return Item{}, layoutError(m.Name(), "bid count")
	}

	item := Item{
		Place:     m.Name(),
		BidCount:  bidCount,
		SingleBid: bidCount < 2,
	}

	// "завершен (19 Январь, 00:34:14)" -> "19 Январь"
	timeInfo := wrapper.Find(".timeInfo").First().Text()
	begin := strings.Index(timeInfo, "(")
	end := strings.Index(timeInfo, ",")
	if begin < 0 || end < begin {
		return Item{}, layoutError(m.Name(), "date")
	}
	date, err := parseRussianDayMonth(timeInfo[begin+1:end], m.now().Year())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad closing date")
		return Item{}, layoutError(m.Name(), "date")
	}
	item.Date = date

	seller := wrapper.Find(".sellerDetails").First().Find("dl dt").First().Text()
	if fields := strings.Fields(seller); len(fields) > 0 {
		item.Seller = fields[0]
	}
	item.Buyer = strings.TrimSpace(wrapper.Find(".buyerInfo strong").Eq(1).Text())

	userField := doc.Find("#user_field")
	userField.Find("style").Remove()
	item.Info = htmlutil.CleanText(userField) + "\n" + page.URL.String()

	images, err := m.galleryImages(page.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad gallery block")
		return Item{}, err
	}
	item.Images = images

	priceText := wrapper.Find("#itemFinishBox2").Find("strong").First().Text()
	if strings.TrimSpace(priceText) == "" {
		return Item{}, layoutError(m.Name(), "price")
	}
	item.Price = textutil.Money(priceText)

	shipment := wrapper.Find("#paymentShipment").Find("dd strong")
	if shipment.Length() > 0 {
		item.TotalPayPrice = item.Price + textutil.Money(shipment.First().Text())
	} else {
		item.TotalPayPrice = item.Price
	}
	item.TotalSalePrice = molotokSellerNet(item.Price)

	return item, nil
}

// galleryImages pulls the full-size image urls out of the inline
// gallery script, the markup itself only carries thumbnails.
func (m *molotok) galleryImages(text string) ([]string, error) {
	index := strings.Index(text, "$('.galleryWrap').newGallery")
	if index < 0 {
		return nil, layoutError(m.Name(), "images")
	}
	text = text[index:]

	index = strings.Index(text, "large:")
	if index < 0 {
		return nil, layoutError(m.Name(), "images")
	}
	text = text[index:]

	begin := strings.Index(text, "[")
	end := strings.Index(text, "]")
	if begin < 0 || end < begin {
		return nil, layoutError(m.Name(), "images")
	}

	raw := strings.ReplaceAll(text[begin+1:end], "\"", "")
	raw = strings.ReplaceAll(raw, "'", "")

	var images []string
	for _, img := range strings.Split(raw, ",") {
		img = strings.TrimSpace(img)
		if img != "" {
			images = append(images, img)
		}
	}
	return images, nil
}

// molotokSellerNet applies the site's tiered commission schedule to a
// hammer price. Boundaries are strictly-greater and the commission is
// clamped at 3999.
func molotokSellerNet(price float64) float64 {
	var commission float64
	switch {
	case price > 50000:
		commission = 1557.5 + (price-50000)*2.5/100
	case price > 10000:
		commission = 357.5 + (price-10000)*3/100
	case price > 500:
		commission = 25 + (price-500)*3.5/100
	default:
		commission = price * 5 / 100
	}
	if commission > 3999 {
		commission = 3999
	}
	return price - commission
}
