package auctions

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"numicat-backend/lib/fetch"
	"numicat-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// wolmar parses www.wolmar.ru. Lot pages only link thumbnail pages, so
// every image and the closing date cost an extra fetch.
type wolmar struct {
	fetch *fetch.Client
}

func NewWolmar(client *fetch.Client) Parser {
	return &wolmar{fetch: client}
}

func (p *wolmar) Name() string         { return "Wolmar" }
func (p *wolmar) Hostnames() []string  { return []string{"www.wolmar.ru"} }
func (p *wolmar) Encoding() string     { return "windows-1251" }
func (p *wolmar) Categories() []string { return nil }

func (p *wolmar) Pages() *PageSequence { return nil }

func (p *wolmar) PageURL(auction, category, page int) (string, error) {
	return "", ErrNoListings
}

func (p *wolmar) ParseListing(ctx context.Context, page fetch.Page) ([]ListingEntry, error) {
	return nil, ErrNoListings
}

func (p *wolmar) ParseLot(ctx context.Context, page fetch.Page) (Item, error) {
	ctx, span := tracer.Start(ctx, "wolmar:ParseLot")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	doc := page.Doc

	// drop the countdown timer so its text does not pollute the lot block
	doc.Find(".time_line2").First().Children().Remove()

	lot := doc.Find(".item").First()
	if lot.Length() == 0 {
		return Item{}, layoutError(p.Name(), "lot block")
	}
	if !strings.Contains(lot.Text(), "Лот закрыт") {
		return Item{}, ErrNotDoneYet
	}

	values := lot.Find(".values")
	if values.Length() < 2 {
		return Item{}, layoutError(p.Name(), "value blocks")
	}
	details := values.Eq(0).Text()
	bidding := values.Eq(1).Text()

	item := Item{
		Place: p.Name(),
		Info:  page.URL.String(),
	}

	buyer, err := labeledValue(bidding, "Лидер", "Количество ставок")
	if err != nil {
		return Item{}, layoutError(p.Name(), "buyer")
	}
	item.Buyer = buyer

	grade, err := labeledValue(details, "Состояние", "")
	if err != nil {
		return Item{}, layoutError(p.Name(), "grade")
	}
	item.Grade = textutil.Grade(grade)

	bidText, err := labeledValue(bidding, "Количество ставок", "Лот закрыт")
	if err != nil {
		return Item{}, layoutError(p.Name(), "bid count")
	}
	bids, err := strconv.Atoi(bidText)
	if err != nil {
		return Item{}, layoutError(p.Name(), "bid count")
	}
	item.BidCount = bids
	item.SingleBid = bids < 2

	priceText, err := labeledValue(bidding, "Ставка", "Лидер")
	if err != nil {
		return Item{}, layoutError(p.Name(), "price")
	}
	item.Price = textutil.Money(priceText)
	item.TotalPayPrice = wolmarBuyerTotal(item.Price)
	item.TotalSalePrice = wolmarSellerNet(item.Price)

	item.Images = p.lotImages(ctx, page)

	date, err := p.closingDate(ctx, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read closing date")
		return Item{}, err
	}
	item.Date = date

	return item, nil
}

// lotImages follows each thumbnail anchor to its viewer page and
// resolves the full image it embeds. A broken thumbnail page loses
// that one image, never the lot.
func (p *wolmar) lotImages(ctx context.Context, page fetch.Page) []string {
	var images []string
	page.Doc.Find(".item").First().Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		thumbURL, err := page.Resolve(href)
		if err != nil {
			return
		}

		thumbPage, err := p.fetch.Fetch(ctx, thumbURL, p.Encoding())
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch thumbnail page", "url", thumbURL, "err", err)
			return
		}

		container := thumbPage.Doc.Find("div").First()
		container.Find("div").Remove()
		src, ok := container.Find("img").First().Attr("src")
		if !ok {
			slog.WarnContext(ctx, "thumbnail page carries no image", "url", thumbURL)
			return
		}
		resolved, err := thumbPage.Resolve(src)
		if err != nil {
			return
		}
		images = append(images, resolved)
	})
	return images
}

// closingDate lives on the parent auction page, not the lot page.
func (p *wolmar) closingDate(ctx context.Context, page fetch.Page) (Date, error) {
	parent, err := page.URL.Parse(".")
	if err != nil {
		return Date{}, layoutError(p.Name(), "parent url")
	}
	parentURL := strings.TrimSuffix(parent.String(), "/")

	parentPage, err := p.fetch.Fetch(ctx, parentURL, p.Encoding())
	if err != nil {
		return Date{}, err
	}

	// "(Закрыт 29.09.2011 12:30)" -> "29.09.2011"
	heading := parentPage.Doc.Find(".content").First().Find("h1 span").First().Text()
	fields := strings.Fields(heading)
	if len(fields) < 2 {
		return Date{}, layoutError(p.Name(), "date")
	}
	date, err := parseDottedDate(fields[1])
	if err != nil {
		return Date{}, layoutError(p.Name(), "date")
	}
	return date, nil
}

// wolmarBuyerTotal is the hammer price plus a 10% markup.
func wolmarBuyerTotal(price float64) float64 {
	return price + price*10/100
}

// wolmarSellerNet is the hammer price minus a 10% markdown.
func wolmarSellerNet(price float64) float64 {
	return price - price*10/100
}

// labeledValue extracts the text between "<label>:" and the end
// marker, or to the end of content when the marker is empty.
func labeledValue(content, label, end string) (string, error) {
	index := strings.Index(content, label)
	if index < 0 {
		return "", layoutError("wolmar", label)
	}
	rest := content[index:]
	sep := strings.Index(rest, ":")
	if sep < 0 {
		return "", layoutError("wolmar", label)
	}
	rest = rest[sep+1:]
	if end != "" {
		stop := strings.Index(rest, end)
		if stop < 0 {
			return "", layoutError("wolmar", label)
		}
		rest = rest[:stop]
	}
	return strings.TrimSpace(rest), nil
}
