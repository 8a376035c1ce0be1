package auctions

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"numicat-backend/lib/fetch"
	"numicat-backend/lib/htmlutil"
	"numicat-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// auctionSpb parses auction.spb.ru. Listing pages are offset-paged in
// steps of 20 rows; lot pages carry the closing date and images but
// leave the hammer price to the listing row.
type auctionSpb struct{}

func NewAuctionSpb() Parser {
	return &auctionSpb{}
}

// index into Categories of the foreign-coins category, the only one
// whose lot titles embed a country name
const spbForeignCategory = 6

var spbCategories = []string{
	"Монеты России до 1917 года (золото, серебро)",
	"Монеты России до 1917 года (медь)",
	"Монеты РСФСР, СССР, России",
	"Допетровские монеты",
	"Боны",
	"Монеты антика, средневековье",
	"Монеты иностранные",
	"Награды, медали, знаки, жетоны, пряжки и т.д.",
}

func (p *auctionSpb) Name() string { return "Аукцион" }
func (p *auctionSpb) Hostnames() []string {
	return []string{"www.auction.spb.ru", "auction.spb.ru"}
}
func (p *auctionSpb) Encoding() string     { return "windows-1251" }
func (p *auctionSpb) Categories() []string { return spbCategories }

func (p *auctionSpb) Pages() *PageSequence { return NewPageSequence(0, 20) }

func (p *auctionSpb) PageURL(auction, category, page int) (string, error) {
	params := url.Values{}
	params.Set("auctID", strconv.Itoa(auction))
	params.Set("catID", strconv.Itoa(category+1))
	params.Set("order", "numblot")
	params.Set("p", strconv.Itoa(page))
	return "http://auction.spb.ru/?" + params.Encode(), nil
}

func (p *auctionSpb) ParseListing(ctx context.Context, page fetch.Page) ([]ListingEntry, error) {
	ctx, span := tracer.Start(ctx, "spb:ParseListing")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	listTable := page.Doc.Find("table tr").Eq(4).
		Find("table").Find("td").Eq(1).
		Find("table").First()

	var entries []ListingEntry
	listTable.Find("tr").Each(func(_ int, row *goquery.Selection) {
		tds := row.Find("td")
		if tds.Length() < 10 {
			return
		}

		href, ok := tds.Eq(1).Find("a").First().Attr("href")
		if !ok {
			return
		}
		lotURL, err := page.Resolve(href)
		if err != nil {
			return
		}

		bids, _ := strconv.Atoi(strings.TrimSpace(tds.Eq(8).Text()))
		price := textutil.Money(tds.Eq(9).Text())

		entries = append(entries, ListingEntry{
			LotNumber:      strings.TrimSpace(tds.Eq(0).Text()),
			Site:           p.Name(),
			URL:            lotURL,
			Denomination:   strings.TrimSpace(tds.Eq(2).Text()),
			Year:           strings.TrimSpace(tds.Eq(3).Text()),
			Mintmark:       strings.TrimSpace(tds.Eq(4).Text()),
			Material:       strings.TrimSpace(tds.Eq(5).Text()),
			Grade:          textutil.Grade(tds.Eq(6).Text()),
			Buyer:          strings.TrimSpace(tds.Eq(7).Text()),
			BidCount:       bids,
			Price:          price,
			TotalPayPrice:  spbBuyerTotal(price),
			TotalSalePrice: spbSellerNet(price),
		})
	})

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

func (p *auctionSpb) ParseLot(ctx context.Context, page fetch.Page) (Item, error) {
	ctx, span := tracer.Start(ctx, "spb:ParseLot")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	cell := page.Doc.Find("table tr").Eq(4).
		Find("table").Find("td").Eq(0)
	if cell.Length() == 0 {
		return Item{}, layoutError(p.Name(), "lot table")
	}
	if !strings.Contains(cell.Text(), "Торги по лоту завершились") {
		return Item{}, ErrNotDoneYet
	}

	item := Item{Place: p.Name()}

	// "12:00:00 05-12-07" -> "05-12-07"
	dateFields := strings.Fields(cell.Find("b").First().Text())
	if len(dateFields) < 2 {
		return Item{}, layoutError(p.Name(), "date")
	}
	date, err := parseDashedDate(dateFields[1])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad closing date")
		return Item{}, layoutError(p.Name(), "date")
	}
	item.Date = date

	strongs := cell.Find("strong")
	if strongs.Length() < 2 {
		return Item{}, layoutError(p.Name(), "title")
	}

	title := strings.TrimSuffix(strings.TrimSpace(strongs.Eq(0).Text()), ".")
	// lot headings look like "Лот № 8607 5 копеек 1924 года."
	if _, rest, found := strings.Cut(title, " "); found {
		title = rest
	}
	item.Title = textutil.CollapseWhitespace(title)

	item.Info = strings.TrimSuffix(strings.TrimSpace(strongs.Eq(1).Text()), ".")

	anchors := cell.Find("a")
	if anchors.Length() < 2 {
		return Item{}, layoutError(p.Name(), "images")
	}
	item.Images = htmlutil.ResolveHrefs(page.URL, anchors.Slice(0, 2))

	bidRows := cell.Find("table").First().Find("tr")
	bidders := map[string]struct{}{}
	bidRows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		bidder := strings.TrimSpace(row.Find("td").Eq(0).Text())
		if bidder != "" {
			bidders[bidder] = struct{}{}
		}
	})
	item.BidderCount = len(bidders)
	if bidRows.Length() > 0 {
		item.BidCount = bidRows.Length() - 1
		item.SingleBid = item.BidCount < 2
	}

	return item, nil
}

// CountryFromTitle pulls a country name out of a foreign-coin lot
// title. Titles of every other category have no country part.
func (p *auctionSpb) CountryFromTitle(category int, title string) string {
	if category != spbForeignCategory {
		return ""
	}
	parts := strings.Split(title, ".")
	if len(parts) < 2 {
		return ""
	}
	country := parts[1]
	for _, ch := range "\",0123456789" {
		if strings.ContainsRune(country, ch) {
			country = strings.Split(country, string(ch))[0]
		}
	}
	country = strings.TrimSpace(country)
	if country == "" {
		return ""
	}
	fields := strings.Fields(country)
	if fields[len(fields)-1] == "г" {
		country = strings.Join(fields[:len(fields)-1], " ")
	}
	return country
}

// spbSellerNet is the hammer price minus a 15% commission with an
// absolute floor of 35; the payout never goes negative.
func spbSellerNet(price float64) float64 {
	commission := price * 15 / 100
	if commission < 35 {
		commission = 35
	}
	total := price - commission
	if total < 0 {
		total = 0
	}
	return total
}

// spbBuyerTotal is the hammer price plus a 10% buyer's premium.
func spbBuyerTotal(price float64) float64 {
	return price + price*10/100
}
