package auctions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"numicat-backend/lib/fetch"
	"numicat-backend/lib/htmlutil"
	"numicat-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// conros parses auction.conros.ru. The site runs both online auctions
// and floor ("Очный") sales, the listing page heading tells which.
type conros struct{}

func NewConros() Parser {
	return &conros{}
}

var conrosCategories = []string{
	"Монеты России до 1917 года (золото, серебро)",
	"Монеты России до 1917 года (медь)",
	"Допетровские монеты",
	"Монеты антика, средневековье",
	"Награды, медали",
	"Монеты РСФСР, СССР, России",
	"Монеты иностранные",
	"Боны",
}

func (p *conros) Name() string         { return "Конрос" }
func (p *conros) Hostnames() []string  { return []string{"auction.conros.ru"} }
func (p *conros) Encoding() string     { return "windows-1251" }
func (p *conros) Categories() []string { return conrosCategories }

func (p *conros) Pages() *PageSequence { return NewPageSequence(0, 1) }

func (p *conros) PageURL(auction, category, page int) (string, error) {
	return fmt.Sprintf("http://auction.conros.ru/clAuct/%d/%d/%d/0/asc/", auction, category+1, page), nil
}

func (p *conros) ParseListing(ctx context.Context, page fetch.Page) ([]ListingEntry, error) {
	ctx, span := tracer.Start(ctx, "conros:ParseListing")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	heading := page.Doc.Find("td#center").First().
		Find("table table").Eq(2).
		Find("td.smallText")
	if heading.Length() < 2 {
		return nil, nil
	}
	headingText := heading.Eq(1).Find("strong").First().Text()

	site := "Очный"
	if strings.Contains(headingText, "Аукцион №") {
		site = "Аукцион"
	}
	auctionNumber := ""
	if idx := strings.Index(headingText, "№"); idx >= 0 {
		auctionNumber = strings.TrimSpace(headingText[idx+len("№"):])
	}

	var entries []ListingEntry
	page.Doc.Find("table.productListing").First().
		Find("tr.productListing-data").
		Each(func(_ int, row *goquery.Selection) {
			tds := row.Find("td")
			if tds.Length() < 9 {
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

			bids, _ := strconv.Atoi(strings.TrimSpace(tds.Eq(6).Text()))
			price := textutil.Money(tds.Eq(8).Text())

			entries = append(entries, ListingEntry{
				LotNumber:      strings.TrimSpace(tds.Eq(0).Text()),
				Site:           site,
				AuctionNumber:  auctionNumber,
				URL:            lotURL,
				Denomination:   strings.TrimSpace(tds.Eq(1).Text()),
				Year:           strings.TrimSpace(tds.Eq(2).Text()),
				Mintmark:       strings.TrimSpace(tds.Eq(3).Text()),
				Material:       strings.TrimSpace(tds.Eq(4).Text()),
				Grade:          textutil.Grade(tds.Eq(5).Text()),
				Buyer:          strings.TrimSpace(tds.Eq(7).Text()),
				BidCount:       bids,
				Price:          price,
				TotalPayPrice:  conrosBuyerTotal(price),
				TotalSalePrice: conrosSellerNet(price),
			})
		})

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

func (p *conros) ParseLot(ctx context.Context, page fetch.Page) (Item, error) {
	ctx, span := tracer.Start(ctx, "conros:ParseLot")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	rate := page.Doc.Find("div#your_rate")
	if rate.Length() == 0 {
		return Item{}, layoutError(p.Name(), "rate box")
	}
	if !strings.Contains(rate.Text(), "Торги по этому лоту завершены") {
		return Item{}, ErrNotDoneYet
	}

	item := Item{Place: p.Name()}

	stateFields := strings.Fields(page.Doc.Find("p#lot_state.lot_info_box").First().Text())
	if len(stateFields) < 10 {
		return Item{}, layoutError(p.Name(), "date")
	}
	date, err := parseDottedDate(stateFields[9])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad closing date")
		return Item{}, layoutError(p.Name(), "date")
	}
	item.Date = date

	item.Title = strings.TrimSpace(page.Doc.Find("h1.pageHeading").First().Text())

	info := page.Doc.Find("#lot_information .main p").Eq(1).Text()
	item.Info = strings.Join(splitConrosInfo(info), "\n")

	bidRows := page.Doc.Find("#rates").First().Find("tr.tableHostPrice")
	bidders := map[string]struct{}{}
	bidRows.Each(func(_ int, row *goquery.Selection) {
		bidder := strings.TrimSpace(row.Find("td").Eq(0).Text())
		if bidder != "" {
			bidders[bidder] = struct{}{}
		}
	})
	item.BidderCount = len(bidders)
	item.BidCount = bidRows.Length()
	item.SingleBid = item.BidCount < 2

	item.Images = htmlutil.ResolveHrefs(page.URL, page.Doc.Find("div#lot_information").First().Find("a"))

	return item, nil
}

// splitConrosInfo breaks a lot description into its sections, the site
// glues rarity and features notes onto one paragraph.
func splitConrosInfo(content string) []string {
	var parts []string
	for _, marker := range []string{"Редкость", "Особенности"} {
		index := strings.Index(content, marker)
		if index > 0 {
			parts = append(parts, strings.TrimSpace(content[:index]))
			content = content[index:]
		}
	}
	parts = append(parts, strings.TrimSpace(content))
	return parts
}

// conrosSellerNet is the hammer price minus a flat 15% commission,
// floored at zero.
func conrosSellerNet(price float64) float64 {
	total := price - price*15/100
	if total < 0 {
		total = 0
	}
	return total
}

// conrosBuyerTotal is the hammer price plus a 10% buyer's premium.
func conrosBuyerTotal(price float64) float64 {
	return price + price*10/100
}
