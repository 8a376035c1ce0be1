package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"numicat-backend/lib/restyutil"
	"numicat-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var tracer = otel.Tracer("lib/fetch")

// ErrFetchFailed wraps transport and status failures that survived the
// retry budget. Callers should treat the page as unavailable.
var ErrFetchFailed = errors.New("page unavailable")

// ErrEmptyPage marks a nominally successful fetch whose decoded body
// was empty. It means "no data", not a failure.
var ErrEmptyPage = errors.New("page is empty")

// Page is the result of one fetch: the parsed document plus the raw
// decoded text for data that only appears inside script blocks. It is
// a plain value, a new fetch never mutates a previously returned Page.
type Page struct {
	URL  *url.URL
	Doc  *goquery.Document
	Text string
}

// Resolve resolves a possibly relative href against the page's own url.
func (p Page) Resolve(href string) (string, error) {
	resolved, err := p.URL.Parse(href)
	if err != nil {
		return "", err
	}
	return resolved.String(), nil
}

type Client struct {
	http  *resty.Client
	cache *pageCache
}

type Options struct {
	// product identifier sent as the user-agent, some image hosts
	// reject anonymous clients
	UserAgent string
	Timeout   time.Duration
	// when set, every exchange is dumped to this directory for
	// debugging parsers against live markup
	DebugDir string
}

func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "Numicat/1.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(time.Second)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() >= 500
	})

	telemetry.InstrumentResty(client, "fetch/http")
	if opts.DebugDir != "" {
		restyutil.DumpExchanges(client, restyutil.NewFilesystemOutput(opts.DebugDir))
	}

	return &Client{http: client}
}

// Fetch retrieves a page and decodes its body with the given charset
// ("windows-1251", "utf-8", ...). Undecodable byte sequences are
// dropped rather than failing, the auction sites serve pages in legacy
// encodings with the occasional stray byte.
func (c *Client) Fetch(ctx context.Context, rawURL string, encoding string) (Page, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", rawURL))

	link, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if c.cache != nil {
		text, err := c.cache.get(ctx, rawURL, encoding)
		if err == nil {
			span.AddEvent("cache hit")
			return newPage(link, text)
		}
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return Page{}, fmt.Errorf("%w: %s: %v", ErrFetchFailed, rawURL, err)
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, "unexpected status")
		return Page{}, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, rawURL, res.StatusCode())
	}

	text, err := decodeBody(res.Body(), encoding)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return Page{}, fmt.Errorf("%w: %s: %v", ErrFetchFailed, rawURL, err)
	}

	if strings.TrimSpace(text) == "" {
		return Page{}, fmt.Errorf("%w: %s", ErrEmptyPage, rawURL)
	}

	if c.cache != nil {
		c.cache.put(ctx, rawURL, encoding, text)
	}

	return newPage(link, text)
}

func newPage(link *url.URL, text string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %s: %v", ErrFetchFailed, link, err)
	}
	return Page{URL: link, Doc: doc, Text: text}, nil
}

func decodeBody(body []byte, encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return strings.ToValidUTF8(string(body), ""), nil
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", fmt.Errorf("unknown charset %q: %w", encoding, err)
	}
	decoded, _, err := transform.String(enc.NewDecoder(), string(body))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(decoded, "�", ""), nil
}
