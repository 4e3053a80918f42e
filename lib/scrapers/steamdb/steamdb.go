package steamdb

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"giftbot/lib/htmlutil"
	"giftbot/lib/jitter"
	"giftbot/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/steamdb")

const DefaultBaseUrl = "https://steamdb.info"

// ErrNoRating covers both a missing/unknown app and a rate-limit ban,
// the page gives no way to tell them apart.
var ErrNoRating = fmt.Errorf("no rating present on the app page")

type Client struct {
	Http *resty.Client

	fetchJitter jitter.Range
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// delay before every page fetch, defaults to 500ms-1.2s
	FetchJitter *jitter.Range
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/steamdb/http")

	fetchJitter := jitter.Range{Min: 500 * time.Millisecond, Max: 1200 * time.Millisecond}
	if opts.FetchJitter != nil {
		fetchJitter = *opts.FetchJitter
	}

	return &Client{
		Http:        client,
		fetchJitter: fetchJitter,
	}
}

// AppRating scrapes the aggregate user rating of a single app,
// a percentage in [0, 100].
func (c *Client) AppRating(ctx context.Context, appID string) (float64, error) {
	ctx, span := tracer.Start(ctx, "client:AppRating")
	defer span.End()
	span.SetAttributes(attribute.String("app", appID))

	c.fetchJitter.Sleep()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/app/%s/", appID))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch app page")
		return 0, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse app page")
		return 0, err
	}

	// the rating banner reads like "Rating: 87.34%"
	text := htmlutil.CleanText(doc.Find("div.header-thing-number").First().Text())
	if text == "" {
		span.SetStatus(codes.Error, "rating banner missing")
		return 0, ErrNoRating
	}

	fields := strings.Fields(text)
	rating, err := strconv.ParseFloat(strings.TrimSuffix(fields[len(fields)-1], "%"), 64)
	if err != nil {
		span.SetStatus(codes.Error, "rating banner unparseable")
		return 0, fmt.Errorf("could not parse rating %q: %w", text, err)
	}
	return rating, nil
}
