package steamstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"giftbot/lib/jitter"
	"giftbot/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/steamstore")

const DefaultBaseUrl = "https://store.steampowered.com"

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

	telemetry.InstrumentResty(client, "scrapers/steamstore/http")

	fetchJitter := jitter.Range{Min: 500 * time.Millisecond, Max: 1200 * time.Millisecond}
	if opts.FetchJitter != nil {
		fetchJitter = *opts.FetchJitter
	}

	return &Client{
		Http:        client,
		fetchJitter: fetchJitter,
	}
}

// BundleApps resolves the app ids that make up a bundle. An empty slice
// means the bundle page was reachable but listed no apps.
func (c *Client) BundleApps(ctx context.Context, bundleID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:BundleApps")
	defer span.End()
	span.SetAttributes(attribute.String("bundle", bundleID))

	c.fetchJitter.Sleep()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/sub/%s/", bundleID))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch bundle page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse bundle page")
		return nil, err
	}

	var apps []string
	doc.Find("div.tab_item").Each(func(_ int, sel *goquery.Selection) {
		id := sel.AttrOr("data-ds-appid", "")
		if id == "" {
			return
		}
		// multi-app items carry a comma separated list, the first
		// entry is the item itself
		apps = append(apps, strings.Split(id, ",")[0])
	})

	span.SetAttributes(attribute.Int("apps", len(apps)))
	return apps, nil
}
