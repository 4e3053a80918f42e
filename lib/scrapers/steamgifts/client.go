package steamgifts

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"giftbot/lib/jitter"
	"giftbot/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/steamgifts")

const DefaultBaseUrl = "https://www.steamgifts.com"

const sessionCookieName = "PHPSESSID"

// ErrNoSession is returned when the landing page carries no anti-forgery
// token, which means the configured session cookie is missing, expired or
// was rejected. This is fatal to a run.
var ErrNoSession = fmt.Errorf("not logged in, the session cookie is missing or expired")

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	pageJitter   jitter.Range
	submitJitter jitter.Range
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// the value of the PHPSESSID cookie of a logged-in browser session
	SessionCookie string
	// delay before every page fetch, defaults to 500ms-1.2s
	PageJitter *jitter.Range
	// delay before every entry submission, defaults to 300-950ms
	SubmitJitter *jitter.Range
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: opts.SessionCookie,
	})

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/steamgifts/http")

	pageJitter := jitter.Range{Min: 500 * time.Millisecond, Max: 1200 * time.Millisecond}
	if opts.PageJitter != nil {
		pageJitter = *opts.PageJitter
	}
	submitJitter := jitter.Range{Min: 300 * time.Millisecond, Max: 950 * time.Millisecond}
	if opts.SubmitJitter != nil {
		submitJitter = *opts.SubmitJitter
	}

	return &Client{
		BaseUrl:      baseUrl,
		Http:         client,
		pageJitter:   pageJitter,
		submitJitter: submitJitter,
	}, nil
}
