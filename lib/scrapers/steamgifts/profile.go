package steamgifts

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"giftbot/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Profile is the account snapshot extracted from the landing page.
type Profile struct {
	Name      string
	Points    int
	Level     int
	XsrfToken string
}

func (c *Client) FetchProfile(ctx context.Context) (Profile, error) {
	ctx, span := tracer.Start(ctx, "client:FetchProfile")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return Profile{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse landing page")
		return Profile{}, err
	}

	token := doc.Find("input[name=xsrf_token]").AttrOr("value", "")
	if token == "" {
		span.SetStatus(codes.Error, "no xsrf token on landing page")
		return Profile{}, ErrNoSession
	}

	spans := doc.Find("a.nav__button--is-dropdown[href='/account'] span")
	if spans.Length() < 2 {
		return Profile{}, fmt.Errorf("could not locate the account dropdown")
	}
	points, err := strconv.Atoi(htmlutil.CleanText(spans.Eq(0).Text()))
	if err != nil {
		return Profile{}, fmt.Errorf("could not parse point balance: %w", err)
	}
	levelFields := strings.Fields(htmlutil.CleanText(spans.Eq(1).Text()))
	if len(levelFields) < 2 {
		return Profile{}, fmt.Errorf("could not parse account level")
	}
	level, err := strconv.Atoi(levelFields[1])
	if err != nil {
		return Profile{}, fmt.Errorf("could not parse account level: %w", err)
	}

	name := path.Base(doc.Find("a.nav__avatar-outer-wrap").AttrOr("href", ""))

	return Profile{
		Name:      name,
		Points:    points,
		Level:     level,
		XsrfToken: token,
	}, nil
}
