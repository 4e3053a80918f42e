package steamgifts

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"giftbot/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ProductKind string

const (
	// a single game
	ProductApp ProductKind = "app"
	// a bundle of games, scored as the mean of its constituents
	ProductBundle ProductKind = "sub"
)

// ProductRef points at the Steam store entity behind a giveaway.
type ProductRef struct {
	Kind ProductKind
	ID   string
}

// SearchFilter holds the optional search bounds forwarded to the remote
// listing search. Nil means unbounded.
type SearchFilter struct {
	EntryMin *int
	EntryMax *int
	PointMin *int
	PointMax *int
}

func (f SearchFilter) query(level, page int) url.Values {
	q := url.Values{}
	q.Set("level_min", strconv.Itoa(level))
	q.Set("level_max", strconv.Itoa(level))
	q.Set("page", strconv.Itoa(page))

	setBound := func(key string, v *int) {
		if v != nil {
			q.Set(key, strconv.Itoa(*v))
		}
	}
	setBound("entry_min", f.EntryMin)
	setBound("entry_max", f.EntryMax)
	setBound("point_min", f.PointMin)
	setBound("point_max", f.PointMax)

	return q
}

// ListingRow is one raw giveaway row on a search page.
type ListingRow struct {
	Name    string
	Cost    int
	Code    string
	Entered bool
	Product ProductRef
}

type PageKind int

const (
	// the page carries giveaway rows
	PageResults PageKind = iota
	// the well-formed "no results" terminal marker, ends the level
	PageNoResults
	// the page matches neither shape
	PageMalformed
)

type SearchPage struct {
	Kind PageKind
	Rows []ListingRow
}

// FetchSearchPage queries one page of the giveaway search at an exact
// eligibility level. A transport error comes back as (malformed, err);
// result interpretation is always left to the caller.
func (c *Client) FetchSearchPage(ctx context.Context, filter SearchFilter, level, page int) (SearchPage, error) {
	ctx, span := tracer.Start(ctx, "client:FetchSearchPage")
	defer span.End()
	span.SetAttributes(attribute.Int("level", level), attribute.Int("page", page))

	c.pageJitter.Sleep()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(filter.query(level, page)).
		Get("/giveaways/search")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch search page")
		return SearchPage{Kind: PageMalformed}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse search page")
		return SearchPage{Kind: PageMalformed}, err
	}

	return parseSearchPage(doc), nil
}

func parseSearchPage(doc *goquery.Document) SearchPage {
	if doc.Find("div.pagination--no-results").Length() > 0 {
		return SearchPage{Kind: PageNoResults}
	}

	rows := doc.Find("div.giveaway__row-inner-wrap")
	if rows.Length() == 0 {
		return SearchPage{Kind: PageMalformed}
	}

	page := SearchPage{Kind: PageResults}
	rows.Each(func(_ int, sel *goquery.Selection) {
		row, ok := parseListingRow(sel)
		if !ok {
			slog.Warn("skipping unparseable giveaway row")
			return
		}
		page.Rows = append(page.Rows, row)
	})
	return page
}

func parseListingRow(sel *goquery.Selection) (ListingRow, bool) {
	heading := sel.Find("a.giveaway__heading__name")
	name := htmlutil.CleanText(heading.Text())

	// hrefs look like /giveaway/<code>/<title>
	parts := strings.Split(heading.AttrOr("href", ""), "/")
	if name == "" || len(parts) < 3 || parts[2] == "" {
		return ListingRow{}, false
	}
	code := parts[2]

	cost, ok := parseCost(sel)
	if !ok {
		return ListingRow{}, false
	}

	product, _ := ParseProductUrl(sel.Find("a.giveaway__icon").AttrOr("href", ""))

	return ListingRow{
		Name:    name,
		Cost:    cost,
		Code:    code,
		Entered: sel.HasClass("is-faded"),
		Product: product,
	}, true
}

// the last "thin" heading span holds the cost, formatted as "(30P)"
func parseCost(sel *goquery.Selection) (int, bool) {
	thin := sel.Find("span.giveaway__heading__thin")
	if thin.Length() == 0 {
		return 0, false
	}
	text := htmlutil.CleanText(thin.Eq(thin.Length() - 1).Text())
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	text = strings.TrimSuffix(text, "P")
	cost, err := strconv.Atoi(text)
	if err != nil || cost < 0 {
		return 0, false
	}
	return cost, true
}

// ParseProductUrl extracts the product reference from a Steam store link
// like https://store.steampowered.com/app/12345/ or .../sub/678/.
func ParseProductUrl(href string) (ProductRef, bool) {
	parts := strings.Split(strings.TrimSuffix(href, "/"), "/")
	if len(parts) < 2 {
		return ProductRef{}, false
	}
	kind := ProductKind(parts[len(parts)-2])
	id := parts[len(parts)-1]
	if id == "" || (kind != ProductApp && kind != ProductBundle) {
		return ProductRef{}, false
	}
	return ProductRef{Kind: kind, ID: id}, true
}
