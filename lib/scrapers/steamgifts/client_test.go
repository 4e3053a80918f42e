package steamgifts

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"giftbot/lib/jitter"
	"giftbot/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const landingPage = `<!DOCTYPE html>
<html><body>
<form method="post">
	<input type="hidden" name="xsrf_token" value="token123">
</form>
<nav>
	<a class="nav__avatar-outer-wrap" href="/user/gifter"></a>
	<a class="nav__button nav__button--is-dropdown" href="/account">
		<span>300</span>
		<span>Level 3</span>
	</a>
</nav>
</body></html>`

const loggedOutPage = `<!DOCTYPE html>
<html><body>
<header><a class="nav__sits" href="/?login">Sign in through STEAM</a></header>
</body></html>`

const searchResultsPage = `<!DOCTYPE html>
<html><body>
<div class="widget-container">
	<div class="giveaway__row-outer-wrap">
		<div class="giveaway__row-inner-wrap">
			<a class="giveaway__heading__name" href="/giveaway/AbCd1/cool-game">Cool Game</a>
			<span class="giveaway__heading__thin">(5 Copies)</span>
			<span class="giveaway__heading__thin">(30P)</span>
			<a class="giveaway__icon" href="https://store.steampowered.com/app/440/"></a>
		</div>
	</div>
	<div class="giveaway__row-outer-wrap">
		<div class="giveaway__row-inner-wrap is-faded">
			<a class="giveaway__heading__name" href="/giveaway/EfGh2/old-bundle">Old Bundle</a>
			<span class="giveaway__heading__thin">(15P)</span>
			<a class="giveaway__icon" href="https://store.steampowered.com/sub/789/"></a>
		</div>
	</div>
</div>
</body></html>`

const searchNoResultsPage = `<!DOCTYPE html>
<html><body>
<div class="pagination pagination--no-results">No results were found.</div>
</body></html>`

func testClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:       server.URL,
		SessionCookie: "sess",
		PageJitter:    &jitter.Range{},
		SubmitJitter:  &jitter.Range{},
	})
	require.NoError(t, err)
	return client
}

func TestFetchProfile(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	var gotCookie string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("PHPSESSID"); err == nil {
			gotCookie = c.Value
		}
		fmt.Fprint(w, landingPage)
	}))

	profile, err := client.FetchProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sess", gotCookie)
	require.Equal(t, Profile{
		Name:      "gifter",
		Points:    300,
		Level:     3,
		XsrfToken: "token123",
	}, profile)
}

func TestFetchProfileNoSession(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loggedOutPage)
	}))

	_, err := client.FetchProfile(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestFetchSearchPage(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	intPtr := func(v int) *int { return &v }

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/giveaways/search", r.URL.Path)
		require.Equal(t, "2", q.Get("level_min"))
		require.Equal(t, "2", q.Get("level_max"))
		require.Equal(t, "1", q.Get("page"))
		require.Equal(t, "10", q.Get("point_min"))
		require.Empty(t, q.Get("entry_min"))
		fmt.Fprint(w, searchResultsPage)
	}))

	page, err := client.FetchSearchPage(context.Background(), SearchFilter{PointMin: intPtr(10)}, 2, 1)
	require.NoError(t, err)
	require.Equal(t, PageResults, page.Kind)
	require.Equal(t, []ListingRow{
		{
			Name:    "Cool Game",
			Cost:    30,
			Code:    "AbCd1",
			Product: ProductRef{Kind: ProductApp, ID: "440"},
		},
		{
			Name:    "Old Bundle",
			Cost:    15,
			Code:    "EfGh2",
			Entered: true,
			Product: ProductRef{Kind: ProductBundle, ID: "789"},
		},
	}, page.Rows)
}

func TestFetchSearchPageNoResults(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchNoResultsPage)
	}))

	page, err := client.FetchSearchPage(context.Background(), SearchFilter{}, 0, 7)
	require.NoError(t, err)
	require.Equal(t, PageNoResults, page.Kind)
}

func TestFetchSearchPageMalformed(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>Down for maintenance.</p></body></html>")
	}))

	page, err := client.FetchSearchPage(context.Background(), SearchFilter{}, 0, 1)
	require.NoError(t, err)
	require.Equal(t, PageMalformed, page.Kind)
}

func TestEnterGiveaway(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ajax.php", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "token123", r.PostForm.Get("xsrf_token"))
		require.Equal(t, "entry_insert", r.PostForm.Get("do"))
		require.Equal(t, "AbCd1", r.PostForm.Get("code"))
		fmt.Fprint(w, `{"type":"success","points":"270"}`)
	}))

	result, err := client.EnterGiveaway(context.Background(), "token123", "AbCd1")
	require.NoError(t, err)
	require.True(t, result.Success())
	require.Contains(t, result.Raw, "success")
}

func TestEnterGiveawayRejected(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamgifts")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"error","msg":"Previously won."}`)
	}))

	result, err := client.EnterGiveaway(context.Background(), "token123", "AbCd1")
	require.NoError(t, err)
	require.False(t, result.Success())
	require.Equal(t, "Previously won.", result.Msg)
	require.Contains(t, result.Raw, "Previously won.")
}

func TestParseProductUrl(t *testing.T) {
	ref, ok := ParseProductUrl("https://store.steampowered.com/app/440/")
	require.True(t, ok)
	require.Equal(t, ProductRef{Kind: ProductApp, ID: "440"}, ref)

	ref, ok = ParseProductUrl("https://store.steampowered.com/sub/789")
	require.True(t, ok)
	require.Equal(t, ProductRef{Kind: ProductBundle, ID: "789"}, ref)

	_, ok = ParseProductUrl("https://store.steampowered.com/bundle/123/")
	require.False(t, ok)
	_, ok = ParseProductUrl("")
	require.False(t, ok)
}
