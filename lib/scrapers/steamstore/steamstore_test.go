package steamstore

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

const bundlePage = `<!DOCTYPE html>
<html><body>
<div class="tab_item app_impression_tracked" data-ds-appid="10"></div>
<div class="tab_item app_impression_tracked" data-ds-appid="20,30"></div>
<div class="tab_item"></div>
</body></html>`

func testClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientOptions{
		BaseUrl:     server.URL,
		FetchJitter: &jitter.Range{},
	})
}

func TestBundleApps(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamstore")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sub/789/", r.URL.Path)
		fmt.Fprint(w, bundlePage)
	}))

	apps, err := client.BundleApps(context.Background(), "789")
	require.NoError(t, err)
	require.Equal(t, []string{"10", "20"}, apps)
}

func TestBundleAppsEmpty(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/steamstore")
	defer cleanup()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><h1>Oops, sorry!</h1></body></html>")
	}))

	apps, err := client.BundleApps(context.Background(), "789")
	require.NoError(t, err)
	require.Empty(t, apps)
}
