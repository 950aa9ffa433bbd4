package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

func testScraperConfig() common.ScraperConfig {
	return common.ScraperConfig{
		UserAgent: "tupa-test/1.0",
		Timeout:   5 * time.Second,
		Retries:   0,
	}
}

func TestHTTPFetcher(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<h1>Trámite</h1>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testScraperConfig(), quietLogger())

	page, err := f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Equal(t, "<h1>Trámite</h1>", string(page.Body))
	require.Equal(t, "tupa-test/1.0", gotUA)
	require.Contains(t, gotLang, "es-PE")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	require.ErrorIs(t, err, ErrStatus)

	_, err = f.Fetch(context.Background(), "file:///etc/hosts")
	require.ErrorIs(t, err, common.ErrUnsupportedScheme)
}

func TestHTTPFetcherSpacesSameHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<h1>ok</h1>"))
	}))
	defer srv.Close()

	cfg := testScraperConfig()
	cfg.PolitenessDelay = 60 * time.Millisecond
	f := NewHTTPFetcher(cfg, quietLogger())

	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL+"/b")
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestHostLimitsSpaceSameHost(t *testing.T) {
	limits := newHostLimits(60 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limits.Wait(ctx, "www.sunat.gob.pe"))
	require.NoError(t, limits.Wait(ctx, "www.gob.pe"))
	require.Less(t, time.Since(start), 50*time.Millisecond)

	require.NoError(t, limits.Wait(ctx, "WWW.SUNAT.GOB.PE"))
	require.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestHostLimitsHonourCancellation(t *testing.T) {
	limits := newHostLimits(time.Hour)
	require.NoError(t, limits.Wait(context.Background(), "www.gob.pe"))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	require.ErrorIs(t, limits.Wait(ctx, "www.gob.pe"), context.Canceled)
}

func TestHostLimitsWithoutDelay(t *testing.T) {
	limits := newHostLimits(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, limits.Wait(context.Background(), "www.gob.pe"))
	}
	require.Less(t, time.Since(start), 50*time.Millisecond)
}
