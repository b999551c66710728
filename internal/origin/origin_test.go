package origin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohmanhakim/ethicrawl/internal/httpfetch"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

func TestNew_EagerlyFetchesRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("User-agent: *\nDisallow: /private\nSitemap: https://example.com/sitemap.xml\n"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := httpfetch.NewClient("ethicrawl-test/1.0")
	base := urlx.MustParse(srv.URL)

	ctx, failure := New(context.Background(), base, client, nil, "ethicrawl-test/1.0", nil, 5, false, nil)
	if failure != nil {
		t.Fatalf("unexpected robots fetch failure: %v", failure)
	}

	sitemaps := ctx.DeclaredSitemaps()
	if len(sitemaps) != 1 {
		t.Fatalf("expected 1 declared sitemap, got %d", len(sitemaps))
	}
}

func TestSitemap_IsLazilyBuiltOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := httpfetch.NewClient("ethicrawl-test/1.0")
	base := urlx.MustParse(srv.URL)

	ctx, _ := New(context.Background(), base, client, nil, "ethicrawl-test/1.0", nil, 5, false, nil)

	first := ctx.Sitemap()
	second := ctx.Sitemap()
	if first != second {
		t.Fatal("expected the same SitemapParser instance to be reused")
	}
}

func TestLogger_IsScopedToOriginAndComponent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := httpfetch.NewClient("ethicrawl-test/1.0")
	base := urlx.MustParse(srv.URL)

	ctx, _ := New(context.Background(), base, client, nil, "ethicrawl-test/1.0", nil, 5, false, nil)
	if ctx.Logger("sitemap") == nil {
		t.Fatal("expected a non-nil logger")
	}
}
