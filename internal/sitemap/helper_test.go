package sitemap

import (
	"testing"

	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

func mustURL(t *testing.T, s string) urlx.Url {
	t.Helper()
	u, err := urlx.Parse(s, false)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return u
}
