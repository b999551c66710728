package robots

import "testing"

func TestParseRobotsTxt_MultipleUserAgentsShareRules(t *testing.T) {
	body := "User-agent: bot-a\n" +
		"User-agent: bot-b\n" +
		"Disallow: /admin\n"

	parsed := parseRobotsTxt(body)
	if len(parsed.groups) != 1 {
		t.Fatalf("expected 1 shared group, got %d", len(parsed.groups))
	}
	if len(parsed.groups[0].UserAgents) != 2 {
		t.Fatalf("expected 2 user agents in the group, got %d", len(parsed.groups[0].UserAgents))
	}
}

func TestParseRobotsTxt_CommentsAndBlankLinesIgnored(t *testing.T) {
	body := "# a comment\n\nUser-agent: *\n# another comment\nDisallow: /x # trailing comment\n"

	parsed := parseRobotsTxt(body)
	if len(parsed.groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(parsed.groups))
	}
	if parsed.groups[0].Disallows[0].Path != "/x" {
		t.Fatalf("expected disallow path /x, got %q", parsed.groups[0].Disallows[0].Path)
	}
}

func TestParseRobotsTxt_SitemapsPreserveOrderAndDuplicates(t *testing.T) {
	body := "Sitemap: https://a.example/s1.xml\n" +
		"Sitemap: https://a.example/s2.xml\n" +
		"Sitemap: https://a.example/s1.xml\n"

	parsed := parseRobotsTxt(body)
	want := []string{
		"https://a.example/s1.xml",
		"https://a.example/s2.xml",
		"https://a.example/s1.xml",
	}
	if len(parsed.declaredSitemaps) != len(want) {
		t.Fatalf("expected %d sitemaps, got %d", len(want), len(parsed.declaredSitemaps))
	}
	for i, w := range want {
		if parsed.declaredSitemaps[i] != w {
			t.Fatalf("sitemap[%d] = %q, want %q", i, parsed.declaredSitemaps[i], w)
		}
	}
}

func TestParseRobotsTxt_CrawlDelayParsed(t *testing.T) {
	body := "User-agent: *\nCrawl-delay: 2.5\n"
	parsed := parseRobotsTxt(body)
	if parsed.groups[0].CrawlDelay == nil {
		t.Fatal("expected crawl-delay to be parsed")
	}
}
