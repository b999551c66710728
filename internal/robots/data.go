package robots

import "time"

// UserAgentGroup is one "User-agent: ..." block from a robots.txt file,
// carrying the Allow/Disallow rules and optional crawl-delay that apply to
// every user-agent token named in it.
type UserAgentGroup struct {
	UserAgents []string
	Allows     []PathRule
	Disallows  []PathRule
	CrawlDelay *time.Duration
}

// PathRule is a single Allow or Disallow path pattern.
type PathRule struct {
	Path string
}
