package robots

import (
	"bufio"
	"fmt"
	"strings"
	"time"
)

// parsedRobots is the raw structured content of a robots.txt file, before
// group selection: every declared user-agent group and every Sitemap
// directive in document order, duplicates included.
type parsedRobots struct {
	groups           []UserAgentGroup
	declaredSitemaps []string
}

// parseRobotsTxt parses robots.txt content into groups and declared
// sitemaps. Unknown fields are ignored; malformed lines are skipped. This
// mirrors real-world robots.txt parsers, which tolerate minor grammar
// violations rather than aborting.
func parseRobotsTxt(content string) parsedRobots {
	var result parsedRobots

	scanner := bufio.NewScanner(strings.NewReader(content))

	var currentGroup *UserAgentGroup
	var globalGroup UserAgentGroup
	hasGlobalGroup := false

	for scanner.Scan() {
		line := scanner.Text()

		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := strings.ToLower(strings.TrimSpace(line[:colonIdx]))
		value := strings.TrimSpace(line[colonIdx+1:])

		switch field {
		case "user-agent":
			switch {
			case currentGroup == nil:
				currentGroup = &UserAgentGroup{UserAgents: []string{value}}
			case len(currentGroup.Allows) == 0 && len(currentGroup.Disallows) == 0 && currentGroup.CrawlDelay == nil:
				currentGroup.UserAgents = append(currentGroup.UserAgents, value)
			default:
				result.groups = append(result.groups, *currentGroup)
				currentGroup = &UserAgentGroup{UserAgents: []string{value}}
			}

		case "allow":
			if currentGroup != nil {
				currentGroup.Allows = append(currentGroup.Allows, PathRule{Path: value})
			} else {
				globalGroup.Allows = append(globalGroup.Allows, PathRule{Path: value})
				hasGlobalGroup = true
			}

		case "disallow":
			if currentGroup != nil {
				currentGroup.Disallows = append(currentGroup.Disallows, PathRule{Path: value})
			} else {
				globalGroup.Disallows = append(globalGroup.Disallows, PathRule{Path: value})
				hasGlobalGroup = true
			}

		case "crawl-delay":
			if currentGroup != nil {
				var seconds float64
				if _, err := fmt.Sscanf(value, "%f", &seconds); err == nil && seconds >= 0 {
					delay := time.Duration(seconds * float64(time.Second))
					currentGroup.CrawlDelay = &delay
				}
			}

		case "sitemap":
			if value != "" {
				result.declaredSitemaps = append(result.declaredSitemaps, value)
			}
		}
	}

	if currentGroup != nil {
		result.groups = append(result.groups, *currentGroup)
	}
	if hasGlobalGroup {
		globalGroup.UserAgents = []string{"*"}
		result.groups = append([]UserAgentGroup{globalGroup}, result.groups...)
	}

	return result
}
