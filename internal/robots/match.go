package robots

import "strings"

// findBestMatchingGroup selects the group whose user-agent token best
// matches targetUserAgent: an exact (case-insensitive) match wins outright;
// otherwise the longest-prefix-matching token wins; "*" is the fallback of
// last resort.
func findBestMatchingGroup(groups []UserAgentGroup, targetUserAgent string) *UserAgentGroup {
	var bestMatch *UserAgentGroup
	targetLower := strings.ToLower(targetUserAgent)
	bestMatchLength := 0

	for i := range groups {
		group := &groups[i]

		for _, ua := range group.UserAgents {
			uaLower := strings.ToLower(ua)

			if uaLower == targetLower {
				return group
			}

			if ua == "*" {
				if bestMatch == nil {
					bestMatch = group
				}
				continue
			}

			if strings.HasPrefix(targetLower, uaLower) && len(uaLower) > bestMatchLength {
				bestMatch = group
				bestMatchLength = len(uaLower)
			}
		}
	}

	return bestMatch
}

// normalizePath ensures path starts with "/".
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// pathAllowed evaluates path against a group's Allow/Disallow rules:
// longest-matching-prefix wins; Allow wins a tie with Disallow at equal
// length. A group with no matching rule at all allows by default.
func pathAllowed(group *UserAgentGroup, path string) bool {
	if group == nil {
		return true
	}

	bestLen := -1
	allowed := true

	consider := func(rules []PathRule, isAllow bool) {
		for _, rule := range rules {
			prefix := normalizePath(rule.Path)
			if !strings.HasPrefix(path, prefix) {
				continue
			}
			length := len(prefix)
			if length > bestLen || (length == bestLen && isAllow) {
				bestLen = length
				allowed = isAllow
			}
		}
	}

	consider(group.Disallows, false)
	consider(group.Allows, true)

	return allowed
}
