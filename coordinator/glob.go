package coordinator

import "strings"

// hasWildcard reports whether pattern contains either glob metacharacter.
func hasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// globMatch matches name against pattern using a two-wildcard dialect: `?`
// matches exactly one character, `*` matches zero or more characters.
// This is deliberately not filepath.Match: that stdlib matcher treats `/`
// specially in a way Find's pattern (matched against a single path
// component) never needs, and doesn't generalize to the substring
// fallback Find uses for wildcard-free patterns.
func globMatch(pattern, name string) bool {
	return matchHere(pattern, name)
}

func matchHere(pattern, name string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Collapse consecutive '*' and try every possible split point.
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if matchHere(pattern, name[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(name) == 0 {
				return false
			}
			pattern, name = pattern[1:], name[1:]
		default:
			if len(name) == 0 || name[0] != pattern[0] {
				return false
			}
			pattern, name = pattern[1:], name[1:]
		}
	}
	return len(name) == 0
}

// matchesPattern applies glob matching if pattern contains a wildcard, and
// a plain substring match otherwise.
func matchesPattern(pattern, name string) bool {
	if hasWildcard(pattern) {
		return globMatch(pattern, name)
	}
	return strings.Contains(name, pattern)
}
