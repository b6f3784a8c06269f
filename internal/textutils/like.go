package textutils

import (
	"regexp"
	"strings"
)

// LikePattern is a compiled SQL LIKE pattern: "%" matches any run of
// characters, "_" exactly one. Matching is case-sensitive.
type LikePattern struct {
	re *regexp.Regexp
}

// CompileLike translates a LIKE pattern into a matcher.
func CompileLike(pattern string) *LikePattern {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return &LikePattern{re: regexp.MustCompile(b.String())}
}

// Match reports whether s matches the whole pattern.
func (p *LikePattern) Match(s string) bool {
	return p.re.MatchString(s)
}

// MatchLike is CompileLike(pattern).Match(s).
func MatchLike(pattern, s string) bool {
	return CompileLike(pattern).Match(s)
}
