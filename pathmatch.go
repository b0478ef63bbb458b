package promtap

import (
	"fmt"
	"regexp"
)

// pathMatcher answers whether a request path is excluded from
// instrumentation. Patterns are compiled once at Build time and the matcher
// is immutable afterwards, so it is shared by all requests without locking.
type pathMatcher struct {
	patterns []*regexp.Regexp
}

func newPathMatcher(patterns []string) (*pathMatcher, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExcludePattern, p, err)
		}
		compiled = append(compiled, re)
	}
	return &pathMatcher{patterns: compiled}, nil
}

// shouldExclude reports whether any pattern matches anywhere in path.
// Search semantics: an unanchored "/health" excludes "/health/deep" too,
// while "^/health$" excludes only the exact path.
func (m *pathMatcher) shouldExclude(path string) bool {
	for _, re := range m.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
