package execx

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellJoin renders argv as one POSIX shell line. Plain words such as
// "build" or "test:unit" stay bare; anything else is quoted.
func ShellJoin(argv []string) string {
	return shellquote.Join(argv...)
}

// MatchTerms reports whether every whitespace-separated term of query occurs
// in text, ignoring case and order. An empty query matches everything.
func MatchTerms(text, query string) bool {
	text = strings.ToLower(text)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}
