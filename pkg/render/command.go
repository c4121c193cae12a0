package render

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Command replaces every literal occurrence of token in template with the
// quoted paths joined by a single space. The result is meant for POSIX sh.
// An empty token, or one that does not occur, leaves the template unchanged.
func Command(template, token string, paths []string) string {
	if !Contains(template, token) {
		return template
	}
	return strings.ReplaceAll(template, token, JoinQuoted(paths))
}

// Contains reports whether token is non-empty and occurs in template.
func Contains(template, token string) bool {
	return token != "" && strings.Contains(template, token)
}

// JoinQuoted quotes each path so sh sees it as exactly one word.
func JoinQuoted(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = shellescape.Quote(p)
	}
	return strings.Join(quoted, " ")
}
